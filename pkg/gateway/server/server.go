// Package server wires the gateway's routes and middleware.
package server

import (
	"log/slog"
	"net/http"

	"github.com/balcaohq/balcao/pkg/gateway/config"
	"github.com/balcaohq/balcao/pkg/gateway/handlers"
	"github.com/balcaohq/balcao/pkg/gateway/mw"
	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
	"github.com/balcaohq/balcao/pkg/payments"
	"github.com/balcaohq/balcao/pkg/relay"
)

// Deps are the wired collaborators the handlers share.
type Deps struct {
	Store        order.Store
	Restaurant   menu.Restaurant
	Orchestrator *relay.Orchestrator
	Tracker      *relay.Tracker
	Reconciler   *payments.Reconciler
}

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux
	deps   Deps
}

func New(cfg config.Config, logger *slog.Logger, deps Deps) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		deps:   deps,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg})

	s.mux.Handle("/voice/incoming", handlers.IncomingCallHandler{
		Config:     s.cfg,
		Store:      s.deps.Store,
		Restaurant: s.deps.Restaurant,
		Logger:     s.logger,
	})
	s.mux.Handle("/voice/relay", handlers.RelayStreamHandler{
		Orchestrator: s.deps.Orchestrator,
		Tracker:      s.deps.Tracker,
		WriteTimeout: s.cfg.WSWriteTimeout,
		Logger:       s.logger,
	})
	s.mux.Handle("/obrigado", handlers.PaymentSuccessHandler{})
	s.mux.Handle("/payments/webhook", handlers.StripeWebhookHandler{
		Secret:       s.cfg.StripeWebhookSecret,
		Reconciler:   s.deps.Reconciler,
		MaxBodyBytes: s.cfg.MaxWebhookBodyBytes,
		Logger:       s.logger,
	})

	s.mux.Handle("/", handlers.RootHandler{})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
