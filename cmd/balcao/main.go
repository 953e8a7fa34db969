package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stripe/stripe-go/v84"

	"github.com/balcaohq/balcao/internal/dotenv"
	"github.com/balcaohq/balcao/pkg/gateway/config"
	gatewayserver "github.com/balcaohq/balcao/pkg/gateway/server"
	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/oracle"
	"github.com/balcaohq/balcao/pkg/order"
	"github.com/balcaohq/balcao/pkg/payments"
	"github.com/balcaohq/balcao/pkg/printer"
	"github.com/balcaohq/balcao/pkg/relay"
	"github.com/balcaohq/balcao/pkg/sms"
)

func loadCatalog(ctx context.Context, cfg config.Config) (*menu.Catalog, func(), error) {
	if cfg.DatabaseURL != "" {
		if err := menu.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := menu.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		catalog, err := (&menu.PostgresSource{Pool: pool}).Load(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return catalog, pool.Close, nil
	}

	catalog, err := menu.FileSource{Path: cfg.MenuPath}.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return catalog, func() {}, nil
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stripe.Key = cfg.StripeSecretKey

	catalog, closeCatalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load menu: %w", err)
	}
	defer closeCatalog()
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("validate menu: %w", err)
	}
	logger.Info("menu loaded",
		"restaurant", catalog.Restaurant.Name, "categories", len(catalog.Categories))

	brain, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, catalog)
	if err != nil {
		return fmt.Errorf("dialogue model: %w", err)
	}

	smsClient, err := sms.New(sms.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioFromNumber,
		Restaurant: catalog.Restaurant,
	})
	if err != nil {
		return fmt.Errorf("sms client: %w", err)
	}

	var ticketPrinter payments.Printer
	if cfg.PrinterAddr != "" {
		ticketPrinter = &printer.Network{Addr: cfg.PrinterAddr, Restaurant: catalog.Restaurant}
		logger.Info("kitchen printer configured", "addr", cfg.PrinterAddr)
	} else {
		ticketPrinter = &printer.Dummy{Restaurant: catalog.Restaurant, Logger: logger}
		logger.Warn("no kitchen printer configured, tickets go to the log")
	}

	store := order.NewMemoryStore()
	tracker := relay.NewTracker()
	reconciler := &payments.Reconciler{
		Store:     store,
		Messenger: smsClient,
		Printer:   ticketPrinter,
		Logger:    logger,
	}
	orchestrator := &relay.Orchestrator{
		Store:      store,
		Oracle:     brain,
		Links:      &payments.Links{Currency: cfg.StripeCurrency, SuccessURL: cfg.StripeSuccessURL},
		SMS:        smsClient,
		Restaurant: catalog.Restaurant,
		Tracker:    tracker,
		Cfg: relay.Config{
			EndGrace:       cfg.EndGrace,
			PaymentPoll:    cfg.PaymentPoll,
			PaymentCeiling: cfg.PaymentCeiling,
			ConfirmGrace:   cfg.ConfirmGrace,
		},
		Logger: logger,
	}

	gw := gatewayserver.New(cfg, logger, gatewayserver.Deps{
		Store:        store,
		Restaurant:   catalog.Restaurant,
		Orchestrator: orchestrator,
		Tracker:      tracker,
		Reconciler:   reconciler,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}

	logger.Info("starting gateway", "addr", cfg.Addr, "relay_url", cfg.RelayURL())

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	// Give live calls and payment watchers a chance to drain, then cut them.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer waitCancel()
	if !tracker.Wait(waitCtx) {
		n := tracker.CancelAll()
		logger.Warn("canceled live calls on shutdown", "count", n)
	}
	reconciler.Wait()

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := dotenv.LoadFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "balcao: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "balcao: %v\n", err)
		os.Exit(1)
	}
}
