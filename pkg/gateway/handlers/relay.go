package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/balcaohq/balcao/pkg/relay"
)

// RelayStreamHandler runs the websocket side of a call: it upgrades the
// connection, decodes inbound frames and feeds them to the orchestrator in
// arrival order. One goroutine per stream; per-turn work happens inline so a
// call's events are never reordered.
type RelayStreamHandler struct {
	Orchestrator *relay.Orchestrator
	Tracker      *relay.Tracker
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (h RelayStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	wr := relay.NewWriter(conn, h.WriteTimeout)
	defer wr.MarkClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Shutdown path: cancellation (through the tracker) closes the socket,
	// which unblocks the read loop below.
	go func() {
		<-ctx.Done()
		wr.MarkClosed()
		conn.Close()
	}()

	var callID string
	unregister := func() {}
	defer func() { unregister() }()

	for {
		messageType, raw, err := conn.ReadMessage()
		if err != nil {
			h.logger().Info("stream closed", "call_sid", callID, "reason", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		frame, err := relay.DecodeFrame(raw)
		if err != nil {
			h.logger().Warn("dropping undecodable frame", "call_sid", callID, "error", err)
			continue
		}

		switch f := frame.(type) {
		case relay.Setup:
			callID = f.CallID
			unregister()
			unregister = h.Tracker.Register("stream:"+callID, cancel)
			_ = h.Orchestrator.OnSetup(callID)

		case relay.Prompt:
			if callID == "" {
				h.logger().Warn("prompt before setup dropped")
				continue
			}
			done, err := h.Orchestrator.OnPrompt(ctx, callID, f.VoiceText, wr)
			if err != nil || done {
				return
			}

		case relay.Interrupt:
			h.Orchestrator.OnInterrupt(callID)

		case relay.ErrorFrame:
			h.Orchestrator.OnError(callID, f.Description)
		}
	}
}

func (h RelayStreamHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
