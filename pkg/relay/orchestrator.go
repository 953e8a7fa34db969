package relay

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/oracle"
	"github.com/balcaohq/balcao/pkg/order"
	"github.com/balcaohq/balcao/pkg/payments"
)

// PaymentLinker issues a checkout link for the session's current order.
type PaymentLinker interface {
	CreateLink(ctx context.Context, s *order.Session) (payments.Link, error)
}

// Messenger texts the checkout link to the caller.
type Messenger interface {
	SendLink(ctx context.Context, to, orderID, link string, totalCents int64) error
}

// Config tunes the per-call timing knobs.
type Config struct {
	// EndGrace is the pause between the final spoken reply and the end
	// frame, so playback can finish before the stream drops.
	EndGrace time.Duration
	// PaymentPoll is how often the payment watcher checks for confirmation.
	PaymentPoll time.Duration
	// PaymentCeiling is how long the watcher waits before giving up.
	PaymentCeiling time.Duration
	// ConfirmGrace is the watcher's pause between the confirmation message
	// and the end frame.
	ConfirmGrace time.Duration
}

// Orchestrator processes the stream events of live calls. One instance
// serves every call; all per-call state lives in the session store. Within a
// call, events are handled strictly in arrival order by the stream's read
// loop; across calls there is no ordering.
type Orchestrator struct {
	Store      order.Store
	Oracle     oracle.Oracle
	Links      PaymentLinker
	SMS        Messenger
	Restaurant menu.Restaurant
	Tracker    *Tracker
	Cfg        Config
	Logger     *slog.Logger
}

// OnSetup binds a stream to its session. A stream for an unknown call is
// tolerated: the event is dropped and later prompts will be dropped too.
func (o *Orchestrator) OnSetup(callID string) error {
	if _, ok := o.Store.Get(callID); !ok {
		o.logger().Warn("stream setup for unknown call", "call_sid", callID)
		return order.ErrSessionNotFound
	}
	o.logger().Info("stream connected", "call_sid", callID)
	return nil
}

// OnPrompt runs one conversation turn. It returns done=true when the stream
// should stop processing (the call ended). A returned error means the stream
// itself is gone; it is not an application failure.
func (o *Orchestrator) OnPrompt(ctx context.Context, callID, utterance string, w *Writer) (done bool, err error) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return false, nil
	}

	s, ok := o.Store.Get(callID)
	if !ok {
		o.logger().Warn("prompt for unknown call dropped", "call_sid", callID)
		return false, nil
	}

	s.AppendTurn("user", text)
	o.logger().Info("caller said", "call_sid", callID, "text", text)

	dec, err := o.Oracle.Reply(ctx, oracle.Request{
		History:      s.History(),
		OrderSummary: s.OrderSummary(),
	})
	if err != nil {
		o.logger().Error("oracle turn failed", "call_sid", callID, "error", err)
		return false, w.WriteText(oracleFailureApology, true)
	}

	s.AppendTurn("assistant", dec.Speech)
	o.logger().Info("assistant replies",
		"call_sid", callID, "action", string(dec.Action), "text", dec.Speech)

	switch dec.Action {
	case oracle.ActionAddItem:
		items := make([]order.LineItem, 0, len(dec.Items))
		for _, it := range dec.Items {
			items = append(items, order.LineItem{
				ItemID:    it.ID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}
		s.AddItems(items...)

	case oracle.ActionConfirmOrder:
		s.ConfirmOrder()

	case oracle.ActionSendPayment:
		return o.sendPayment(ctx, s, dec.Speech, w)

	case oracle.ActionEndCall:
		s.MarkDone()
		if err := w.WriteText(dec.Speech, true); err != nil {
			return true, err
		}
		o.pause(ctx, o.Cfg.EndGrace)
		if err := w.WriteEnd(); err != nil {
			return true, err
		}
		return true, nil

	case oracle.ActionNone:
		// Nothing to apply; just speak.
	}

	return false, w.WriteText(dec.Speech, true)
}

// sendPayment issues the checkout link exactly once per session. A repeated
// send_payment decision while a reference exists only speaks the reply.
// Link-issuance failure degrades to an apology without advancing state, so a
// later turn can retry.
func (o *Orchestrator) sendPayment(ctx context.Context, s *order.Session, speech string, w *Writer) (bool, error) {
	if _, exists := s.PaymentRef(); exists {
		o.logger().Info("payment link already issued, ignoring repeat",
			"call_sid", s.CallID, "order_id", s.OrderID)
		return false, w.WriteText(speech, true)
	}

	link, err := o.Links.CreateLink(ctx, s)
	if err != nil {
		o.logger().Error("payment link creation failed",
			"call_sid", s.CallID, "order_id", s.OrderID, "error", err)
		return false, w.WriteText(paymentFailureApology, true)
	}

	if !s.MarkPaymentSent(link.URL, link.Reference) {
		// Lost a race against another trigger; the first link stands.
		return false, w.WriteText(speech, true)
	}

	if err := o.SMS.SendLink(ctx, s.Caller, s.OrderID, link.URL, s.Total()); err != nil {
		o.logger().Error("payment link sms failed",
			"call_sid", s.CallID, "order_id", s.OrderID, "error", err)
	}

	full := waitingForPaymentNotice
	if speech != "" {
		full = speech + " " + waitingForPaymentNotice
	}
	if err := w.WriteText(full, true); err != nil {
		return false, err
	}

	o.spawnWatcher(ctx, s.CallID, w)
	return false, nil
}

// spawnWatcher starts the payment-wait watcher for the call. It is detached
// from the prompt's context: closing the stream must not cancel it, only
// shutdown (through the tracker) or its own ceiling.
func (o *Orchestrator) spawnWatcher(ctx context.Context, callID string, w *Writer) {
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	unregister := func() { cancel() }
	if o.Tracker != nil {
		unreg := o.Tracker.Register("watch:"+callID, cancel)
		unregister = func() {
			cancel()
			unreg()
		}
	}

	sup := &Supervisor{
		CallID:     callID,
		Store:      o.Store,
		Writer:     w,
		Restaurant: o.Restaurant,
		Poll:       o.Cfg.PaymentPoll,
		Ceiling:    o.Cfg.PaymentCeiling,
		Grace:      o.Cfg.ConfirmGrace,
		Logger:     o.logger(),
	}
	go func() {
		defer unregister()
		sup.Run(watchCtx)
	}()
}

// OnInterrupt records the caller speaking over playback. No state changes.
func (o *Orchestrator) OnInterrupt(callID string) {
	o.logger().Info("caller interrupted", "call_sid", callID)
}

// OnError records a transport-side error report. No state changes.
func (o *Orchestrator) OnError(callID, description string) {
	o.logger().Error("stream reported error", "call_sid", callID, "description", description)
}

func (o *Orchestrator) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
