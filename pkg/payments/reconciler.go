package payments

import (
	"context"
	"log/slog"
	"sync"

	"github.com/balcaohq/balcao/pkg/order"
)

// Messenger sends the paid-order confirmation SMS.
type Messenger interface {
	SendConfirmation(ctx context.Context, to, orderID string, totalCents int64) error
}

// Printer prints the kitchen ticket.
type Printer interface {
	PrintTicket(ctx context.Context, s *order.Session) error
}

// Reconciler applies payment-completed notifications to live sessions.
// Stripe may deliver both a checkout-session event and a payment-intent
// event for the same payment, and retries on top of that; the session's
// set-once confirmation flag makes the ticket print and confirmation SMS
// fire exactly once regardless.
type Reconciler struct {
	Store     order.Store
	Messenger Messenger
	Printer   Printer
	Logger    *slog.Logger

	effects sync.WaitGroup
}

// Completed records a payment confirmation. Either key may be empty; the
// call id wins when both resolve. Unknown sessions and repeat deliveries are
// no-ops. Side effects run in the background; their failures are logged and
// never reach the webhook response.
func (r *Reconciler) Completed(ctx context.Context, callID, reference string) {
	s, ok := r.lookup(callID, reference)
	if !ok {
		r.logger().Warn("payment completed for unknown session",
			"call_sid", callID, "reference", reference)
		return
	}

	s.SetPaymentRef(reference)
	if !s.ConfirmPayment() {
		r.logger().Debug("duplicate payment confirmation ignored",
			"call_sid", s.CallID, "order_id", s.OrderID)
		return
	}

	r.logger().Info("payment confirmed",
		"call_sid", s.CallID, "order_id", s.OrderID, "total_cents", s.Total())

	// Detach from the webhook request so a fast 200 does not cancel them.
	bg := context.WithoutCancel(ctx)

	r.effects.Add(1)
	go func() {
		defer r.effects.Done()
		if r.Printer == nil {
			return
		}
		if err := r.Printer.PrintTicket(bg, s); err != nil {
			r.logger().Error("ticket print failed", "order_id", s.OrderID, "error", err)
		}
	}()

	r.effects.Add(1)
	go func() {
		defer r.effects.Done()
		if r.Messenger == nil {
			return
		}
		if err := r.Messenger.SendConfirmation(bg, s.Caller, s.OrderID, s.Total()); err != nil {
			r.logger().Error("confirmation sms failed", "order_id", s.OrderID, "error", err)
		}
	}()
}

// Wait blocks until in-flight side effects finish. Used on shutdown and in
// tests.
func (r *Reconciler) Wait() {
	r.effects.Wait()
}

func (r *Reconciler) lookup(callID, reference string) (*order.Session, bool) {
	if callID != "" {
		if s, ok := r.Store.Get(callID); ok {
			return s, true
		}
	}
	if reference != "" {
		if s, ok := r.Store.FindByPaymentRef(reference); ok {
			return s, true
		}
	}
	return nil, false
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
