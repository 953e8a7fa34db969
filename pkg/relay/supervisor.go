package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

const (
	defaultPaymentPoll    = 5 * time.Second
	defaultPaymentCeiling = 5 * time.Minute
	defaultConfirmGrace   = 5 * time.Second
)

// Supervisor watches one PaymentSent session for confirmation arriving from
// the webhook path. It is the only path that speaks the closing confirmation
// over a PaymentSent stream. It holds just the call id; the session stays
// owned by the store.
//
// The watcher never blocks the stream and the stream never waits on it. If
// the caller hangs up first, the watcher notices the closed stream and exits
// without writing.
type Supervisor struct {
	CallID     string
	Store      order.Store
	Writer     *Writer
	Restaurant menu.Restaurant

	Poll    time.Duration
	Ceiling time.Duration
	Grace   time.Duration
	Logger  *slog.Logger
}

// Run polls until confirmation, the ceiling, cancellation, or the stream
// going away, whichever is first.
func (s *Supervisor) Run(ctx context.Context) {
	poll := s.Poll
	if poll <= 0 {
		poll = defaultPaymentPoll
	}
	ceiling := s.Ceiling
	if ceiling <= 0 {
		ceiling = defaultPaymentCeiling
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	deadline := time.NewTimer(ceiling)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger().Info("payment watch canceled", "call_sid", s.CallID)
			return

		case <-deadline.C:
			s.logger().Warn("payment wait timed out", "call_sid", s.CallID)
			return

		case <-ticker.C:
			sess, ok := s.Store.Get(s.CallID)
			if !ok {
				s.logger().Info("session gone, stopping payment watch", "call_sid", s.CallID)
				return
			}
			if !sess.PaymentConfirmed() {
				continue
			}
			s.speakConfirmation(ctx, sess)
			return
		}
	}
}

func (s *Supervisor) speakConfirmation(ctx context.Context, sess *order.Session) {
	if s.Writer.Closed() {
		s.logger().Info("stream already closed, skipping confirmation message",
			"call_sid", s.CallID, "order_id", sess.OrderID)
		return
	}
	if err := s.Writer.WriteText(paymentConfirmedMessage(sess, s.Restaurant), true); err != nil {
		s.logger().Info("stream closed before confirmation message",
			"call_sid", s.CallID, "error", err)
		return
	}

	grace := s.Grace
	if grace <= 0 {
		grace = defaultConfirmGrace
	}
	select {
	case <-time.After(grace):
	case <-ctx.Done():
	}

	if err := s.Writer.WriteEnd(); err != nil {
		s.logger().Info("stream closed before end frame", "call_sid", s.CallID, "error", err)
	}
}

func (s *Supervisor) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
