package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/balcaohq/balcao/pkg/payments"
)

// StripeWebhookHandler receives payment events. Only a bad signature earns a
// 400; everything else is acknowledged with 200 so Stripe stops retrying.
// Stripe delivers both checkout-session and payment-intent events for one
// payment; the reconciler dedupes.
type StripeWebhookHandler struct {
	Secret       string
	Reconciler   *payments.Reconciler
	MaxBodyBytes int64
	Logger       *slog.Logger
}

func (h StripeWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body := r.Body
	if h.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	}
	payload, err := io.ReadAll(body)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	// Deliveries keep flowing across Stripe API version bumps; only the
	// signature is load-bearing here.
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.logger().Warn("rejecting webhook with bad signature", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	h.logger().Info("stripe event", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			h.logger().Error("undecodable checkout session payload", "event_id", event.ID, "error", err)
			break
		}
		h.Reconciler.Completed(r.Context(), cs.Metadata["call_sid"], cs.ID)

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			h.logger().Error("undecodable payment intent payload", "event_id", event.ID, "error", err)
			break
		}
		h.Reconciler.Completed(r.Context(), pi.Metadata["call_sid"], pi.ID)
	}

	w.WriteHeader(http.StatusOK)
}

func (h StripeWebhookHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
