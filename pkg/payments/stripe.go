// Package payments issues Stripe checkout links for phone orders and
// reconciles the asynchronous payment confirmations back onto live call
// sessions.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/balcaohq/balcao/pkg/order"
)

// Link is an issued checkout link. Reference is the checkout session id and
// is how webhook deliveries correlate back to the call.
type Link struct {
	URL       string
	Reference string
}

// Links creates Stripe Checkout sessions for call orders. stripe.Key must be
// set by the caller at startup.
type Links struct {
	Currency   string // lowercase ISO code, e.g. "brl"
	SuccessURL string
}

// CreateLink creates a checkout session for the current ledger, carrying the
// order id, call id and caller number as metadata so the webhook can find
// the session again.
func (l *Links) CreateLink(ctx context.Context, s *order.Session) (Link, error) {
	items := s.Items()
	if len(items) == 0 {
		return Link{}, fmt.Errorf("payments: order %s has no items", s.OrderID)
	}

	metadata := map[string]string{
		"order_id":       s.OrderID,
		"call_sid":       s.CallID,
		"customer_phone": s.Caller,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  buildLineItems(items, l.Currency),
		SuccessURL: stripe.String(l.SuccessURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cs, err := checkoutsession.New(params)
	if err != nil {
		return Link{}, fmt.Errorf("payments: create checkout session for order %s: %w", s.OrderID, err)
	}
	return Link{URL: cs.URL, Reference: cs.ID}, nil
}

func buildLineItems(items []order.LineItem, currency string) []*stripe.CheckoutSessionLineItemParams {
	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		out = append(out, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(it.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(int64(it.Quantity)),
		})
	}
	return out
}
