package order

// State is the lifecycle phase of a call. Transitions only move forward:
//
//	Greeting -> TakingOrder -> ConfirmingOrder -> PaymentSent ->
//	PaymentConfirmed -> Done
//
// Upsell is folded into TakingOrder; the assistant decides when to offer it.
// A payment confirmation arriving from the webhook path may jump the session
// to PaymentConfirmed from any non-terminal state.
type State string

const (
	StateGreeting         State = "greeting"
	StateTakingOrder      State = "taking_order"
	StateConfirmingOrder  State = "confirming_order"
	StatePaymentSent      State = "payment_sent"
	StatePaymentConfirmed State = "payment_confirmed"
	StateDone             State = "done"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateDone
}
