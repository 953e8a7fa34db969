package order

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Turn is one utterance of the conversation, in insertion order.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Session is the transient state of one live call. The Store owns the object
// for its lifetime; everything else holds the call id and looks it up.
//
// The state, history, ledger and payment link fields are mutated only from
// the call's serialized turn-processing path, but the payment confirmation
// arrives from the webhook path concurrently, so reads and writes go through
// the mutex and the confirmed flag is an atomic set-once.
type Session struct {
	CallID    string
	Caller    string // caller phone number
	OrderID   string
	CreatedAt time.Time

	mu         sync.Mutex
	state      State
	history    []Turn
	ledger     Ledger
	paymentURL string
	paymentRef string

	confirmed atomic.Bool
}

// NewSession creates a session in the greeting state with a fresh order id.
func NewSession(callID, caller string) *Session {
	return &Session{
		CallID:    callID,
		Caller:    caller,
		OrderID:   newOrderID(),
		CreatedAt: time.Now(),
		state:     StateGreeting,
	}
}

// newOrderID returns a short token customers can read back over the phone.
func newOrderID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AppendTurn records one utterance. History is append-only.
func (s *Session) AppendTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{Role: role, Content: content})
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// AddItems merges items into the ledger and moves the call to TakingOrder.
// Already being in TakingOrder is fine; the transition is idempotent.
func (s *Session) AddItems(items ...LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.ledger.Add(it.ItemID, it.Name, it.Quantity, it.UnitPrice)
	}
	if !s.state.Terminal() {
		s.state = StateTakingOrder
	}
}

// Items returns a copy of the current ledger rows.
func (s *Session) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Lines()
}

// Total returns the current order total in centavos.
func (s *Session) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Total()
}

// OrderSummary renders the ledger for the oracle prompt.
func (s *Session) OrderSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Summary()
}

// HasItems reports whether the ledger is non-empty.
func (s *Session) HasItems() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ledger.Empty()
}

// ConfirmOrder moves the call to ConfirmingOrder.
func (s *Session) ConfirmOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		s.state = StateConfirmingOrder
	}
}

// MarkPaymentSent records the issued link and reference and moves the call
// to PaymentSent. It reports false without touching anything if a reference
// already exists, which keeps link issuance at most once per session.
func (s *Session) MarkPaymentSent(url, reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paymentRef != "" || s.state.Terminal() {
		return false
	}
	s.paymentURL = url
	s.paymentRef = reference
	s.state = StatePaymentSent
	return true
}

// PaymentRef returns the payment reference, if one was issued.
func (s *Session) PaymentRef() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentRef, s.paymentRef != ""
}

// PaymentURL returns the checkout link, if one was issued.
func (s *Session) PaymentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentURL
}

// SetPaymentRef records a reference learned from the webhook path when the
// session has none yet (e.g. a payment intent id). First write wins.
func (s *Session) SetPaymentRef(reference string) {
	if reference == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paymentRef == "" {
		s.paymentRef = reference
	}
}

// ConfirmPayment flips the monotonic confirmed flag and reports whether this
// call was the one that flipped it. The winner also drives the state to
// PaymentConfirmed unless the call already ended; side effects that must
// happen exactly once key off the return value.
func (s *Session) ConfirmPayment() bool {
	first := s.confirmed.CompareAndSwap(false, true)
	if first {
		s.mu.Lock()
		if !s.state.Terminal() {
			s.state = StatePaymentConfirmed
		}
		s.mu.Unlock()
	}
	return first
}

// PaymentConfirmed reports whether payment has been confirmed. Once true it
// never reverts.
func (s *Session) PaymentConfirmed() bool {
	return s.confirmed.Load()
}

// MarkDone moves the call to its terminal state.
func (s *Session) MarkDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDone
}
