package payments

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/balcaohq/balcao/pkg/order"
)

type recordingMessenger struct {
	mu    sync.Mutex
	calls []struct {
		To      string
		OrderID string
		Total   int64
	}
}

func (m *recordingMessenger) SendConfirmation(ctx context.Context, to, orderID string, totalCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, struct {
		To      string
		OrderID string
		Total   int64
	}{to, orderID, totalCents})
	return nil
}

func (m *recordingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type countingPrinter struct {
	prints atomic.Int64
}

func (p *countingPrinter) PrintTicket(ctx context.Context, s *order.Session) error {
	p.prints.Add(1)
	return nil
}

func newTestReconciler(st order.Store) (*Reconciler, *recordingMessenger, *countingPrinter) {
	m := &recordingMessenger{}
	p := &countingPrinter{}
	return &Reconciler{Store: st, Messenger: m, Printer: p}, m, p
}

func TestReconciler_ConfirmsAndFiresEffectsOnce(t *testing.T) {
	st := order.NewMemoryStore()
	s := st.Create("CA1", "+5511999999999")
	s.AddItems(order.LineItem{ItemID: "x1", Name: "Burger", Quantity: 2, UnitPrice: 2500})
	s.MarkPaymentSent("https://pay.example/cs_1", "cs_1")

	r, m, p := newTestReconciler(st)

	// Both webhook kinds fire for the same payment, plus a retry.
	r.Completed(context.Background(), "CA1", "cs_1")
	r.Completed(context.Background(), "", "cs_1")
	r.Completed(context.Background(), "CA1", "")
	r.Wait()

	if !s.PaymentConfirmed() {
		t.Fatalf("payment not confirmed")
	}
	if got := p.prints.Load(); got != 1 {
		t.Fatalf("ticket printed %d times, want 1", got)
	}
	if got := m.count(); got != 1 {
		t.Fatalf("confirmation sms sent %d times, want 1", got)
	}
	call := m.calls[0]
	if call.To != "+5511999999999" || call.OrderID != s.OrderID || call.Total != 5000 {
		t.Fatalf("confirmation call=%+v", call)
	}
}

func TestReconciler_ConcurrentDeliveries(t *testing.T) {
	st := order.NewMemoryStore()
	s := st.Create("CA1", "+5511999999999")
	s.AddItems(order.LineItem{ItemID: "x1", Name: "Burger", Quantity: 1, UnitPrice: 2500})
	s.MarkPaymentSent("https://pay.example/cs_1", "cs_1")

	r, m, p := newTestReconciler(st)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Completed(context.Background(), "CA1", "cs_1")
		}()
	}
	wg.Wait()
	r.Wait()

	if got := p.prints.Load(); got != 1 {
		t.Fatalf("ticket printed %d times under concurrent deliveries, want 1", got)
	}
	if got := m.count(); got != 1 {
		t.Fatalf("sms sent %d times under concurrent deliveries, want 1", got)
	}
}

func TestReconciler_UnknownSessionIsNoOp(t *testing.T) {
	r, m, p := newTestReconciler(order.NewMemoryStore())
	r.Completed(context.Background(), "CA404", "cs_missing")
	r.Wait()
	if p.prints.Load() != 0 || m.count() != 0 {
		t.Fatalf("effects fired for an unknown session")
	}
}

func TestReconciler_LearnsReferenceFromWebhook(t *testing.T) {
	st := order.NewMemoryStore()
	s := st.Create("CA1", "+5511999999999")
	s.AddItems(order.LineItem{ItemID: "x1", Name: "Burger", Quantity: 1, UnitPrice: 2500})

	r, _, _ := newTestReconciler(st)
	// Payment-intent path: only the call id metadata plus the intent id.
	r.Completed(context.Background(), "CA1", "pi_123")
	r.Wait()

	ref, ok := s.PaymentRef()
	if !ok || ref != "pi_123" {
		t.Fatalf("reference=%q ok=%v, want pi_123 learned from webhook", ref, ok)
	}
	if !s.PaymentConfirmed() {
		t.Fatalf("payment not confirmed via call id lookup")
	}
}

func TestBuildLineItems(t *testing.T) {
	items := []order.LineItem{
		{ItemID: "x1", Name: "Burger", Quantity: 2, UnitPrice: 2500},
		{ItemID: "b1", Name: "Guaraná", Quantity: 1, UnitPrice: 700},
	}
	got := buildLineItems(items, "brl")
	if len(got) != 2 {
		t.Fatalf("line items=%d, want 2", len(got))
	}
	first := got[0]
	if *first.Quantity != 2 {
		t.Fatalf("quantity=%d, want 2", *first.Quantity)
	}
	if *first.PriceData.UnitAmount != 2500 {
		t.Fatalf("unit amount=%d, want 2500", *first.PriceData.UnitAmount)
	}
	if *first.PriceData.Currency != "brl" {
		t.Fatalf("currency=%q, want brl", *first.PriceData.Currency)
	}
	if *first.PriceData.ProductData.Name != "Burger" {
		t.Fatalf("product name=%q, want Burger", *first.PriceData.ProductData.Name)
	}
}
