package order

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	st := NewMemoryStore()
	s := st.Create("CA1", "+5511999999999")
	if s == nil {
		t.Fatalf("Create returned nil")
	}

	got, ok := st.Get("CA1")
	if !ok || got != s {
		t.Fatalf("Get returned %v ok=%v, want the created session", got, ok)
	}
	if _, ok := st.Get("CA2"); ok {
		t.Fatalf("Get found a session that was never created")
	}

	st.Delete("CA1")
	if _, ok := st.Get("CA1"); ok {
		t.Fatalf("session survived Delete")
	}
	st.Delete("CA1") // idempotent
}

func TestMemoryStore_FindByPaymentRef(t *testing.T) {
	st := NewMemoryStore()
	a := st.Create("CA1", "+5511999999999")
	st.Create("CA2", "+5511888888888")

	if _, ok := st.FindByPaymentRef("cs_1"); ok {
		t.Fatalf("found a session before any reference was issued")
	}
	a.MarkPaymentSent("https://pay.example/cs_1", "cs_1")

	got, ok := st.FindByPaymentRef("cs_1")
	if !ok || got.CallID != "CA1" {
		t.Fatalf("FindByPaymentRef=%v ok=%v, want CA1", got, ok)
	}
	if _, ok := st.FindByPaymentRef(""); ok {
		t.Fatalf("empty reference matched a session")
	}
}

func TestMemoryStore_ConcurrentSessionsStayIsolated(t *testing.T) {
	st := NewMemoryStore()
	const calls = 16

	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callID := fmt.Sprintf("CA%d", i)
			s := st.Create(callID, fmt.Sprintf("+55119%07d", i))
			for range 10 {
				s.AddItems(LineItem{ItemID: "x1", Name: "Burger", Quantity: 1, UnitPrice: int64(100 * (i + 1))})
			}
		}()
	}
	wg.Wait()

	if st.Count() != calls {
		t.Fatalf("count=%d, want %d", st.Count(), calls)
	}
	for i := range calls {
		s, ok := st.Get(fmt.Sprintf("CA%d", i))
		if !ok {
			t.Fatalf("session CA%d missing", i)
		}
		want := int64(10 * 100 * (i + 1))
		if got := s.Total(); got != want {
			t.Fatalf("CA%d total=%d, want %d (cross-session contamination?)", i, got, want)
		}
		if lines := s.Items(); len(lines) != 1 || lines[0].Quantity != 10 {
			t.Fatalf("CA%d lines=%+v, want one merged line of quantity 10", i, lines)
		}
	}
}
