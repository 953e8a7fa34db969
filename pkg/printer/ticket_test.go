package printer

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

var ticketRestaurant = menu.Restaurant{
	Name:            "Cantina da Praça",
	Address:         "Rua das Flores, 123",
	PrepTimeMinutes: 20,
}

func paidSession(t *testing.T) *order.Session {
	t.Helper()
	s := order.NewSession("CA1", "+5511999999999")
	s.AddItems(
		order.LineItem{ItemID: "x1", Name: "Burger", Quantity: 2, UnitPrice: 2500},
		order.LineItem{ItemID: "b1", Name: "Guaraná", Quantity: 1, UnitPrice: 700},
	)
	return s
}

func TestBuildTicket_Content(t *testing.T) {
	s := paidSession(t)
	now := time.Date(2026, 8, 31, 18, 30, 0, 0, time.UTC)
	got := string(BuildTicket(s, ticketRestaurant, now))

	for _, want := range []string{
		"CANTINA DA PRAÇA",
		"COMANDA",
		"#" + s.OrderID,
		"31/08/2026 18:30:00",
		"+5511999999999",
		"2x Burger",
		"R$ 50.00",
		"1x Guaraná",
		"R$ 7.00",
		"TOTAL:",
		"R$ 57.00",
		"PAGO",
		"Pronto em aprox. 20 minutos",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("ticket missing %q:\n%s", want, got)
		}
	}
}

func TestBuildTicket_EscposFraming(t *testing.T) {
	got := BuildTicket(paidSession(t), ticketRestaurant, time.Now())
	if !bytes.HasPrefix(got, []byte{0x1b, 0x40}) {
		t.Fatalf("ticket does not start with ESC @ init")
	}
	if !bytes.HasSuffix(got, []byte{0x1d, 0x56, 0x42, 0x00}) {
		t.Fatalf("ticket does not end with a cut command")
	}
}

func TestPriceLine_RightAligned(t *testing.T) {
	got := priceLine("  2x Burger", "R$ 50.00")
	if len([]rune(got)) != ticketWidth {
		t.Fatalf("line width=%d, want %d: %q", len([]rune(got)), ticketWidth, got)
	}
	if !strings.HasSuffix(got, "R$ 50.00") {
		t.Fatalf("price not right-aligned: %q", got)
	}

	long := priceLine(strings.Repeat("x", 60), "R$ 1.00")
	if !strings.Contains(long, " R$ 1.00") {
		t.Fatalf("overlong label lost its separator: %q", long)
	}
}

func TestNetworkPrinter_WritesTicket(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(conn)
		received <- buf.Bytes()
	}()

	p := &Network{Addr: ln.Addr().String(), Restaurant: ticketRestaurant}
	if err := p.PrintTicket(context.Background(), paidSession(t)); err != nil {
		t.Fatalf("PrintTicket: %v", err)
	}

	select {
	case got := <-received:
		if !strings.Contains(string(got), "COMANDA") {
			t.Fatalf("printer did not receive the ticket body")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("printer never received data")
	}
}

func TestNetworkPrinter_DialFailure(t *testing.T) {
	p := &Network{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}
	if err := p.PrintTicket(context.Background(), paidSession(t)); err == nil {
		t.Fatalf("PrintTicket to a closed port did not fail")
	}
}
