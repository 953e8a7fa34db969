package printer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

// Printer prints a kitchen ticket. Printing is best effort; callers log
// failures and move on.
type Printer interface {
	PrintTicket(ctx context.Context, s *order.Session) error
}

// Network prints over raw TCP, the usual hookup for restaurant thermal
// printers (port 9100).
type Network struct {
	Addr        string // host:port
	Restaurant  menu.Restaurant
	DialTimeout time.Duration
	Now         func() time.Time // defaults to time.Now
}

// PrintTicket renders the comanda and streams it to the printer.
func (n *Network) PrintTicket(ctx context.Context, s *order.Session) error {
	timeout := n.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.Addr)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", n.Addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	if _, err := conn.Write(BuildTicket(s, n.Restaurant, n.now())); err != nil {
		return fmt.Errorf("printer: write ticket for order %s: %w", s.OrderID, err)
	}
	return nil
}

func (n *Network) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// Dummy logs the rendered ticket instead of printing. Used in development
// and when no printer is configured.
type Dummy struct {
	Restaurant menu.Restaurant
	Logger     *slog.Logger
}

// PrintTicket logs the ticket body.
func (d *Dummy) PrintTicket(ctx context.Context, s *order.Session) error {
	if d.Logger != nil {
		d.Logger.Info("dummy printer output",
			"order_id", s.OrderID,
			"ticket", string(BuildTicket(s, d.Restaurant, time.Now())),
		)
	}
	return nil
}
