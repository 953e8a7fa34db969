package order

import (
	"fmt"
	"strings"
)

// LineItem is one merged row of the ledger. Prices are in centavos.
type LineItem struct {
	ItemID    string
	Name      string
	Quantity  int
	UnitPrice int64
}

// Total returns quantity * unit price for this line.
func (li LineItem) Total() int64 {
	return int64(li.Quantity) * li.UnitPrice
}

// Ledger accumulates the line items of one call. Items merge by id: a repeat
// add increments the quantity of the existing row, keeping the first-seen
// name and price. There is no remove operation.
//
// The ledger has no internal locking; the owning Session serializes access.
type Ledger struct {
	lines []LineItem
}

// Add merges an item into the ledger.
func (l *Ledger) Add(itemID, name string, quantity int, unitPrice int64) {
	if quantity <= 0 {
		return
	}
	for i := range l.lines {
		if l.lines[i].ItemID == itemID {
			l.lines[i].Quantity += quantity
			return
		}
	}
	l.lines = append(l.lines, LineItem{
		ItemID:    itemID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
}

// Lines returns a copy of the current rows in insertion order.
func (l *Ledger) Lines() []LineItem {
	out := make([]LineItem, len(l.lines))
	copy(out, l.lines)
	return out
}

// Total recomputes the order total on every call so it can never go stale.
func (l *Ledger) Total() int64 {
	var sum int64
	for _, li := range l.lines {
		sum += li.Total()
	}
	return sum
}

// Empty reports whether nothing has been ordered yet.
func (l *Ledger) Empty() bool {
	return len(l.lines) == 0
}

// Summary renders the order the way the assistant reads it back, one line
// per item plus the running total.
func (l *Ledger) Summary() string {
	if l.Empty() {
		return "Nenhum item no pedido."
	}
	var b strings.Builder
	for _, li := range l.lines {
		fmt.Fprintf(&b, "  • %dx %s — %s\n", li.Quantity, li.Name, FormatBRL(li.Total()))
	}
	fmt.Fprintf(&b, "\n  Total: %s", FormatBRL(l.Total()))
	return b.String()
}

// FormatBRL renders centavos as a spoken-friendly amount, e.g. "R$ 25.90".
func FormatBRL(cents int64) string {
	neg := ""
	if cents < 0 {
		neg = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sR$ %d.%02d", neg, cents/100, cents%100)
}
