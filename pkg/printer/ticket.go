// Package printer renders and prints the kitchen ticket for a paid order.
// Output is raw ESC/POS, which every common thermal printer in a restaurant
// speaks (Epson TM-T20 and generic clones).
package printer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

const ticketWidth = 42

// ESC/POS command sequences.
var (
	escInit     = []byte{0x1b, 0x40}             // initialize
	escAlignL   = []byte{0x1b, 0x61, 0x00}       // left
	escAlignC   = []byte{0x1b, 0x61, 0x01}       // center
	escBoldOn   = []byte{0x1b, 0x45, 0x01}       // emphasis on
	escBoldOff  = []byte{0x1b, 0x45, 0x00}       // emphasis off
	escCut      = []byte{0x1d, 0x56, 0x42, 0x00} // partial cut with feed
	escFeedFour = []byte{0x1b, 0x64, 0x04}       // feed 4 lines
)

// BuildTicket renders the comanda for a session snapshot as ESC/POS bytes.
func BuildTicket(s *order.Session, r menu.Restaurant, now time.Time) []byte {
	var b bytes.Buffer
	b.Write(escInit)

	b.Write(escAlignC)
	b.Write(escBoldOn)
	line(&b, strings.ToUpper(r.Name))
	b.Write(escBoldOff)
	line(&b, "")
	line(&b, "═══ COMANDA ═══")
	line(&b, "")

	b.Write(escAlignL)
	b.Write(escBoldOn)
	line(&b, "Pedido N°:")
	b.Write(escBoldOff)
	line(&b, fmt.Sprintf("  #%s", s.OrderID))
	line(&b, "")
	line(&b, fmt.Sprintf("Data/Hora: %s", now.Format("02/01/2006 15:04:05")))
	line(&b, fmt.Sprintf("Telefone:     %s", s.Caller))
	line(&b, "")
	line(&b, divider("-"))

	b.Write(escBoldOn)
	line(&b, "ITENS DO PEDIDO:")
	b.Write(escBoldOff)
	line(&b, "")
	for _, it := range s.Items() {
		line(&b, priceLine(fmt.Sprintf("  %dx %s", it.Quantity, it.Name), order.FormatBRL(it.Total())))
	}

	line(&b, "")
	line(&b, divider("-"))
	b.Write(escBoldOn)
	line(&b, priceLine("TOTAL:", order.FormatBRL(s.Total())))
	b.Write(escBoldOff)

	line(&b, "")
	line(&b, divider("-"))
	b.Write(escAlignC)
	b.Write(escBoldOn)
	line(&b, "✓ PAGO")
	b.Write(escBoldOff)
	line(&b, "")
	line(&b, fmt.Sprintf("Pronto em aprox. %d minutos", r.PrepTimeMinutes))
	line(&b, "Retire no balcão")
	line(&b, "")
	line(&b, divider("═"))
	line(&b, "Obrigado!")
	line(&b, divider("═"))

	b.Write(escFeedFour)
	b.Write(escCut)
	return b.Bytes()
}

func line(b *bytes.Buffer, text string) {
	b.WriteString(text)
	b.WriteByte('\n')
}

func divider(ch string) string {
	return strings.Repeat(ch, ticketWidth)
}

// priceLine right-aligns the price against the column width.
func priceLine(label, price string) string {
	pad := ticketWidth - len([]rune(label)) - len([]rune(price))
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + price
}
