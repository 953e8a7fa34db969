// Package oracle turns conversation history into the next spoken reply plus
// a structured action. The live model is an implementation detail behind the
// Oracle interface; the orchestrator only sees Decisions.
package oracle

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/balcaohq/balcao/pkg/order"
)

// Action is the tagged variant discriminator of a Decision.
type Action string

const (
	ActionNone         Action = "none"
	ActionAddItem      Action = "add_item"
	ActionConfirmOrder Action = "confirm_order"
	ActionSendPayment  Action = "send_payment"
	ActionEndCall      Action = "end_call"
)

// ItemRequest is one item the model wants added to the order.
type ItemRequest struct {
	ID        string
	Name      string
	Quantity  int
	UnitPrice int64 // centavos
}

// Decision is the validated structured reply for one turn.
type Decision struct {
	Speech string
	Action Action
	Items  []ItemRequest
}

// Request carries everything the model needs for one turn.
type Request struct {
	History      []order.Turn
	OrderSummary string
}

// Oracle produces the next Decision for a call.
type Oracle interface {
	Reply(ctx context.Context, req Request) (Decision, error)
}

// rawDecision is the wire shape the model is asked to emit.
type rawDecision struct {
	Speech string `json:"speech"`
	Action string `json:"action"`
	Items  []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	} `json:"items"`
}

// ParseDecision validates model output at the boundary. Malformed output is
// recoverable: the fallback is action none carrying whatever text the model
// produced, so the call keeps going instead of crashing the stream.
func ParseDecision(raw string) Decision {
	text := stripFences(strings.TrimSpace(raw))

	var rd rawDecision
	if err := json.Unmarshal([]byte(text), &rd); err != nil {
		return Decision{Speech: strings.TrimSpace(raw), Action: ActionNone}
	}

	d := Decision{Speech: strings.TrimSpace(rd.Speech)}
	switch Action(strings.TrimSpace(rd.Action)) {
	case ActionAddItem:
		d.Action = ActionAddItem
	case ActionConfirmOrder:
		d.Action = ActionConfirmOrder
	case ActionSendPayment:
		d.Action = ActionSendPayment
	case ActionEndCall:
		d.Action = ActionEndCall
	default:
		d.Action = ActionNone
	}

	if d.Action == ActionAddItem {
		for _, it := range rd.Items {
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			d.Items = append(d.Items, ItemRequest{
				ID:        strings.TrimSpace(it.ID),
				Name:      strings.TrimSpace(it.Name),
				Quantity:  qty,
				UnitPrice: int64(math.Round(it.UnitPrice * 100)),
			})
		}
		if len(d.Items) == 0 {
			d.Action = ActionNone
		}
	}
	return d
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite the JSON response mime type.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
