package oracle

import (
	"testing"

	"google.golang.org/genai"
)

func TestParseDecision_AddItem(t *testing.T) {
	d := ParseDecision(`{
	  "speech": "Anotei dois burgers!",
	  "action": "add_item",
	  "items": [{"id": "x1", "name": "Burger", "quantity": 2, "unit_price": 25.00}]
	}`)
	if d.Action != ActionAddItem {
		t.Fatalf("action=%q, want %q", d.Action, ActionAddItem)
	}
	if d.Speech != "Anotei dois burgers!" {
		t.Fatalf("speech=%q", d.Speech)
	}
	if len(d.Items) != 1 {
		t.Fatalf("items=%d, want 1", len(d.Items))
	}
	it := d.Items[0]
	if it.ID != "x1" || it.Quantity != 2 || it.UnitPrice != 2500 {
		t.Fatalf("item=%+v, want x1 qty=2 price=2500", it)
	}
}

func TestParseDecision_FencedJSON(t *testing.T) {
	d := ParseDecision("```json\n{\"speech\": \"oi\", \"action\": \"confirm_order\"}\n```")
	if d.Action != ActionConfirmOrder || d.Speech != "oi" {
		t.Fatalf("decision=%+v", d)
	}
}

func TestParseDecision_MalformedFallsBackToNone(t *testing.T) {
	raw := "Claro! Vou anotar seu pedido."
	d := ParseDecision(raw)
	if d.Action != ActionNone {
		t.Fatalf("action=%q, want none", d.Action)
	}
	if d.Speech != raw {
		t.Fatalf("speech=%q, want the raw model text", d.Speech)
	}
}

func TestParseDecision_UnknownActionIsNone(t *testing.T) {
	d := ParseDecision(`{"speech": "hmm", "action": "cancel_order"}`)
	if d.Action != ActionNone || d.Speech != "hmm" {
		t.Fatalf("decision=%+v, want none/hmm", d)
	}
}

func TestParseDecision_AddItemWithoutItemsIsNone(t *testing.T) {
	d := ParseDecision(`{"speech": "ok", "action": "add_item"}`)
	if d.Action != ActionNone {
		t.Fatalf("action=%q, want none when items are missing", d.Action)
	}
}

func TestParseDecision_DefaultsQuantityToOne(t *testing.T) {
	d := ParseDecision(`{"speech": "ok", "action": "add_item", "items": [{"id": "x1", "name": "Burger", "unit_price": 25.9}]}`)
	if len(d.Items) != 1 || d.Items[0].Quantity != 1 {
		t.Fatalf("items=%+v, want quantity defaulted to 1", d.Items)
	}
	if d.Items[0].UnitPrice != 2590 {
		t.Fatalf("unit price=%d, want 2590", d.Items[0].UnitPrice)
	}
}

func TestParseDecision_OtherActions(t *testing.T) {
	cases := map[string]Action{
		`{"speech": "s", "action": "none"}`:         ActionNone,
		`{"speech": "s", "action": "send_payment"}`: ActionSendPayment,
		`{"speech": "s", "action": "end_call"}`:     ActionEndCall,
		`{"speech": "s"}`:                           ActionNone,
	}
	for raw, want := range cases {
		if d := ParseDecision(raw); d.Action != want {
			t.Fatalf("ParseDecision(%s).Action=%q, want %q", raw, d.Action, want)
		}
	}
}

func TestContentRole(t *testing.T) {
	cases := map[string]genai.Role{
		"assistant": genai.RoleModel,
		"user":      genai.RoleUser,
		"":          genai.RoleUser,
	}
	for turnRole, want := range cases {
		if got := contentRole(turnRole); got != want {
			t.Fatalf("contentRole(%q)=%q, want %q", turnRole, got, want)
		}
	}
}
