package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/balcaohq/balcao/pkg/menu"
)

var testRestaurant = menu.Restaurant{
	Name:            "Cantina da Praça",
	Address:         "Rua das Flores, 123",
	PrepTimeMinutes: 20,
}

func TestLinkBody(t *testing.T) {
	body := linkBody(testRestaurant, "A1B2C3D4", "https://pay.example/cs_1", 5000)
	for _, want := range []string{"Cantina da Praça", "Pedido #A1B2C3D4", "R$ 50.00", "https://pay.example/cs_1"} {
		if !strings.Contains(body, want) {
			t.Fatalf("link body missing %q:\n%s", want, body)
		}
	}
}

func TestConfirmationBody(t *testing.T) {
	body := confirmationBody(testRestaurant, "A1B2C3D4", 5000)
	for _, want := range []string{"Pagamento confirmado", "Pedido #A1B2C3D4", "R$ 50.00", "20 min", "Rua das Flores, 123"} {
		if !strings.Contains(body, want) {
			t.Fatalf("confirmation body missing %q:\n%s", want, body)
		}
	}

	noAddress := confirmationBody(menu.Restaurant{Name: "X", PrepTimeMinutes: 10}, "Z", 100)
	if !strings.Contains(noAddress, "nosso restaurante") {
		t.Fatalf("confirmation body without address: %s", noAddress)
	}
}

func TestClient_SendLink(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "SM123"}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "+5511000000000",
		BaseURL:    srv.URL,
		Restaurant: testRestaurant,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.SendLink(context.Background(), "+5511999999999", "A1B2C3D4", "https://pay.example/cs_1", 5000); err != nil {
		t.Fatalf("SendLink: %v", err)
	}
	if gotPath != "/Accounts/AC123/Messages.json" {
		t.Fatalf("path=%q", gotPath)
	}
	if gotUser != "AC123" {
		t.Fatalf("basic auth user=%q", gotUser)
	}
	if gotTo != "+5511999999999" || gotFrom != "+5511000000000" {
		t.Fatalf("to=%q from=%q", gotTo, gotFrom)
	}
	if !strings.Contains(gotBody, "https://pay.example/cs_1") {
		t.Fatalf("body missing link: %q", gotBody)
	}
}

func TestClient_SendSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": 21211, "message": "invalid 'To' number", "status": 400}`))
	}))
	defer srv.Close()

	c, err := New(Config{AccountSID: "AC123", AuthToken: "token", From: "+55", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.SendConfirmation(context.Background(), "bogus", "Z", 100)
	if err == nil || !strings.Contains(err.Error(), "21211") {
		t.Fatalf("err=%v, want twilio error 21211", err)
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New(Config{AuthToken: "t", From: "+55"}); err == nil {
		t.Fatalf("New accepted missing account sid")
	}
	if _, err := New(Config{AccountSID: "AC", From: "+55"}); err == nil {
		t.Fatalf("New accepted missing auth token")
	}
	if _, err := New(Config{AccountSID: "AC", AuthToken: "t"}); err == nil {
		t.Fatalf("New accepted missing sending number")
	}
}
