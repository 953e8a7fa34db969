package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/balcaohq/balcao/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK         bool     `json:"ok"`
		MenuSource string   `json:"menu_source"`
		Issues     []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)

	if h.Config.PublicBaseURL == "" {
		issues = append(issues, "public base url not configured")
	} else if !strings.HasPrefix(h.Config.PublicBaseURL, "https://") && !strings.HasPrefix(h.Config.PublicBaseURL, "http://") {
		issues = append(issues, "public base url must be http(s)")
	}
	if h.Config.GeminiAPIKey == "" {
		issues = append(issues, "gemini api key not configured")
	}
	if h.Config.StripeSecretKey == "" || h.Config.StripeWebhookSecret == "" {
		issues = append(issues, "stripe keys not configured")
	}
	if h.Config.TwilioAccountSID == "" || h.Config.TwilioAuthToken == "" || h.Config.TwilioFromNumber == "" {
		issues = append(issues, "twilio credentials not configured")
	}
	if h.Config.PaymentPoll <= 0 || h.Config.PaymentCeiling < h.Config.PaymentPoll {
		issues = append(issues, "payment wait timing is invalid")
	}
	if h.Config.WSWriteTimeout <= 0 {
		issues = append(issues, "ws write timeout must be > 0")
	}

	menuSource := "file"
	if h.Config.DatabaseURL != "" {
		menuSource = "postgres"
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readyResp{
		OK:         ok,
		MenuSource: menuSource,
		Issues:     issues,
	})
}
