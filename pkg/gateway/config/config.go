// Package config loads the gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// PublicBaseURL is the https base the telephony provider reaches us on.
	// The voice stream URL is derived from it.
	PublicBaseURL string

	// Voice stream attributes handed to the telephony provider.
	TTSProvider           string
	Voice                 string
	Language              string
	TranscriptionProvider string
	SpeechModel           string

	// Dialogue model.
	GeminiAPIKey string
	GeminiModel  string

	// Payments.
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string
	StripeSuccessURL    string

	// SMS.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Kitchen printer. Empty means log-only.
	PrinterAddr string

	// Menu catalog. DatabaseURL takes precedence over MenuPath when set.
	MenuPath    string
	DatabaseURL string

	// Call timing.
	EndGrace       time.Duration
	PaymentPoll    time.Duration
	PaymentCeiling time.Duration
	ConfirmGrace   time.Duration

	WSWriteTimeout time.Duration

	MaxWebhookBodyBytes int64

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                  envOr("BALCAO_ADDR", ":8080"),
		PublicBaseURL:         strings.TrimRight(envOr("BALCAO_PUBLIC_BASE_URL", ""), "/"),
		TTSProvider:           envOr("BALCAO_TTS_PROVIDER", "ElevenLabs"),
		Voice:                 envOr("BALCAO_TTS_VOICE", "pFZP5JQG7iQjIQuC4Bku"),
		Language:              envOr("BALCAO_LANGUAGE", "pt-BR"),
		TranscriptionProvider: envOr("BALCAO_TRANSCRIPTION_PROVIDER", "deepgram"),
		SpeechModel:           envOr("BALCAO_SPEECH_MODEL", "nova-2"),
		GeminiAPIKey:          envOr("GEMINI_API_KEY", ""),
		GeminiModel:           envOr("BALCAO_GEMINI_MODEL", "gemini-2.0-flash"),
		StripeSecretKey:       envOr("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   envOr("STRIPE_WEBHOOK_SECRET", ""),
		StripeCurrency:        strings.ToLower(envOr("BALCAO_STRIPE_CURRENCY", "brl")),
		StripeSuccessURL:      envOr("BALCAO_STRIPE_SUCCESS_URL", ""),
		TwilioAccountSID:      envOr("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:       envOr("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:      envOr("TWILIO_PHONE_NUMBER", ""),
		PrinterAddr:           envOr("BALCAO_PRINTER_ADDR", ""),
		MenuPath:              envOr("BALCAO_MENU_PATH", "menu.json"),
		DatabaseURL:           envOr("DATABASE_URL", ""),
		EndGrace:              envDurationOr("BALCAO_END_GRACE", 3*time.Second),
		PaymentPoll:           envDurationOr("BALCAO_PAYMENT_POLL", 5*time.Second),
		PaymentCeiling:        envDurationOr("BALCAO_PAYMENT_CEILING", 5*time.Minute),
		ConfirmGrace:          envDurationOr("BALCAO_CONFIRM_GRACE", 5*time.Second),
		WSWriteTimeout:        envDurationOr("BALCAO_WS_WRITE_TIMEOUT", 5*time.Second),
		MaxWebhookBodyBytes:   envInt64Or("BALCAO_MAX_WEBHOOK_BODY_BYTES", 1<<20), // 1 MiB
		CORSAllowedOrigins:    make(map[string]struct{}),
		ReadHeaderTimeout:     envDurationOr("BALCAO_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:           envDurationOr("BALCAO_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod:   envDurationOr("BALCAO_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("BALCAO_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.PublicBaseURL == "" {
		return Config{}, fmt.Errorf("BALCAO_PUBLIC_BASE_URL must be set")
	}
	if !strings.HasPrefix(cfg.PublicBaseURL, "https://") && !strings.HasPrefix(cfg.PublicBaseURL, "http://") {
		return Config{}, fmt.Errorf("BALCAO_PUBLIC_BASE_URL must start with http:// or https://")
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY must be set")
	}
	if cfg.StripeWebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set")
	}
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		return Config{}, fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER must be set")
	}
	if cfg.DatabaseURL == "" && cfg.MenuPath == "" {
		return Config{}, fmt.Errorf("one of DATABASE_URL or BALCAO_MENU_PATH must be set")
	}
	if cfg.EndGrace <= 0 {
		return Config{}, fmt.Errorf("BALCAO_END_GRACE must be > 0")
	}
	if cfg.PaymentPoll <= 0 {
		return Config{}, fmt.Errorf("BALCAO_PAYMENT_POLL must be > 0")
	}
	if cfg.PaymentCeiling < cfg.PaymentPoll {
		return Config{}, fmt.Errorf("BALCAO_PAYMENT_CEILING must be >= BALCAO_PAYMENT_POLL")
	}
	if cfg.ConfirmGrace <= 0 {
		return Config{}, fmt.Errorf("BALCAO_CONFIRM_GRACE must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("BALCAO_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.MaxWebhookBodyBytes <= 0 {
		return Config{}, fmt.Errorf("BALCAO_MAX_WEBHOOK_BODY_BYTES must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("BALCAO_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("BALCAO_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("BALCAO_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	// Checkout needs somewhere to land after payment; our own thank-you page
	// is the default.
	if cfg.StripeSuccessURL == "" {
		cfg.StripeSuccessURL = cfg.PublicBaseURL + "/obrigado"
	}

	return cfg, nil
}

// RelayURL is the websocket address the voice stream connects back on.
func (c Config) RelayURL() string {
	base := c.PublicBaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/voice/relay"
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
