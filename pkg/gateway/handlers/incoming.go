package handlers

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/balcaohq/balcao/pkg/gateway/config"
	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

const defaultGreeting = "Olá! Obrigada por ligar. O que você gostaria de pedir hoje?"

// twimlResponse is the voice webhook reply that hands the call over to the
// bidirectional speech stream.
type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Connect twimlConnect `xml:"Connect"`
}

type twimlConnect struct {
	Relay twimlConversationRelay `xml:"ConversationRelay"`
}

type twimlConversationRelay struct {
	URL                   string `xml:"url,attr"`
	WelcomeGreeting       string `xml:"welcomeGreeting,attr"`
	TTSProvider           string `xml:"ttsProvider,attr"`
	Voice                 string `xml:"voice,attr"`
	Language              string `xml:"language,attr"`
	TranscriptionProvider string `xml:"transcriptionProvider,attr"`
	SpeechModel           string `xml:"speechModel,attr"`
}

// IncomingCallHandler answers the telephony provider's voice webhook. It
// creates the call's session and returns TwiML pointing the speech stream at
// /voice/relay.
type IncomingCallHandler struct {
	Config     config.Config
	Store      order.Store
	Restaurant menu.Restaurant
	Logger     *slog.Logger
}

func (h IncomingCallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	callSid := strings.TrimSpace(r.PostFormValue("CallSid"))
	from := strings.TrimSpace(r.PostFormValue("From"))
	if callSid == "" {
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return
	}

	s := h.Store.Create(callSid, from)

	greeting := strings.TrimSpace(h.Restaurant.Greeting)
	if greeting == "" {
		greeting = defaultGreeting
	}
	// The provider speaks the greeting itself; record it so the dialogue
	// model sees the conversation the caller heard.
	s.AppendTurn("assistant", greeting)

	h.logger().Info("incoming call",
		"call_sid", callSid, "from", from, "order_id", s.OrderID)

	out, err := xml.MarshalIndent(twimlResponse{
		Connect: twimlConnect{
			Relay: twimlConversationRelay{
				URL:                   h.Config.RelayURL(),
				WelcomeGreeting:       greeting,
				TTSProvider:           h.Config.TTSProvider,
				Voice:                 h.Config.Voice,
				Language:              h.Config.Language,
				TranscriptionProvider: h.Config.TranscriptionProvider,
				SpeechModel:           h.Config.SpeechModel,
			},
		},
	}, "", "  ")
	if err != nil {
		h.logger().Error("twiml marshal failed", "call_sid", callSid, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

func (h IncomingCallHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
