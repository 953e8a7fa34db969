// Package relay drives one live voice call: it decodes ConversationRelay
// stream events, runs the conversation turn by turn against the dialogue
// oracle, and emits spoken replies back over the websocket. It also owns the
// background watcher that closes the call once a payment lands.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound frame types sent by ConversationRelay.
const (
	frameSetup     = "setup"
	framePrompt    = "prompt"
	frameInterrupt = "interrupt"
	frameError     = "error"
)

// Setup binds the stream to a call.
type Setup struct {
	CallID string
}

// Prompt carries one transcribed caller utterance.
type Prompt struct {
	VoiceText string
}

// Interrupt reports the caller speaking over playback.
type Interrupt struct{}

// ErrorFrame reports a transport-side error. Observability only.
type ErrorFrame struct {
	Description string
}

// DecodeError is a malformed or unknown inbound frame.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return e.Message
}

// DecodeFrame parses one inbound stream message into a typed frame.
func DecodeFrame(data []byte) (any, error) {
	var raw struct {
		Type        string `json:"type"`
		CallSID     string `json:"callSid"`
		VoicePrompt string `json:"voicePrompt"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Message: fmt.Sprintf("invalid frame: %v", err)}
	}
	switch raw.Type {
	case frameSetup:
		if strings.TrimSpace(raw.CallSID) == "" {
			return nil, &DecodeError{Message: "setup frame missing callSid"}
		}
		return Setup{CallID: raw.CallSID}, nil
	case framePrompt:
		return Prompt{VoiceText: raw.VoicePrompt}, nil
	case frameInterrupt:
		return Interrupt{}, nil
	case frameError:
		return ErrorFrame{Description: raw.Description}, nil
	default:
		return nil, &DecodeError{Message: fmt.Sprintf("unknown frame type %q", raw.Type)}
	}
}

// textFrame is one outbound spoken token. last marks the end of the turn so
// TTS knows the reply is complete.
type textFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Last  bool   `json:"last"`
}

// endFrame terminates the stream from our side.
type endFrame struct {
	Type string `json:"type"`
}

// EncodeText builds an outbound text frame.
func EncodeText(token string, last bool) []byte {
	data, _ := json.Marshal(textFrame{Type: "text", Token: token, Last: last})
	return data
}

// EncodeEnd builds the stream-termination frame.
func EncodeEnd() []byte {
	data, _ := json.Marshal(endFrame{Type: "end"})
	return data
}
