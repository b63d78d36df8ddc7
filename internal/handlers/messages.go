// internal/handlers/messages.go
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Inbound action names.
const (
	ActionCreateRoom      = "createRoom"
	ActionHostJoin        = "hostJoin"
	ActionPlayerJoin      = "playerJoin"
	ActionStartQuiz       = "startQuiz"
	ActionSubmitAnswer    = "submitAnswer"
	ActionNextQuestion    = "nextQuestion"
	ActionShowLeaderboard = "showLeaderboard"
	ActionHostSetPrefs    = "hostSetPrefs"
)

// EventInvalidMessage tells a client its last frame could not be understood.
const EventInvalidMessage = "invalidMessage"

// inboundMessage is the envelope every client frame uses.
type inboundMessage struct {
	Type    string          `json:"type" validate:"required,oneof=createRoom hostJoin playerJoin startQuiz submitAnswer nextQuestion showLeaderboard hostSetPrefs"`
	Payload json.RawMessage `json:"payload"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type playerJoinRequest struct {
	Code   string      `json:"code"`
	Name   string      `json:"name"`
	Avatar interface{} `json:"avatar"`
}

type answerRequest struct {
	Code   string      `json:"code"`
	Answer interface{} `json:"answer"`
}

// nextQuestionRequest may name the question the host is looking at, so a click
// that arrives after the timer already advanced is dropped.
type nextQuestionRequest struct {
	Code string `json:"code"`
	Idx  *int   `json:"idx" validate:"omitempty,gte=0"`
}

type prefsRequest struct {
	Code            string      `json:"code"`
	Timer           interface{} `json:"timer"`
	AutoLeaderboard interface{} `json:"autoLeaderboard"`
}

type invalidMessagePayload struct {
	Message string `json:"message"`
}

func decodeEnvelope(data []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("invalid json: %w", err)
	}
	if err := validate.Struct(msg); err != nil {
		return msg, fmt.Errorf("unsupported message: %w", err)
	}
	return msg, nil
}

// decodePayload fills v from the envelope payload. A missing payload leaves v zeroed.
func decodePayload(msg inboundMessage, v interface{}) error {
	if len(msg.Payload) > 0 && string(msg.Payload) != "null" {
		if err := json.Unmarshal(msg.Payload, v); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return nil
}
