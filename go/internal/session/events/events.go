package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of session event
type EventType string

const (
	EventTypeRoundStarted   EventType = "RoundStarted"
	EventTypeRoundResumed   EventType = "RoundResumed"
	EventTypeRoundCompleted EventType = "RoundCompleted"
	EventTypeAnswerScored   EventType = "AnswerScored"
	EventTypeTimeExpired    EventType = "TimeExpired"
	EventTypeCardAdvanced   EventType = "CardAdvanced"
	EventTypeTimerSynced    EventType = "TimerSynced"
	EventTypeSessionError   EventType = "SessionError"
	EventTypePromptSignIn   EventType = "PromptSignIn"
)

// Event is the envelope for all session events
type Event struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New wraps a payload into an event envelope.
func New(sessionID string, eventType EventType, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}
