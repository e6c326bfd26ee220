package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	SessionStarted  EventType = "session.started"
	SessionEnded    EventType = "session.ended"
	TurnCompleted   EventType = "turn.completed"
	StateTransition EventType = "state.transition"
	EventCreated    EventType = "event.created"
	EventModified   EventType = "event.modified"
	EventCancelled  EventType = "event.cancelled"
	CalendarError   EventType = "calendar.error"
	LinkRequired    EventType = "account.link_required"
	SystemError     EventType = "error"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SessionStartedData is the payload for session.started events.
type SessionStartedData struct {
	UserID  string `json:"user_id"`
	Channel string `json:"channel"` // "alexa" or "telegram"
}

// SessionEndedData is the payload for session.ended events.
type SessionEndedData struct {
	Reason string `json:"reason"`
}

// TurnCompletedData is the payload for turn.completed events.
type TurnCompletedData struct {
	IntentName  string `json:"intent_name"`
	FromState   string `json:"from_state"`
	ToState     string `json:"to_state"`
	LinkAccount bool   `json:"link_account,omitempty"`
	EndSession  bool   `json:"end_session,omitempty"`
}

// StateTransitionData is the payload for state.transition events.
type StateTransitionData struct {
	FromState    string `json:"from_state"`
	ToState      string `json:"to_state"`
	TriggerEvent string `json:"trigger_event"`
}

// CalendarEventData is the payload for event.created/modified/cancelled.
type CalendarEventData struct {
	EventID string `json:"event_id"`
	Subject string `json:"subject"`
}

// CalendarErrorData is the payload for calendar.error events.
type CalendarErrorData struct {
	Operation string `json:"operation"`
	Error     string `json:"error"`
}
