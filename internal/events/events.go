package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TopicSessions is the bus topic for session lifecycle events.
const TopicSessions = "study.sessions"

// EventType names a session lifecycle transition.
type EventType string

// Session lifecycle events.
const (
	SessionStarted  EventType = "session.started"
	SessionPaused   EventType = "session.paused"
	SessionResumed  EventType = "session.resumed"
	SessionFinished EventType = "session.finished"
	SessionDeleted  EventType = "session.deleted"
)

// SessionEvent records one transition of a study session.
type SessionEvent struct {
	ID         uuid.UUID `json:"event_id"`
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id"`
	SessionID  int64     `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSessionEvent creates an event with a fresh ID.
func NewSessionEvent(eventType EventType, userID, sessionID int64, occurredAt time.Time) *SessionEvent {
	return &SessionEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		SessionID:  sessionID,
		OccurredAt: occurredAt.UTC(),
	}
}

// EventHandler reacts to session events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *SessionEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *SessionEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *SessionEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes session events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *SessionEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *SessionEvent) error { return nil }
