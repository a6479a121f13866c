package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type names stored in the outbox and used as JetStream subject
// suffixes.
const (
	EventTypeTimerStarted   = "TimerStarted"
	EventTypeTimerPaused    = "TimerPaused"
	EventTypeTimerReset     = "TimerReset"
	EventTypeTimerAdjusted  = "TimerAdjusted"
	EventTypeTimerFinished  = "TimerFinished"
	EventTypeTimerExpired   = "TimerExpired"
	EventTypeEventStarted   = "EventStarted"
	EventTypeEventCompleted = "EventCompleted"
	EventTypeSlotClaimed    = "SlotClaimed"
)

// OutboxEvent represents an outbox row for the application layer.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	SubjectID uuid.UUID       `json:"subject_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// EventPublisher delivers outbox events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}
