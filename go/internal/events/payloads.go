package events

import (
	"time"
)

// Event payload types shared between the control actions, the outbox relay
// and the gateway.

// TimerStartedPayload is the payload for a TimerStarted event.
type TimerStartedPayload struct {
	TimerID     string     `json:"timer_id"`
	EventID     *string    `json:"event_id,omitempty"`
	TimeLeftSec int        `json:"time_left_sec"`
	StartedAt   time.Time  `json:"started_at"`
	DeadlineAt  *time.Time `json:"deadline_at,omitempty"`
}

// TimerPausedPayload is the payload for a TimerPaused event.
type TimerPausedPayload struct {
	TimerID     string    `json:"timer_id"`
	EventID     *string   `json:"event_id,omitempty"`
	TimeLeftSec int       `json:"time_left_sec"`
	PausedAt    time.Time `json:"paused_at"`
}

// TimerResetPayload is the payload for a TimerReset event.
type TimerResetPayload struct {
	TimerID     string    `json:"timer_id"`
	EventID     *string   `json:"event_id,omitempty"`
	TimeLeftSec int       `json:"time_left_sec"`
	ResetAt     time.Time `json:"reset_at"`
}

// TimerAdjustedPayload is the payload for a TimerAdjusted event.
type TimerAdjustedPayload struct {
	TimerID     string    `json:"timer_id"`
	EventID     *string   `json:"event_id,omitempty"`
	DeltaSec    int       `json:"delta_sec"`
	TimeLeftSec int       `json:"time_left_sec"`
	AdjustedAt  time.Time `json:"adjusted_at"`
}

// TimerFinishedPayload is the payload for a TimerFinished event, emitted for
// both finish-early and complete actions.
type TimerFinishedPayload struct {
	TimerID    string    `json:"timer_id"`
	EventID    *string   `json:"event_id,omitempty"`
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
}

// TimerExpiredPayload is the payload for a TimerExpired event: the running
// session reached zero and the presenter is now in overtime.
type TimerExpiredPayload struct {
	TimerID   string    `json:"timer_id"`
	EventID   *string   `json:"event_id,omitempty"`
	ExpiredAt time.Time `json:"expired_at"`
}

// EventStartedPayload is the payload for an EventStarted event.
type EventStartedPayload struct {
	EventID    string    `json:"event_id"`
	Name       string    `json:"name"`
	TimerCount int       `json:"timer_count"`
	StartedAt  time.Time `json:"started_at"`
}

// EventCompletedPayload is the payload for an EventCompleted event.
type EventCompletedPayload struct {
	EventID     string    `json:"event_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// SlotClaimedPayload is the payload for a SlotClaimed event.
type SlotClaimedPayload struct {
	SlotID    string    `json:"slot_id"`
	EventID   string    `json:"event_id"`
	TimerID   string    `json:"timer_id"`
	ClaimedBy string    `json:"claimed_by"`
	ClaimedAt time.Time `json:"claimed_at"`
}
