package models

import (
	"time"

	"github.com/google/uuid"
)

// TimerStatus defines the lifecycle status of a timer. Terminal statuses are
// set by explicit control actions and never revert.
type TimerStatus string

const (
	TimerStatusActive        TimerStatus = "active"
	TimerStatusFinishedEarly TimerStatus = "finished_early"
	TimerStatusCompleted     TimerStatus = "completed"
	TimerStatusExpired       TimerStatus = "expired"
)

// Terminal reports whether the status is one-directional.
func (s TimerStatus) Terminal() bool {
	switch s {
	case TimerStatusFinishedEarly, TimerStatusCompleted, TimerStatusExpired:
		return true
	}
	return false
}

// TimerType distinguishes standalone timers from event-attached ones.
type TimerType string

const (
	TimerTypeSingle TimerType = "single"
	TimerTypeEvent  TimerType = "event"
)

// Timer represents a presenter's or standalone allocation of countdown time.
// DurationSec is the originally allocated time and does not change once an
// event starts, absent an explicit admin adjustment.
type Timer struct {
	ID            uuid.UUID   `json:"id"`
	EventID       *uuid.UUID  `json:"event_id,omitempty"`
	Name          string      `json:"name"`
	PresenterName string      `json:"presenter_name,omitempty"`
	DurationSec   int         `json:"duration_sec"`
	Status        TimerStatus `json:"status"`
	TimerType     TimerType   `json:"timer_type"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
