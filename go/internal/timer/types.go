package timer

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/timekeep"
)

// ErrAlreadyTerminal is returned when a control action targets a timer whose
// status is already terminal. For the scheduler's expire path this is an
// expected race outcome, not a failure.
var ErrAlreadyTerminal = errors.New("timer is already in a terminal status")

// CreateTimerRequest represents the data needed to create a new timer
type CreateTimerRequest struct {
	EventID       *string `json:"event_id,omitempty"`
	Name          string  `json:"name"`
	PresenterName string  `json:"presenter_name,omitempty"`
	DurationSec   int     `json:"duration_sec"`
	TimerType     string  `json:"timer_type"`
}

// AdjustTimerRequest carries the signed adjustment applied to a timer's
// remaining time.
type AdjustTimerRequest struct {
	DeltaSec int `json:"delta_sec"`
}

// NextDeadline is the earliest pending session deadline.
type NextDeadline struct {
	TimerID  uuid.UUID
	Deadline *time.Time
}

// PausedSibling is a reconciled pause write applied to another running timer
// of the same event when one of its siblings starts.
type PausedSibling struct {
	TimerID  uuid.UUID
	EventID  *uuid.UUID
	TimeLeft int
}

// RunningSibling is a running session of an event joined with its timer's
// original duration, fetched so the pause value can be reconciled.
type RunningSibling struct {
	TimerID     uuid.UUID
	DurationSec int
	Session     models.TimerSession
}

// TimerSnapshot is a timer with its session reconciled to the wall clock.
type TimerSnapshot struct {
	Timer    *models.Timer          `json:"timer"`
	Session  *models.TimerSession   `json:"session,omitempty"`
	Status   timekeep.DisplayStatus `json:"status"`
	TimeLeft int                    `json:"time_left"`
	Display  string                 `json:"display"`
}
