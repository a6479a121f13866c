package models

import (
	"time"

	"github.com/google/uuid"
)

// TimerSession is the persisted snapshot of a timer's remaining time. At most
// one exists per timer; it is created on the first start action.
//
// TimeLeft is a point-in-time snapshot keyed to UpdatedAt, not a live value.
// While IsRunning is true, the live remaining time is TimeLeft minus the wall
// clock elapsed since UpdatedAt; while paused, TimeLeft is exact.
type TimerSession struct {
	TimerID      uuid.UUID  `json:"timer_id"`
	TimeLeft     *int       `json:"time_left,omitempty"`
	IsRunning    bool       `json:"is_running"`
	UpdatedAt    time.Time  `json:"updated_at"`
	NextDeadline *time.Time `json:"next_deadline,omitempty"`
}

// BufferState is the transient inter-presenter gap countdown for an active
// event. It is never persisted.
type BufferState struct {
	IsRunning bool `json:"is_running"`
	TimeLeft  int  `json:"time_left"`
}
