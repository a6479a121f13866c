package timekeep

import (
	"time"

	"github.com/synccue/synccue/go/internal/models"
)

// DisplayStatus is the derived presentation status of a timer. It drives UI
// coloring and iconography only; it is never persisted.
type DisplayStatus string

const (
	StatusCompleted  DisplayStatus = "completed"
	StatusRunning    DisplayStatus = "running"
	StatusOvertime   DisplayStatus = "overtime"
	StatusFinished   DisplayStatus = "finished"
	StatusPaused     DisplayStatus = "paused"
	StatusNotStarted DisplayStatus = "not_started"
)

// Classification pairs the derived status with the live remaining seconds at
// the instant of classification.
type Classification struct {
	Status    DisplayStatus `json:"status"`
	Remaining int           `json:"remaining_sec"`
}

// Classify derives the display status for a timer. First match wins:
//
//  1. an explicit finished_early or completed status beats everything,
//     including a session row that still reports running; the session may
//     not have caught up with a just-issued finish action;
//  2. a running session is Running, or Overtime once the live remaining
//     value goes negative;
//  3. a stopped session at or below zero displays as Finished even though
//     the timer row carries no terminal status;
//  4. a stopped session below the full duration was started and paused;
//  5. anything else has not started.
func Classify(timer models.Timer, session *models.TimerSession, now time.Time) Classification {
	remaining := CalculateTimeLeft(session, timer.DurationSec, now)

	switch {
	case timer.Status == models.TimerStatusFinishedEarly || timer.Status == models.TimerStatusCompleted:
		return Classification{Status: StatusCompleted, Remaining: remaining}
	case session != nil && session.IsRunning:
		if remaining < 0 {
			return Classification{Status: StatusOvertime, Remaining: remaining}
		}
		return Classification{Status: StatusRunning, Remaining: remaining}
	case session != nil && session.TimeLeft != nil && *session.TimeLeft <= 0:
		return Classification{Status: StatusFinished, Remaining: remaining}
	case session != nil && session.TimeLeft != nil && *session.TimeLeft < timer.DurationSec:
		return Classification{Status: StatusPaused, Remaining: remaining}
	default:
		return Classification{Status: StatusNotStarted, Remaining: remaining}
	}
}
