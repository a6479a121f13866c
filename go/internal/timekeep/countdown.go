package timekeep

import (
	"time"

	"github.com/synccue/synccue/go/internal/models"
)

// CalculateTimeLeft derives the live remaining seconds for a timer from its
// persisted session snapshot and the current wall-clock instant.
//
// The session row is only written on discrete control actions (start, pause,
// reset, adjust), so the live value must be re-derived from
// "last snapshot + elapsed wall time" on every call rather than counted down
// locally. The function is pure and never accumulates error across calls.
//
// The result may be negative: negative remaining time is overtime and is
// passed through unclamped so display and overtime logging keep both sign
// and magnitude.
func CalculateTimeLeft(session *models.TimerSession, originalDuration int, now time.Time) int {
	if session == nil {
		// Never started: show the full allocated duration.
		return originalDuration
	}

	if session.IsRunning && !session.UpdatedAt.IsZero() {
		snapshot := originalDuration
		if session.TimeLeft != nil {
			snapshot = *session.TimeLeft
		}
		elapsed := int(now.Sub(session.UpdatedAt) / time.Second)
		return snapshot - elapsed
	}

	// Paused, or a session with no trustworthy update instant: the snapshot
	// is exact.
	if session.TimeLeft != nil {
		return *session.TimeLeft
	}
	return originalDuration
}
