package timekeep

import (
	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
)

// RunPhase is the mutually exclusive control-panel state of a running event.
type RunPhase string

const (
	PhasePresenter RunPhase = "presenter"
	PhaseBuffer    RunPhase = "buffer"
	PhaseFinal     RunPhase = "final"
)

// RunState is the derived state of an event run: which phase the control
// panel is in, which timer is on the clock, which is up next, and which are
// already done.
type RunState struct {
	Phase          RunPhase
	CurrentRunning *models.Timer
	NextUp         *models.Timer
	Completed      []models.Timer
}

// timerCompleted reports whether a timer counts toward the finished event: it
// carries a terminal status, or its session is stopped exactly at zero.
func timerCompleted(t models.Timer, session *models.TimerSession) bool {
	if t.Status.Terminal() {
		return true
	}
	if session == nil {
		return false
	}
	return !session.IsRunning && session.TimeLeft != nil && *session.TimeLeft == 0
}

// DeriveRunState reduces an event's ordered timers, their sessions and the
// transient buffer state to exactly one run phase.
//
// A running buffer takes priority over all timer state. The final phase
// requires a non-empty timer list with every timer completed. Everything
// else is the presenter phase, covering both "one timer on the clock" and
// "nothing running yet".
//
// timers must already be in creation order. The backend does not guarantee
// at most one running session per event, so if several sessions report
// running the first timer in list order wins, deterministically, rather
// than treating it as an error.
func DeriveRunState(timers []models.Timer, sessions map[uuid.UUID]models.TimerSession, buffer models.BufferState) RunState {
	state := RunState{Phase: PhasePresenter}

	sessionFor := func(t models.Timer) *models.TimerSession {
		if s, ok := sessions[t.ID]; ok {
			return &s
		}
		return nil
	}

	allCompleted := len(timers) > 0
	for i := range timers {
		t := timers[i]
		session := sessionFor(t)

		if timerCompleted(t, session) {
			state.Completed = append(state.Completed, t)
		} else {
			allCompleted = false
		}

		if state.CurrentRunning == nil && session != nil && session.IsRunning {
			state.CurrentRunning = &timers[i]
		}
	}

	for i := range timers {
		t := timers[i]
		session := sessionFor(t)
		if timerCompleted(t, session) {
			continue
		}
		if session != nil && session.IsRunning {
			continue
		}
		if state.CurrentRunning != nil && t.ID == state.CurrentRunning.ID {
			continue
		}
		state.NextUp = &timers[i]
		break
	}

	switch {
	case buffer.IsRunning:
		state.Phase = PhaseBuffer
	case allCompleted:
		state.Phase = PhaseFinal
	}

	return state
}
