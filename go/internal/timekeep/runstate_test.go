package timekeep

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
)

func eventTimer(name string, status models.TimerStatus, createdAt time.Time) models.Timer {
	return models.Timer{
		ID:          uuid.New(),
		Name:        name,
		DurationSec: 300,
		Status:      status,
		TimerType:   models.TimerTypeEvent,
		CreatedAt:   createdAt,
	}
}

func runningSession(id uuid.UUID) models.TimerSession {
	left := 100
	return models.TimerSession{TimerID: id, TimeLeft: &left, IsRunning: true, UpdatedAt: time.Now()}
}

func stoppedSession(id uuid.UUID, timeLeft int) models.TimerSession {
	return models.TimerSession{TimerID: id, TimeLeft: &timeLeft, IsRunning: false, UpdatedAt: time.Now()}
}

func TestDeriveRunStatePresenterPointers(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := eventTimer("a", models.TimerStatusFinishedEarly, base)
	b := eventTimer("b", models.TimerStatusActive, base.Add(time.Minute))
	c := eventTimer("c", models.TimerStatusActive, base.Add(2*time.Minute))

	timers := []models.Timer{a, b, c}
	sessions := map[uuid.UUID]models.TimerSession{
		b.ID: runningSession(b.ID),
	}

	state := DeriveRunState(timers, sessions, models.BufferState{})

	if state.Phase != PhasePresenter {
		t.Fatalf("phase = %q, want %q", state.Phase, PhasePresenter)
	}
	if state.CurrentRunning == nil || state.CurrentRunning.ID != b.ID {
		t.Fatalf("current running = %+v, want timer b", state.CurrentRunning)
	}
	if state.NextUp == nil || state.NextUp.ID != c.ID {
		t.Fatalf("next up = %+v, want timer c", state.NextUp)
	}
	if len(state.Completed) != 1 || state.Completed[0].ID != a.ID {
		t.Fatalf("completed = %+v, want [a]", state.Completed)
	}
}

func TestDeriveRunStateBufferPriority(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := eventTimer("a", models.TimerStatusFinishedEarly, base)
	b := eventTimer("b", models.TimerStatusActive, base.Add(time.Minute))

	timers := []models.Timer{a, b}
	sessions := map[uuid.UUID]models.TimerSession{
		b.ID: runningSession(b.ID),
	}

	state := DeriveRunState(timers, sessions, models.BufferState{IsRunning: true, TimeLeft: 30})

	if state.Phase != PhaseBuffer {
		t.Fatalf("phase = %q, want %q", state.Phase, PhaseBuffer)
	}
	// Pointer derivations stay intact underneath the buffer.
	if state.CurrentRunning == nil || state.CurrentRunning.ID != b.ID {
		t.Fatalf("current running = %+v, want timer b", state.CurrentRunning)
	}
}

func TestDeriveRunStateAllCompleted(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := eventTimer("a", models.TimerStatusCompleted, base)
	b := eventTimer("b", models.TimerStatusActive, base.Add(time.Minute))

	timers := []models.Timer{a, b}
	sessions := map[uuid.UUID]models.TimerSession{
		b.ID: stoppedSession(b.ID, 0),
	}

	state := DeriveRunState(timers, sessions, models.BufferState{})

	if state.Phase != PhaseFinal {
		t.Fatalf("phase = %q, want %q", state.Phase, PhaseFinal)
	}
	if len(state.Completed) != 2 {
		t.Fatalf("completed count = %d, want 2", len(state.Completed))
	}
	if state.CurrentRunning != nil || state.NextUp != nil {
		t.Fatalf("expected no current/next timer, got %+v / %+v", state.CurrentRunning, state.NextUp)
	}
}

func TestDeriveRunStateEmptyIsNeverFinal(t *testing.T) {
	state := DeriveRunState(nil, nil, models.BufferState{})
	if state.Phase != PhasePresenter {
		t.Fatalf("phase = %q, want %q", state.Phase, PhasePresenter)
	}
}

func TestDeriveRunStateStoppedAtPausedValueNotCompleted(t *testing.T) {
	// The completed predicate requires exactly zero; a paused timer with time
	// left is still pending.
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := eventTimer("a", models.TimerStatusActive, base)

	sessions := map[uuid.UUID]models.TimerSession{
		a.ID: stoppedSession(a.ID, 25),
	}

	state := DeriveRunState([]models.Timer{a}, sessions, models.BufferState{})
	if state.Phase != PhasePresenter {
		t.Fatalf("phase = %q, want %q", state.Phase, PhasePresenter)
	}
	if state.NextUp == nil || state.NextUp.ID != a.ID {
		t.Fatalf("next up = %+v, want timer a", state.NextUp)
	}
}

func TestDeriveRunStateRunningTieBreakByListOrder(t *testing.T) {
	// Two sessions reporting running at once is a data inconsistency; the
	// first timer in creation order wins deterministically.
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := eventTimer("a", models.TimerStatusActive, base)
	b := eventTimer("b", models.TimerStatusActive, base.Add(time.Minute))

	sessions := map[uuid.UUID]models.TimerSession{
		a.ID: runningSession(a.ID),
		b.ID: runningSession(b.ID),
	}

	state := DeriveRunState([]models.Timer{a, b}, sessions, models.BufferState{})
	if state.CurrentRunning == nil || state.CurrentRunning.ID != a.ID {
		t.Fatalf("current running = %+v, want timer a", state.CurrentRunning)
	}
	if state.NextUp != nil {
		t.Fatalf("next up = %+v, want none (b has a running session)", state.NextUp)
	}
}
