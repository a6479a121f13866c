package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/timer"
)

type stubTimerControl struct {
	mu        sync.Mutex
	deadlines []*timer.NextDeadline
	due       [][]uuid.UUID
	expireErr error
	expired   chan uuid.UUID
}

func (s *stubTimerControl) FetchNextDeadline(ctx context.Context) (*timer.NextDeadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.deadlines) == 0 {
		return nil, nil
	}
	nd := s.deadlines[0]
	s.deadlines = s.deadlines[1:]
	return nd, nil
}

func (s *stubTimerControl) FetchTimersDue(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.due) == 0 {
		return nil, nil
	}
	batch := s.due[0]
	s.due = s.due[1:]
	return batch, nil
}

func (s *stubTimerControl) Expire(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	if s.expireErr != nil {
		return nil, s.expireErr
	}
	if s.expired != nil {
		s.expired <- id
	}
	return &models.Timer{ID: id, Status: models.TimerStatusExpired}, nil
}

func TestWakeCoalesces(t *testing.T) {
	orch := NewOrchestrator(&stubTimerControl{}, clockwork.NewRealClock(), 10)

	orch.Wake()
	orch.Wake()
	orch.Wake()

	if got := len(orch.wakeCh); got != 1 {
		t.Fatalf("pending wakes = %d, want 1", got)
	}
}

func TestHandleTimeoutToleratesLostRace(t *testing.T) {
	control := &stubTimerControl{expireErr: timer.ErrAlreadyTerminal}
	orch := NewOrchestrator(control, clockwork.NewRealClock(), 10)

	if err := orch.handleTimeout(context.Background(), uuid.New()); err != nil {
		t.Fatalf("handleTimeout() error = %v, want nil for terminal timer", err)
	}
}

func TestHandleTimeoutPropagatesErrors(t *testing.T) {
	control := &stubTimerControl{expireErr: errors.New("db down")}
	orch := NewOrchestrator(control, clockwork.NewRealClock(), 10)

	if err := orch.handleTimeout(context.Background(), uuid.New()); err == nil {
		t.Fatal("handleTimeout() error = nil, want propagated error")
	}
}

func TestSchedulerExpiresDueTimer(t *testing.T) {
	timerID := uuid.New()
	past := time.Now().Add(-time.Second)
	control := &stubTimerControl{
		deadlines: []*timer.NextDeadline{{TimerID: timerID, Deadline: &past}},
		due:       [][]uuid.UUID{{timerID}},
		expired:   make(chan uuid.UUID, 1),
	}
	orch := NewOrchestrator(control, clockwork.NewRealClock(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- orch.RunScheduler(ctx) }()

	select {
	case got := <-control.expired:
		if got != timerID {
			t.Errorf("expired timer = %s, want %s", got, timerID)
		}
	case <-time.After(2 * time.Second):
		t.Error("scheduler did not expire the due timer")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunScheduler() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not shut down")
	}
}
