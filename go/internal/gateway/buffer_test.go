package gateway

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func TestBufferCountsDown(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	buffers := NewBufferManager(clock)
	eventID := uuid.New()

	buffers.Start(eventID, 30)

	state := buffers.State(eventID)
	if !state.IsRunning || state.TimeLeft != 30 {
		t.Fatalf("State() = %+v, want running with 30s left", state)
	}

	clock.Advance(12 * time.Second)
	state = buffers.State(eventID)
	if !state.IsRunning || state.TimeLeft != 18 {
		t.Fatalf("State() after 12s = %+v, want running with 18s left", state)
	}
}

func TestBufferExpiresToEmptyState(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	buffers := NewBufferManager(clock)
	eventID := uuid.New()

	buffers.Start(eventID, 10)
	clock.Advance(10 * time.Second)

	state := buffers.State(eventID)
	if state.IsRunning || state.TimeLeft != 0 {
		t.Fatalf("State() at expiry = %+v, want empty", state)
	}

	// Expired entries are dropped, not kept at zero.
	clock.Advance(time.Hour)
	if state := buffers.State(eventID); state.IsRunning {
		t.Fatalf("State() long after expiry = %+v, want empty", state)
	}
}

func TestBufferStopClears(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	buffers := NewBufferManager(clock)
	eventID := uuid.New()

	buffers.Start(eventID, 60)
	buffers.Stop(eventID)

	if state := buffers.State(eventID); state.IsRunning {
		t.Fatalf("State() after Stop = %+v, want empty", state)
	}
}

func TestBufferRestartRebasesCountdown(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	buffers := NewBufferManager(clock)
	eventID := uuid.New()

	buffers.Start(eventID, 30)
	clock.Advance(20 * time.Second)
	buffers.Start(eventID, 30)

	if state := buffers.State(eventID); state.TimeLeft != 30 {
		t.Fatalf("State() after restart = %+v, want 30s left", state)
	}
}

func TestBufferIgnoresNonPositiveDuration(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	buffers := NewBufferManager(clock)
	eventID := uuid.New()

	buffers.Start(eventID, 0)
	if state := buffers.State(eventID); state.IsRunning {
		t.Fatalf("State() = %+v, want empty for zero duration", state)
	}

	buffers.Start(eventID, -5)
	if state := buffers.State(eventID); state.IsRunning {
		t.Fatalf("State() = %+v, want empty for negative duration", state)
	}
}

func TestBufferTracksEventsIndependently(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	buffers := NewBufferManager(clock)
	first := uuid.New()
	second := uuid.New()

	buffers.Start(first, 10)
	buffers.Start(second, 60)
	clock.Advance(15 * time.Second)

	if state := buffers.State(first); state.IsRunning {
		t.Fatalf("first event State() = %+v, want expired", state)
	}
	if state := buffers.State(second); !state.IsRunning || state.TimeLeft != 45 {
		t.Fatalf("second event State() = %+v, want 45s left", state)
	}
}
