package timekeep

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
)

func intPtr(v int) *int { return &v }

func TestCalculateTimeLeftNoSession(t *testing.T) {
	now := time.Now()

	if got := CalculateTimeLeft(nil, 300, now); got != 300 {
		t.Fatalf("CalculateTimeLeft(nil, 300) = %d, want 300", got)
	}
	if got := CalculateTimeLeft(nil, 0, now); got != 0 {
		t.Fatalf("CalculateTimeLeft(nil, 0) = %d, want 0", got)
	}
}

func TestCalculateTimeLeftRunning(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timeLeft *int
		elapsed  time.Duration
		want     int
	}{
		{name: "no time elapsed", timeLeft: intPtr(120), elapsed: 0, want: 120},
		{name: "partial elapse", timeLeft: intPtr(120), elapsed: 45 * time.Second, want: 75},
		{name: "sub-second truncates down", timeLeft: intPtr(120), elapsed: 45*time.Second + 900*time.Millisecond, want: 75},
		{name: "reaches zero", timeLeft: intPtr(60), elapsed: 60 * time.Second, want: 0},
		{name: "overtime stays negative", timeLeft: intPtr(60), elapsed: 125 * time.Second, want: -65},
		{name: "nil snapshot falls back to duration", timeLeft: nil, elapsed: 30 * time.Second, want: 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &models.TimerSession{
				TimerID:   uuid.New(),
				TimeLeft:  tt.timeLeft,
				IsRunning: true,
				UpdatedAt: base,
			}

			got := CalculateTimeLeft(session, 300, base.Add(tt.elapsed))
			if got != tt.want {
				t.Fatalf("CalculateTimeLeft = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateTimeLeftPausedIgnoresWallClock(t *testing.T) {
	session := &models.TimerSession{
		TimerID:   uuid.New(),
		TimeLeft:  intPtr(88),
		IsRunning: false,
		UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t1 := session.UpdatedAt.Add(time.Second)
	t2 := session.UpdatedAt.Add(48 * time.Hour)

	if got := CalculateTimeLeft(session, 300, t1); got != 88 {
		t.Fatalf("paused at t1 = %d, want 88", got)
	}
	if got := CalculateTimeLeft(session, 300, t2); got != 88 {
		t.Fatalf("paused at t2 = %d, want 88", got)
	}
}

func TestCalculateTimeLeftPausedNilSnapshotFallsBack(t *testing.T) {
	session := &models.TimerSession{
		TimerID:   uuid.New(),
		IsRunning: false,
		UpdatedAt: time.Now(),
	}

	if got := CalculateTimeLeft(session, 240, time.Now()); got != 240 {
		t.Fatalf("CalculateTimeLeft = %d, want 240", got)
	}
}

func TestCalculateTimeLeftMonotonicWhileRunning(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &models.TimerSession{
		TimerID:   uuid.New(),
		TimeLeft:  intPtr(600),
		IsRunning: true,
		UpdatedAt: base,
	}

	prev := CalculateTimeLeft(session, 600, base)
	for step := time.Second; step <= 700*time.Second; step += 37 * time.Second {
		got := CalculateTimeLeft(session, 600, base.Add(step))
		if got > prev {
			t.Fatalf("remaining increased from %d to %d at +%v", prev, got, step)
		}
		prev = got
	}
}

func TestCalculateTimeLeftRecomputesFromSnapshot(t *testing.T) {
	// Calling at arbitrary polling frequency must not accumulate error: the
	// value at one instant is independent of how often it was asked before.
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &models.TimerSession{
		TimerID:   uuid.New(),
		TimeLeft:  intPtr(300),
		IsRunning: true,
		UpdatedAt: base,
	}

	at := base.Add(90 * time.Second)
	direct := CalculateTimeLeft(session, 300, at)

	for i := 0; i < 50; i++ {
		CalculateTimeLeft(session, 300, base.Add(time.Duration(i)*time.Second))
	}
	if got := CalculateTimeLeft(session, 300, at); got != direct {
		t.Fatalf("polled value %d differs from direct value %d", got, direct)
	}
}
