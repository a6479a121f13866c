package timekeep

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
)

func testTimer(status models.TimerStatus, durationSec int) models.Timer {
	return models.Timer{
		ID:          uuid.New(),
		Name:        "keynote",
		DurationSec: durationSec,
		Status:      status,
		TimerType:   models.TimerTypeEvent,
	}
}

func TestClassifyPrecedence(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		timer   models.Timer
		session *models.TimerSession
		want    DisplayStatus
	}{
		{
			// Terminal flag beats a session row that has not caught up with a
			// just-issued finish action.
			name:  "finished_early wins over running session",
			timer: testTimer(models.TimerStatusFinishedEarly, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(120),
				IsRunning: true,
				UpdatedAt: now.Add(-10 * time.Second),
			},
			want: StatusCompleted,
		},
		{
			name:  "completed wins over paused session",
			timer: testTimer(models.TimerStatusCompleted, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(40),
				IsRunning: false,
				UpdatedAt: now,
			},
			want: StatusCompleted,
		},
		{
			name:  "running session",
			timer: testTimer(models.TimerStatusActive, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(100),
				IsRunning: true,
				UpdatedAt: now.Add(-20 * time.Second),
			},
			want: StatusRunning,
		},
		{
			name:  "running past allocation is overtime",
			timer: testTimer(models.TimerStatusActive, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(30),
				IsRunning: true,
				UpdatedAt: now.Add(-95 * time.Second),
			},
			want: StatusOvertime,
		},
		{
			// Zero remaining without a terminal status flag still displays as
			// finished.
			name:  "stopped at zero without terminal status",
			timer: testTimer(models.TimerStatusActive, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(0),
				IsRunning: false,
				UpdatedAt: now,
			},
			want: StatusFinished,
		},
		{
			name:  "stopped below zero without terminal status",
			timer: testTimer(models.TimerStatusActive, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(-12),
				IsRunning: false,
				UpdatedAt: now,
			},
			want: StatusFinished,
		},
		{
			name:  "started and stopped early is paused",
			timer: testTimer(models.TimerStatusActive, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(120),
				IsRunning: false,
				UpdatedAt: now,
			},
			want: StatusPaused,
		},
		{
			name:    "no session is not started",
			timer:   testTimer(models.TimerStatusActive, 300),
			session: nil,
			want:    StatusNotStarted,
		},
		{
			name:  "untouched session at full duration is not started",
			timer: testTimer(models.TimerStatusActive, 300),
			session: &models.TimerSession{
				TimeLeft:  intPtr(300),
				IsRunning: false,
				UpdatedAt: now,
			},
			want: StatusNotStarted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.timer, tt.session, now)
			if got.Status != tt.want {
				t.Fatalf("Classify status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestClassifyCarriesLiveRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	timer := testTimer(models.TimerStatusActive, 300)
	session := &models.TimerSession{
		TimeLeft:  intPtr(60),
		IsRunning: true,
		UpdatedAt: now.Add(-125 * time.Second),
	}

	got := Classify(timer, session, now)
	if got.Status != StatusOvertime {
		t.Fatalf("status = %q, want %q", got.Status, StatusOvertime)
	}
	if got.Remaining != -65 {
		t.Fatalf("remaining = %d, want -65", got.Remaining)
	}
	if s := FormatTime(got.Remaining, true); s != "-01:05" {
		t.Fatalf("formatted remaining = %q, want %q", s, "-01:05")
	}
}
