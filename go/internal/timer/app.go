package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/timekeep"
)

// TimerRepository defines what the app layer needs from the repository
type TimerRepository interface {
	CreateTimer(ctx context.Context, eventID *uuid.UUID, req CreateTimerRequest) (*models.Timer, error)
	GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error)
	ListSingleTimers(ctx context.Context) ([]models.Timer, error)
	DeleteTimer(ctx context.Context, id uuid.UUID) error
	GetSession(ctx context.Context, timerID uuid.UUID) (*models.TimerSession, error)
	GetSessionsByEvent(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]models.TimerSession, error)
	GetRunningSiblings(ctx context.Context, eventID, excludeTimerID uuid.UUID) ([]RunningSibling, error)
	StartTimer(ctx context.Context, timer *models.Timer, timeLeft int, now time.Time, siblings []PausedSibling) (*models.TimerSession, error)
	PauseTimer(ctx context.Context, timer *models.Timer, timeLeft int, now time.Time) (*models.TimerSession, error)
	ResetTimer(ctx context.Context, timer *models.Timer, now time.Time) (*models.TimerSession, error)
	AdjustTimer(ctx context.Context, timer *models.Timer, delta, timeLeft int, running bool, now time.Time) (*models.TimerSession, error)
	FinishTimer(ctx context.Context, timer *models.Timer, status models.TimerStatus, timeLeft int, now time.Time) (*models.Timer, error)
	ExpireTimer(ctx context.Context, timer *models.Timer, now time.Time) (*models.Timer, error)
	FetchNextDeadline(ctx context.Context) (*NextDeadline, error)
	FetchTimersDue(ctx context.Context, limit int32) ([]uuid.UUID, error)
}

// App handles timer business logic. Every control action reconciles the
// stored snapshot against the clock before writing, so the persisted
// time_left is always exact at its updated_at.
type App struct {
	repo  TimerRepository
	clock clockwork.Clock
}

// NewApp creates a new timer App
func NewApp(repo TimerRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// CreateTimer creates a new timer with validation
func (a *App) CreateTimer(ctx context.Context, req CreateTimerRequest) (*models.Timer, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name is required")
	}
	if req.DurationSec <= 0 {
		return nil, fmt.Errorf("validation failed: duration_sec must be positive")
	}

	timerType := models.TimerType(req.TimerType)
	switch timerType {
	case models.TimerTypeSingle, models.TimerTypeEvent:
	default:
		return nil, fmt.Errorf("validation failed: invalid timer type: %s", req.TimerType)
	}

	var eventID *uuid.UUID
	if req.EventID != nil {
		id, err := uuid.Parse(*req.EventID)
		if err != nil {
			return nil, fmt.Errorf("validation failed: event_id is invalid")
		}
		eventID = &id
	}
	if timerType == models.TimerTypeEvent && eventID == nil {
		return nil, fmt.Errorf("validation failed: event timers require an event_id")
	}
	if timerType == models.TimerTypeSingle && eventID != nil {
		return nil, fmt.Errorf("validation failed: single timers cannot have an event_id")
	}

	timer, err := a.repo.CreateTimer(ctx, eventID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create timer: %w", err)
	}

	log.Info().
		Str("timer_id", timer.ID.String()).
		Str("name", timer.Name).
		Int("duration_sec", timer.DurationSec).
		Msg("created timer")
	return timer, nil
}

// GetTimer retrieves a timer by ID
func (a *App) GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}
	return timer, nil
}

// ListSingleTimers lists standalone timers, newest first
func (a *App) ListSingleTimers(ctx context.Context) ([]models.Timer, error) {
	timers, err := a.repo.ListSingleTimers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list single timers: %w", err)
	}
	return timers, nil
}

// DeleteTimer deletes a timer by ID
func (a *App) DeleteTimer(ctx context.Context, id uuid.UUID) error {
	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return fmt.Errorf("timer not found: %w", err)
	}

	if err := a.repo.DeleteTimer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}

	log.Info().Str("timer_id", timer.ID.String()).Msg("deleted timer")
	return nil
}

// Start runs a timer. The first start seeds the session from the original
// duration; a restart resumes from the stored snapshot. Any other running
// timer of the same event is paused first with its own reconciled value.
func (a *App) Start(ctx context.Context, id uuid.UUID) (*models.TimerSession, error) {
	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("timer not found: %w", err)
	}
	if timer.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}

	now := a.clock.Now()
	session, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	timeLeft := timekeep.CalculateTimeLeft(session, timer.DurationSec, now)

	var siblings []PausedSibling
	if timer.EventID != nil {
		running, err := a.repo.GetRunningSiblings(ctx, *timer.EventID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get running siblings: %w", err)
		}
		for _, sib := range running {
			siblings = append(siblings, PausedSibling{
				TimerID:  sib.TimerID,
				EventID:  timer.EventID,
				TimeLeft: timekeep.CalculateTimeLeft(&sib.Session, sib.DurationSec, now),
			})
		}
	}

	started, err := a.repo.StartTimer(ctx, timer, timeLeft, now, siblings)
	if err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	log.Info().
		Str("timer_id", id.String()).
		Int("time_left", timeLeft).
		Int("paused_siblings", len(siblings)).
		Msg("started timer")
	return started, nil
}

// Pause stops a running timer, persisting the reconciled remaining time.
func (a *App) Pause(ctx context.Context, id uuid.UUID) (*models.TimerSession, error) {
	timer, session, err := a.getTimerAndSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("timer has not been started")
	}

	now := a.clock.Now()
	timeLeft := timekeep.CalculateTimeLeft(session, timer.DurationSec, now)

	paused, err := a.repo.PauseTimer(ctx, timer, timeLeft, now)
	if err != nil {
		return nil, fmt.Errorf("failed to pause timer: %w", err)
	}

	log.Info().Str("timer_id", id.String()).Int("time_left", timeLeft).Msg("paused timer")
	return paused, nil
}

// Reset snaps the timer back to its original duration, stopped.
func (a *App) Reset(ctx context.Context, id uuid.UUID) (*models.TimerSession, error) {
	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("timer not found: %w", err)
	}
	if timer.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}

	session, err := a.repo.ResetTimer(ctx, timer, a.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to reset timer: %w", err)
	}

	log.Info().Str("timer_id", id.String()).Msg("reset timer")
	return session, nil
}

// Adjust applies a signed delta to the reconciled remaining time. A running
// timer keeps running against a fresh deadline.
func (a *App) Adjust(ctx context.Context, id uuid.UUID, deltaSec int) (*models.TimerSession, error) {
	timer, session, err := a.getTimerAndSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("timer has not been started")
	}

	now := a.clock.Now()
	timeLeft := timekeep.CalculateTimeLeft(session, timer.DurationSec, now) + deltaSec

	adjusted, err := a.repo.AdjustTimer(ctx, timer, deltaSec, timeLeft, session.IsRunning, now)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust timer: %w", err)
	}

	log.Info().
		Str("timer_id", id.String()).
		Int("delta_sec", deltaSec).
		Int("time_left", timeLeft).
		Msg("adjusted timer")
	return adjusted, nil
}

// FinishEarly marks a timer finished before its time ran out.
func (a *App) FinishEarly(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	return a.finish(ctx, id, models.TimerStatusFinishedEarly)
}

// Complete marks a timer completed.
func (a *App) Complete(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	return a.finish(ctx, id, models.TimerStatusCompleted)
}

func (a *App) finish(ctx context.Context, id uuid.UUID, status models.TimerStatus) (*models.Timer, error) {
	timer, session, err := a.getTimerAndSession(ctx, id)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	timeLeft := timekeep.CalculateTimeLeft(session, timer.DurationSec, now)

	finished, err := a.repo.FinishTimer(ctx, timer, status, timeLeft, now)
	if err != nil {
		if err == ErrAlreadyTerminal {
			return nil, err
		}
		return nil, fmt.Errorf("failed to finish timer: %w", err)
	}

	log.Info().
		Str("timer_id", id.String()).
		Str("status", string(status)).
		Int("time_left", timeLeft).
		Msg("finished timer")
	return finished, nil
}

// Expire is the scheduler's action when a running session's deadline
// passes. ErrAlreadyTerminal here means a presenter action won the race and
// there is nothing to do.
func (a *App) Expire(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("timer not found: %w", err)
	}

	expired, err := a.repo.ExpireTimer(ctx, timer, a.clock.Now())
	if err != nil {
		if err == ErrAlreadyTerminal {
			return nil, err
		}
		return nil, fmt.Errorf("failed to expire timer: %w", err)
	}

	log.Info().Str("timer_id", id.String()).Msg("timer expired into overtime")
	return expired, nil
}

// GetSnapshot returns the timer with its live remaining time and derived
// display status.
func (a *App) GetSnapshot(ctx context.Context, id uuid.UUID) (*TimerSnapshot, error) {
	timer, session, err := a.getTimerAndSession(ctx, id)
	if err != nil {
		return nil, err
	}

	c := timekeep.Classify(*timer, session, a.clock.Now())
	return &TimerSnapshot{
		Timer:    timer,
		Session:  session,
		Status:   c.Status,
		TimeLeft: c.Remaining,
		Display:  timekeep.FormatTime(c.Remaining, true),
	}, nil
}

// GetSession returns the raw persisted session snapshot, nil if never
// started.
func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*models.TimerSession, error) {
	return a.repo.GetSession(ctx, id)
}

// GetSessionsByEvent returns the persisted sessions of an event's timers.
func (a *App) GetSessionsByEvent(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]models.TimerSession, error) {
	return a.repo.GetSessionsByEvent(ctx, eventID)
}

// FetchNextDeadline exposes the scheduler query for the earliest deadline.
func (a *App) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	return a.repo.FetchNextDeadline(ctx)
}

// FetchTimersDue exposes the scheduler query for overdue sessions.
func (a *App) FetchTimersDue(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	return a.repo.FetchTimersDue(ctx, limit)
}

func (a *App) getTimerAndSession(ctx context.Context, id uuid.UUID) (*models.Timer, *models.TimerSession, error) {
	timer, err := a.repo.GetTimer(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("timer not found: %w", err)
	}
	session, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	return timer, session, nil
}
