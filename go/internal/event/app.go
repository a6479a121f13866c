package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/models"
)

// EventRepository defines what the app layer needs from the repository
type EventRepository interface {
	CreateEvent(ctx context.Context, ownerID uuid.UUID, req CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	StartEvent(ctx context.Context, id uuid.UUID, timerCount int) (*models.Event, error)
	CompleteEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error)
}

// App handles event business logic
type App struct {
	repo EventRepository
}

// NewApp creates a new event App
func NewApp(repo EventRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateEvent creates a new event in draft status
func (a *App) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name is required")
	}
	if req.BufferSec < 0 {
		return nil, fmt.Errorf("validation failed: buffer_sec cannot be negative")
	}
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: owner_id is invalid")
	}

	event, err := a.repo.CreateEvent(ctx, ownerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Info().Str("event_id", event.ID.String()).Str("name", event.Name).Msg("created event")
	return event, nil
}

// GetEvent retrieves an event by ID
func (a *App) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// GetEventsByOwner retrieves events by owner ID, newest first
func (a *App) GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error) {
	events, err := a.repo.GetEventsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by owner: %w", err)
	}
	return events, nil
}

// UpdateEvent updates an event's name and buffer configuration
func (a *App) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name cannot be empty")
	}
	if req.BufferSec < 0 {
		return nil, fmt.Errorf("validation failed: buffer_sec cannot be negative")
	}

	if _, err := a.repo.GetEvent(ctx, id); err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}

	event, err := a.repo.UpdateEvent(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	log.Info().Str("event_id", event.ID.String()).Msg("updated event")
	return event, nil
}

// DeleteEvent deletes an event by ID
func (a *App) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("event not found: %w", err)
	}

	if err := a.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	log.Info().Str("event_id", event.ID.String()).Str("name", event.Name).Msg("deleted event")
	return nil
}

// StartEvent transitions a draft event to active. The transition and the
// EventStarted record commit atomically.
func (a *App) StartEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	timers, err := a.repo.ListEventTimers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list event timers: %w", err)
	}

	event, err := a.repo.StartEvent(ctx, id, len(timers))
	if err != nil {
		return nil, fmt.Errorf("failed to start event: %w", err)
	}

	log.Info().
		Str("event_id", event.ID.String()).
		Int("timer_count", len(timers)).
		Msg("started event")
	return event, nil
}

// CompleteEvent transitions an active event to completed
func (a *App) CompleteEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := a.repo.CompleteEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete event: %w", err)
	}

	log.Info().Str("event_id", event.ID.String()).Msg("completed event")
	return event, nil
}

// ListEventTimers returns the event's timers in presentation order
func (a *App) ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error) {
	timers, err := a.repo.ListEventTimers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event timers: %w", err)
	}
	return timers, nil
}
