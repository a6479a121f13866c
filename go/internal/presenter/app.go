package presenter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/models"
)

// PresenterRepository defines what the app layer needs from the repository
type PresenterRepository interface {
	CreateSlot(ctx context.Context, eventID, timerID uuid.UUID, presenterName, accessCode string) (*models.PresenterSlot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*models.PresenterSlot, error)
	GetSlotByAccessCode(ctx context.Context, accessCode string) (*models.PresenterSlot, error)
	ListEventSlots(ctx context.Context, eventID uuid.UUID) ([]models.PresenterSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	ClaimSlot(ctx context.Context, accessCode string, userID uuid.UUID) (*models.PresenterSlot, error)
}

// App handles presenter slot business logic
type App struct {
	repo PresenterRepository
}

// NewApp creates a new presenter App
func NewApp(repo PresenterRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateSlot creates a slot with a fresh opaque access code.
func (a *App) CreateSlot(ctx context.Context, req CreateSlotRequest) (*models.PresenterSlot, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: event_id is invalid")
	}
	timerID, err := uuid.Parse(req.TimerID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: timer_id is invalid")
	}

	slot, err := a.repo.CreateSlot(ctx, eventID, timerID, req.PresenterName, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	log.Info().
		Str("slot_id", slot.ID.String()).
		Str("event_id", slot.EventID.String()).
		Str("timer_id", slot.TimerID.String()).
		Msg("created presenter slot")
	return slot, nil
}

// GetSlotByAccessCode resolves an access code to its slot
func (a *App) GetSlotByAccessCode(ctx context.Context, accessCode string) (*models.PresenterSlot, error) {
	if accessCode == "" {
		return nil, fmt.Errorf("validation failed: access code is required")
	}
	slot, err := a.repo.GetSlotByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot by access code: %w", err)
	}
	return slot, nil
}

// ListEventSlots lists an event's slots in creation order
func (a *App) ListEventSlots(ctx context.Context, eventID uuid.UUID) ([]models.PresenterSlot, error) {
	slots, err := a.repo.ListEventSlots(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event slots: %w", err)
	}
	return slots, nil
}

// DeleteSlot deletes a slot by ID
func (a *App) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if _, err := a.repo.GetSlot(ctx, id); err != nil {
		return fmt.Errorf("slot not found: %w", err)
	}
	if err := a.repo.DeleteSlot(ctx, id); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// Claim attempts to claim the slot behind the access code for the given
// user. When the conditional update loses the race, the current owner is
// fetched and returned together with ErrSlotClaimed so callers can show who
// holds the slot.
func (a *App) Claim(ctx context.Context, req ClaimSlotRequest) (*models.PresenterSlot, error) {
	if req.AccessCode == "" {
		return nil, fmt.Errorf("validation failed: access code is required")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: user_id is invalid")
	}

	slot, err := a.repo.ClaimSlot(ctx, req.AccessCode, userID)
	if err != nil {
		if errors.Is(err, ErrSlotClaimed) {
			owner, fetchErr := a.repo.GetSlotByAccessCode(ctx, req.AccessCode)
			if fetchErr != nil {
				return nil, fmt.Errorf("failed to get claimed slot: %w", fetchErr)
			}
			log.Info().
				Str("access_code", req.AccessCode).
				Str("user_id", userID.String()).
				Msg("slot claim lost race, already claimed")
			return owner, ErrSlotClaimed
		}
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}

	log.Info().
		Str("slot_id", slot.ID.String()).
		Str("user_id", userID.String()).
		Msg("claimed presenter slot")
	return slot, nil
}
