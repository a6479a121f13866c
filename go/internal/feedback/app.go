package feedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/models"
)

// FeedbackRepository defines what the app layer needs from the repository
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, eventID uuid.UUID, slotID *uuid.UUID, rating int, comment string) (*models.Feedback, error)
	ListFeedbackByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error)
	GetRatingSummary(ctx context.Context, eventID uuid.UUID) (int, float64, error)
	GetOvertimeByTimer(ctx context.Context, eventID uuid.UUID) ([]TimerOvertime, error)
}

// App handles feedback business logic
type App struct {
	repo FeedbackRepository
}

// NewApp creates a new feedback App
func NewApp(repo FeedbackRepository) *App {
	return &App{
		repo: repo,
	}
}

// Submit records a feedback response for an event
func (a *App) Submit(ctx context.Context, req SubmitFeedbackRequest) (*models.Feedback, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: event_id is invalid")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("validation failed: rating must be between 1 and 5")
	}

	var slotID *uuid.UUID
	if req.SlotID != nil {
		id, err := uuid.Parse(*req.SlotID)
		if err != nil {
			return nil, fmt.Errorf("validation failed: slot_id is invalid")
		}
		slotID = &id
	}

	fb, err := a.repo.CreateFeedback(ctx, eventID, slotID, req.Rating, req.Comment)
	if err != nil {
		return nil, fmt.Errorf("failed to submit feedback: %w", err)
	}

	log.Info().
		Str("event_id", eventID.String()).
		Int("rating", req.Rating).
		Msg("submitted feedback")
	return fb, nil
}

// ListByEvent returns an event's feedback, newest first
func (a *App) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	fbs, err := a.repo.ListFeedbackByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return fbs, nil
}

// Analytics aggregates feedback ratings with per-timer overtime totals.
func (a *App) Analytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error) {
	count, avg, err := a.repo.GetRatingSummary(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating summary: %w", err)
	}

	overtime, err := a.repo.GetOvertimeByTimer(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overtime totals: %w", err)
	}

	return &EventAnalytics{
		EventID:       eventID.String(),
		ResponseCount: count,
		AverageRating: avg,
		Overtime:      overtime,
	}, nil
}
