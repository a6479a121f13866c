package feedback

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/api"
	"github.com/synccue/synccue/go/internal/models"
)

// FeedbackApp defines what the service layer needs from the feedback
// application
type FeedbackApp interface {
	Submit(ctx context.Context, req SubmitFeedbackRequest) (*models.Feedback, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error)
	Analytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error)
}

// Service exposes the feedback app over HTTP JSON.
type Service struct {
	app FeedbackApp
}

func NewService(app FeedbackApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers feedback routes on the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/feedback", s.handleSubmit)
	mux.HandleFunc("/api/feedback/", s.handleFeedbackSubtree)
}

func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SubmitFeedbackRequest
	if err := api.ReadJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fb, err := s.app.Submit(r.Context(), req)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusCreated, fb)
}

// handleFeedbackSubtree dispatches /api/feedback/{event_id} and
// /api/feedback/{event_id}/analytics.
func (s *Service) handleFeedbackSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/feedback/")
	idStr, sub, _ := strings.Cut(rest, "/")

	eventID, err := uuid.Parse(idStr)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	switch sub {
	case "":
		fbs, err := s.app.ListByEvent(r.Context(), eventID)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, fbs)
	case "analytics":
		analytics, err := s.app.Analytics(r.Context(), eventID)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, analytics)
	default:
		api.WriteError(w, http.StatusNotFound, "not found")
	}
}
