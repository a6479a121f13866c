package timer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/api"
	"github.com/synccue/synccue/go/internal/models"
)

// TimerApp defines what the service layer needs from the timer application
type TimerApp interface {
	CreateTimer(ctx context.Context, req CreateTimerRequest) (*models.Timer, error)
	GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error)
	ListSingleTimers(ctx context.Context) ([]models.Timer, error)
	DeleteTimer(ctx context.Context, id uuid.UUID) error
	Start(ctx context.Context, id uuid.UUID) (*models.TimerSession, error)
	Pause(ctx context.Context, id uuid.UUID) (*models.TimerSession, error)
	Reset(ctx context.Context, id uuid.UUID) (*models.TimerSession, error)
	Adjust(ctx context.Context, id uuid.UUID, deltaSec int) (*models.TimerSession, error)
	FinishEarly(ctx context.Context, id uuid.UUID) (*models.Timer, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Timer, error)
	GetSnapshot(ctx context.Context, id uuid.UUID) (*TimerSnapshot, error)
}

// Service exposes the timer app over HTTP JSON.
type Service struct {
	app TimerApp
}

func NewService(app TimerApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers timer routes on the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/timers", s.handleTimers)
	mux.HandleFunc("/api/timers/", s.handleTimerSubtree)
}

func (s *Service) handleTimers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req CreateTimerRequest
		if err := api.ReadJSON(r, &req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		timer, err := s.app.CreateTimer(r.Context(), req)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusCreated, timer)
	case http.MethodGet:
		timers, err := s.app.ListSingleTimers(r.Context())
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, timers)
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleTimerSubtree dispatches /api/timers/{id} and the control actions
// beneath it.
func (s *Service) handleTimerSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/timers/")
	idStr, action, _ := strings.Cut(rest, "/")

	id, err := uuid.Parse(idStr)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid timer id")
		return
	}

	if action == "" {
		s.handleTimerByID(w, r, id)
		return
	}

	if action == "state" {
		if r.Method != http.MethodGet {
			api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		snapshot, err := s.app.GetSnapshot(r.Context(), id)
		if err != nil {
			api.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, snapshot)
		return
	}

	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch action {
	case "start":
		s.writeSessionResult(w)(s.app.Start(r.Context(), id))
	case "pause":
		s.writeSessionResult(w)(s.app.Pause(r.Context(), id))
	case "reset":
		s.writeSessionResult(w)(s.app.Reset(r.Context(), id))
	case "adjust":
		var req AdjustTimerRequest
		if err := api.ReadJSON(r, &req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s.writeSessionResult(w)(s.app.Adjust(r.Context(), id, req.DeltaSec))
	case "finish":
		s.writeTimerResult(w)(s.app.FinishEarly(r.Context(), id))
	case "complete":
		s.writeTimerResult(w)(s.app.Complete(r.Context(), id))
	default:
		api.WriteError(w, http.StatusNotFound, "not found")
	}
}

func (s *Service) handleTimerByID(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		timer, err := s.app.GetTimer(r.Context(), id)
		if err != nil {
			api.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, timer)
	case http.MethodDelete:
		if err := s.app.DeleteTimer(r.Context(), id); err != nil {
			api.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Service) writeSessionResult(w http.ResponseWriter) func(*models.TimerSession, error) {
	return func(session *models.TimerSession, err error) {
		if err != nil {
			writeActionError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, session)
	}
}

func (s *Service) writeTimerResult(w http.ResponseWriter) func(*models.Timer, error) {
	return func(timer *models.Timer, err error) {
		if err != nil {
			writeActionError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, timer)
	}
}

func writeActionError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrAlreadyTerminal) {
		api.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	api.WriteError(w, http.StatusBadRequest, err.Error())
}
