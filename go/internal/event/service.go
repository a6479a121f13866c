package event

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/api"
	"github.com/synccue/synccue/go/internal/models"
)

// EventApp defines what the service layer needs from the event application
type EventApp interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	StartEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CompleteEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error)
}

// Service exposes the event app over HTTP JSON. The state handler, when set,
// takes over the /state and /buffer sub-resources of an event.
type Service struct {
	app   EventApp
	state http.Handler
}

func NewService(app EventApp, state http.Handler) *Service {
	return &Service{app: app, state: state}
}

// RegisterRoutes registers event routes on the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/events/", s.handleEventSubtree)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req CreateEventRequest
		if err := api.ReadJSON(r, &req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		event, err := s.app.CreateEvent(r.Context(), req)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusCreated, event)
	case http.MethodGet:
		ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid owner_id")
			return
		}
		events, err := s.app.GetEventsByOwner(r.Context(), ownerID)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, events)
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleEventSubtree dispatches /api/events/{id} and its sub-resources:
// /start, /complete and /timers, with /state and /buffer handed to the
// mounted state handler.
func (s *Service) handleEventSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/events/")
	idStr, action, _ := strings.Cut(rest, "/")

	id, err := uuid.Parse(idStr)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if s.state != nil && (action == "state" || strings.HasPrefix(action, "buffer/")) {
		s.state.ServeHTTP(w, r)
		return
	}

	switch action {
	case "":
		s.handleEventByID(w, r, id)
	case "start":
		if r.Method != http.MethodPost {
			api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		event, err := s.app.StartEvent(r.Context(), id)
		if err != nil {
			api.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, event)
	case "complete":
		if r.Method != http.MethodPost {
			api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		event, err := s.app.CompleteEvent(r.Context(), id)
		if err != nil {
			api.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, event)
	case "timers":
		if r.Method != http.MethodGet {
			api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		timers, err := s.app.ListEventTimers(r.Context(), id)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, timers)
	default:
		api.WriteError(w, http.StatusNotFound, "not found")
	}
}

func (s *Service) handleEventByID(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		event, err := s.app.GetEvent(r.Context(), id)
		if err != nil {
			api.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, event)
	case http.MethodPut:
		var req UpdateEventRequest
		if err := api.ReadJSON(r, &req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		event, err := s.app.UpdateEvent(r.Context(), id, req)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, event)
	case http.MethodDelete:
		if err := s.app.DeleteEvent(r.Context(), id); err != nil {
			api.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
