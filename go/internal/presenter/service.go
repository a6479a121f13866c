package presenter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/api"
	"github.com/synccue/synccue/go/internal/models"
)

// PresenterApp defines what the service layer needs from the presenter
// application
type PresenterApp interface {
	CreateSlot(ctx context.Context, req CreateSlotRequest) (*models.PresenterSlot, error)
	GetSlotByAccessCode(ctx context.Context, accessCode string) (*models.PresenterSlot, error)
	ListEventSlots(ctx context.Context, eventID uuid.UUID) ([]models.PresenterSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	Claim(ctx context.Context, req ClaimSlotRequest) (*models.PresenterSlot, error)
}

// Service exposes the presenter app over HTTP JSON.
type Service struct {
	app PresenterApp
}

func NewService(app PresenterApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers presenter slot routes on the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/slots", s.handleSlots)
	mux.HandleFunc("/api/slots/", s.handleSlotByID)
	mux.HandleFunc("/api/slots/claim", s.handleClaim)
	mux.HandleFunc("/api/access/", s.handleAccessCode)
}

func (s *Service) handleSlots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req CreateSlotRequest
		if err := api.ReadJSON(r, &req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		slot, err := s.app.CreateSlot(r.Context(), req)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusCreated, slot)
	case http.MethodGet:
		eventID, err := uuid.Parse(r.URL.Query().Get("event_id"))
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid event_id")
			return
		}
		slots, err := s.app.ListEventSlots(r.Context(), eventID)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, slots)
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Service) handleSlotByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/slots/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	if r.Method != http.MethodDelete {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.app.DeleteSlot(r.Context(), id); err != nil {
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleClaim maps a lost claim race to 409 with the current owner in the
// body.
func (s *Service) handleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ClaimSlotRequest
	if err := api.ReadJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot, err := s.app.Claim(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrSlotClaimed) {
			api.WriteJSON(w, http.StatusConflict, map[string]any{
				"error": err.Error(),
				"slot":  slot,
			})
			return
		}
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, slot)
}

// handleAccessCode resolves /api/access/{code} for the presenter's QR link.
func (s *Service) handleAccessCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/api/access/")
	slot, err := s.app.GetSlotByAccessCode(r.Context(), code)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, slot)
}
