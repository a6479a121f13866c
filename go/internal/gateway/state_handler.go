package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/synccue/synccue/go/internal/api"
	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/timekeep"
)

// EventReader defines what the state handler needs from the event app
type EventReader interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error)
}

// SessionReader defines what the state handler needs from the timer app
type SessionReader interface {
	GetSessionsByEvent(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]models.TimerSession, error)
}

// EventStateResponse is the full run-state snapshot for one event. It is
// recomputed from the persisted snapshots on every request; nothing in it is
// cached.
type EventStateResponse struct {
	EventID        string              `json:"event_id"`
	Name           string              `json:"name"`
	Status         models.EventStatus  `json:"status"`
	Phase          timekeep.RunPhase   `json:"phase"`
	Buffer         *models.BufferState `json:"buffer,omitempty"`
	CurrentRunning *TimerStateInfo     `json:"current_running,omitempty"`
	NextUp         *TimerStateInfo     `json:"next_up,omitempty"`
	Timers         []TimerStateInfo    `json:"timers"`
	CompletedCount int                 `json:"completed_count"`
}

// TimerStateInfo is one timer's derived display state.
type TimerStateInfo struct {
	TimerID       string                 `json:"timer_id"`
	Name          string                 `json:"name"`
	PresenterName string                 `json:"presenter_name,omitempty"`
	Status        timekeep.DisplayStatus `json:"status"`
	TimeLeftSec   int                    `json:"time_left_sec"`
	Display       string                 `json:"display"`
}

// StateHandler serves run-state snapshots and the buffer controls.
type StateHandler struct {
	events   EventReader
	sessions SessionReader
	buffers  *BufferManager
	connMgr  *ConnectionManager
	clock    clockwork.Clock
}

// NewStateHandler creates a new state handler. connMgr may be nil when no
// websocket fan-out is wired, as in tests.
func NewStateHandler(events EventReader, sessions SessionReader, buffers *BufferManager, connMgr *ConnectionManager, clock clockwork.Clock) *StateHandler {
	return &StateHandler{
		events:   events,
		sessions: sessions,
		buffers:  buffers,
		connMgr:  connMgr,
		clock:    clock,
	}
}

// ServeHTTP handles /api/events/{id}/state and /api/events/{id}/buffer/*.
// The event service delegates these subtree paths here.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/events/")
	idStr, action, _ := strings.Cut(rest, "/")

	eventID, err := uuid.Parse(idStr)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	switch action {
	case "state":
		h.handleState(w, r, eventID)
	case "buffer/start":
		h.handleBufferStart(w, r, eventID)
	case "buffer/stop":
		h.handleBufferStop(w, r, eventID)
	default:
		api.WriteError(w, http.StatusNotFound, "not found")
	}
}

func (h *StateHandler) handleState(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	timers, err := h.events.ListEventTimers(r.Context(), eventID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sessions, err := h.sessions.GetSessionsByEvent(r.Context(), eventID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := h.clock.Now()
	buffer := h.buffers.State(eventID)
	runState := timekeep.DeriveRunState(timers, sessions, buffer)

	resp := EventStateResponse{
		EventID:        event.ID.String(),
		Name:           event.Name,
		Status:         event.Status,
		Phase:          runState.Phase,
		CompletedCount: len(runState.Completed),
		Timers:         make([]TimerStateInfo, 0, len(timers)),
	}
	if buffer.IsRunning {
		resp.Buffer = &buffer
	}

	for _, t := range timers {
		info := timerState(t, sessions, now)
		resp.Timers = append(resp.Timers, info)

		if runState.CurrentRunning != nil && t.ID == runState.CurrentRunning.ID {
			current := info
			resp.CurrentRunning = &current
		}
		if runState.NextUp != nil && t.ID == runState.NextUp.ID {
			next := info
			resp.NextUp = &next
		}
	}

	api.WriteJSON(w, http.StatusOK, resp)
}

// handleBufferStart begins the inter-presenter gap countdown using the
// event's configured buffer seconds.
func (h *StateHandler) handleBufferStart(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if event.BufferSec <= 0 {
		api.WriteError(w, http.StatusBadRequest, "event has no buffer configured")
		return
	}

	h.buffers.Start(eventID, event.BufferSec)
	state := h.buffers.State(eventID)
	h.broadcastBuffer(eventID, EventTypeBufferStarted, state)
	api.WriteJSON(w, http.StatusOK, state)
}

func (h *StateHandler) handleBufferStop(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.buffers.Stop(eventID)
	h.broadcastBuffer(eventID, EventTypeBufferStopped, models.BufferState{})
	api.WriteJSON(w, http.StatusOK, models.BufferState{})
}

func (h *StateHandler) broadcastBuffer(eventID uuid.UUID, eventType EventType, state models.BufferState) {
	if h.connMgr == nil {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	h.connMgr.BroadcastToEvent(eventID, &WSEvent{
		ID:        uuid.NewString(),
		EventID:   eventID.String(),
		Type:      eventType,
		Timestamp: h.clock.Now(),
		Data:      data,
	})
}

func timerState(t models.Timer, sessions map[uuid.UUID]models.TimerSession, now time.Time) TimerStateInfo {
	var session *models.TimerSession
	if s, ok := sessions[t.ID]; ok {
		session = &s
	}

	c := timekeep.Classify(t, session, now)
	return TimerStateInfo{
		TimerID:       t.ID.String(),
		Name:          t.Name,
		PresenterName: t.PresenterName,
		Status:        c.Status,
		TimeLeftSec:   c.Remaining,
		Display:       timekeep.FormatTime(c.Remaining, true),
	}
}
