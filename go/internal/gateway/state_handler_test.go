package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/timekeep"
)

type stubEventReader struct {
	event  *models.Event
	timers []models.Timer
}

func (s *stubEventReader) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.event, nil
}

func (s *stubEventReader) ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error) {
	return s.timers, nil
}

type stubSessionReader struct {
	sessions map[uuid.UUID]models.TimerSession
}

func (s *stubSessionReader) GetSessionsByEvent(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]models.TimerSession, error) {
	return s.sessions, nil
}

func eventTimer(eventID uuid.UUID, name string, durationSec int, created time.Time) models.Timer {
	return models.Timer{
		ID:          uuid.New(),
		EventID:     &eventID,
		Name:        name,
		DurationSec: durationSec,
		Status:      models.TimerStatusActive,
		TimerType:   models.TimerTypeEvent,
		CreatedAt:   created,
	}
}

func TestStateHandlerPresenterPhase(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(base)
	eventID := uuid.New()

	first := eventTimer(eventID, "Opening", 600, base.Add(-2*time.Hour))
	second := eventTimer(eventID, "Keynote", 1800, base.Add(-time.Hour))

	left := 600
	sessions := map[uuid.UUID]models.TimerSession{
		first.ID: {TimerID: first.ID, TimeLeft: &left, IsRunning: true, UpdatedAt: base.Add(-90 * time.Second)},
	}

	events := &stubEventReader{
		event:  &models.Event{ID: eventID, Name: "Demo Day", Status: models.EventStatusActive, BufferSec: 30},
		timers: []models.Timer{first, second},
	}
	handler := NewStateHandler(events, &stubSessionReader{sessions: sessions}, NewBufferManager(clock), nil, clock)

	req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String()+"/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp EventStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Phase != timekeep.PhasePresenter {
		t.Fatalf("phase = %s, want presenter", resp.Phase)
	}
	if resp.CurrentRunning == nil || resp.CurrentRunning.TimerID != first.ID.String() {
		t.Fatalf("current_running = %+v, want %s", resp.CurrentRunning, first.ID)
	}
	if resp.CurrentRunning.TimeLeftSec != 510 {
		t.Fatalf("current time left = %d, want 510", resp.CurrentRunning.TimeLeftSec)
	}
	if resp.CurrentRunning.Display != "08:30" {
		t.Fatalf("current display = %q, want 08:30", resp.CurrentRunning.Display)
	}
	if resp.NextUp == nil || resp.NextUp.TimerID != second.ID.String() {
		t.Fatalf("next_up = %+v, want %s", resp.NextUp, second.ID)
	}
	if resp.Buffer != nil {
		t.Fatalf("buffer = %+v, want absent", resp.Buffer)
	}
}

func TestStateHandlerBufferPhaseWins(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(base)
	eventID := uuid.New()

	timer := eventTimer(eventID, "Opening", 600, base.Add(-time.Hour))
	left := 600
	sessions := map[uuid.UUID]models.TimerSession{
		timer.ID: {TimerID: timer.ID, TimeLeft: &left, IsRunning: true, UpdatedAt: base},
	}

	events := &stubEventReader{
		event:  &models.Event{ID: eventID, Name: "Demo Day", Status: models.EventStatusActive, BufferSec: 30},
		timers: []models.Timer{timer},
	}
	buffers := NewBufferManager(clock)
	buffers.Start(eventID, 30)
	handler := NewStateHandler(events, &stubSessionReader{sessions: sessions}, buffers, nil, clock)

	req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String()+"/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp EventStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Phase != timekeep.PhaseBuffer {
		t.Fatalf("phase = %s, want buffer", resp.Phase)
	}
	if resp.Buffer == nil || resp.Buffer.TimeLeft != 30 {
		t.Fatalf("buffer = %+v, want 30s running", resp.Buffer)
	}
}

func TestStateHandlerFinalPhase(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(base)
	eventID := uuid.New()

	timer := eventTimer(eventID, "Opening", 600, base.Add(-time.Hour))
	timer.Status = models.TimerStatusCompleted

	events := &stubEventReader{
		event:  &models.Event{ID: eventID, Name: "Demo Day", Status: models.EventStatusActive},
		timers: []models.Timer{timer},
	}
	handler := NewStateHandler(events, &stubSessionReader{sessions: map[uuid.UUID]models.TimerSession{}}, NewBufferManager(clock), nil, clock)

	req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String()+"/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp EventStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Phase != timekeep.PhaseFinal {
		t.Fatalf("phase = %s, want final", resp.Phase)
	}
	if resp.CompletedCount != 1 {
		t.Fatalf("completed_count = %d, want 1", resp.CompletedCount)
	}
	if resp.CurrentRunning != nil || resp.NextUp != nil {
		t.Fatal("final phase should have no current or next timer")
	}
}

func TestStateHandlerBufferControls(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(base)
	eventID := uuid.New()

	events := &stubEventReader{
		event: &models.Event{ID: eventID, Name: "Demo Day", Status: models.EventStatusActive, BufferSec: 45},
	}
	buffers := NewBufferManager(clock)
	handler := NewStateHandler(events, &stubSessionReader{}, buffers, nil, clock)

	req := httptest.NewRequest(http.MethodPost, "/api/events/"+eventID.String()+"/buffer/start", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("buffer start status = %d", rec.Code)
	}
	if state := buffers.State(eventID); !state.IsRunning || state.TimeLeft != 45 {
		t.Fatalf("buffer state = %+v, want 45s running", state)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/events/"+eventID.String()+"/buffer/stop", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("buffer stop status = %d", rec.Code)
	}
	if state := buffers.State(eventID); state.IsRunning {
		t.Fatalf("buffer state after stop = %+v, want empty", state)
	}
}

func TestStateHandlerBufferStartWithoutConfig(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	eventID := uuid.New()

	events := &stubEventReader{
		event: &models.Event{ID: eventID, Name: "Demo Day", Status: models.EventStatusActive, BufferSec: 0},
	}
	handler := NewStateHandler(events, &stubSessionReader{}, NewBufferManager(clock), nil, clock)

	req := httptest.NewRequest(http.MethodPost, "/api/events/"+eventID.String()+"/buffer/start", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for zero buffer", rec.Code)
	}
}
