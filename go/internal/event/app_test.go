package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
)

type stubRepo struct {
	events map[uuid.UUID]*models.Event
	timers []models.Timer

	startedWithCount int
	startErr         error
}

func newStubRepo() *stubRepo {
	return &stubRepo{events: make(map[uuid.UUID]*models.Event)}
}

func (s *stubRepo) CreateEvent(ctx context.Context, ownerID uuid.UUID, req CreateEventRequest) (*models.Event, error) {
	e := &models.Event{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Status:    models.EventStatusDraft,
		BufferSec: req.BufferSec,
	}
	s.events[e.ID] = e
	return e, nil
}

func (s *stubRepo) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return e, nil
}

func (s *stubRepo) GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error) {
	return nil, nil
}

func (s *stubRepo) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error) {
	e := s.events[id]
	e.Name = req.Name
	e.BufferSec = req.BufferSec
	return e, nil
}

func (s *stubRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	delete(s.events, id)
	return nil
}

func (s *stubRepo) StartEvent(ctx context.Context, id uuid.UUID, timerCount int) (*models.Event, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.startedWithCount = timerCount
	e, ok := s.events[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	e.Status = models.EventStatusActive
	return e, nil
}

func (s *stubRepo) CompleteEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	e.Status = models.EventStatusCompleted
	return e, nil
}

func (s *stubRepo) ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error) {
	return s.timers, nil
}

func TestCreateEventValidation(t *testing.T) {
	repo := newStubRepo()
	app := NewApp(repo)
	owner := uuid.New().String()

	tests := []struct {
		name    string
		req     CreateEventRequest
		wantErr bool
	}{
		{name: "valid", req: CreateEventRequest{OwnerID: owner, Name: "Demo Day", BufferSec: 30}},
		{name: "zero buffer ok", req: CreateEventRequest{OwnerID: owner, Name: "Demo Day"}},
		{name: "missing name", req: CreateEventRequest{OwnerID: owner, BufferSec: 30}, wantErr: true},
		{name: "negative buffer", req: CreateEventRequest{OwnerID: owner, Name: "Demo Day", BufferSec: -1}, wantErr: true},
		{name: "bad owner", req: CreateEventRequest{OwnerID: "nope", Name: "Demo Day"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.CreateEvent(context.Background(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateEventStartsAsDraft(t *testing.T) {
	repo := newStubRepo()
	app := NewApp(repo)

	event, err := app.CreateEvent(context.Background(), CreateEventRequest{
		OwnerID:   uuid.New().String(),
		Name:      "Demo Day",
		BufferSec: 30,
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if event.Status != models.EventStatusDraft {
		t.Fatalf("CreateEvent() status = %s, want draft", event.Status)
	}
}

func TestStartEventCountsTimers(t *testing.T) {
	repo := newStubRepo()
	app := NewApp(repo)

	event, err := app.CreateEvent(context.Background(), CreateEventRequest{
		OwnerID: uuid.New().String(),
		Name:    "Demo Day",
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	repo.timers = []models.Timer{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}

	started, err := app.StartEvent(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("StartEvent() error = %v", err)
	}
	if started.Status != models.EventStatusActive {
		t.Fatalf("StartEvent() status = %s, want active", started.Status)
	}
	if repo.startedWithCount != 3 {
		t.Fatalf("StartEvent() timer count = %d, want 3", repo.startedWithCount)
	}
}

func TestStartEventGuardFailure(t *testing.T) {
	repo := newStubRepo()
	app := NewApp(repo)
	repo.startErr = errors.New("event is not in draft status")

	if _, err := app.StartEvent(context.Background(), uuid.New()); err == nil {
		t.Fatal("StartEvent() on non-draft event succeeded, want error")
	}
}

func TestUpdateEventValidation(t *testing.T) {
	repo := newStubRepo()
	app := NewApp(repo)

	event, err := app.CreateEvent(context.Background(), CreateEventRequest{
		OwnerID: uuid.New().String(),
		Name:    "Demo Day",
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	if _, err := app.UpdateEvent(context.Background(), event.ID, UpdateEventRequest{Name: "", BufferSec: 10}); err == nil {
		t.Fatal("UpdateEvent() with empty name succeeded")
	}
	if _, err := app.UpdateEvent(context.Background(), event.ID, UpdateEventRequest{Name: "Demo Day", BufferSec: -2}); err == nil {
		t.Fatal("UpdateEvent() with negative buffer succeeded")
	}

	updated, err := app.UpdateEvent(context.Background(), event.ID, UpdateEventRequest{Name: "Demo Night", BufferSec: 60})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if updated.Name != "Demo Night" || updated.BufferSec != 60 {
		t.Fatalf("UpdateEvent() = %+v", updated)
	}
}
