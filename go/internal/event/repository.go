package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/events"
	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/outbox"
	"github.com/synccue/synccue/go/internal/sqlutil"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, owner_id, name, status, buffer_sec, created_at, updated_at, started_at, completed_at`

func (r *Repository) CreateEvent(ctx context.Context, ownerID uuid.UUID, req CreateEventRequest) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO events (id, owner_id, name, status, buffer_sec)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+eventColumns,
		uuid.New(), ownerID, req.Name, models.EventStatusDraft, req.BufferSec,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *Repository) GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by owner: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		event, err := scanEventRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, *event)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE events SET name = $2, buffer_sec = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		id, req.Name, req.BufferSec,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// StartEvent flips a draft event to active and records the EventStarted
// outbox row in the same transaction. Zero rows updated means the event was
// not in draft.
func (r *Repository) StartEvent(ctx context.Context, id uuid.UUID, timerCount int) (*models.Event, error) {
	var event *models.Event
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE events SET status = $2, started_at = now(), updated_at = now()
			 WHERE id = $1 AND status = $3
			 RETURNING `+eventColumns,
			id, models.EventStatusActive, models.EventStatusDraft,
		)

		e, err := scanEvent(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("event is not in draft status")
			}
			return fmt.Errorf("update event: %w", err)
		}

		payload, err := json.Marshal(events.EventStartedPayload{
			EventID:    e.ID.String(),
			Name:       e.Name,
			TimerCount: timerCount,
			StartedAt:  *e.StartedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal event started: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, e.ID, outbox.EventTypeEventStarted, payload); err != nil {
			return fmt.Errorf("insert outbox event started: %w", err)
		}

		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CompleteEvent flips an active event to completed plus the EventCompleted
// outbox row, dual-written in one transaction.
func (r *Repository) CompleteEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE events SET status = $2, completed_at = now(), updated_at = now()
			 WHERE id = $1 AND status = $3
			 RETURNING `+eventColumns,
			id, models.EventStatusCompleted, models.EventStatusActive,
		)

		e, err := scanEvent(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("event is not active")
			}
			return fmt.Errorf("update event: %w", err)
		}

		payload, err := json.Marshal(events.EventCompletedPayload{
			EventID:     e.ID.String(),
			CompletedAt: *e.CompletedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal event completed: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, e.ID, outbox.EventTypeEventCompleted, payload); err != nil {
			return fmt.Errorf("insert outbox event completed: %w", err)
		}

		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListEventTimers returns the event's timers in creation order, which is the
// presentation order used everywhere downstream.
func (r *Repository) ListEventTimers(ctx context.Context, eventID uuid.UUID) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, name, presenter_name, duration_sec, status, timer_type, created_at, updated_at
		 FROM timers WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event timers: %w", err)
	}
	defer rows.Close()

	var out []models.Timer
	for rows.Next() {
		var t models.Timer
		var eid uuid.NullUUID
		var presenter sql.NullString
		if err := rows.Scan(&t.ID, &eid, &t.Name, &presenter, &t.DurationSec, &t.Status, &t.TimerType, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timer: %w", err)
		}
		t.EventID = sqlutil.FromNullUUID(eid)
		t.PresenterName = presenter.String
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row *sql.Row) (*models.Event, error) {
	return scanEventFrom(row)
}

func scanEventRows(rows *sql.Rows) (*models.Event, error) {
	return scanEventFrom(rows)
}

func scanEventFrom(s rowScanner) (*models.Event, error) {
	var e models.Event
	var startedAt, completedAt sql.NullTime
	if err := s.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Status, &e.BufferSec,
		&e.CreatedAt, &e.UpdatedAt, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	e.StartedAt = sqlutil.FromSqlTime(startedAt)
	e.CompletedAt = sqlutil.FromSqlTime(completedAt)
	return &e, nil
}
