package timer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

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

const timerColumns = `id, event_id, name, presenter_name, duration_sec, status, timer_type, created_at, updated_at`

func (r *Repository) CreateTimer(ctx context.Context, eventID *uuid.UUID, req CreateTimerRequest) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO timers (id, event_id, name, presenter_name, duration_sec, status, timer_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+timerColumns,
		uuid.New(), sqlutil.ToNullUUID(eventID), req.Name, req.PresenterName,
		req.DurationSec, models.TimerStatusActive, req.TimerType,
	)

	timer, err := scanTimer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create timer: %w", err)
	}
	return timer, nil
}

func (r *Repository) GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+timerColumns+` FROM timers WHERE id = $1`, id)

	timer, err := scanTimer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}
	return timer, nil
}

func (r *Repository) ListSingleTimers(ctx context.Context) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+timerColumns+` FROM timers
		 WHERE timer_type = $1 ORDER BY created_at DESC`, models.TimerTypeSingle)
	if err != nil {
		return nil, fmt.Errorf("failed to list single timers: %w", err)
	}
	defer rows.Close()

	var out []models.Timer
	for rows.Next() {
		t, err := scanTimerRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timer: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteTimer(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}
	return nil
}

// GetSession returns the timer's session snapshot, or nil when the timer has
// never been started.
func (r *Repository) GetSession(ctx context.Context, timerID uuid.UUID) (*models.TimerSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT timer_id, time_left, is_running, updated_at, next_deadline
		 FROM timer_sessions WHERE timer_id = $1`, timerID)

	session, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// GetSessionsByEvent returns all session snapshots for an event's timers,
// keyed by timer ID.
func (r *Repository) GetSessionsByEvent(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]models.TimerSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.timer_id, s.time_left, s.is_running, s.updated_at, s.next_deadline
		 FROM timer_sessions s
		 JOIN timers t ON t.id = s.timer_id
		 WHERE t.event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by event: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]models.TimerSession)
	for rows.Next() {
		var s models.TimerSession
		var timeLeft sql.NullInt32
		var deadline sql.NullTime
		if err := rows.Scan(&s.TimerID, &timeLeft, &s.IsRunning, &s.UpdatedAt, &deadline); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.TimeLeft = sqlutil.FromSqlInt32(timeLeft)
		s.NextDeadline = sqlutil.FromSqlTime(deadline)
		out[s.TimerID] = s
	}
	return out, rows.Err()
}

// GetRunningSiblings returns the running sessions of the event's other
// timers, joined with their durations so the caller can reconcile a pause
// value for each.
func (r *Repository) GetRunningSiblings(ctx context.Context, eventID, excludeTimerID uuid.UUID) ([]RunningSibling, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.timer_id, t.duration_sec, s.time_left, s.is_running, s.updated_at
		 FROM timer_sessions s
		 JOIN timers t ON t.id = s.timer_id
		 WHERE t.event_id = $1 AND s.timer_id <> $2 AND s.is_running = TRUE`,
		eventID, excludeTimerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get running siblings: %w", err)
	}
	defer rows.Close()

	var out []RunningSibling
	for rows.Next() {
		var sib RunningSibling
		var timeLeft sql.NullInt32
		if err := rows.Scan(&sib.TimerID, &sib.DurationSec, &timeLeft, &sib.Session.IsRunning, &sib.Session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan running sibling: %w", err)
		}
		sib.Session.TimerID = sib.TimerID
		sib.Session.TimeLeft = sqlutil.FromSqlInt32(timeLeft)
		out = append(out, sib)
	}
	return out, rows.Err()
}

// StartTimer upserts the running session, pauses the reconciled siblings and
// writes an outbox row per touched timer, all in one transaction.
func (r *Repository) StartTimer(ctx context.Context, timer *models.Timer, timeLeft int, now time.Time, siblings []PausedSibling) (*models.TimerSession, error) {
	deadline := now.Add(time.Duration(timeLeft) * time.Second)

	var session *models.TimerSession
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		for _, sib := range siblings {
			if _, err := tx.ExecContext(ctx,
				`UPDATE timer_sessions
				 SET time_left = $2, is_running = FALSE, updated_at = $3, next_deadline = NULL
				 WHERE timer_id = $1`,
				sib.TimerID, sib.TimeLeft, now,
			); err != nil {
				return fmt.Errorf("pause sibling session: %w", err)
			}

			payload, err := json.Marshal(events.TimerPausedPayload{
				TimerID:     sib.TimerID.String(),
				EventID:     uuidPtrString(sib.EventID),
				TimeLeftSec: sib.TimeLeft,
				PausedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("marshal sibling paused: %w", err)
			}
			if err := outbox.InsertTx(ctx, tx, sib.TimerID, outbox.EventTypeTimerPaused, payload); err != nil {
				return fmt.Errorf("insert outbox sibling paused: %w", err)
			}
		}

		row := tx.QueryRowContext(ctx,
			`INSERT INTO timer_sessions (timer_id, time_left, is_running, updated_at, next_deadline)
			 VALUES ($1, $2, TRUE, $3, $4)
			 ON CONFLICT (timer_id) DO UPDATE
			 SET time_left = $2, is_running = TRUE, updated_at = $3, next_deadline = $4
			 RETURNING timer_id, time_left, is_running, updated_at, next_deadline`,
			timer.ID, timeLeft, now, deadline,
		)
		s, err := scanSession(row)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		payload, err := json.Marshal(events.TimerStartedPayload{
			TimerID:     timer.ID.String(),
			EventID:     uuidPtrString(timer.EventID),
			TimeLeftSec: timeLeft,
			StartedAt:   now,
			DeadlineAt:  &deadline,
		})
		if err != nil {
			return fmt.Errorf("marshal timer started: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, timer.ID, outbox.EventTypeTimerStarted, payload); err != nil {
			return fmt.Errorf("insert outbox timer started: %w", err)
		}

		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// PauseTimer stores the reconciled remaining time, stops the session and
// dual-writes the TimerPaused outbox row.
func (r *Repository) PauseTimer(ctx context.Context, timer *models.Timer, timeLeft int, now time.Time) (*models.TimerSession, error) {
	return r.stopSession(ctx, timer, timeLeft, now, outbox.EventTypeTimerPaused, events.TimerPausedPayload{
		TimerID:     timer.ID.String(),
		EventID:     uuidPtrString(timer.EventID),
		TimeLeftSec: timeLeft,
		PausedAt:    now,
	})
}

// ResetTimer snaps the session back to the original duration, stopped.
func (r *Repository) ResetTimer(ctx context.Context, timer *models.Timer, now time.Time) (*models.TimerSession, error) {
	return r.stopSession(ctx, timer, timer.DurationSec, now, outbox.EventTypeTimerReset, events.TimerResetPayload{
		TimerID:     timer.ID.String(),
		EventID:     uuidPtrString(timer.EventID),
		TimeLeftSec: timer.DurationSec,
		ResetAt:     now,
	})
}

// stopSession is the shared write for pause and reset: store time_left,
// stop, clear the deadline, emit the given event.
func (r *Repository) stopSession(ctx context.Context, timer *models.Timer, timeLeft int, now time.Time, eventType string, payloadValue any) (*models.TimerSession, error) {
	var session *models.TimerSession
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`INSERT INTO timer_sessions (timer_id, time_left, is_running, updated_at, next_deadline)
			 VALUES ($1, $2, FALSE, $3, NULL)
			 ON CONFLICT (timer_id) DO UPDATE
			 SET time_left = $2, is_running = FALSE, updated_at = $3, next_deadline = NULL
			 RETURNING timer_id, time_left, is_running, updated_at, next_deadline`,
			timer.ID, timeLeft, now,
		)
		s, err := scanSession(row)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		payload, err := json.Marshal(payloadValue)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", eventType, err)
		}
		if err := outbox.InsertTx(ctx, tx, timer.ID, eventType, payload); err != nil {
			return fmt.Errorf("insert outbox %s: %w", eventType, err)
		}

		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AdjustTimer stores the adjusted remaining time; a running session gets a
// fresh deadline keyed to the new value.
func (r *Repository) AdjustTimer(ctx context.Context, timer *models.Timer, delta, timeLeft int, running bool, now time.Time) (*models.TimerSession, error) {
	var deadline sql.NullTime
	if running {
		deadline = sql.NullTime{Time: now.Add(time.Duration(timeLeft) * time.Second), Valid: true}
	}

	var session *models.TimerSession
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE timer_sessions
			 SET time_left = $2, updated_at = $3, next_deadline = $4
			 WHERE timer_id = $1
			 RETURNING timer_id, time_left, is_running, updated_at, next_deadline`,
			timer.ID, timeLeft, now, deadline,
		)
		s, err := scanSession(row)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}

		payload, err := json.Marshal(events.TimerAdjustedPayload{
			TimerID:     timer.ID.String(),
			EventID:     uuidPtrString(timer.EventID),
			DeltaSec:    delta,
			TimeLeftSec: timeLeft,
			AdjustedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("marshal timer adjusted: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, timer.ID, outbox.EventTypeTimerAdjusted, payload); err != nil {
			return fmt.Errorf("insert outbox timer adjusted: %w", err)
		}

		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// FinishTimer sets a terminal status behind a guard that refuses to demote
// an existing terminal status, stops the session and, when the reconciled
// remaining time is negative, finalizes the overtime record.
func (r *Repository) FinishTimer(ctx context.Context, timer *models.Timer, status models.TimerStatus, timeLeft int, now time.Time) (*models.Timer, error) {
	var updated *models.Timer
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE timers SET status = $2, updated_at = $3
			 WHERE id = $1 AND status = $4
			 RETURNING `+timerColumns,
			timer.ID, status, now, models.TimerStatusActive,
		)
		t, err := scanTimer(row)
		if err != nil {
			if err == sql.ErrNoRows {
				// Expired timers may still be finished, nothing else may.
				row = tx.QueryRowContext(ctx,
					`UPDATE timers SET status = $2, updated_at = $3
					 WHERE id = $1 AND status = $4
					 RETURNING `+timerColumns,
					timer.ID, status, now, models.TimerStatusExpired,
				)
				if t, err = scanTimer(row); err != nil {
					if err == sql.ErrNoRows {
						return ErrAlreadyTerminal
					}
					return fmt.Errorf("update timer status: %w", err)
				}
			} else {
				return fmt.Errorf("update timer status: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE timer_sessions
			 SET time_left = $2, is_running = FALSE, updated_at = $3, next_deadline = NULL
			 WHERE timer_id = $1`,
			timer.ID, timeLeft, now,
		); err != nil {
			return fmt.Errorf("stop session: %w", err)
		}

		if timeLeft < 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE overtime_log SET overtime_sec = $2, recorded_at = $3 WHERE timer_id = $1`,
				timer.ID, -timeLeft, now,
			); err != nil {
				return fmt.Errorf("finalize overtime: %w", err)
			}
		}

		payload, err := json.Marshal(events.TimerFinishedPayload{
			TimerID:    timer.ID.String(),
			EventID:    uuidPtrString(timer.EventID),
			Status:     string(status),
			FinishedAt: now,
		})
		if err != nil {
			return fmt.Errorf("marshal timer finished: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, timer.ID, outbox.EventTypeTimerFinished, payload); err != nil {
			return fmt.Errorf("insert outbox timer finished: %w", err)
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExpireTimer marks a running timer expired when its countdown hits zero.
// The status guard makes the scheduler race against explicit finish actions
// safe: zero rows means someone else got there first. The session stays
// running so the display counts into overtime.
func (r *Repository) ExpireTimer(ctx context.Context, timer *models.Timer, now time.Time) (*models.Timer, error) {
	var updated *models.Timer
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE timers SET status = $2, updated_at = $3
			 WHERE id = $1 AND status = $4
			 RETURNING `+timerColumns,
			timer.ID, models.TimerStatusExpired, now, models.TimerStatusActive,
		)
		t, err := scanTimer(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrAlreadyTerminal
			}
			return fmt.Errorf("update timer status: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE timer_sessions
			 SET time_left = 0, updated_at = $2, next_deadline = NULL
			 WHERE timer_id = $1 AND is_running = TRUE`,
			timer.ID, now,
		); err != nil {
			return fmt.Errorf("rebase session: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO overtime_log (id, timer_id, event_id, overtime_sec, recorded_at)
			 VALUES ($1, $2, $3, 0, $4)`,
			uuid.New(), timer.ID, sqlutil.ToNullUUID(timer.EventID), now,
		); err != nil {
			return fmt.Errorf("insert overtime log: %w", err)
		}

		payload, err := json.Marshal(events.TimerExpiredPayload{
			TimerID:   timer.ID.String(),
			EventID:   uuidPtrString(timer.EventID),
			ExpiredAt: now,
		})
		if err != nil {
			return fmt.Errorf("marshal timer expired: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, timer.ID, outbox.EventTypeTimerExpired, payload); err != nil {
			return fmt.Errorf("insert outbox timer expired: %w", err)
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FetchNextDeadline returns the earliest pending deadline across all
// sessions, or nil when no deadline is scheduled.
func (r *Repository) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT timer_id, next_deadline FROM timer_sessions
		 WHERE next_deadline IS NOT NULL
		 ORDER BY next_deadline ASC LIMIT 1`)

	var nd NextDeadline
	var deadline sql.NullTime
	if err := row.Scan(&nd.TimerID, &deadline); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	nd.Deadline = sqlutil.FromSqlTime(deadline)
	return &nd, nil
}

// FetchTimersDue returns the timers whose deadlines have passed, earliest
// first.
func (r *Repository) FetchTimersDue(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timer_id FROM timer_sessions
		 WHERE next_deadline IS NOT NULL AND next_deadline <= now()
		 ORDER BY next_deadline ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timers due: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan timer id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanTimer(row *sql.Row) (*models.Timer, error) {
	return scanTimerFrom(row)
}

func scanTimerRows(rows *sql.Rows) (*models.Timer, error) {
	return scanTimerFrom(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimerFrom(s rowScanner) (*models.Timer, error) {
	var t models.Timer
	var eventID uuid.NullUUID
	var presenter sql.NullString
	if err := s.Scan(&t.ID, &eventID, &t.Name, &presenter, &t.DurationSec,
		&t.Status, &t.TimerType, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.EventID = sqlutil.FromNullUUID(eventID)
	t.PresenterName = presenter.String
	return &t, nil
}

func scanSession(row *sql.Row) (*models.TimerSession, error) {
	var s models.TimerSession
	var timeLeft sql.NullInt32
	var deadline sql.NullTime
	if err := row.Scan(&s.TimerID, &timeLeft, &s.IsRunning, &s.UpdatedAt, &deadline); err != nil {
		return nil, err
	}
	s.TimeLeft = sqlutil.FromSqlInt32(timeLeft)
	s.NextDeadline = sqlutil.FromSqlTime(deadline)
	return &s, nil
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
