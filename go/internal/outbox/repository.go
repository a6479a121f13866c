package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// InsertTx writes one outbox row inside the caller's transaction, so a
// control action and its domain event commit or roll back together.
func InsertTx(ctx context.Context, tx *sql.Tx, subjectID uuid.UUID, eventType string, payload []byte) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO timer_outbox (id, subject_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
		uuid.New(), subjectID, eventType, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// Repository gives the relay worker access to the outbox table.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes an outbox row outside any caller transaction.
func (r *Repository) Insert(ctx context.Context, subjectID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timer_outbox (id, subject_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
		uuid.New(), subjectID, eventType, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// FetchUnsentTx reads a batch of unsent rows with row locking so parallel
// relay instances do not double-publish.
func (r *Repository) FetchUnsentTx(ctx context.Context, tx *sql.Tx, limit int32) ([]OutboxEvent, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, subject_id, event_type, payload, created_at
		 FROM timer_outbox
		 WHERE sent_at IS NULL
		 ORDER BY created_at
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkSentTx stamps the given rows as published.
func (r *Repository) MarkSentTx(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE timer_outbox SET sent_at = now() WHERE id = ANY($1::uuid[])`,
		pq.Array(idStrs),
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox events as sent: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for the worker's own transactions.
func (r *Repository) DB() *sql.DB {
	return r.db
}
