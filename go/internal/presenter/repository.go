package presenter

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

const slotColumns = `id, event_id, timer_id, presenter_name, access_code, claimed_by, assigned_at, created_at`

func (r *Repository) CreateSlot(ctx context.Context, eventID, timerID uuid.UUID, presenterName, accessCode string) (*models.PresenterSlot, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO presenter_slots (id, event_id, timer_id, presenter_name, access_code)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+slotColumns,
		uuid.New(), eventID, timerID, presenterName, accessCode,
	)

	slot, err := scanSlot(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}
	return slot, nil
}

func (r *Repository) GetSlot(ctx context.Context, id uuid.UUID) (*models.PresenterSlot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM presenter_slots WHERE id = $1`, id)

	slot, err := scanSlot(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

func (r *Repository) GetSlotByAccessCode(ctx context.Context, accessCode string) (*models.PresenterSlot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM presenter_slots WHERE access_code = $1`, accessCode)

	slot, err := scanSlot(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot by access code: %w", err)
	}
	return slot, nil
}

func (r *Repository) ListEventSlots(ctx context.Context, eventID uuid.UUID) ([]models.PresenterSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+slotColumns+` FROM presenter_slots
		 WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event slots: %w", err)
	}
	defer rows.Close()

	var out []models.PresenterSlot
	for rows.Next() {
		slot, err := scanSlotRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		out = append(out, *slot)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM presenter_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// ClaimSlot does the conditional claim and the SlotClaimed outbox write in
// one transaction. The assigned_at IS NULL guard is the whole arbitration:
// zero rows means another presenter won, reported as ErrSlotClaimed.
func (r *Repository) ClaimSlot(ctx context.Context, accessCode string, userID uuid.UUID) (*models.PresenterSlot, error) {
	var slot *models.PresenterSlot
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE presenter_slots
			 SET claimed_by = $2, assigned_at = now()
			 WHERE access_code = $1 AND assigned_at IS NULL
			 RETURNING `+slotColumns,
			accessCode, userID,
		)

		s, err := scanSlot(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrSlotClaimed
			}
			return fmt.Errorf("claim slot: %w", err)
		}

		payload, err := json.Marshal(events.SlotClaimedPayload{
			SlotID:    s.ID.String(),
			EventID:   s.EventID.String(),
			TimerID:   s.TimerID.String(),
			ClaimedBy: userID.String(),
			ClaimedAt: *s.AssignedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal slot claimed: %w", err)
		}
		if err := outbox.InsertTx(ctx, tx, s.ID, outbox.EventTypeSlotClaimed, payload); err != nil {
			return fmt.Errorf("insert outbox slot claimed: %w", err)
		}

		slot = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func scanSlot(row *sql.Row) (*models.PresenterSlot, error) {
	return scanSlotFrom(row)
}

func scanSlotRows(rows *sql.Rows) (*models.PresenterSlot, error) {
	return scanSlotFrom(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlotFrom(s rowScanner) (*models.PresenterSlot, error) {
	var slot models.PresenterSlot
	var claimedBy uuid.NullUUID
	var assignedAt sql.NullTime
	if err := s.Scan(&slot.ID, &slot.EventID, &slot.TimerID, &slot.PresenterName,
		&slot.AccessCode, &claimedBy, &assignedAt, &slot.CreatedAt); err != nil {
		return nil, err
	}
	slot.ClaimedBy = sqlutil.FromNullUUID(claimedBy)
	slot.AssignedAt = sqlutil.FromSqlTime(assignedAt)
	return &slot, nil
}
