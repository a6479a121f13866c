package feedback

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/sqlutil"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const feedbackColumns = `id, event_id, slot_id, rating, comment, created_at`

func (r *Repository) CreateFeedback(ctx context.Context, eventID uuid.UUID, slotID *uuid.UUID, rating int, comment string) (*models.Feedback, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO feedback (id, event_id, slot_id, rating, comment)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+feedbackColumns,
		uuid.New(), eventID, sqlutil.ToNullUUID(slotID), rating, comment,
	)

	var f models.Feedback
	var sid uuid.NullUUID
	if err := row.Scan(&f.ID, &f.EventID, &sid, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	f.SlotID = sqlutil.FromNullUUID(sid)
	return &f, nil
}

func (r *Repository) ListFeedbackByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback
		 WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback by event: %w", err)
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var f models.Feedback
		var sid uuid.NullUUID
		if err := rows.Scan(&f.ID, &f.EventID, &sid, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		f.SlotID = sqlutil.FromNullUUID(sid)
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetRatingSummary returns the response count and average rating for an
// event. An event without feedback yields a zero summary, not an error.
func (r *Repository) GetRatingSummary(ctx context.Context, eventID uuid.UUID) (int, float64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM feedback WHERE event_id = $1`, eventID)

	var count int
	var avg float64
	if err := row.Scan(&count, &avg); err != nil {
		return 0, 0, fmt.Errorf("failed to get rating summary: %w", err)
	}
	return count, avg, nil
}

// GetOvertimeByTimer sums each timer's recorded overtime for the event, in
// presentation order.
func (r *Repository) GetOvertimeByTimer(ctx context.Context, eventID uuid.UUID) ([]TimerOvertime, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, COALESCE(SUM(o.overtime_sec), 0)
		 FROM overtime_log o
		 JOIN timers t ON t.id = o.timer_id
		 WHERE o.event_id = $1
		 GROUP BY t.id, t.name, t.created_at
		 ORDER BY t.created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overtime by timer: %w", err)
	}
	defer rows.Close()

	var out []TimerOvertime
	for rows.Next() {
		var to TimerOvertime
		var timerID uuid.UUID
		if err := rows.Scan(&timerID, &to.TimerName, &to.OvertimeSec); err != nil {
			return nil, fmt.Errorf("failed to scan overtime row: %w", err)
		}
		to.TimerID = timerID.String()
		out = append(out, to)
	}
	return out, rows.Err()
}
