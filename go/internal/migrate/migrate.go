package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// statements are applied in order at startup. Everything is idempotent so a
// restart against an existing database is a no-op.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		buffer_sec INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS timers (
		id UUID PRIMARY KEY,
		event_id UUID REFERENCES events(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		presenter_name TEXT NOT NULL DEFAULT '',
		duration_sec INT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		timer_type TEXT NOT NULL DEFAULT 'single',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timers_event_created ON timers(event_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS timer_sessions (
		timer_id UUID PRIMARY KEY REFERENCES timers(id) ON DELETE CASCADE,
		time_left INT,
		is_running BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		next_deadline TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timer_sessions_deadline ON timer_sessions(next_deadline) WHERE next_deadline IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS presenter_slots (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		timer_id UUID NOT NULL REFERENCES timers(id) ON DELETE CASCADE,
		presenter_name TEXT NOT NULL DEFAULT '',
		access_code TEXT NOT NULL UNIQUE,
		claimed_by UUID REFERENCES users(id),
		assigned_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		slot_id UUID REFERENCES presenter_slots(id) ON DELETE SET NULL,
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS overtime_log (
		id UUID PRIMARY KEY,
		timer_id UUID NOT NULL REFERENCES timers(id) ON DELETE CASCADE,
		event_id UUID REFERENCES events(id) ON DELETE CASCADE,
		overtime_sec INT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS timer_outbox (
		id UUID PRIMARY KEY,
		subject_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timer_outbox_unsent ON timer_outbox(created_at) WHERE sent_at IS NULL`,
}

// Run applies the schema against the given database.
func Run(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration statement: %w", err)
		}
	}
	log.Info().Int("statements", len(statements)).Msg("schema migrations applied")
	return nil
}
