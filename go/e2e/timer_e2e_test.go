//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/synccue/synccue/go/internal/event"
	"github.com/synccue/synccue/go/internal/migrate"
	"github.com/synccue/synccue/go/internal/presenter"
	"github.com/synccue/synccue/go/internal/timer"
	"github.com/synccue/synccue/go/internal/users"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "synccue_test",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	host, err := pgC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/synccue_test?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// The container accepts connections slightly before postgres is ready.
	deadline := time.Now().Add(30 * time.Second)
	for db.Ping() != nil {
		if time.Now().After(deadline) {
			t.Fatal("postgres did not become ready")
		}
		time.Sleep(500 * time.Millisecond)
	}

	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestTimerControlActionsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	db := startPostgres(t)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	timerApp := timer.NewApp(timer.NewRepository(db), clock)

	created, err := timerApp.CreateTimer(ctx, timer.CreateTimerRequest{
		Name:        "Lightning talk",
		DurationSec: 600,
		TimerType:   "single",
	})
	if err != nil {
		t.Fatalf("create timer: %v", err)
	}

	session, err := timerApp.Start(ctx, created.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !session.IsRunning || session.TimeLeft == nil || *session.TimeLeft != 600 {
		t.Fatalf("started session = %+v, want running at 600", session)
	}
	if session.NextDeadline == nil {
		t.Fatal("started session has no deadline")
	}

	clock.Advance(90 * time.Second)
	session, err = timerApp.Pause(ctx, created.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if session.IsRunning || *session.TimeLeft != 510 {
		t.Fatalf("paused session = %+v, want stopped at 510", session)
	}
	if session.NextDeadline != nil {
		t.Fatal("paused session kept a deadline")
	}

	// Wall-clock time during a pause must not count against the timer.
	clock.Advance(time.Hour)
	session, err = timerApp.Adjust(ctx, created.ID, 120)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if *session.TimeLeft != 630 {
		t.Fatalf("adjusted session = %+v, want 630", session)
	}

	finished, err := timerApp.FinishEarly(ctx, created.ID)
	if err != nil {
		t.Fatalf("finish early: %v", err)
	}
	if finished.Status != "finished_early" {
		t.Fatalf("finished status = %s", finished.Status)
	}

	// A terminal timer rejects further control actions.
	if _, err := timerApp.Start(ctx, created.ID); !errors.Is(err, timer.ErrAlreadyTerminal) {
		t.Fatalf("start after finish = %v, want ErrAlreadyTerminal", err)
	}

	// Every control action left an outbox row behind.
	var outboxCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timer_outbox WHERE subject_id = $1", created.ID).Scan(&outboxCount); err != nil {
		t.Fatalf("outbox count: %v", err)
	}
	if outboxCount != 4 {
		t.Fatalf("outbox rows = %d, want 4", outboxCount)
	}
}

func TestSlotClaimRace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	db := startPostgres(t)

	userApp := users.NewApp(users.NewRepository(db))
	eventApp := event.NewApp(event.NewRepository(db))
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	timerApp := timer.NewApp(timer.NewRepository(db), clock)
	slotApp := presenter.NewApp(presenter.NewRepository(db))

	owner, err := userApp.CreateUser(ctx, users.CreateUserRequest{Username: "owner", Email: "owner@example.com"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	first, err := userApp.CreateUser(ctx, users.CreateUserRequest{Username: "first", Email: "first@example.com"})
	if err != nil {
		t.Fatalf("create first user: %v", err)
	}
	second, err := userApp.CreateUser(ctx, users.CreateUserRequest{Username: "second", Email: "second@example.com"})
	if err != nil {
		t.Fatalf("create second user: %v", err)
	}

	ev, err := eventApp.CreateEvent(ctx, event.CreateEventRequest{OwnerID: owner.ID.String(), Name: "Demo Day", BufferSec: 30})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	eventID := ev.ID.String()
	tm, err := timerApp.CreateTimer(ctx, timer.CreateTimerRequest{
		EventID:     &eventID,
		Name:        "Keynote",
		DurationSec: 1200,
		TimerType:   "event",
	})
	if err != nil {
		t.Fatalf("create timer: %v", err)
	}

	slot, err := slotApp.CreateSlot(ctx, presenter.CreateSlotRequest{
		EventID:       eventID,
		TimerID:       tm.ID.String(),
		PresenterName: "Dana",
	})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	claimed, err := slotApp.Claim(ctx, presenter.ClaimSlotRequest{AccessCode: slot.AccessCode, UserID: first.ID.String()})
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if claimed.ClaimedBy == nil || *claimed.ClaimedBy != first.ID {
		t.Fatalf("first claim claimed_by = %v, want %s", claimed.ClaimedBy, first.ID)
	}

	loser, err := slotApp.Claim(ctx, presenter.ClaimSlotRequest{AccessCode: slot.AccessCode, UserID: second.ID.String()})
	if !errors.Is(err, presenter.ErrSlotClaimed) {
		t.Fatalf("second claim error = %v, want ErrSlotClaimed", err)
	}
	if loser == nil || loser.ClaimedBy == nil || *loser.ClaimedBy != first.ID {
		t.Fatalf("second claim owner = %+v, want slot held by %s", loser, first.ID)
	}
}

func TestEventRunStartsSiblingExclusion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	db := startPostgres(t)

	userApp := users.NewApp(users.NewRepository(db))
	eventApp := event.NewApp(event.NewRepository(db))
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	timerApp := timer.NewApp(timer.NewRepository(db), clock)

	owner, err := userApp.CreateUser(ctx, users.CreateUserRequest{Username: "owner", Email: "owner@example.com"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	ev, err := eventApp.CreateEvent(ctx, event.CreateEventRequest{OwnerID: owner.ID.String(), Name: "Demo Day"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	eventID := ev.ID.String()

	mkTimer := func(name string) uuid.UUID {
		tm, err := timerApp.CreateTimer(ctx, timer.CreateTimerRequest{
			EventID:     &eventID,
			Name:        name,
			DurationSec: 600,
			TimerType:   "event",
		})
		if err != nil {
			t.Fatalf("create timer %s: %v", name, err)
		}
		return tm.ID
	}
	firstID := mkTimer("Opening")
	secondID := mkTimer("Keynote")

	if _, err := timerApp.Start(ctx, firstID); err != nil {
		t.Fatalf("start first: %v", err)
	}
	clock.Advance(45 * time.Second)

	// Starting the second timer pauses the first at its reconciled value.
	if _, err := timerApp.Start(ctx, secondID); err != nil {
		t.Fatalf("start second: %v", err)
	}

	firstSession, err := timerApp.GetSession(ctx, firstID)
	if err != nil {
		t.Fatalf("get first session: %v", err)
	}
	if firstSession.IsRunning {
		t.Fatal("first timer still running after sibling start")
	}
	if firstSession.TimeLeft == nil || *firstSession.TimeLeft != 555 {
		t.Fatalf("first timer paused at %v, want 555", firstSession.TimeLeft)
	}

	secondSession, err := timerApp.GetSession(ctx, secondID)
	if err != nil {
		t.Fatalf("get second session: %v", err)
	}
	if !secondSession.IsRunning {
		t.Fatal("second timer not running")
	}
}
