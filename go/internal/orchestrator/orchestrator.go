package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/models"
	"github.com/synccue/synccue/go/internal/timer"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// TimerControl defines what the orchestrator needs from the timer app.
type TimerControl interface {
	FetchNextDeadline(ctx context.Context) (*timer.NextDeadline, error)
	FetchTimersDue(ctx context.Context, limit int32) ([]uuid.UUID, error)
	Expire(ctx context.Context, id uuid.UUID) (*models.Timer, error)
}

// Orchestrator watches session deadlines and expires timers whose countdown
// hit zero. Expiry is a state transition, not a stop: the session keeps
// running so displays count into overtime.
type Orchestrator struct {
	timerApp   TimerControl
	batchSize  int32
	clock      Clock
	wakeCh     chan struct{}
	instanceID string

	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewOrchestrator creates a new deadline orchestrator with a worker pool
func NewOrchestrator(timerApp TimerControl, clock Clock, batchSize int32) *Orchestrator {
	numWorkers := 10
	return &Orchestrator{
		timerApp:   timerApp,
		batchSize:  batchSize,
		clock:      clock,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8], // short ID for logging

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2), // Buffer to prevent blocking
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake nudges the scheduler to re-read the earliest deadline. Safe to call
// from any goroutine; a pending wake coalesces.
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

// RunScheduler loops forever, sleeping until the next deadline and firing
// expirations.
func (o *Orchestrator) RunScheduler(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.numWorkers).Msg("scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	defer func() {
		log.Info().Str("instance", o.instanceID).Msg("shutting down workers")
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	}()

	sleep := o.clock.NewTimer(0)
	defer sleep.Stop()

	const idlePollDuration = 5 * time.Second
	retryCount := 0
	const maxRetries = 3

	for {
		select {
		case <-o.wakeCh:
			log.Debug().Str("instance", o.instanceID).Msg("drained wake channel")
		default:
		}

		nd, err := o.timerApp.FetchNextDeadline(ctx)
		if err != nil {
			retryCount++
			if retryCount <= maxRetries {
				log.Error().
					Err(err).
					Int("retry", retryCount).
					Str("instance", o.instanceID).
					Msg("error fetching next deadline, retrying")
				sleep.Reset(time.Second * time.Duration(retryCount))
				select {
				case <-sleep.Chan():
					continue
				case <-ctx.Done():
					return nil
				}
			}
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching next deadline after retries")
			return err
		}
		retryCount = 0

		if nd == nil || nd.Deadline == nil {
			log.Debug().Str("instance", o.instanceID).Msg("no running sessions; polling again in 5s")
			sleep.Reset(idlePollDuration)
			select {
			case <-sleep.Chan():
				continue
			case <-ctx.Done():
				log.Info().Str("instance", o.instanceID).Msg("shutdown during idle")
				return nil
			case <-o.wakeCh:
				log.Debug().Str("instance", o.instanceID).Msg("woken up from idle")
				continue
			}
		}

		wait := nd.Deadline.Sub(o.clock.Now())
		if wait > 0 {
			sleep.Reset(wait)
			select {
			case <-sleep.Chan():
				log.Info().Str("instance", o.instanceID).Msg("timer fired, fetching due sessions")
			case <-ctx.Done():
				log.Info().Str("instance", o.instanceID).Msg("shutdown during wait")
				return nil
			case <-o.wakeCh:
				log.Debug().Str("instance", o.instanceID).Msg("woken up early, new sooner deadline")
				continue
			}
		}

		due, err := o.timerApp.FetchTimersDue(ctx, o.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching due sessions")
			// Don't exit on error - retry next iteration
			sleep.Reset(time.Second)
			select {
			case <-sleep.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if len(due) > 0 {
			log.Info().
				Int("count_due", len(due)).
				Int32("batch_size", o.batchSize).
				Str("instance", o.instanceID).
				Msg("processing due sessions")

			for _, timerID := range due {
				o.inFlightMu.Lock()
				if o.inFlight[timerID] {
					log.Debug().Str("timer_id", timerID.String()).Str("instance", o.instanceID).Msg("skipping timer already in flight")
					o.inFlightMu.Unlock()
					continue
				}
				o.inFlight[timerID] = true
				o.inFlightMu.Unlock()

				select {
				case <-ctx.Done():
					o.inFlightMu.Lock()
					delete(o.inFlight, timerID)
					o.inFlightMu.Unlock()
					log.Info().Str("instance", o.instanceID).Msg("shutdown while queueing expirations")
					return nil
				case o.workCh <- timerID:
					log.Debug().Str("timer_id", timerID.String()).Str("instance", o.instanceID).Msg("queued expiration for worker")
				}
			}
		}
	}
}

// handleTimeout expires one due timer. Losing the race to an explicit finish
// action is normal and ends the work quietly.
func (o *Orchestrator) handleTimeout(ctx context.Context, timerID uuid.UUID) error {
	log.Info().Str("timer_id", timerID.String()).Msg("deadline passed, expiring timer")

	if _, err := o.timerApp.Expire(ctx, timerID); err != nil {
		if errors.Is(err, timer.ErrAlreadyTerminal) {
			log.Debug().
				Str("timer_id", timerID.String()).
				Msg("timer already terminal, expire skipped")
			return nil
		}
		return err
	}
	return nil
}

// worker processes timer expirations from the work channel
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	log.Info().
		Str("instance", o.instanceID).
		Int("worker_id", workerID).
		Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("instance", o.instanceID).
				Int("worker_id", workerID).
				Msg("worker shutting down")
			return
		case timerID, ok := <-o.workCh:
			if !ok {
				log.Info().
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("work channel closed, worker shutting down")
				return
			}

			if err := o.handleTimeout(ctx, timerID); err != nil {
				log.Error().
					Err(err).
					Str("timer_id", timerID.String()).
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("worker expiration handling failed")
			}

			// Clean up in-flight tracking regardless of success/failure
			o.inFlightMu.Lock()
			delete(o.inFlight, timerID)
			o.inFlightMu.Unlock()
		}
	}
}
