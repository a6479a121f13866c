package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/models"
)

// bufferRun is one active inter-presenter gap countdown.
type bufferRun struct {
	startedAt   time.Time
	durationSec int
}

// BufferManager tracks the transient between-presenter countdown per event.
// Buffer state lives only in memory: a restart simply loses it, which is
// acceptable because a buffer only spans the seconds between two talks.
type BufferManager struct {
	clock clockwork.Clock

	mu      sync.Mutex
	buffers map[uuid.UUID]*bufferRun
}

// NewBufferManager creates a buffer manager against the given clock
func NewBufferManager(clock clockwork.Clock) *BufferManager {
	return &BufferManager{
		clock:   clock,
		buffers: make(map[uuid.UUID]*bufferRun),
	}
}

// Start begins (or restarts) the buffer countdown for an event.
func (b *BufferManager) Start(eventID uuid.UUID, durationSec int) {
	if durationSec <= 0 {
		return
	}

	b.mu.Lock()
	b.buffers[eventID] = &bufferRun{
		startedAt:   b.clock.Now(),
		durationSec: durationSec,
	}
	b.mu.Unlock()

	log.Info().
		Str("event_id", eventID.String()).
		Int("duration_sec", durationSec).
		Msg("buffer countdown started")
}

// Stop clears the buffer countdown for an event, if any.
func (b *BufferManager) Stop(eventID uuid.UUID) {
	b.mu.Lock()
	_, existed := b.buffers[eventID]
	delete(b.buffers, eventID)
	b.mu.Unlock()

	if existed {
		log.Info().Str("event_id", eventID.String()).Msg("buffer countdown stopped")
	}
}

// State derives the live buffer state for an event. A countdown that ran
// out is dropped, so a finished buffer reads as no buffer at all.
func (b *BufferManager) State(eventID uuid.UUID) models.BufferState {
	b.mu.Lock()
	defer b.mu.Unlock()

	run, ok := b.buffers[eventID]
	if !ok {
		return models.BufferState{}
	}

	elapsed := int(b.clock.Now().Sub(run.startedAt) / time.Second)
	remaining := run.durationSec - elapsed
	if remaining <= 0 {
		delete(b.buffers, eventID)
		return models.BufferState{}
	}

	return models.BufferState{IsRunning: true, TimeLeft: remaining}
}
