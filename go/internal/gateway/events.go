package gateway

import (
	"encoding/json"
	"time"
)

// WSEvent is the frame pushed to websocket clients. Data carries the domain
// payload unchanged from the relay envelope.
type WSEvent struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of a websocket event
type EventType string

const (
	EventTypeTimerStarted   EventType = "TimerStarted"
	EventTypeTimerPaused    EventType = "TimerPaused"
	EventTypeTimerReset     EventType = "TimerReset"
	EventTypeTimerAdjusted  EventType = "TimerAdjusted"
	EventTypeTimerFinished  EventType = "TimerFinished"
	EventTypeTimerExpired   EventType = "TimerExpired"
	EventTypeEventStarted   EventType = "EventStarted"
	EventTypeEventCompleted EventType = "EventCompleted"
	EventTypeSlotClaimed    EventType = "SlotClaimed"
	EventTypeBufferStarted  EventType = "BufferStarted"
	EventTypeBufferStopped  EventType = "BufferStopped"
)
