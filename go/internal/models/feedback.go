package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a post-event response, optionally tied to one presenter slot.
type Feedback struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	SlotID    *uuid.UUID `json:"slot_id,omitempty"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// OvertimeEntry records that a timer ran past its allocation. OvertimeSec is
// the magnitude of the negative remaining time at the moment it was recorded.
type OvertimeEntry struct {
	ID          uuid.UUID  `json:"id"`
	TimerID     uuid.UUID  `json:"timer_id"`
	EventID     *uuid.UUID `json:"event_id,omitempty"`
	OvertimeSec int        `json:"overtime_sec"`
	RecordedAt  time.Time  `json:"recorded_at"`
}
