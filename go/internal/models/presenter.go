package models

import (
	"time"

	"github.com/google/uuid"
)

// PresenterSlot binds a presenter to one event timer. AccessCode is the
// opaque token encoded into the presenter's QR link; a slot is claimed at
// most once, arbitrated by a conditional update on assigned_at.
type PresenterSlot struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	TimerID       uuid.UUID  `json:"timer_id"`
	PresenterName string     `json:"presenter_name"`
	AccessCode    string     `json:"access_code"`
	ClaimedBy     *uuid.UUID `json:"claimed_by,omitempty"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
