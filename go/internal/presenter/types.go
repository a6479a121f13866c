package presenter

import "errors"

// ErrSlotClaimed is returned when a claim's conditional update matches zero
// rows: another presenter already holds the slot. Callers get the current
// owner alongside this sentinel, it is an expected outcome of concurrent
// claims rather than a failure.
var ErrSlotClaimed = errors.New("slot is already claimed")

// CreateSlotRequest represents the data needed to create a presenter slot
type CreateSlotRequest struct {
	EventID       string `json:"event_id"`
	TimerID       string `json:"timer_id"`
	PresenterName string `json:"presenter_name,omitempty"`
}

// ClaimSlotRequest represents a presenter claiming a slot by access code
type ClaimSlotRequest struct {
	AccessCode string `json:"access_code"`
	UserID     string `json:"user_id"`
}
