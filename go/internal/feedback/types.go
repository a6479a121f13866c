package feedback

// SubmitFeedbackRequest represents a post-event feedback submission
type SubmitFeedbackRequest struct {
	EventID string  `json:"event_id"`
	SlotID  *string `json:"slot_id,omitempty"`
	Rating  int     `json:"rating"`
	Comment string  `json:"comment,omitempty"`
}

// TimerOvertime is the accumulated overtime of one timer within an event.
type TimerOvertime struct {
	TimerID     string `json:"timer_id"`
	TimerName   string `json:"timer_name"`
	OvertimeSec int    `json:"overtime_sec"`
}

// EventAnalytics aggregates an event's feedback and overtime history.
type EventAnalytics struct {
	EventID       string          `json:"event_id"`
	ResponseCount int             `json:"response_count"`
	AverageRating float64         `json:"average_rating"`
	Overtime      []TimerOvertime `json:"overtime"`
}
