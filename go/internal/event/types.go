package event

// CreateEventRequest represents the data needed to create a new event
type CreateEventRequest struct {
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	BufferSec int    `json:"buffer_sec"`
}

// UpdateEventRequest represents the data needed to update an existing event
type UpdateEventRequest struct {
	Name      string `json:"name"`
	BufferSec int    `json:"buffer_sec"`
}
