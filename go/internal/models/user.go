package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns events or claims presenter slots.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
