package models

import "time"

// ChatMessage is one message on the internal staff chat board.
// Clients poll the listing endpoint with the last seen ID.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Username  *string   `json:"username,omitempty"` // joined from users on list queries
}
