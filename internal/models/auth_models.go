package models

import "time"

// User roles. The role is stamped into JWT claims and checked by the
// role middleware; it is also the "actor" recorded on ledger entries.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User represents an operator of the system (admin or cashier).
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means never sent in JSON responses
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credentials for login requests.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
