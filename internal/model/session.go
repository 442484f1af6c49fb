package model

import "time"

// Session is the persisted (token, role) pair behind a portal_session cookie.
type Session struct {
	ID        string    `json:"id" db:"id"`
	Token     string    `json:"token" db:"token"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
