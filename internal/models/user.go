package models

import "time"

// User is a registered account. The digest never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // don’t expose hash
	CreatedAt    time.Time `json:"-"`
}

// Session is one active token of a user, as stored.
type Session struct {
	UserID    string     `json:"-"`
	Token     string     `json:"-"`
	Purpose   string     `json:"purpose"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}
