package service

import "time"

// TodoPatch carries the optional fields of a todo update.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// LogFilter supports audit history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "REGISTERED", "LOGIN", "LOGIN_FAILED", "LOGOUT", "ACCOUNT_DELETED"
}

// SessionInfo describes one active token without revealing it.
type SessionInfo struct {
	Purpose   string     `json:"purpose"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	Current   bool       `json:"current"`
}
