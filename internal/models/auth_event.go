package models

import "time"

// AuthEvent is a single audit log entry for an account.
type AuthEvent struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // REGISTERED | LOGIN | LOGIN_FAILED | LOGOUT | ACCOUNT_DELETED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
