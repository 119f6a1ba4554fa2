package models

import "time"

type Todo struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"` // null unless completed
	CreatedAt   time.Time  `json:"created_at"`
}
