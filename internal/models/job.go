package models

import "time"

// Job is an asynchronous humanization request queued through Kafka. The
// synchronous /api/humanize path never creates one; it exists so large
// documents can be processed without holding an HTTP request open.
type Job struct {
	ID        int       `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	InputText string    `json:"input_text" db:"input_text"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)
