package models

import "time"

// Project is a saved humanization result belonging to a user.
type Project struct {
	ID         int       `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	InputText  string    `json:"input_text" db:"input_text"`
	OutputText string    `json:"output_text" db:"output_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
