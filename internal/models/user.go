package models

// UserCredits is the per-user word-credit balance row. The id matches the
// Supabase auth user id; exactly one row exists per user and it is created
// lazily with the default balance on first read.
type UserCredits struct {
	ID      string `json:"id" db:"id"`
	Credits int    `json:"credits" db:"credits"`
}
