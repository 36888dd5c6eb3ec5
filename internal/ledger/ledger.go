// Package ledger owns the per-user word-credit balance.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Ledger reads and mutates the credits column of the users table. Every user
// has exactly one row; rows are created lazily with the default balance the
// first time a balance is read.
type Ledger struct {
	db             *sqlx.DB
	defaultCredits int
}

func New(db *sqlx.DB, defaultCredits int) *Ledger {
	return &Ledger{db: db, defaultCredits: defaultCredits}
}

// GetBalance returns the user's current credit balance, creating the row with
// the default balance if it does not exist yet. A storage error never blocks
// the caller: the default balance is returned instead, so a degraded ledger
// degrades accounting, not availability.
func (l *Ledger) GetBalance(ctx context.Context, userID string) int {
	var credits int
	err := l.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, credits) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET credits = users.credits
		 RETURNING credits`,
		userID, l.defaultCredits,
	).Scan(&credits)
	if err != nil {
		slog.Error("Failed to read credit balance, falling back to default",
			"user_id", userID, "error", err)
		return l.defaultCredits
	}
	return credits
}

// Adjust overwrites the user's balance with the exact value given. The caller
// computes the new balance; this is not a delta.
func (l *Ledger) Adjust(ctx context.Context, userID string, newBalance int) error {
	if newBalance < 0 {
		return fmt.Errorf("balance must not be negative: %d", newBalance)
	}
	res, err := l.db.ExecContext(ctx,
		"UPDATE users SET credits = $1 WHERE id = $2", newBalance, userID)
	if err != nil {
		return fmt.Errorf("failed to update credits: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no credit record for user %s", userID)
	}
	return nil
}

// Deduct atomically decrements the balance by amount, guarded by a
// credits >= amount precondition so concurrent spenders cannot drive the
// balance negative. It reports whether the precondition held; false with a
// nil error means another writer got there first.
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("amount must not be negative: %d", amount)
	}
	res, err := l.db.ExecContext(ctx,
		"UPDATE users SET credits = credits - $1 WHERE id = $2 AND credits >= $1",
		amount, userID)
	if err != nil {
		return false, fmt.Errorf("failed to deduct credits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deduct result: %w", err)
	}
	return n == 1, nil
}
