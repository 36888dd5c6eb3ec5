package humanizer

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the submitted text is blank after trimming.
var ErrEmptyInput = errors.New("text must not be empty")

// ErrTimeout is returned when the poll budget is exhausted with no output.
var ErrTimeout = errors.New("timed out waiting for humanized text")

// ErrNotAuthenticated is returned when the caller's identity cannot be
// resolved from the session.
var ErrNotAuthenticated = errors.New("user not authenticated")

// InsufficientCreditsError is returned when the user's balance cannot cover
// the word count of the submitted text. No job is submitted and no credits
// are touched.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d but have %d available",
		e.Required, e.Available)
}

// SubmitError is a failed submission to the external API; the ledger is
// untouched when it occurs.
type SubmitError struct {
	Detail string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit failed: %s", e.Detail)
}

// PollError is a hard failure from a poll attempt. It terminates the poll
// loop immediately without exhausting the remaining attempts.
type PollError struct {
	Detail string
}

func (e *PollError) Error() string {
	return fmt.Sprintf("document fetch failed: %s", e.Detail)
}
