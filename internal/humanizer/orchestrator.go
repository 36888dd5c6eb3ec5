package humanizer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentAPI is the submit/poll surface of the external humanization
// service. *Client implements it; tests substitute their own.
type DocumentAPI interface {
	Submit(ctx context.Context, id, content string) SubmitResult
	Fetch(ctx context.Context, externalID string) FetchResult
}

// CreditLedger is the slice of the ledger the orchestrator needs.
type CreditLedger interface {
	GetBalance(ctx context.Context, userID string) int
	Deduct(ctx context.Context, userID string, amount int) (bool, error)
}

// PollConfig bounds the wait-for-completion loop.
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

// Result is a completed humanization. Reconciled reports whether the credit
// deduction landed; a false value means the output was delivered but the
// ledger is stale, which observability tracks separately from job success.
type Result struct {
	JobID      string
	Output     string
	WordCount  int
	Reconciled bool
}

// Orchestrator runs the credit-gated humanization pipeline: validate, check
// credits, submit to the external API, poll to completion and reconcile the
// ledger with the outcome. Credits are charged on success only; a failed or
// timed-out job never costs anything.
type Orchestrator struct {
	api     DocumentAPI
	ledger  CreditLedger
	tracker *Tracker
	poll    PollConfig
	sleep   func(ctx context.Context, d time.Duration) error
	newID   func() string
}

func NewOrchestrator(api DocumentAPI, ledger CreditLedger, tracker *Tracker, poll PollConfig) *Orchestrator {
	return &Orchestrator{
		api:     api,
		ledger:  ledger,
		tracker: tracker,
		poll:    poll,
		sleep:   sleepContext,
		newID:   uuid.NewString,
	}
}

// WordCount counts whitespace-delimited tokens. It is computed once at
// submission time and is the exact amount checked against and deducted from
// the balance; the output is never recounted.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Humanize submits text for the given user and blocks until the job reaches
// a terminal outcome. Each call is one sequential pipeline; concurrent calls
// coordinate only through the ledger's atomic deduction.
func (o *Orchestrator) Humanize(ctx context.Context, userID, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	wordCount := WordCount(text)
	balance := o.ledger.GetBalance(ctx, userID)
	if balance < wordCount {
		return nil, &InsufficientCreditsError{Required: wordCount, Available: balance}
	}

	jobID := o.newID()
	o.tracker.UpdateStatus(jobID, StatusPending, 0, "")
	slog.Info("Submitting humanization job",
		"job_id", jobID, "user_id", userID, "word_count", wordCount)

	submitted := o.api.Submit(ctx, jobID, text)
	if !submitted.Success {
		o.tracker.UpdateStatus(jobID, StatusFailed, 0, submitted.Error)
		return nil, &SubmitError{Detail: submitted.Error}
	}
	o.tracker.UpdateStatus(jobID, StatusSubmitted, 0, "")

	output, err := o.waitForOutput(ctx, jobID, submitted.ID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		JobID:      jobID,
		Output:     output,
		WordCount:  wordCount,
		Reconciled: o.reconcile(ctx, jobID, userID, wordCount),
	}
	o.tracker.UpdateStatus(jobID, StatusSucceeded, 0, "")
	return result, nil
}

// waitForOutput polls the external API until output appears, a poll attempt
// hard-fails, or the attempt budget runs out.
func (o *Orchestrator) waitForOutput(ctx context.Context, jobID, externalID string) (string, error) {
	for attempt := 1; attempt <= o.poll.MaxAttempts; attempt++ {
		if err := o.sleep(ctx, o.poll.Interval); err != nil {
			o.tracker.UpdateStatus(jobID, StatusAbandoned, attempt, err.Error())
			return "", err
		}

		o.tracker.UpdateStatus(jobID, StatusPolling, attempt, "")
		fetched := o.api.Fetch(ctx, externalID)
		if !fetched.Success {
			// The document may still finish on the provider side; nothing
			// was charged, but the external id is logged for audit.
			o.tracker.UpdateStatus(jobID, StatusAbandoned, attempt, fetched.Error)
			slog.Error("Poll attempt failed, abandoning job",
				"job_id", jobID, "external_id", externalID, "attempt", attempt)
			return "", &PollError{Detail: fetched.Error}
		}
		if fetched.Ready {
			return fetched.Output, nil
		}
	}

	o.tracker.UpdateStatus(jobID, StatusTimedOut, o.poll.MaxAttempts, "")
	slog.Warn("Humanization job timed out",
		"job_id", jobID, "external_id", externalID, "attempts", o.poll.MaxAttempts)
	return "", ErrTimeout
}

// reconcile charges the word count after a successful job. A write failure
// or a lost precondition is swallowed: the user keeps the output and the
// drift is recorded instead of failing the call.
func (o *Orchestrator) reconcile(ctx context.Context, jobID, userID string, wordCount int) bool {
	ok, err := o.ledger.Deduct(ctx, userID, wordCount)
	if err != nil {
		slog.Error("Failed to deduct credits after successful job",
			"job_id", jobID, "user_id", userID, "word_count", wordCount, "error", err)
		o.tracker.RecordDrift(jobID)
		return false
	}
	if !ok {
		slog.Warn("Credit deduction precondition lost, balance unchanged",
			"job_id", jobID, "user_id", userID, "word_count", wordCount)
		o.tracker.RecordDrift(jobID)
		return false
	}
	return true
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
