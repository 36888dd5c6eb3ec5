package humanizer

import (
	"sync"
	"time"
)

// JobStatus represents the lifecycle stage of a humanization job.
type JobStatus string

const (
	// StatusPending indicates the job was accepted but not yet submitted
	StatusPending JobStatus = "pending"
	// StatusSubmitted indicates the external API accepted the document
	StatusSubmitted JobStatus = "submitted"
	// StatusPolling indicates the poll loop is waiting for output
	StatusPolling JobStatus = "polling"
	// StatusSucceeded indicates humanized output was retrieved
	StatusSucceeded JobStatus = "succeeded"
	// StatusFailed indicates submission or a poll attempt hard-failed
	StatusFailed JobStatus = "failed"
	// StatusTimedOut indicates the poll budget was exhausted with no output
	StatusTimedOut JobStatus = "timed_out"
	// StatusAbandoned indicates a job that may still be running on the
	// provider side after a hard poll failure; nothing was charged
	StatusAbandoned JobStatus = "abandoned"
)

// Metrics aggregates outcomes across all tracked jobs.
type Metrics struct {
	TotalCount              int   `json:"totalCount"`
	SuccessCount            int   `json:"successCount"`
	FailureCount            int   `json:"failureCount"`
	TimeoutCount            int   `json:"timeoutCount"`
	UnreconciledCount       int   `json:"unreconciledCount"`
	TotalProcessingTimeMs   int64 `json:"totalProcessingTimeMs"`
	AverageProcessingTimeMs int64 `json:"averageProcessingTimeMs"`
}

// StatusUpdate is a single transition in a job's lifecycle.
type StatusUpdate struct {
	JobID     string    `json:"jobID"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackerConfig holds configuration for the job tracker.
type TrackerConfig struct {
	// WebhookURL is the endpoint to notify about status changes
	WebhookURL string
	// WebhookEnabled determines whether to send webhook notifications
	WebhookEnabled bool
}

// Tracker records humanization job lifecycles for observability. It keeps
// everything in memory; it is a window into the running process, not a store.
type Tracker struct {
	statuses      map[string]StatusUpdate
	started       map[string]time.Time
	webhookClient WebhookClient
	metrics       Metrics
	config        TrackerConfig
	subscribers   []chan<- StatusUpdate
	mutex         sync.RWMutex
}

// NewTracker creates a new Tracker instance.
func NewTracker(config TrackerConfig) *Tracker {
	var webhookClient WebhookClient
	if config.WebhookEnabled {
		webhookClient = &HTTPWebhookClient{}
	} else {
		webhookClient = &noopWebhookClient{}
	}

	return &Tracker{
		statuses:      make(map[string]StatusUpdate),
		started:       make(map[string]time.Time),
		webhookClient: webhookClient,
		config:        config,
	}
}

// UpdateStatus records a job transition and notifies subscribers and the
// webhook endpoint, if configured.
func (t *Tracker) UpdateStatus(jobID string, status JobStatus, attempt int, errMsg string) {
	t.mutex.Lock()

	update := StatusUpdate{
		JobID:     jobID,
		Status:    status,
		Error:     errMsg,
		Attempt:   attempt,
		Timestamp: time.Now(),
	}
	t.statuses[jobID] = update

	switch status {
	case StatusPending:
		t.started[jobID] = update.Timestamp
		t.metrics.TotalCount++
	case StatusSucceeded:
		t.metrics.SuccessCount++
		t.recordDuration(jobID, update.Timestamp)
	case StatusFailed, StatusAbandoned:
		t.metrics.FailureCount++
		t.recordDuration(jobID, update.Timestamp)
	case StatusTimedOut:
		t.metrics.TimeoutCount++
		t.recordDuration(jobID, update.Timestamp)
	}

	subscribers := make([]chan<- StatusUpdate, len(t.subscribers))
	copy(subscribers, t.subscribers)
	t.mutex.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- update:
		default:
			// Slow subscribers miss updates rather than blocking the pipeline.
		}
	}

	if t.config.WebhookEnabled && t.config.WebhookURL != "" {
		go t.webhookClient.Send(t.config.WebhookURL, update)
	}
}

// RecordDrift counts a job whose output was delivered but whose credit
// deduction did not land, so accounting drift stays visible.
func (t *Tracker) RecordDrift(jobID string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.metrics.UnreconciledCount++
}

// GetStatus returns the last recorded update for a job.
func (t *Tracker) GetStatus(jobID string) (StatusUpdate, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	update, ok := t.statuses[jobID]
	return update, ok
}

// GetMetrics returns a snapshot of the aggregate metrics.
func (t *Tracker) GetMetrics() Metrics {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.metrics
}

// Subscribe registers a channel to receive every status update. Updates are
// dropped for subscribers that cannot keep up.
func (t *Tracker) Subscribe(ch chan<- StatusUpdate) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.subscribers = append(t.subscribers, ch)
}

// recordDuration folds a finished job's elapsed time into the averages.
// Caller must hold the write lock.
func (t *Tracker) recordDuration(jobID string, finished time.Time) {
	started, ok := t.started[jobID]
	if !ok {
		return
	}
	delete(t.started, jobID)

	t.metrics.TotalProcessingTimeMs += finished.Sub(started).Milliseconds()
	done := t.metrics.SuccessCount + t.metrics.FailureCount + t.metrics.TimeoutCount
	if done > 0 {
		t.metrics.AverageProcessingTimeMs = t.metrics.TotalProcessingTimeMs / int64(done)
	}
}
