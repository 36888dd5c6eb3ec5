package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"

	"github.com/DualDorans/ai-humanizer-project/internal/config"
	"github.com/DualDorans/ai-humanizer-project/internal/humanizer"
	"github.com/DualDorans/ai-humanizer-project/internal/ledger"
	"github.com/DualDorans/ai-humanizer-project/internal/models"
	"github.com/DualDorans/ai-humanizer-project/internal/projects"
	"github.com/DualDorans/ai-humanizer-project/pkg/database"
)

// Humanizer runs the credit-gated pipeline for one text.
type Humanizer interface {
	Humanize(ctx context.Context, userID, text string) (*humanizer.Result, error)
}

// Worker consumes queued humanization jobs and runs them through the same
// orchestrator the synchronous API path uses. Job rows and the Redis status
// cache are updated with the terminal outcome.
type Worker struct {
	cfg          *config.Config
	db           *database.Clients
	consumer     sarama.ConsumerGroup
	orchestrator Humanizer
	projects     *projects.Store
	ready        chan bool
}

func NewWorker(cfg *config.Config, db *database.Clients, consumer sarama.ConsumerGroup) *Worker {
	tracker := humanizer.NewTracker(humanizer.TrackerConfig{
		WebhookURL:     cfg.Humanizer.WebhookURL,
		WebhookEnabled: cfg.Humanizer.WebhookURL != "",
	})
	orchestrator := humanizer.NewOrchestrator(
		humanizer.NewClient(cfg.Humanizer),
		ledger.New(db.DB, cfg.Credits.Default),
		tracker,
		humanizer.PollConfig{
			MaxAttempts: cfg.Humanizer.MaxAttempts,
			Interval:    cfg.Humanizer.PollInterval,
		},
	)

	return &Worker{
		cfg:          cfg,
		db:           db,
		consumer:     consumer,
		orchestrator: orchestrator,
		projects:     projects.NewStore(db.DB),
		ready:        make(chan bool),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting worker", "topics", topics)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for err := range w.consumer.Errors() {
			slog.Error("Kafka consumer error received", "error", err)
		}
	}()

	go func() {
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				slog.Error("Error from consumer.Consume", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			// Reset the ready channel after a new session is created
			w.ready = make(chan bool)
		}
	}()

	<-w.ready // Wait till the consumer has been set up
	slog.Info("Worker setup complete; consumer ready")

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled; shutting down worker")
	}

	slog.Info("Worker shutting down gracefully")
	return nil
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	close(w.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := w.processJob(session.Context(), message); err != nil {
			slog.Error("Failed to process job", "error", err, "offset", message.Offset)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (w *Worker) processJob(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var job models.Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return fmt.Errorf("failed to parse job: %w", err)
	}
	slog.Info("Processing humanization job", "job_id", job.ID, "user_id", job.UserID)

	result, err := w.orchestrator.Humanize(ctx, job.UserID, job.InputText)
	if err != nil {
		slog.Error("Humanization job failed", "job_id", job.ID, "error", err)
		w.finishJob(ctx, job.ID, models.StatusFailed, "")
		return err
	}

	if _, err := w.projects.Save(ctx, job.UserID, job.InputText, result.Output); err != nil {
		slog.Error("Failed to save project for job", "job_id", job.ID, "error", err)
	}

	w.finishJob(ctx, job.ID, models.StatusCompleted, result.Output)
	slog.Info("Humanization job completed",
		"job_id", job.ID, "word_count", result.WordCount, "reconciled", result.Reconciled)
	return nil
}

// finishJob records the terminal status in Postgres and Redis and caches the
// output for retrieval with a TTL.
func (w *Worker) finishJob(ctx context.Context, jobID int, status, output string) {
	if _, err := w.db.DB.Exec("UPDATE jobs SET status = $1 WHERE id = $2", status, jobID); err != nil {
		slog.Error("Failed to update job status in DB", "job_id", jobID, "error", err)
	}

	redisKey := fmt.Sprintf("job:%d", jobID)
	if err := w.db.Redis.Set(ctx, redisKey, status, 0).Err(); err != nil {
		slog.Error("Failed to update job status in Redis", "job_id", jobID, "error", err)
	}

	if output != "" {
		resultKey := fmt.Sprintf("job:%d:result", jobID)
		if err := w.db.Redis.Set(ctx, resultKey, output, w.cfg.Redis.ResultTTL).Err(); err != nil {
			slog.Error("Failed to cache job result", "job_id", jobID, "error", err)
		}
	}
}
