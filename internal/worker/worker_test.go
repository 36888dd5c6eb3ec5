package worker

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/DualDorans/ai-humanizer-project/internal/config"
	"github.com/DualDorans/ai-humanizer-project/internal/humanizer"
	"github.com/DualDorans/ai-humanizer-project/internal/models"
	"github.com/DualDorans/ai-humanizer-project/internal/projects"
	"github.com/DualDorans/ai-humanizer-project/pkg/database"
)

type fakeHumanizer struct {
	result *humanizer.Result
	err    error
	calls  int
}

func (f *fakeHumanizer) Humanize(ctx context.Context, userID, text string) (*humanizer.Result, error) {
	f.calls++
	return f.result, f.err
}

func setupTestWorker(t *testing.T) (*Worker, sqlmock.Sqlmock, *miniredis.Miniredis, *fakeHumanizer) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")

	miniRedis, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(miniRedis.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: miniRedis.Addr()})

	cfg := &config.Config{
		Kafka: config.KafkaConfig{Topic: "test-topic"},
		Redis: config.RedisConfig{ResultTTL: time.Hour},
	}
	clients := &database.Clients{DB: db, Redis: redisClient}

	fake := &fakeHumanizer{}
	w := &Worker{
		cfg:          cfg,
		db:           clients,
		orchestrator: fake,
		projects:     projects.NewStore(db),
		ready:        make(chan bool),
	}
	return w, mock, miniRedis, fake
}

func jobMessage(t *testing.T, job models.Job) *sarama.ConsumerMessage {
	raw, err := json.Marshal(job)
	assert.NoError(t, err)
	return &sarama.ConsumerMessage{Value: raw}
}

func TestProcessJobSuccess(t *testing.T) {
	w, mock, miniRedis, fake := setupTestWorker(t)
	fake.result = &humanizer.Result{
		JobID:      "uuid-1",
		Output:     "humanized output",
		WordCount:  3,
		Reconciled: true,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO projects (user_id, input_text, output_text)
		 VALUES ($1, $2, $3) RETURNING id, created_at`)).
		WithArgs("user-1", "a b c", "humanized output").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $1 WHERE id = $2")).
		WithArgs(models.StatusCompleted, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := jobMessage(t, models.Job{ID: 42, UserID: "user-1", InputText: "a b c"})
	err := w.processJob(context.Background(), msg)
	assert.NoError(t, err)
	assert.Equal(t, 1, fake.calls)

	status, err := miniRedis.Get("job:42")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status)

	output, err := miniRedis.Get("job:42:result")
	assert.NoError(t, err)
	assert.Equal(t, "humanized output", output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessJobFailureMarksFailed(t *testing.T) {
	w, mock, miniRedis, fake := setupTestWorker(t)
	fake.err = humanizer.ErrTimeout

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $1 WHERE id = $2")).
		WithArgs(models.StatusFailed, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := jobMessage(t, models.Job{ID: 7, UserID: "user-1", InputText: "a b c"})
	err := w.processJob(context.Background(), msg)
	assert.ErrorIs(t, err, humanizer.ErrTimeout)

	status, err := miniRedis.Get("job:7")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status)

	// No result should be cached for a failed job.
	_, err = miniRedis.Get("job:7:result")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessJobBadPayload(t *testing.T) {
	w, _, _, fake := setupTestWorker(t)

	err := w.processJob(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.Error(t, err)
	assert.Zero(t, fake.calls)
}

func TestProcessJobProjectSaveFailureIsNonFatal(t *testing.T) {
	w, mock, miniRedis, fake := setupTestWorker(t)
	fake.result = &humanizer.Result{Output: "out", WordCount: 1, Reconciled: true}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO projects (user_id, input_text, output_text)
		 VALUES ($1, $2, $3) RETURNING id, created_at`)).
		WithArgs("user-1", "hello", "out").
		WillReturnError(errors.New("disk full"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $1 WHERE id = $2")).
		WithArgs(models.StatusCompleted, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := jobMessage(t, models.Job{ID: 9, UserID: "user-1", InputText: "hello"})
	err := w.processJob(context.Background(), msg)
	assert.NoError(t, err, "a lost project row must not fail the job")

	status, err := miniRedis.Get("job:9")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status)
}
