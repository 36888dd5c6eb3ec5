package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"

	"github.com/DualDorans/ai-humanizer-project/internal/models"
)

// handleCreateJob enqueues an asynchronous humanization job. The worker runs
// the same pipeline the synchronous endpoint does; callers poll
// GET /api/jobs/:id for the outcome.
func (s *Server) handleCreateJob(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	var req models.HumanizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	}

	// Insert job into database
	var jobID int
	err := s.db.DB.QueryRow(
		"INSERT INTO jobs (user_id, input_text, status) VALUES ($1, $2, $3) RETURNING id",
		userID, req.Text, models.StatusPending,
	).Scan(&jobID)
	if err != nil {
		s.logger.Error("Failed to create job", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job",
		})
	}

	job := models.Job{
		ID:        jobID,
		UserID:    userID,
		InputText: req.Text,
		Status:    models.StatusPending,
	}

	// Set initial status in Redis
	redisKey := fmt.Sprintf("job:%d", jobID)
	if err := s.db.Redis.Set(c.Context(), redisKey, models.StatusPending, 0).Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set job status",
		})
	}

	// Send to Kafka
	jobBytes, _ := json.Marshal(job)
	msg := &sarama.ProducerMessage{
		Topic: s.cfg.Kafka.Topic,
		Value: sarama.StringEncoder(jobBytes),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue job",
		})
	}

	return c.JSON(fiber.Map{
		"job": job,
	})
}

// handleGetJob returns a job's row plus its live status and, when completed,
// the cached result.
func (s *Server) handleGetJob(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID",
		})
	}

	var job models.Job
	query := "SELECT id, user_id, input_text, status FROM jobs WHERE id = $1 AND user_id = $2"
	if err := s.db.DB.Get(&job, query, jobID, userID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
		})
	}

	// Update status from Redis
	redisKey := fmt.Sprintf("job:%d", job.ID)
	if redisStatus, err := s.db.Redis.Get(c.Context(), redisKey).Result(); err == nil {
		job.Status = redisStatus
	}

	response := fiber.Map{"job": job}

	if job.Status == models.StatusCompleted {
		resultKey := fmt.Sprintf("job:%d:result", job.ID)
		if output, err := s.db.Redis.Get(c.Context(), resultKey).Result(); err == nil {
			response["output"] = output
		}
	}

	return c.JSON(response)
}
