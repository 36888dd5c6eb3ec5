package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/DualDorans/ai-humanizer-project/internal/humanizer"
	"github.com/DualDorans/ai-humanizer-project/internal/models"
)

// handleHumanize runs the full pipeline synchronously and saves the result
// as a project. The request blocks for up to MaxAttempts * PollInterval.
func (s *Server) handleHumanize(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.HumanizeResponse{
			Success: false,
			Error:   humanizer.ErrNotAuthenticated.Error(),
		})
	}

	var req models.HumanizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.HumanizeResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	result, err := s.orchestrator.Humanize(c.Context(), userID, req.Text)
	if err != nil {
		return c.Status(humanizeErrorStatus(err)).JSON(models.HumanizeResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	// The humanized text is the caller's result either way; losing the
	// project row is logged, not surfaced.
	if _, err := s.projects.Save(c.Context(), userID, req.Text, result.Output); err != nil {
		s.logger.Error("Failed to save project", "user_id", userID, "error", err)
	}

	return c.JSON(models.HumanizeResponse{
		Success:    true,
		Output:     result.Output,
		WordCount:  result.WordCount,
		Reconciled: result.Reconciled,
	})
}

// humanizeErrorStatus maps the orchestrator's error taxonomy onto HTTP.
func humanizeErrorStatus(err error) int {
	var insufficient *humanizer.InsufficientCreditsError
	switch {
	case errors.Is(err, humanizer.ErrEmptyInput):
		return fiber.StatusBadRequest
	case errors.As(err, &insufficient):
		return fiber.StatusPaymentRequired
	case errors.Is(err, humanizer.ErrTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}

// handleGetMetrics exposes the tracker's aggregate counters.
func (s *Server) handleGetMetrics(c *fiber.Ctx) error {
	return c.JSON(s.tracker.GetMetrics())
}
