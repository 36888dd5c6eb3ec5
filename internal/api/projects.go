package api

import (
	"github.com/gofiber/fiber/v2"
)

// handleListProjects returns the caller's saved projects, newest first.
func (s *Server) handleListProjects(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	list, err := s.projects.ListByUser(c.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list projects", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{"projects": list})
}

// handleGetCredits returns the caller's word-credit balance, creating the
// ledger row with the default balance on first access.
func (s *Server) handleGetCredits(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	balance := s.ledger.GetBalance(c.Context(), userID)
	return c.JSON(fiber.Map{"credits": balance})
}
