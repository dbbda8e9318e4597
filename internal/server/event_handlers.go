package server

import (
	"time"

	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateEvent handles POST /api/circles/:id/events
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartsAt    time.Time `json:"starts_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.CreateEvent(c.Context(), service.CreateEventInput{
		CircleID:    circleID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetCircleEvents handles GET /api/circles/:id/events
func (s *Server) GetCircleEvents(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	events, err := s.eventService.ListEvents(c.Context(), circleID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// ToggleAttendance handles POST /api/events/:id/attend
func (s *Server) ToggleAttendance(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventService.ToggleAttendance(c.Context(), eventID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}
