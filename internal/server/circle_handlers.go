package server

import (
	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCircle handles POST /api/circles/create
func (s *Server) CreateCircle(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	circle, err := s.circleService.CreateCircle(c.Context(), service.CreateCircleInput{
		CreatorID:   userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

// GetCircles handles GET /api/circles
func (s *Server) GetCircles(c *fiber.Ctx) error {
	page := parsePagination(c, defaultFeedLimit)
	circles, err := s.circleService.ListCircles(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"circles": circles})
}

// GetMyCircles handles GET /api/circles/mine
func (s *Server) GetMyCircles(c *fiber.Ctx) error {
	circles, err := s.circleService.ListMyCircles(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"circles": circles})
}

// GetCircle handles GET /api/circles/:id
func (s *Server) GetCircle(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	circle, err := s.circleService.GetCircle(c.Context(), circleID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(circle)
}

// UpdateCircle handles PUT /api/circles/:id
func (s *Server) UpdateCircle(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Description        *string `json:"description"`
		BackgroundImageURL *string `json:"background_image_url"`
		IsPublic           *bool   `json:"is_public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	circle, err := s.circleService.UpdateCircle(c.Context(), circleID, userID,
		req.Description, req.BackgroundImageURL, req.IsPublic)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(circle)
}

// JoinCircle handles POST /api/circles/:id/join
func (s *Server) JoinCircle(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.circleService.Join(c.Context(), circleID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "joined"})
}

// LeaveCircle handles POST /api/circles/:id/leave?confirm=1.
// The last member gets a confirm_required response with nothing mutated;
// repeating the request with confirm=1 cascade-deletes the circle.
func (s *Server) LeaveCircle(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.circleService.Leave(c.Context(), service.LeaveCircleInput{
		CircleID: circleID,
		UserID:   userID,
		Confirm:  c.QueryBool("confirm"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": string(status)})
}

// InviteToCircle handles POST /api/circles/:id/invite
func (s *Server) InviteToCircle(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	if err := s.circleService.Invite(c.Context(), circleID, userID, req.UserID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "invited"})
}

// GetCircleMembers handles GET /api/circles/:id/members
func (s *Server) GetCircleMembers(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.circleService.ListMembers(c.Context(), circleID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

// PromoteExecutive handles POST /api/circles/:id/members/:userId/executive
func (s *Server) PromoteExecutive(c *fiber.Ctx) error {
	actorID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.circleService.Promote(c.Context(), circleID, actorID, targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "promoted"})
}

// DemoteExecutive handles DELETE /api/circles/:id/members/:userId/executive
func (s *Server) DemoteExecutive(c *fiber.Ctx) error {
	actorID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.circleService.Demote(c.Context(), circleID, actorID, targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "demoted"})
}

// SetExecutiveTitle handles PUT /api/circles/:id/executive/title
func (s *Server) SetExecutiveTitle(c *fiber.Ctx) error {
	actorID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.circleService.SetExecutiveTitle(c.Context(), circleID, actorID, req.Title); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// CreatePrivateTimeline handles POST /api/circles/:id/private_tls.
// Member ids outside the circle are silently dropped; the creator is
// always included.
func (s *Server) CreatePrivateTimeline(c *fiber.Ctx) error {
	actorID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name      string `json:"name"`
		MemberIDs []uint `json:"member_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	timeline, err := s.circleService.CreatePrivateTimeline(c.Context(), service.CreateTimelineInput{
		CircleID:  circleID,
		ActorID:   actorID,
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(timeline)
}

// GetCircleTimelines handles GET /api/circles/:id/private_tls
func (s *Server) GetCircleTimelines(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	timelines, err := s.circleService.ListCircleTimelines(c.Context(), circleID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"timelines": timelines})
}

// DeleteTimeline handles DELETE /api/circles/:id/private_tls/:tlId
func (s *Server) DeleteTimeline(c *fiber.Ctx) error {
	actorID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tlID, err := s.parseID(c, "tlId")
	if err != nil {
		return nil
	}

	if err := s.circleService.DeleteTimeline(c.Context(), circleID, tlID, actorID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// GetUserTimelines handles GET /api/community/api/user_tls. Powers the
// sidebar listing of every private timeline the user belongs to.
func (s *Server) GetUserTimelines(c *fiber.Ctx) error {
	timelines, err := s.circleService.ListUserTimelines(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"timelines": timelines})
}
