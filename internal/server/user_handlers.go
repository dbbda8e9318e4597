package server

import (
	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Bio        string `json:"bio"`
		Avatar     string `json:"avatar"`
		University string `json:"university"`
		Year       int    `json:"year"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:     userID,
		Bio:        req.Bio,
		Avatar:     req.Avatar,
		University: req.University,
		Year:       req.Year,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetOnlineUsers handles GET /api/users/online
func (s *Server) GetOnlineUsers(c *fiber.Ctx) error {
	if s.presence == nil {
		return c.JSON(fiber.Map{"user_ids": []uint{}})
	}
	ids := s.presence.GetOnlineUserIDs(c.Context())
	if ids == nil {
		ids = []uint{}
	}
	return c.JSON(fiber.Map{"user_ids": ids})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	following, err := s.userService.IsFollowing(c.Context(), currentUserID(c), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"user":      user,
		"following": following,
	})
}

// GetUserPosts handles GET /api/users/:id/posts (the profile feed)
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultFeedLimit)

	posts, err := s.feedService.User(c.Context(), currentUserID(c), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// ToggleFollow handles POST /api/community/user/:id/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	followerID := currentUserID(c)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.IsFollowing(c.Context(), followerID, targetID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if following {
		err = s.userService.Unfollow(c.Context(), followerID, targetID)
	} else {
		err = s.userService.Follow(c.Context(), followerID, targetID)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"following": !following})
}

// SearchUsers handles GET /api/community/api/users/search?q=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Raw(),
	})
}
