package server

import (
	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultFeedLimit = 20

// GetFeed handles GET /api/community/:feedType with query params
// circle_id and tl_id for circle feeds.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, defaultFeedLimit)

	switch c.Params("feedType") {
	case "recommended":
		posts, err := s.feedService.Recommended(c.Context(), userID, page.Limit, page.Offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(fiber.Map{"posts": posts})

	case "following":
		posts, err := s.feedService.Following(c.Context(), userID, page.Limit, page.Offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(fiber.Map{"posts": posts})

	case "circle":
		circleID := c.QueryInt("circle_id", 0)
		if circleID <= 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("circle_id is required"))
		}
		tlID := c.QueryInt("tl_id", 0)
		if tlID < 0 {
			tlID = 0
		}
		posts, err := s.feedService.Circle(c.Context(), service.CircleFeedInput{
			UserID:     userID,
			CircleID:   uint(circleID),
			TimelineID: uint(tlID),
			Limit:      page.Limit,
			Offset:     page.Offset,
		})
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(fiber.Map{"posts": posts})

	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown feed type"))
	}
}

// GetTimelinePosts handles GET /api/community/api/circles/:id/tls/:tlId/posts.
// tlId 0 addresses the circle's default timeline.
func (s *Server) GetTimelinePosts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tlID, perr := c.ParamsInt("tlId")
	if perr != nil || tlID < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid tl ID"))
	}
	page := parsePagination(c, defaultFeedLimit)

	posts, err := s.feedService.Circle(c.Context(), service.CircleFeedInput{
		UserID:     userID,
		CircleID:   circleID,
		TimelineID: uint(tlID),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetChannels handles GET /api/community/channels
func (s *Server) GetChannels(c *fiber.Ctx) error {
	channels, err := s.channelRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"channels": channels})
}
