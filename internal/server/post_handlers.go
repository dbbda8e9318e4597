package server

import (
	"io"

	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// attachmentFromRequest stores the multipart "attachment" file if the
// request carries one, returning the URL and media type to persist on the
// post. JSON bodies and multipart bodies without the field yield empty
// values.
func (s *Server) attachmentFromRequest(c *fiber.Ctx, userID uint) (string, string, error) {
	file, err := c.FormFile("attachment")
	if err != nil || file == nil {
		return "", "", nil
	}

	f, err := file.Open()
	if err != nil {
		return "", "", models.NewValidationError("Could not read attachment")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", "", models.NewValidationError("Could not read attachment")
	}

	saved, err := s.mediaService.SaveAttachment(userID, content)
	if err != nil {
		return "", "", err
	}
	return saved.URL, saved.MediaType, nil
}

// CreateChannelPost handles POST /api/community/posts
func (s *Server) CreateChannelPost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Content   string `json:"content" form:"content"`
		ChannelID uint   `json:"channel_id" form:"channel_id"`
		CourseID  *uint  `json:"course_id" form:"course_id"`
		MediaURL  string `json:"media_url" form:"media_url"`
		MediaType string `json:"media_type" form:"media_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ChannelID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Channel ID is required"))
	}

	attachmentURL, attachmentType, aerr := s.attachmentFromRequest(c, userID)
	if aerr != nil {
		return respondServiceError(c, aerr)
	}
	if attachmentURL != "" {
		req.MediaURL = attachmentURL
		req.MediaType = attachmentType
	}

	post, err := s.postService.CreateChannelPost(c.Context(), service.CreateChannelPostInput{
		UserID:    userID,
		Content:   req.Content,
		ChannelID: req.ChannelID,
		CourseID:  req.CourseID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.emitRoomEvent(roomForPost(post), EventNewPost, post)

	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateCirclePost handles POST /api/community/circles/:id/posts
func (s *Server) CreateCirclePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content    string `json:"content" form:"content"`
		TimelineID uint   `json:"tl_id" form:"tl_id"`
		MediaURL   string `json:"media_url" form:"media_url"`
		MediaType  string `json:"media_type" form:"media_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	attachmentURL, attachmentType, aerr := s.attachmentFromRequest(c, userID)
	if aerr != nil {
		return respondServiceError(c, aerr)
	}
	if attachmentURL != "" {
		req.MediaURL = attachmentURL
		req.MediaType = attachmentType
	}

	post, err := s.postService.CreateCirclePost(c.Context(), service.CreateCirclePostInput{
		UserID:     userID,
		CircleID:   circleID,
		TimelineID: req.TimelineID,
		Content:    req.Content,
		MediaURL:   req.MediaURL,
		MediaType:  req.MediaType,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.emitRoomEvent(roomForPost(post), EventNewPost, post)

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/community/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/community/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: userID,
		PostID: postID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.emitRoomEvent(roomForPost(post), EventPostDeleted, fiber.Map{
		"post_id": post.ID,
	})

	return c.JSON(fiber.Map{"status": "deleted", "post_id": post.ID})
}

// ToggleLike handles POST /api/community/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.emitRoomEvent(roomForPost(post), EventLikesUpdated, fiber.Map{
		"post_id":     post.ID,
		"likes_count": post.LikesCount,
	})

	return c.JSON(fiber.Map{
		"post_id":     post.ID,
		"likes_count": post.LikesCount,
		"liked":       post.Liked,
	})
}

// ToggleReaction handles POST /api/community/posts/:id/react
func (s *Server) ToggleReaction(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.postService.ToggleReaction(c.Context(), userID, postID, req.Emoji)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, gerr := s.postService.GetPost(c.Context(), postID, userID)
	if gerr == nil {
		s.emitRoomEvent(roomForPost(post), EventReactionUpdated, fiber.Map{
			"post_id":   postID,
			"action":    result.Action,
			"reactions": result.Counts,
		})
	}

	return c.JSON(fiber.Map{
		"post_id":   postID,
		"action":    result.Action,
		"reactions": result.Counts,
	})
}
