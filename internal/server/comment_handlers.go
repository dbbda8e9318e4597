package server

import (
	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/community/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/community/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:  userID,
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if post, gerr := s.postService.GetPost(c.Context(), postID, userID); gerr == nil {
		s.emitRoomEvent(roomForPost(post), EventNewComment, fiber.Map{
			"post_id":        postID,
			"comment":        comment,
			"comments_count": post.CommentsCount,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/community/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	existing, err := s.commentRepo.GetByID(c.Context(), commentID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing == nil || existing.PostID != postID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment", commentID))
	}

	comment, err := s.commentService.DeleteComment(c.Context(), service.DeleteCommentInput{
		UserID:    userID,
		CommentID: commentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"status": "deleted", "comment_id": comment.ID})
}

// ToggleCommentLike handles POST /api/community/comments/:id/like.
// Likes are stored against the comment itself, never its parent post.
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.ToggleCommentLike(c.Context(), userID, commentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if post, gerr := s.postService.GetPost(c.Context(), comment.PostID, userID); gerr == nil {
		s.emitRoomEvent(roomForPost(post), EventCommentLikesUpdated, fiber.Map{
			"comment_id":  comment.ID,
			"post_id":     comment.PostID,
			"likes_count": comment.LikesCount,
		})
	}

	return c.JSON(fiber.Map{
		"comment_id":  comment.ID,
		"likes_count": comment.LikesCount,
		"liked":       comment.Liked,
	})
}
