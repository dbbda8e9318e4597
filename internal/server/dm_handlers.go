package server

import (
	"campushub/internal/models"
	"campushub/internal/notifications"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetConversations handles GET /api/dm/api/dms
func (s *Server) GetConversations(c *fiber.Ctx) error {
	conversations, err := s.dmService.ListConversations(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

// GetDMHistory handles GET /api/dm/api/dms/:userId/messages. Returns the
// thread oldest-first; conversation is null when the pair never talked.
func (s *Server) GetDMHistory(c *fiber.Ctx) error {
	userID := currentUserID(c)
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	history, err := s.dmService.GetHistory(c.Context(), userID, otherID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(history)
}

// SendDM handles POST /api/dm/api/dms/:userId/messages. The message is
// persisted first, then broadcast to the conversation room plus a
// notification to the recipient's user room.
func (s *Server) SendDM(c *fiber.Ctx) error {
	userID := currentUserID(c)
	recipientID, err := s.parseID(c, "userId")
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

	message, err := s.dmService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:    userID,
		RecipientID: recipientID,
		Content:     req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.emitRoomEvent(notifications.ConversationRoom(message.ConversationID),
		EventReceiveDM, message)
	s.emitRoomEvent(notifications.UserRoom(recipientID), EventDMNotification, fiber.Map{
		"conversation_id": message.ConversationID,
		"sender_id":       userID,
		"preview":         message.Content,
	})

	return c.Status(fiber.StatusCreated).JSON(message)
}
