package service

import (
	"context"
	"strings"

	"campushub/internal/models"
	"campushub/internal/repository"
)

// DMService drives one-to-one conversations. A conversation is keyed by
// the unordered user pair; it exists or it doesn't, there is no other
// state, and messages are immutable once sent.
type DMService struct {
	dmRepo   repository.DMRepository
	userRepo repository.UserRepository
}

type SendMessageInput struct {
	SenderID    uint
	RecipientID uint
	Content     string
}

// History is a conversation thread. Conversation is nil when the pair
// has never talked; Messages is then empty.
type History struct {
	Conversation *models.Conversation    `json:"conversation"`
	Messages     []*models.DirectMessage `json:"messages"`
}

func NewDMService(dmRepo repository.DMRepository, userRepo repository.UserRepository) *DMService {
	return &DMService{dmRepo: dmRepo, userRepo: userRepo}
}

// GetOrCreateConversation returns the pair's conversation, creating it
// if absent. Safe under concurrent calls with swapped argument order.
func (s *DMService) GetOrCreateConversation(ctx context.Context, userID, otherID uint) (*models.Conversation, error) {
	if userID == otherID {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}

	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, models.NewNotFoundError("User", otherID)
	}

	conv, err := s.dmRepo.GetConversationByPair(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}
	return s.dmRepo.CreateConversation(ctx, userID, otherID)
}

const maxMessageLen = 5000

// SendMessage persists the message in the pair's conversation, creating
// the conversation on first contact.
func (s *DMService) SendMessage(ctx context.Context, in SendMessageInput) (*models.DirectMessage, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(in.Content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}

	conv, err := s.GetOrCreateConversation(ctx, in.SenderID, in.RecipientID)
	if err != nil {
		return nil, err
	}

	message := &models.DirectMessage{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		RecipientID:    in.RecipientID,
		Content:        in.Content,
	}
	if err := s.dmRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetHistory returns the thread with another user, oldest-first. If the
// pair never talked the conversation is nil and no row is created.
func (s *DMService) GetHistory(ctx context.Context, userID, otherID uint, limit, offset int) (*History, error) {
	conv, err := s.dmRepo.GetConversationByPair(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return &History{Messages: []*models.DirectMessage{}}, nil
	}

	messages, err := s.dmRepo.ListMessages(ctx, conv.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &History{Conversation: conv, Messages: messages}, nil
}

// ListConversations returns the user's conversations, most recently
// active first.
func (s *DMService) ListConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.dmRepo.ListConversationsForUser(ctx, userID)
}

// ConversationForUser loads a conversation and verifies the user is one
// of its two participants.
func (s *DMService) ConversationForUser(ctx context.Context, conversationID, userID uint) (*models.Conversation, error) {
	conv, err := s.dmRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, models.NewNotFoundError("Conversation", conversationID)
	}
	if conv.User1ID != userID && conv.User2ID != userID {
		return nil, models.NewUnauthorizedError("You are not part of this conversation")
	}
	return conv, nil
}
