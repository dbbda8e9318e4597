package repository

import (
	"context"
	"errors"

	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DMRepository defines the interface for direct message data operations
type DMRepository interface {
	GetConversationByPair(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	GetConversationByID(ctx context.Context, id uint) (*models.Conversation, error)
	CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID uint) ([]*models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.DirectMessage) error
	ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]*models.DirectMessage, error)
}

type dmRepository struct {
	db *gorm.DB
}

// NewDMRepository creates a new direct message repository
func NewDMRepository(db *gorm.DB) DMRepository {
	return &dmRepository{db: db}
}

func (r *dmRepository) GetConversationByPair(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	u1, u2 := models.NormalizePair(userA, userB)
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *dmRepository) GetConversationByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// CreateConversation inserts the normalized pair. A concurrent insert of the
// same pair hits the unique index; the conflicting insert is a no-op and the
// existing row is fetched instead, so both callers get the same conversation.
func (r *dmRepository) CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	u1, u2 := models.NormalizePair(userA, userB)
	conv := models.Conversation{User1ID: u1, User2ID: u2}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&conv)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return r.GetConversationByPair(ctx, u1, u2)
	}
	return r.GetConversationByID(ctx, conv.ID)
}

// ListConversationsForUser returns the user's conversations newest-activity
// first, each with its last message attached.
func (r *dmRepository) ListConversationsForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	err := r.db.WithContext(ctx).
		Preload("User1").
		Preload("User2").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	for _, conv := range convs {
		var last models.DirectMessage
		err := r.db.WithContext(ctx).
			Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			First(&last).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		conv.LastMessage = &last
	}
	return convs, nil
}

// CreateMessage stores the message and bumps the conversation's updated_at
// so conversation lists sort by recent activity.
func (r *dmRepository) CreateMessage(ctx context.Context, message *models.DirectMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("updated_at", message.CreatedAt).Error
	})
}

// ListMessages returns messages oldest-first for rendering a thread.
func (r *dmRepository) ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]*models.DirectMessage, error) {
	var messages []*models.DirectMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}
