package repository

import (
	"context"
	"errors"

	"campushub/internal/models"

	"gorm.io/gorm"
)

// Reaction toggle outcomes.
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
	ReactionUpdated = "updated"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	Toggle(ctx context.Context, userID, postID uint, emoji string) (string, error)
	CountsByPost(ctx context.Context, postID uint) (map[string]int, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle applies the reaction state machine inside a transaction: same emoji
// removes the reaction, a different emoji replaces it, no existing reaction
// inserts one. The unique (post_id, user_id) index keeps concurrent toggles
// from producing two rows.
func (r *reactionRepository) Toggle(ctx context.Context, userID, postID uint, emoji string) (string, error) {
	var action string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.
			Where("post_id = ? AND user_id = ?", postID, userID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			action = ReactionAdded
			return tx.Create(&models.Reaction{
				PostID: postID,
				UserID: userID,
				Emoji:  emoji,
			}).Error
		case err != nil:
			return err
		case existing.Emoji == emoji:
			action = ReactionRemoved
			return tx.Unscoped().Delete(&existing).Error
		default:
			action = ReactionUpdated
			return tx.Model(&existing).Update("emoji", emoji).Error
		}
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// CountsByPost tallies the post's active reactions grouped by emoji.
func (r *reactionRepository) CountsByPost(ctx context.Context, postID uint) (map[string]int, error) {
	var rows []struct {
		Emoji string
		Count int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select("emoji, COUNT(*) as count").
		Where("post_id = ?", postID).
		Group("emoji").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Emoji] = row.Count
	}
	return out, nil
}
