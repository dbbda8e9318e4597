package repository

import (
	"context"
	"errors"

	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChannelRepository defines the interface for channel data operations
type ChannelRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Channel, error)
	GetByName(ctx context.Context, name string) (*models.Channel, error)
	List(ctx context.Context) ([]*models.Channel, error)
	EnsureDefaults(ctx context.Context) error
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) GetByID(ctx context.Context, id uint) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).First(&channel, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) GetByName(ctx context.Context, name string) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := r.db.WithContext(ctx).Order("id ASC").Find(&channels).Error
	return channels, err
}

// EnsureDefaults guarantees the global public and following channels exist.
// Safe to call on every boot.
func (r *channelRepository) EnsureDefaults(ctx context.Context) error {
	defaults := []models.Channel{
		{Name: models.ChannelPublic, Description: "Posts visible to everyone"},
		{Name: models.ChannelFollowing, Description: "Posts from people you follow"},
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&defaults).Error
}
