package repository

import (
	"context"
	"errors"

	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimelineRepository defines the interface for private timeline data operations
type TimelineRepository interface {
	Create(ctx context.Context, timeline *models.Timeline, memberIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Timeline, error)
	ListByCircle(ctx context.Context, circleID uint) ([]*models.Timeline, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Timeline, error)
	ListByCircleForUser(ctx context.Context, circleID, userID uint) ([]*models.Timeline, error)
	IsMember(ctx context.Context, timelineID, userID uint) (bool, error)
	AddMember(ctx context.Context, timelineID, userID uint) error
	ListMemberIDs(ctx context.Context, timelineID uint) ([]uint, error)
	DeleteCascade(ctx context.Context, timelineID uint) error
}

type timelineRepository struct {
	db *gorm.DB
}

// NewTimelineRepository creates a new timeline repository
func NewTimelineRepository(db *gorm.DB) TimelineRepository {
	return &timelineRepository{db: db}
}

// Create inserts the timeline and its initial memberships atomically.
func (r *timelineRepository) Create(ctx context.Context, timeline *models.Timeline, memberIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(timeline).Error; err != nil {
			return err
		}
		memberships := make([]models.TimelineMembership, 0, len(memberIDs))
		for _, id := range memberIDs {
			memberships = append(memberships, models.TimelineMembership{
				TimelineID: timeline.ID,
				UserID:     id,
			})
		}
		if len(memberships) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&memberships).Error
	})
}

func (r *timelineRepository) GetByID(ctx context.Context, id uint) (*models.Timeline, error) {
	var timeline models.Timeline
	err := r.db.WithContext(ctx).First(&timeline, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &timeline, nil
}

func (r *timelineRepository) ListByCircle(ctx context.Context, circleID uint) ([]*models.Timeline, error) {
	var timelines []*models.Timeline
	err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("created_at ASC").
		Find(&timelines).Error
	return timelines, err
}

func (r *timelineRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Timeline, error) {
	var timelines []*models.Timeline
	err := r.db.WithContext(ctx).
		Joins("JOIN timeline_memberships tm ON tm.timeline_id = timelines.id").
		Where("tm.user_id = ?", userID).
		Order("timelines.created_at ASC").
		Find(&timelines).Error
	return timelines, err
}

func (r *timelineRepository) ListByCircleForUser(ctx context.Context, circleID, userID uint) ([]*models.Timeline, error) {
	var timelines []*models.Timeline
	err := r.db.WithContext(ctx).
		Joins("JOIN timeline_memberships tm ON tm.timeline_id = timelines.id").
		Where("timelines.circle_id = ? AND tm.user_id = ?", circleID, userID).
		Order("timelines.created_at ASC").
		Find(&timelines).Error
	return timelines, err
}

func (r *timelineRepository) IsMember(ctx context.Context, timelineID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TimelineMembership{}).
		Where("timeline_id = ? AND user_id = ?", timelineID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *timelineRepository) AddMember(ctx context.Context, timelineID, userID uint) error {
	membership := models.TimelineMembership{TimelineID: timelineID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&membership).Error
}

func (r *timelineRepository) ListMemberIDs(ctx context.Context, timelineID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.TimelineMembership{}).
		Where("timeline_id = ?", timelineID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// DeleteCascade removes the timeline, its memberships and the posts tagged
// to it (with their engagement rows), in one transaction.
func (r *timelineRepository) DeleteCascade(ctx context.Context, timelineID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&models.Post{}).Select("id").Where("timeline_id = ?", timelineID)
		commentIDs := tx.Model(&models.Comment{}).Select("id").
			Where("post_id IN (?)", tx.Model(&models.Post{}).Select("id").Where("timeline_id = ?", timelineID))

		if err := tx.Unscoped().Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id IN (?)", postIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id IN (?)", postIDs).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id IN (?)", postIDs).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("timeline_id = ?", timelineID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("timeline_id = ?", timelineID).Delete(&models.TimelineMembership{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Timeline{}, timelineID).Error
	})
}
