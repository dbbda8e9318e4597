package repository

import (
	"context"
	"errors"

	"campushub/internal/cache"
	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CircleRepository defines the interface for circle and membership data operations
type CircleRepository interface {
	Create(ctx context.Context, circle *models.Circle) error
	GetByID(ctx context.Context, id uint) (*models.Circle, error)
	Update(ctx context.Context, circle *models.Circle) error
	ListPublic(ctx context.Context, limit, offset int) ([]*models.Circle, error)
	ListByMember(ctx context.Context, userID uint) ([]*models.Circle, error)
	AddMember(ctx context.Context, membership *models.CircleMembership) (bool, error)
	GetMembership(ctx context.Context, circleID, userID uint) (*models.CircleMembership, error)
	UpdateMembership(ctx context.Context, membership *models.CircleMembership) error
	ListMembers(ctx context.Context, circleID uint) ([]*models.CircleMembership, error)
	MemberCount(ctx context.Context, circleID uint) (int64, error)
	RemoveMember(ctx context.Context, circleID, userID uint) error
	DeleteCascade(ctx context.Context, circleID uint) error
}

type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository creates a new circle repository
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

// applyCircleDetails adds the member count subquery to circle queries.
func applyCircleDetails(db *gorm.DB) *gorm.DB {
	return db.Select("circles.*, " +
		"(SELECT COUNT(*) FROM circle_memberships WHERE circle_memberships.circle_id = circles.id) as member_count")
}

// Create inserts the circle and its leader membership atomically. The leader
// joins as an executive.
func (r *circleRepository) Create(ctx context.Context, circle *models.Circle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(circle).Error; err != nil {
			return err
		}
		membership := &models.CircleMembership{
			CircleID: circle.ID,
			UserID:   circle.LeaderID,
			Role:     models.CircleRoleExecutive,
		}
		return tx.Create(membership).Error
	})
}

func (r *circleRepository) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	var circle models.Circle
	err := cache.Aside(ctx, cache.CircleKey(id), &circle, cache.CircleTTL, func() error {
		return applyCircleDetails(r.db.WithContext(ctx)).
			Preload("Leader").
			First(&circle, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &circle, nil
}

func (r *circleRepository) Update(ctx context.Context, circle *models.Circle) error {
	if err := r.db.WithContext(ctx).Save(circle).Error; err != nil {
		return err
	}
	cache.InvalidateCircle(ctx, circle.ID)
	return nil
}

func (r *circleRepository) ListPublic(ctx context.Context, limit, offset int) ([]*models.Circle, error) {
	var circles []*models.Circle
	err := applyCircleDetails(r.db.WithContext(ctx)).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&circles).Error
	return circles, err
}

func (r *circleRepository) ListByMember(ctx context.Context, userID uint) ([]*models.Circle, error) {
	var circles []*models.Circle
	err := applyCircleDetails(r.db.WithContext(ctx)).
		Joins("JOIN circle_memberships cm ON cm.circle_id = circles.id").
		Where("cm.user_id = ?", userID).
		Order("circles.name ASC").
		Find(&circles).Error
	return circles, err
}

// AddMember inserts a membership row. Returns false when the user was
// already a member (the insert conflicted and nothing changed).
func (r *circleRepository) AddMember(ctx context.Context, membership *models.CircleMembership) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(membership)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		// Cached circles carry member_count.
		cache.InvalidateCircle(ctx, membership.CircleID)
	}
	return result.RowsAffected > 0, nil
}

func (r *circleRepository) GetMembership(ctx context.Context, circleID, userID uint) (*models.CircleMembership, error) {
	var membership models.CircleMembership
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *circleRepository) UpdateMembership(ctx context.Context, membership *models.CircleMembership) error {
	return r.db.WithContext(ctx).
		Model(&models.CircleMembership{}).
		Where("circle_id = ? AND user_id = ?", membership.CircleID, membership.UserID).
		Updates(map[string]interface{}{
			"role":  membership.Role,
			"title": membership.Title,
		}).Error
}

func (r *circleRepository) ListMembers(ctx context.Context, circleID uint) ([]*models.CircleMembership, error) {
	var memberships []*models.CircleMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("circle_id = ?", circleID).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}

func (r *circleRepository) MemberCount(ctx context.Context, circleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CircleMembership{}).
		Where("circle_id = ?", circleID).
		Count(&count).Error
	return count, err
}

// RemoveMember deletes the membership plus the user's private timeline
// memberships inside the circle, in one transaction.
func (r *circleRepository) RemoveMember(ctx context.Context, circleID, userID uint) error {
	defer cache.InvalidateCircle(ctx, circleID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("circle_id = ? AND user_id = ?", circleID, userID).
			Delete(&models.CircleMembership{}).Error; err != nil {
			return err
		}
		return tx.
			Where("user_id = ? AND timeline_id IN (?)",
				userID,
				tx.Model(&models.Timeline{}).Select("id").Where("circle_id = ?", circleID),
			).
			Delete(&models.TimelineMembership{}).Error
	})
}

// DeleteCascade removes the circle and everything hanging off it: channels,
// posts (with their comments, likes, comment likes and reactions), timelines,
// events and memberships. Runs in a single transaction; any failure rolls
// the whole deletion back.
func (r *circleRepository) DeleteCascade(ctx context.Context, circleID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&models.Post{}).Select("id").Where("circle_id = ?", circleID)
		commentIDs := tx.Model(&models.Comment{}).Select("id").
			Where("post_id IN (?)", tx.Model(&models.Post{}).Select("id").Where("circle_id = ?", circleID))

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
		if err := tx.Unscoped().Where("circle_id = ?", circleID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("circle_id = ?", circleID).Delete(&models.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("timeline_id IN (?)", tx.Model(&models.Timeline{}).Select("id").Where("circle_id = ?", circleID)).
			Delete(&models.TimelineMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("circle_id = ?", circleID).Delete(&models.Timeline{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("event_id IN (?)", tx.Model(&models.Event{}).Select("id").Where("circle_id = ?", circleID)).
			Delete(&models.EventAttendance{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("circle_id = ?", circleID).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("circle_id = ?", circleID).Delete(&models.CircleMembership{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Circle{}, circleID).Error
	})
	if err == nil {
		cache.InvalidateCircle(ctx, circleID)
	}
	return err
}
