package repository

import (
	"context"
	"errors"

	"campushub/internal/cache"
	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	ListPublic(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByChannel(ctx context.Context, channelID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByCircleTimeline(ctx context.Context, circleID uint, timelineID *uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	DeleteCascade(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikeCount(ctx context.Context, postID uint) (int64, error)
	ReactionCounts(ctx context.Context, postIDs []uint) (map[uint]map[string]int, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) preloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Channel").
		Preload("Circle").
		Preload("Timeline").
		Preload("Course")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePublicFeed(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.preloads(r.applyPostDetails(r.db.WithContext(ctx), currentUserID)).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublic(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.preloads(r.applyPostDetails(r.db.WithContext(ctx), currentUserID)).
		Where("is_public = ? AND circle_id IS NULL", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	err := r.preloads(r.applyPostDetails(r.db.WithContext(ctx), currentUserID)).
		Where("user_id IN ? AND circle_id IS NULL", authorIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByChannel(ctx context.Context, channelID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.preloads(r.applyPostDetails(r.db.WithContext(ctx), currentUserID)).
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// ListByCircleTimeline returns a circle feed. A nil timelineID means the
// default timeline: circle posts not tagged to any private timeline.
func (r *postRepository) ListByCircleTimeline(ctx context.Context, circleID uint, timelineID *uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	query := r.preloads(r.applyPostDetails(r.db.WithContext(ctx), currentUserID)).
		Where("circle_id = ?", circleID)
	if timelineID == nil {
		query = query.Where("timeline_id IS NULL")
	} else {
		query = query.Where("timeline_id = ?", *timelineID)
	}

	var posts []*models.Post
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.preloads(r.applyPostDetails(r.db.WithContext(ctx), currentUserID)).
		Where("user_id = ? AND circle_id IS NULL", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// DeleteCascade removes the post and its comments, likes and reactions
// atomically.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Unscoped().Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Post{}, id).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, id)
		cache.InvalidatePublicFeed(ctx)
	}
	return err
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// ON CONFLICT DO NOTHING keeps concurrent double-taps from erroring.
	like := models.Like{UserID: userID, PostID: postID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// ReactionCounts tallies active reactions grouped by emoji for a set of posts.
func (r *postRepository) ReactionCounts(ctx context.Context, postIDs []uint) (map[uint]map[string]int, error) {
	if len(postIDs) == 0 {
		return map[uint]map[string]int{}, nil
	}

	var rows []struct {
		PostID uint
		Emoji  string
		Count  int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select("post_id, emoji, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id, emoji").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]map[string]int, len(postIDs))
	for _, row := range rows {
		if out[row.PostID] == nil {
			out[row.PostID] = make(map[string]int)
		}
		out[row.PostID][row.Emoji] = row.Count
	}
	return out, nil
}
