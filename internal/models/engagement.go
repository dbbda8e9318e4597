package models

import "time"

// Like marks that a user liked a post. Uniqueness on (user, post) makes
// double-liking a no-op at the database level.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike marks that a user liked a comment. Comment likes are tracked
// separately from post likes so toggling one never touches the other.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Reaction is a single emoji a user holds on a post. A user has at most one
// active reaction per post; re-reacting with a different emoji replaces it.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reaction_post_user;index" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_post_user" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(16);not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
