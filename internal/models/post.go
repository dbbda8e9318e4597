package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a piece of content on a channel, a circle timeline or a
// user profile. Exactly one of ChannelID or CircleID is normally set;
// TimelineID is only meaningful alongside CircleID.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	IsPublic   bool      `gorm:"default:true" json:"is_public"`
	MediaURL   string    `json:"media_url"`
	MediaType  string    `json:"media_type"`
	ChannelID  *uint     `gorm:"index" json:"channel_id,omitempty"`
	Channel    *Channel  `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	CircleID   *uint     `gorm:"index" json:"circle_id,omitempty"`
	Circle     *Circle   `gorm:"foreignKey:CircleID" json:"circle,omitempty"`
	TimelineID *uint     `gorm:"index" json:"timeline_id,omitempty"`
	Timeline   *Timeline `gorm:"foreignKey:TimelineID" json:"timeline,omitempty"`
	CourseID   *uint     `gorm:"index" json:"course_id,omitempty"`
	Course     *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`

	// Link preview fields populated best-effort at creation time.
	LinkURL          string `json:"link_url"`
	LinkTitle        string `json:"link_title"`
	LinkDescription  string `json:"link_description"`
	LinkThumbnailURL string `json:"link_thumbnail_url"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`

	// ReactionCounts groups active reactions by emoji; attached after load.
	ReactionCounts map[string]int `gorm:"-" json:"reactions"`
	// Comments are attached oldest-first when serving feeds.
	Comments []*Comment `gorm:"-" json:"comments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
