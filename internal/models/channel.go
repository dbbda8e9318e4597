package models

import (
	"time"

	"gorm.io/gorm"
)

// Names of the global channels guaranteed to exist by seeding.
const (
	ChannelPublic    = "public"
	ChannelFollowing = "following"
)

// Channel is a named posting surface. Global channels (public, following)
// carry a nil CircleID; circle-owned channels reference their circle.
type Channel struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Description string         `json:"description"`
	CircleID    *uint          `gorm:"index" json:"circle_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
