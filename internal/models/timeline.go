package models

import (
	"time"

	"gorm.io/gorm"
)

// Timeline is a private, invite-scoped feed inside a circle. Timeline ID 0
// in room names refers to the circle's default (untagged) timeline, which
// has no Timeline row.
type Timeline struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CircleID  uint           `gorm:"not null;index" json:"circle_id"`
	Name      string         `gorm:"not null" json:"name"`
	CreatorID uint           `gorm:"not null" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TimelineMembership grants a circle member access to a private timeline.
type TimelineMembership struct {
	TimelineID uint      `gorm:"primaryKey;autoIncrement:false" json:"timeline_id"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
