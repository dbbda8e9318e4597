package models

import (
	"time"

	"gorm.io/gorm"
)

// CircleRole enumerates membership roles inside a circle.
type CircleRole string

const (
	CircleRoleMember    CircleRole = "member"
	CircleRoleExecutive CircleRole = "executive"
)

// Circle represents a student group. The leader is also the circle's
// first executive; leadership itself never changes hands.
type Circle struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"not null;index" json:"name"`
	Description        string         `gorm:"type:text" json:"description"`
	LeaderID           uint           `gorm:"not null;index" json:"leader_id"`
	Leader             *User          `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	IsPublic           bool           `gorm:"default:true" json:"is_public"`
	BackgroundImageURL string         `json:"background_image_url"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// MemberCount is not persisted; computed at query time
	MemberCount int `gorm:"->" json:"member_count"`
}

// CircleMembership links a user to a circle with a role. Executives may
// carry a display title ("会計", "副部長", ...). One row per (circle, user).
type CircleMembership struct {
	CircleID  uint       `gorm:"primaryKey;autoIncrement:false" json:"circle_id"`
	UserID    uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      CircleRole `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
