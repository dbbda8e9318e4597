package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a dated circle activity members can mark attendance on.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CircleID    uint           `gorm:"not null;index" json:"circle_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `json:"location"`
	StartsAt    time.Time      `json:"starts_at"`
	CreatedByID uint           `gorm:"not null" json:"created_by_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// AttendeeCount is not persisted; computed at query time
	AttendeeCount int `gorm:"->" json:"attendee_count"`
	// Attending indicates whether the current requesting user attends (computed)
	Attending bool `gorm:"->" json:"attending"`
}

// EventAttendance marks a user as attending an event.
type EventAttendance struct {
	EventID   uint      `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
