package models

import (
	"time"

	"gorm.io/gorm"
)

// Course is a shared course review entry. Posts may tag a course so feed
// readers see which class a review talks about.
type Course struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CourseName    string         `gorm:"not null;index" json:"course_name"`
	ProfessorName string         `json:"professor_name"`
	University    string         `gorm:"index" json:"university"`
	Rating        int            `json:"rating"`
	Review        string         `gorm:"type:text" json:"review"`
	CreatedByID   uint           `gorm:"not null" json:"created_by_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
