package repository

import (
	"context"
	"errors"

	"campushub/internal/models"

	"gorm.io/gorm"
)

// CourseRepository defines the interface for course review data operations
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, university string, limit, offset int) ([]*models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, university string, limit, offset int) ([]*models.Course, error) {
	query := r.db.WithContext(ctx)
	if university != "" {
		query = query.Where("university = ?", university)
	}
	var courses []*models.Course
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error
	return courses, err
}
