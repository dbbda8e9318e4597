package service

import (
	"context"
	"strings"

	"campushub/internal/models"
	"campushub/internal/repository"
)

// CourseService manages course reviews that posts can reference.
type CourseService struct {
	courseRepo repository.CourseRepository
}

type CreateCourseInput struct {
	UserID        uint
	CourseName    string
	ProfessorName string
	University    string
	Rating        int
	Review        string
}

func NewCourseService(courseRepo repository.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

func (s *CourseService) CreateCourse(ctx context.Context, in CreateCourseInput) (*models.Course, error) {
	if strings.TrimSpace(in.CourseName) == "" {
		return nil, models.NewValidationError("Course name is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	course := &models.Course{
		CourseName:    in.CourseName,
		ProfessorName: in.ProfessorName,
		University:    in.University,
		Rating:        in.Rating,
		Review:        in.Review,
		CreatedByID:   in.UserID,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, models.NewNotFoundError("Course", id)
	}
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, university string, limit, offset int) ([]*models.Course, error) {
	return s.courseRepo.List(ctx, university, limit, offset)
}
