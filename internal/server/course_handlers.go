package server

import (
	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse handles POST /api/courses
func (s *Server) CreateCourse(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		CourseName    string `json:"course_name"`
		ProfessorName string `json:"professor_name"`
		University    string `json:"university"`
		Rating        int    `json:"rating"`
		Review        string `json:"review"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	course, err := s.courseService.CreateCourse(c.Context(), service.CreateCourseInput{
		UserID:        userID,
		CourseName:    req.CourseName,
		ProfessorName: req.ProfessorName,
		University:    req.University,
		Rating:        req.Rating,
		Review:        req.Review,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

// GetCourses handles GET /api/courses?university=
func (s *Server) GetCourses(c *fiber.Ctx) error {
	page := parsePagination(c, defaultFeedLimit)
	courses, err := s.courseService.ListCourses(c.Context(), c.Query("university"), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"courses": courses})
}

// GetCourse handles GET /api/courses/:id
func (s *Server) GetCourse(c *fiber.Ctx) error {
	courseID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	course, err := s.courseService.GetCourse(c.Context(), courseID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(course)
}
