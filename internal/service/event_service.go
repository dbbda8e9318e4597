package service

import (
	"context"
	"strings"
	"time"

	"campushub/internal/models"
	"campushub/internal/repository"
)

// EventService manages circle events and attendance.
type EventService struct {
	eventRepo  repository.EventRepository
	circleRepo repository.CircleRepository
}

type CreateEventInput struct {
	CircleID    uint
	ActorID     uint
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
}

func NewEventService(eventRepo repository.EventRepository, circleRepo repository.CircleRepository) *EventService {
	return &EventService{eventRepo: eventRepo, circleRepo: circleRepo}
}

// CreateEvent adds an event to a circle. Any member may create one.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Event title is required")
	}
	if in.StartsAt.IsZero() {
		return nil, models.NewValidationError("Event start time is required")
	}

	membership, err := s.circleRepo.GetMembership(ctx, in.CircleID, in.ActorID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewUnauthorizedError("You are not a member of this circle")
	}

	event := &models.Event{
		CircleID:    in.CircleID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    in.StartsAt,
		CreatedByID: in.ActorID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, event.ID, in.ActorID)
}

// ListEvents returns a circle's events, soonest first. Members only.
func (s *EventService) ListEvents(ctx context.Context, circleID, userID uint) ([]*models.Event, error) {
	membership, err := s.circleRepo.GetMembership(ctx, circleID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewUnauthorizedError("You are not a member of this circle")
	}
	return s.eventRepo.ListByCircle(ctx, circleID, userID)
}

// ToggleAttendance flips the member's attendance and returns the event
// with fresh counts.
func (s *EventService) ToggleAttendance(ctx context.Context, eventID, userID uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.NewNotFoundError("Event", eventID)
	}

	membership, err := s.circleRepo.GetMembership(ctx, event.CircleID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewUnauthorizedError("You are not a member of this circle")
	}

	if _, err := s.eventRepo.ToggleAttendance(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, eventID, userID)
}
