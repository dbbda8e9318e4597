package repository

import (
	"context"
	"errors"

	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines the interface for circle event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Event, error)
	ListByCircle(ctx context.Context, circleID uint, currentUserID uint) ([]*models.Event, error)
	ToggleAttendance(ctx context.Context, eventID, userID uint) (bool, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func applyEventDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "events.*, " +
		"(SELECT COUNT(*) FROM event_attendances WHERE event_attendances.event_id = events.id) as attendee_count"
	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM event_attendances WHERE event_attendances.event_id = events.id AND event_attendances.user_id = ?) as attending", currentUserID)
	}
	return db.Select(selectQuery + ", false as attending")
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Event, error) {
	var event models.Event
	err := applyEventDetails(r.db.WithContext(ctx), currentUserID).First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListByCircle(ctx context.Context, circleID uint, currentUserID uint) ([]*models.Event, error) {
	var events []*models.Event
	err := applyEventDetails(r.db.WithContext(ctx), currentUserID).
		Where("circle_id = ?", circleID).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

// ToggleAttendance flips the user's attendance. Returns true when the user
// now attends, false when the existing attendance was withdrawn.
func (r *eventRepository) ToggleAttendance(ctx context.Context, eventID, userID uint) (bool, error) {
	attending := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attendance := models.EventAttendance{EventID: eventID, UserID: userID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&attendance)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			attending = true
			return nil
		}
		return tx.
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventAttendance{}).Error
	})
	return attending, err
}
