package database

import "campushub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Circle{},
		&models.CircleMembership{},
		&models.Timeline{},
		&models.TimelineMembership{},
		&models.Channel{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Reaction{},
		&models.Conversation{},
		&models.DirectMessage{},
		&models.Course{},
		&models.Event{},
		&models.EventAttendance{},
	}
}
