package seed

import (
	"fmt"

	"campushub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInChannel is a permanent global posting surface.
type BuiltInChannel struct {
	Name        string
	Description string
}

// BuiltInChannels defines the global channels every deployment carries.
// The public and following channels back the main feed tabs; the rest are
// topical boards students post to directly.
var BuiltInChannels = []BuiltInChannel{
	{Name: models.ChannelPublic, Description: "Campus-wide open feed."},
	{Name: models.ChannelFollowing, Description: "Posts from people you follow."},
	{Name: "study", Description: "Study groups, exam prep, and course talk."},
	{Name: "clubs", Description: "Circle recruiting and announcements."},
	{Name: "events", Description: "Campus events and meetups."},
	{Name: "marketplace", Description: "Textbooks and secondhand gear."},
	{Name: "housing", Description: "Dorms, apartments, and roommates."},
	{Name: "careers", Description: "Internships, job hunting, and interviews."},
}

// Channels upserts the built-in global channels by name.
func Channels(db *gorm.DB) error {
	for _, item := range BuiltInChannels {
		channel := models.Channel{
			Name:        item.Name,
			Description: item.Description,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).Create(&channel).Error; err != nil {
			return fmt.Errorf("seed built-in channel %s: %w", item.Name, err)
		}
	}
	return nil
}
