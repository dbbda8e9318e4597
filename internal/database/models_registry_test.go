package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPersistentModels_Migrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{
		"users", "follows", "circles", "circle_memberships",
		"timelines", "timeline_memberships", "channels",
		"posts", "comments", "likes", "comment_likes", "reactions",
		"conversations", "direct_messages", "courses",
		"events", "event_attendances",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
