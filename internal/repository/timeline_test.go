package repository

import (
	"context"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineRepository_CreateWithMembers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimelineRepository(db)
	circleRepo := NewCircleRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	member := &models.User{Username: "mem", Email: "mem@e.com"}
	db.Create(leader)
	db.Create(member)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID}
	require.NoError(t, circleRepo.Create(ctx, circle))

	timeline := &models.Timeline{CircleID: circle.ID, Name: "officers", CreatorID: leader.ID}
	require.NoError(t, repo.Create(ctx, timeline, []uint{leader.ID, member.ID, member.ID}))
	require.NotZero(t, timeline.ID)

	ids, err := repo.ListMemberIDs(ctx, timeline.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{leader.ID, member.ID}, ids)
}

func TestTimelineRepository_ListByCircleForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimelineRepository(db)
	circleRepo := NewCircleRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	member := &models.User{Username: "mem", Email: "mem@e.com"}
	db.Create(leader)
	db.Create(member)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID}
	require.NoError(t, circleRepo.Create(ctx, circle))

	visible := &models.Timeline{CircleID: circle.ID, Name: "officers", CreatorID: leader.ID}
	require.NoError(t, repo.Create(ctx, visible, []uint{leader.ID, member.ID}))
	hidden := &models.Timeline{CircleID: circle.ID, Name: "leads only", CreatorID: leader.ID}
	require.NoError(t, repo.Create(ctx, hidden, []uint{leader.ID}))

	timelines, err := repo.ListByCircleForUser(ctx, circle.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, timelines, 1)
	assert.Equal(t, visible.ID, timelines[0].ID)

	all, err := repo.ListByCircleForUser(ctx, circle.ID, leader.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTimelineRepository_DeleteCascadeRemovesPosts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimelineRepository(db)
	circleRepo := NewCircleRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	db.Create(leader)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID}
	require.NoError(t, circleRepo.Create(ctx, circle))

	timeline := &models.Timeline{CircleID: circle.ID, Name: "officers", CreatorID: leader.ID}
	require.NoError(t, repo.Create(ctx, timeline, []uint{leader.ID}))

	post := &models.Post{Content: "tagged", UserID: leader.ID, CircleID: &circle.ID, TimelineID: &timeline.ID}
	require.NoError(t, db.Create(post).Error)
	comment := &models.Comment{Content: "re", UserID: leader.ID, PostID: post.ID}
	require.NoError(t, db.Create(comment).Error)

	// A post on the circle's default timeline survives.
	untagged := &models.Post{Content: "default", UserID: leader.ID, CircleID: &circle.ID}
	require.NoError(t, db.Create(untagged).Error)

	require.NoError(t, repo.DeleteCascade(ctx, timeline.ID))

	fetched, err := repo.GetByID(ctx, timeline.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)

	var postCount, commentCount int64
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Unscoped().Model(&models.Comment{}).Count(&commentCount).Error)
	assert.Equal(t, int64(1), postCount)
	assert.Zero(t, commentCount)
}
