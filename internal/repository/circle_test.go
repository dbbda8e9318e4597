package repository

import (
	"context"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleRepository_CreateAddsLeaderAsExecutive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCircleRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	db.Create(leader)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID, IsPublic: true}
	require.NoError(t, repo.Create(ctx, circle))
	require.NotZero(t, circle.ID)

	membership, err := repo.GetMembership(ctx, circle.ID, leader.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, models.CircleRoleExecutive, membership.Role)

	fetched, err := repo.GetByID(ctx, circle.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, 1, fetched.MemberCount)
}

func TestCircleRepository_AddMemberIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCircleRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	member := &models.User{Username: "mem", Email: "mem@e.com"}
	db.Create(leader)
	db.Create(member)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID}
	require.NoError(t, repo.Create(ctx, circle))

	added, err := repo.AddMember(ctx, &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   member.ID,
		Role:     models.CircleRoleMember,
	})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddMember(ctx, &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   member.ID,
		Role:     models.CircleRoleMember,
	})
	require.NoError(t, err)
	assert.False(t, added)

	count, err := repo.MemberCount(ctx, circle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCircleRepository_RemoveMemberClearsTimelineMemberships(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCircleRepository(db)
	tlRepo := NewTimelineRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	member := &models.User{Username: "mem", Email: "mem@e.com"}
	db.Create(leader)
	db.Create(member)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID}
	require.NoError(t, repo.Create(ctx, circle))
	_, err := repo.AddMember(ctx, &models.CircleMembership{CircleID: circle.ID, UserID: member.ID, Role: models.CircleRoleMember})
	require.NoError(t, err)

	timeline := &models.Timeline{CircleID: circle.ID, Name: "inner", CreatorID: leader.ID}
	require.NoError(t, tlRepo.Create(ctx, timeline, []uint{leader.ID, member.ID}))

	require.NoError(t, repo.RemoveMember(ctx, circle.ID, member.ID))

	membership, err := repo.GetMembership(ctx, circle.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, membership)

	stillIn, err := tlRepo.IsMember(ctx, timeline.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, stillIn)

	// The leader's timeline membership is untouched.
	leaderIn, err := tlRepo.IsMember(ctx, timeline.ID, leader.ID)
	require.NoError(t, err)
	assert.True(t, leaderIn)
}

func TestCircleRepository_DeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCircleRepository(db)
	tlRepo := NewTimelineRepository(db)
	ctx := context.Background()

	leader := &models.User{Username: "lead", Email: "lead@e.com"}
	db.Create(leader)

	circle := &models.Circle{Name: "Chess Club", LeaderID: leader.ID}
	require.NoError(t, repo.Create(ctx, circle))

	timeline := &models.Timeline{CircleID: circle.ID, Name: "inner", CreatorID: leader.ID}
	require.NoError(t, tlRepo.Create(ctx, timeline, []uint{leader.ID}))

	post := &models.Post{Content: "hello", UserID: leader.ID, CircleID: &circle.ID}
	require.NoError(t, db.Create(post).Error)
	comment := &models.Comment{Content: "hi", UserID: leader.ID, PostID: post.ID}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Create(&models.Reaction{UserID: leader.ID, PostID: post.ID, Emoji: "🔥"}).Error)
	event := &models.Event{CircleID: circle.ID, Title: "meetup", CreatedByID: leader.ID}
	require.NoError(t, db.Create(event).Error)
	require.NoError(t, db.Create(&models.EventAttendance{EventID: event.ID, UserID: leader.ID}).Error)

	require.NoError(t, repo.DeleteCascade(ctx, circle.ID))

	fetched, err := repo.GetByID(ctx, circle.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)

	for name, model := range map[string]interface{}{
		"posts":               &models.Post{},
		"comments":            &models.Comment{},
		"reactions":           &models.Reaction{},
		"timelines":           &models.Timeline{},
		"timelineMemberships": &models.TimelineMembership{},
		"events":              &models.Event{},
		"eventAttendances":    &models.EventAttendance{},
		"circleMemberships":   &models.CircleMembership{},
	} {
		var count int64
		require.NoError(t, db.Unscoped().Model(model).Count(&count).Error)
		assert.Zero(t, count, "expected no %s left after cascade", name)
	}
}
