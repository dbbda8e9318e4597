package repository

import (
	"context"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByEmailAndUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "aki_w", Email: "aki@waseda.example"}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "aki@waseda.example")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "aki_w")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	assert.Equal(t, user.ID, byUsername.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_GetByIDMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_SearchIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"KenjiTanaka", "kenji_s", "yuki"} {
		require.NoError(t, repo.Create(ctx, &models.User{Username: name, Email: name + "@e.com"}))
	}

	users, err := repo.Search(ctx, "KENJI", 10)
	require.NoError(t, err)
	require.Len(t, users, 2)

	limited, err := repo.Search(ctx, "kenji", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUserRepository_FollowIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	follower := &models.User{Username: "aki", Email: "aki@e.com"}
	followed := &models.User{Username: "ben", Email: "ben@e.com"}
	require.NoError(t, repo.Create(ctx, follower))
	require.NoError(t, repo.Create(ctx, followed))

	require.NoError(t, repo.Follow(ctx, follower.ID, followed.ID))
	require.NoError(t, repo.Follow(ctx, follower.ID, followed.ID))

	following, err := repo.IsFollowing(ctx, follower.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, following)

	count, err := repo.FollowerCount(ctx, followed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_UnfollowRemovesEdge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	follower := &models.User{Username: "aki", Email: "aki@e.com"}
	followed := &models.User{Username: "ben", Email: "ben@e.com"}
	require.NoError(t, repo.Create(ctx, follower))
	require.NoError(t, repo.Create(ctx, followed))

	require.NoError(t, repo.Follow(ctx, follower.ID, followed.ID))
	require.NoError(t, repo.Unfollow(ctx, follower.ID, followed.ID))

	following, err := repo.IsFollowing(ctx, follower.ID, followed.ID)
	require.NoError(t, err)
	assert.False(t, following)

	ids, err := repo.FollowingIDs(ctx, follower.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
