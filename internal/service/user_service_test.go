package service

import (
	"context"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Follow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cannot follow self", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		assertValidationError(t, svc.Follow(ctx, 5, 5))
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) { return nil, nil }
		svc := NewUserService(users)
		assertNotFoundError(t, svc.Follow(ctx, 5, 99))
	})

	t.Run("follows", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		followed := false
		users.followFn = func(_ context.Context, followerID, followedID uint) error {
			followed = true
			assert.Equal(t, uint(5), followerID)
			assert.Equal(t, uint(2), followedID)
			return nil
		}
		svc := NewUserService(users)
		require.NoError(t, svc.Follow(ctx, 5, 2))
		assert.True(t, followed)
	})
}

func TestUserService_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.Search(ctx, "  ", 20)
		assertValidationError(t, err)
	})

	t.Run("clamps limit", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		var gotLimit int
		users.searchFn = func(_ context.Context, _ string, limit int) ([]*models.User, error) {
			gotLimit = limit
			return nil, nil
		}
		svc := NewUserService(users)
		_, err := svc.Search(ctx, "aki", 500)
		require.NoError(t, err)
		assert.Equal(t, 20, gotLimit)
	})
}

func TestUserService_IsAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, IsAdmin: id == 1}, nil
	}
	svc := NewUserService(users)

	admin, err := svc.IsAdmin(ctx, 1)
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(ctx, 2)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Bio: "old", University: "Tokyo"}, nil
	}
	var saved *models.User
	users.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	svc := NewUserService(users)
	_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 5, Bio: "new bio", Year: 3})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "new bio", saved.Bio)
	assert.Equal(t, 3, saved.Year)
	assert.Equal(t, "Tokyo", saved.University)
}
