package repository

import (
	"context"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	author := &models.User{Username: "author", Email: "author@e.com"}
	reactor := &models.User{Username: "reactor", Email: "reactor@e.com"}
	db.Create(author)
	db.Create(reactor)

	post := &models.Post{Content: "hot take", UserID: author.ID, IsPublic: true}
	require.NoError(t, db.Create(post).Error)

	action, err := repo.Toggle(ctx, reactor.ID, post.ID, "🔥")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, action)

	// Different emoji replaces the existing reaction instead of stacking.
	action, err = repo.Toggle(ctx, reactor.ID, post.ID, "👏")
	require.NoError(t, err)
	assert.Equal(t, ReactionUpdated, action)

	counts, err := repo.CountsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"👏": 1}, counts)

	action, err = repo.Toggle(ctx, reactor.ID, post.ID, "👏")
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, action)

	counts, err = repo.CountsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestReactionRepository_CountsByPostTalliesUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	author := &models.User{Username: "author", Email: "author@e.com"}
	db.Create(author)
	post := &models.Post{Content: "hot take", UserID: author.ID, IsPublic: true}
	require.NoError(t, db.Create(post).Error)

	for i, emoji := range []string{"🔥", "🔥", "👏"} {
		u := &models.User{Username: string(rune('a' + i)), Email: string(rune('a'+i)) + "@e.com"}
		db.Create(u)
		_, err := repo.Toggle(ctx, u.ID, post.ID, emoji)
		require.NoError(t, err)
	}

	counts, err := repo.CountsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"🔥": 2, "👏": 1}, counts)
}
