package service

import (
	"context"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_Recommended(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	posts := noopPostRepo()
	posts.listPublicFn = func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) {
		return []*models.Post{{ID: 1}, {ID: 2}}, nil
	}
	posts.reactionCountsFn = func(_ context.Context, postIDs []uint) (map[uint]map[string]int, error) {
		assert.ElementsMatch(t, []uint{1, 2}, postIDs)
		return map[uint]map[string]int{1: {"🔥": 3}}, nil
	}
	comments := noopCommentRepo()
	comments.listByPostFn = func(_ context.Context, postID, _ uint) ([]*models.Comment, error) {
		if postID == 1 {
			return []*models.Comment{{ID: 10, PostID: 1}}, nil
		}
		return nil, nil
	}

	svc := NewFeedService(posts, comments, noopCircleRepo(), noopTimelineRepo(), noopUserRepo())
	feed, err := svc.Recommended(ctx, 5, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, map[string]int{"🔥": 3}, feed[0].ReactionCounts)
	assert.Len(t, feed[0].Comments, 1)
	assert.NotNil(t, feed[1].ReactionCounts)
	assert.Empty(t, feed[1].ReactionCounts)
}

func TestFeedService_FollowingIncludesSelf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := noopUserRepo()
	users.followingIDsFn = func(_ context.Context, _ uint) ([]uint, error) { return []uint{2, 3}, nil }

	posts := noopPostRepo()
	var gotAuthors []uint
	posts.listByAuthorsFn = func(_ context.Context, authorIDs []uint, _, _ int, _ uint) ([]*models.Post, error) {
		gotAuthors = authorIDs
		return nil, nil
	}

	svc := NewFeedService(posts, noopCommentRepo(), noopCircleRepo(), noopTimelineRepo(), users)
	_, err := svc.Following(ctx, 5, 20, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3, 5}, gotAuthors)
}

func TestFeedService_CircleAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("non-member is denied", func(t *testing.T) {
		t.Parallel()
		circles := noopCircleRepo()
		circles.getMembershipFn = func(_ context.Context, _, _ uint) (*models.CircleMembership, error) { return nil, nil }

		svc := NewFeedService(noopPostRepo(), noopCommentRepo(), circles, noopTimelineRepo(), noopUserRepo())
		_, err := svc.Circle(ctx, CircleFeedInput{UserID: 9, CircleID: 1})
		assertUnauthorizedError(t, err)
	})

	t.Run("default timeline needs only circle membership", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		var gotTimeline *uint
		called := false
		posts.listByCircleTimelineFn = func(_ context.Context, circleID uint, timelineID *uint, _, _ int, _ uint) ([]*models.Post, error) {
			called = true
			gotTimeline = timelineID
			assert.Equal(t, uint(1), circleID)
			return nil, nil
		}

		svc := NewFeedService(posts, noopCommentRepo(), noopCircleRepo(), noopTimelineRepo(), noopUserRepo())
		_, err := svc.Circle(ctx, CircleFeedInput{UserID: 5, CircleID: 1})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, gotTimeline)
	})

	t.Run("private timeline requires timeline membership", func(t *testing.T) {
		t.Parallel()
		timelines := noopTimelineRepo()
		timelines.isMemberFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }

		svc := NewFeedService(noopPostRepo(), noopCommentRepo(), noopCircleRepo(), timelines, noopUserRepo())
		_, err := svc.Circle(ctx, CircleFeedInput{UserID: 5, CircleID: 1, TimelineID: 3})
		assertUnauthorizedError(t, err)
	})

	t.Run("timeline from another circle is not found", func(t *testing.T) {
		t.Parallel()
		timelines := noopTimelineRepo()
		timelines.getByIDFn = func(_ context.Context, id uint) (*models.Timeline, error) {
			return &models.Timeline{ID: id, CircleID: 42}, nil
		}

		svc := NewFeedService(noopPostRepo(), noopCommentRepo(), noopCircleRepo(), timelines, noopUserRepo())
		_, err := svc.Circle(ctx, CircleFeedInput{UserID: 5, CircleID: 1, TimelineID: 3})
		assertNotFoundError(t, err)
	})

	t.Run("timeline member gets the scoped feed", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		var gotTimeline *uint
		posts.listByCircleTimelineFn = func(_ context.Context, _ uint, timelineID *uint, _, _ int, _ uint) ([]*models.Post, error) {
			gotTimeline = timelineID
			return []*models.Post{{ID: 8}}, nil
		}

		svc := NewFeedService(posts, noopCommentRepo(), noopCircleRepo(), noopTimelineRepo(), noopUserRepo())
		feed, err := svc.Circle(ctx, CircleFeedInput{UserID: 5, CircleID: 1, TimelineID: 3})
		require.NoError(t, err)
		require.NotNil(t, gotTimeline)
		assert.Equal(t, uint(3), *gotTimeline)
		require.Len(t, feed, 1)
	})
}

func TestFeedService_UserFeedMissingUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) { return nil, nil }

	svc := NewFeedService(noopPostRepo(), noopCommentRepo(), noopCircleRepo(), noopTimelineRepo(), users)
	_, err := svc.User(ctx, 1, 99, 20, 0)
	assertNotFoundError(t, err)
}
