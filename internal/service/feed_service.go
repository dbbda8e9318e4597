package service

import (
	"context"

	"campushub/internal/models"
	"campushub/internal/repository"
)

// FeedService composes ordered post listings for the community views.
// Every post comes back newest-first with like state, reaction tally
// and its comments (oldest-first, each with like state) attached.
type FeedService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	circleRepo   repository.CircleRepository
	timelineRepo repository.TimelineRepository
	userRepo     repository.UserRepository
}

type CircleFeedInput struct {
	UserID     uint
	CircleID   uint
	TimelineID uint // 0 = the circle's default timeline
	Limit      int
	Offset     int
}

func NewFeedService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	circleRepo repository.CircleRepository,
	timelineRepo repository.TimelineRepository,
	userRepo repository.UserRepository,
) *FeedService {
	return &FeedService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		circleRepo:   circleRepo,
		timelineRepo: timelineRepo,
		userRepo:     userRepo,
	}
}

// Recommended returns all public posts, membership-independent.
func (s *FeedService) Recommended(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.ListPublic(ctx, limit, offset, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, userID)
}

// Following returns the viewer's own posts plus those of everyone they
// follow.
func (s *FeedService) Following(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	authorIDs, err := s.userRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, userID)

	posts, err := s.postRepo.ListByAuthors(ctx, authorIDs, limit, offset, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, userID)
}

// Channel returns a channel's posts.
func (s *FeedService) Channel(ctx context.Context, userID, channelID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByChannel(ctx, channelID, limit, offset, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, userID)
}

// Circle returns a circle timeline feed. The viewer must be a circle
// member; a non-default timeline additionally requires timeline
// membership. Denial never leaks whether content exists.
func (s *FeedService) Circle(ctx context.Context, in CircleFeedInput) ([]*models.Post, error) {
	circle, err := s.circleRepo.GetByID(ctx, in.CircleID)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, models.NewNotFoundError("Circle", in.CircleID)
	}

	membership, err := s.circleRepo.GetMembership(ctx, in.CircleID, in.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewUnauthorizedError("You are not a member of this circle")
	}

	var timelineID *uint
	if in.TimelineID != 0 {
		timeline, err := s.timelineRepo.GetByID(ctx, in.TimelineID)
		if err != nil {
			return nil, err
		}
		if timeline == nil || timeline.CircleID != in.CircleID {
			return nil, models.NewNotFoundError("Timeline", in.TimelineID)
		}
		isMember, err := s.timelineRepo.IsMember(ctx, in.TimelineID, in.UserID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, models.NewUnauthorizedError("You are not a member of this timeline")
		}
		timelineID = &in.TimelineID
	}

	posts, err := s.postRepo.ListByCircleTimeline(ctx, in.CircleID, timelineID, in.Limit, in.Offset, in.UserID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, in.UserID)
}

// User returns a user's profile feed (their non-circle posts).
func (s *FeedService) User(ctx context.Context, viewerID, userID uint, limit, offset int) ([]*models.Post, error) {
	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundError("User", userID)
	}

	posts, err := s.postRepo.ListByUser(ctx, userID, limit, offset, viewerID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts, viewerID)
}

// decorate attaches reaction tallies and ordered comments to each post.
func (s *FeedService) decorate(ctx context.Context, posts []*models.Post, userID uint) ([]*models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	reactions, err := s.postRepo.ReactionCounts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		p.ReactionCounts = reactions[p.ID]
		if p.ReactionCounts == nil {
			p.ReactionCounts = map[string]int{}
		}
		comments, err := s.commentRepo.ListByPost(ctx, p.ID, userID)
		if err != nil {
			return nil, err
		}
		p.Comments = comments
	}
	return posts, nil
}
