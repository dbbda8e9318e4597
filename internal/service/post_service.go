package service

import (
	"context"
	"strings"

	"campushub/internal/featureflags"
	"campushub/internal/linkpreview"
	"campushub/internal/models"
	"campushub/internal/repository"
)

// PreviewResolver resolves link previews from raw post text.
type PreviewResolver interface {
	Resolve(ctx context.Context, text string) linkpreview.Preview
}

// LinkPreviewFlag gates link preview resolution at post creation.
const LinkPreviewFlag = "link_previews"

type PostService struct {
	postRepo     repository.PostRepository
	circleRepo   repository.CircleRepository
	timelineRepo repository.TimelineRepository
	channelRepo  repository.ChannelRepository
	reactionRepo repository.ReactionRepository
	previews     PreviewResolver
	flags        *featureflags.Manager
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreateChannelPostInput struct {
	UserID    uint
	Content   string
	ChannelID uint
	CourseID  *uint
	MediaURL  string
	MediaType string
}

type CreateCirclePostInput struct {
	UserID     uint
	CircleID   uint
	TimelineID uint // 0 = the circle's default timeline
	Content    string
	MediaURL   string
	MediaType  string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// ReactionResult reports a reaction toggle outcome with the fresh tally.
type ReactionResult struct {
	Action string         `json:"action"`
	Counts map[string]int `json:"reactions"`
}

func NewPostService(
	postRepo repository.PostRepository,
	circleRepo repository.CircleRepository,
	timelineRepo repository.TimelineRepository,
	channelRepo repository.ChannelRepository,
	reactionRepo repository.ReactionRepository,
	previews PreviewResolver,
	flags *featureflags.Manager,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		circleRepo:   circleRepo,
		timelineRepo: timelineRepo,
		channelRepo:  channelRepo,
		reactionRepo: reactionRepo,
		previews:     previews,
		flags:        flags,
		isAdmin:      isAdmin,
	}
}

const maxPostLen = 10000

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxPostLen {
		return models.NewValidationError("Post too long (max 10000 characters)")
	}
	return nil
}

// CreateChannelPost creates a public post on a channel. Link preview
// resolution runs before the insert and never blocks creation.
func (s *PostService) CreateChannelPost(ctx context.Context, in CreateChannelPostInput) (*models.Post, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	channel, err := s.channelRepo.GetByID(ctx, in.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, models.NewNotFoundError("Channel", in.ChannelID)
	}

	post := &models.Post{
		Content:   in.Content,
		UserID:    in.UserID,
		IsPublic:  true,
		ChannelID: &channel.ID,
		CourseID:  in.CourseID,
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
	}
	s.attachPreview(ctx, post)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// CreateCirclePost creates a post on a circle timeline. The author must
// be a circle member; posting to a private timeline additionally
// requires timeline membership.
func (s *PostService) CreateCirclePost(ctx context.Context, in CreateCirclePostInput) (*models.Post, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

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

	post := &models.Post{
		Content:   in.Content,
		UserID:    in.UserID,
		IsPublic:  false,
		CircleID:  &circle.ID,
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
	}

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
		post.TimelineID = &timeline.ID
	}

	s.attachPreview(ctx, post)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// DeletePost removes a post with its comments, likes and reactions.
// Owner only, unless the caller is an admin.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		if s.isAdmin == nil {
			return nil, models.NewUnauthorizedError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewUnauthorizedError("You can only delete your own posts")
		}
	}

	if err := s.postRepo.DeleteCascade(ctx, in.PostID); err != nil {
		return nil, models.NewCascadeError(err)
	}
	return post, nil
}

// ToggleLike flips the user's like and returns the post with fresh
// counts. Even-length toggle sequences restore the original state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.GetPost(ctx, postID, userID); err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if isLiked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// ToggleReaction applies the one-emoji-per-user rule and returns the
// outcome with the post's updated tally.
func (s *PostService) ToggleReaction(ctx context.Context, userID, postID uint, emoji string) (*ReactionResult, error) {
	if strings.TrimSpace(emoji) == "" {
		return nil, models.NewValidationError("Emoji is required")
	}
	if _, err := s.GetPost(ctx, postID, userID); err != nil {
		return nil, err
	}

	action, err := s.reactionRepo.Toggle(ctx, userID, postID, emoji)
	if err != nil {
		return nil, err
	}
	counts, err := s.reactionRepo.CountsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &ReactionResult{Action: action, Counts: counts}, nil
}

// attachPreview resolves link metadata best-effort. Failures leave the
// preview fields empty; the post is created regardless.
func (s *PostService) attachPreview(ctx context.Context, post *models.Post) {
	if s.previews == nil {
		return
	}
	if s.flags != nil && !s.flags.Enabled(LinkPreviewFlag, post.UserID) {
		return
	}
	preview := s.previews.Resolve(ctx, post.Content)
	if preview.Empty() {
		return
	}
	post.LinkURL = preview.URL
	post.LinkTitle = preview.Title
	post.LinkDescription = preview.Description
	post.LinkThumbnailURL = preview.ThumbnailURL
}
