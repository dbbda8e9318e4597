package service

import (
	"context"
	"errors"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "VALIDATION_ERROR")
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "UNAUTHORIZED")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "NOT_FOUND")
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertErrorCode(t, err, "CONFLICT")
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	updateFn        func(context.Context, *models.User) error
	searchFn        func(context.Context, string, int) ([]*models.User, error)
	followFn        func(context.Context, uint, uint) error
	unfollowFn      func(context.Context, uint, uint) error
	isFollowingFn   func(context.Context, uint, uint) (bool, error)
	followingIDsFn  func(context.Context, uint) ([]uint, error)
	followerCountFn func(context.Context, uint) (int64, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit)
}
func (s *userRepoStub) Follow(ctx context.Context, followerID, followedID uint) error {
	return s.followFn(ctx, followerID, followedID)
}
func (s *userRepoStub) Unfollow(ctx context.Context, followerID, followedID uint) error {
	return s.unfollowFn(ctx, followerID, followedID)
}
func (s *userRepoStub) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followedID)
}
func (s *userRepoStub) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, followerID)
}
func (s *userRepoStub) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	return s.followerCountFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:  func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		searchFn:        func(_ context.Context, _ string, _ int) ([]*models.User, error) { return nil, nil },
		followFn:        func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:      func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn:   func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followingIDsFn:  func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		followerCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// circleRepoStub is a stub for repository.CircleRepository.
type circleRepoStub struct {
	createFn           func(context.Context, *models.Circle) error
	getByIDFn          func(context.Context, uint) (*models.Circle, error)
	updateFn           func(context.Context, *models.Circle) error
	listPublicFn       func(context.Context, int, int) ([]*models.Circle, error)
	listByMemberFn     func(context.Context, uint) ([]*models.Circle, error)
	addMemberFn        func(context.Context, *models.CircleMembership) (bool, error)
	getMembershipFn    func(context.Context, uint, uint) (*models.CircleMembership, error)
	updateMembershipFn func(context.Context, *models.CircleMembership) error
	listMembersFn      func(context.Context, uint) ([]*models.CircleMembership, error)
	memberCountFn      func(context.Context, uint) (int64, error)
	removeMemberFn     func(context.Context, uint, uint) error
	deleteCascadeFn    func(context.Context, uint) error
}

func (s *circleRepoStub) Create(ctx context.Context, circle *models.Circle) error {
	return s.createFn(ctx, circle)
}
func (s *circleRepoStub) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	return s.getByIDFn(ctx, id)
}
func (s *circleRepoStub) Update(ctx context.Context, circle *models.Circle) error {
	return s.updateFn(ctx, circle)
}
func (s *circleRepoStub) ListPublic(ctx context.Context, limit, offset int) ([]*models.Circle, error) {
	return s.listPublicFn(ctx, limit, offset)
}
func (s *circleRepoStub) ListByMember(ctx context.Context, userID uint) ([]*models.Circle, error) {
	return s.listByMemberFn(ctx, userID)
}
func (s *circleRepoStub) AddMember(ctx context.Context, membership *models.CircleMembership) (bool, error) {
	return s.addMemberFn(ctx, membership)
}
func (s *circleRepoStub) GetMembership(ctx context.Context, circleID, userID uint) (*models.CircleMembership, error) {
	return s.getMembershipFn(ctx, circleID, userID)
}
func (s *circleRepoStub) UpdateMembership(ctx context.Context, membership *models.CircleMembership) error {
	return s.updateMembershipFn(ctx, membership)
}
func (s *circleRepoStub) ListMembers(ctx context.Context, circleID uint) ([]*models.CircleMembership, error) {
	return s.listMembersFn(ctx, circleID)
}
func (s *circleRepoStub) MemberCount(ctx context.Context, circleID uint) (int64, error) {
	return s.memberCountFn(ctx, circleID)
}
func (s *circleRepoStub) RemoveMember(ctx context.Context, circleID, userID uint) error {
	return s.removeMemberFn(ctx, circleID, userID)
}
func (s *circleRepoStub) DeleteCascade(ctx context.Context, circleID uint) error {
	return s.deleteCascadeFn(ctx, circleID)
}

func noopCircleRepo() *circleRepoStub {
	return &circleRepoStub{
		createFn: func(_ context.Context, _ *models.Circle) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Circle, error) {
			return &models.Circle{ID: id, LeaderID: 1}, nil
		},
		updateFn:       func(_ context.Context, _ *models.Circle) error { return nil },
		listPublicFn:   func(_ context.Context, _, _ int) ([]*models.Circle, error) { return nil, nil },
		listByMemberFn: func(_ context.Context, _ uint) ([]*models.Circle, error) { return nil, nil },
		addMemberFn:    func(_ context.Context, _ *models.CircleMembership) (bool, error) { return true, nil },
		getMembershipFn: func(_ context.Context, circleID, userID uint) (*models.CircleMembership, error) {
			return &models.CircleMembership{CircleID: circleID, UserID: userID, Role: models.CircleRoleMember}, nil
		},
		updateMembershipFn: func(_ context.Context, _ *models.CircleMembership) error { return nil },
		listMembersFn:      func(_ context.Context, _ uint) ([]*models.CircleMembership, error) { return nil, nil },
		memberCountFn:      func(_ context.Context, _ uint) (int64, error) { return 2, nil },
		removeMemberFn:     func(_ context.Context, _, _ uint) error { return nil },
		deleteCascadeFn:    func(_ context.Context, _ uint) error { return nil },
	}
}

// timelineRepoStub is a stub for repository.TimelineRepository.
type timelineRepoStub struct {
	createFn              func(context.Context, *models.Timeline, []uint) error
	getByIDFn             func(context.Context, uint) (*models.Timeline, error)
	listByCircleFn        func(context.Context, uint) ([]*models.Timeline, error)
	listForUserFn         func(context.Context, uint) ([]*models.Timeline, error)
	listByCircleForUserFn func(context.Context, uint, uint) ([]*models.Timeline, error)
	isMemberFn            func(context.Context, uint, uint) (bool, error)
	addMemberFn           func(context.Context, uint, uint) error
	listMemberIDsFn       func(context.Context, uint) ([]uint, error)
	deleteCascadeFn       func(context.Context, uint) error
}

func (s *timelineRepoStub) Create(ctx context.Context, timeline *models.Timeline, memberIDs []uint) error {
	return s.createFn(ctx, timeline, memberIDs)
}
func (s *timelineRepoStub) GetByID(ctx context.Context, id uint) (*models.Timeline, error) {
	return s.getByIDFn(ctx, id)
}
func (s *timelineRepoStub) ListByCircle(ctx context.Context, circleID uint) ([]*models.Timeline, error) {
	return s.listByCircleFn(ctx, circleID)
}
func (s *timelineRepoStub) ListForUser(ctx context.Context, userID uint) ([]*models.Timeline, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *timelineRepoStub) ListByCircleForUser(ctx context.Context, circleID, userID uint) ([]*models.Timeline, error) {
	return s.listByCircleForUserFn(ctx, circleID, userID)
}
func (s *timelineRepoStub) IsMember(ctx context.Context, timelineID, userID uint) (bool, error) {
	return s.isMemberFn(ctx, timelineID, userID)
}
func (s *timelineRepoStub) AddMember(ctx context.Context, timelineID, userID uint) error {
	return s.addMemberFn(ctx, timelineID, userID)
}
func (s *timelineRepoStub) ListMemberIDs(ctx context.Context, timelineID uint) ([]uint, error) {
	return s.listMemberIDsFn(ctx, timelineID)
}
func (s *timelineRepoStub) DeleteCascade(ctx context.Context, timelineID uint) error {
	return s.deleteCascadeFn(ctx, timelineID)
}

func noopTimelineRepo() *timelineRepoStub {
	return &timelineRepoStub{
		createFn: func(_ context.Context, _ *models.Timeline, _ []uint) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Timeline, error) {
			return &models.Timeline{ID: id, CircleID: 1}, nil
		},
		listByCircleFn:        func(_ context.Context, _ uint) ([]*models.Timeline, error) { return nil, nil },
		listForUserFn:         func(_ context.Context, _ uint) ([]*models.Timeline, error) { return nil, nil },
		listByCircleForUserFn: func(_ context.Context, _, _ uint) ([]*models.Timeline, error) { return nil, nil },
		isMemberFn:            func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		addMemberFn:           func(_ context.Context, _, _ uint) error { return nil },
		listMemberIDsFn:       func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		deleteCascadeFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn               func(context.Context, *models.Post) error
	getByIDFn              func(context.Context, uint, uint) (*models.Post, error)
	listPublicFn           func(context.Context, int, int, uint) ([]*models.Post, error)
	listByAuthorsFn        func(context.Context, []uint, int, int, uint) ([]*models.Post, error)
	listByChannelFn        func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listByCircleTimelineFn func(context.Context, uint, *uint, int, int, uint) ([]*models.Post, error)
	listByUserFn           func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	deleteCascadeFn        func(context.Context, uint) error
	likeFn                 func(context.Context, uint, uint) error
	unlikeFn               func(context.Context, uint, uint) error
	isLikedFn              func(context.Context, uint, uint) (bool, error)
	likeCountFn            func(context.Context, uint) (int64, error)
	reactionCountsFn       func(context.Context, []uint) (map[uint]map[string]int, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) ListPublic(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listPublicFn(ctx, limit, offset, currentUserID)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listByAuthorsFn(ctx, authorIDs, limit, offset, currentUserID)
}
func (s *postRepoStub) ListByChannel(ctx context.Context, channelID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listByChannelFn(ctx, channelID, limit, offset, currentUserID)
}
func (s *postRepoStub) ListByCircleTimeline(ctx context.Context, circleID uint, timelineID *uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listByCircleTimelineFn(ctx, circleID, timelineID, limit, offset, currentUserID)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return s.likeCountFn(ctx, postID)
}
func (s *postRepoStub) ReactionCounts(ctx context.Context, postIDs []uint) (map[uint]map[string]int, error) {
	return s.reactionCountsFn(ctx, postIDs)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		listPublicFn:    func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listByAuthorsFn: func(_ context.Context, _ []uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listByChannelFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listByCircleTimelineFn: func(_ context.Context, _ uint, _ *uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		listByUserFn:    func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
		likeFn:          func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:        func(_ context.Context, _, _ uint) error { return nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeCountFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		reactionCountsFn: func(_ context.Context, _ []uint) (map[uint]map[string]int, error) {
			return map[uint]map[string]int{}, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
	likeFn       func(context.Context, uint, uint) error
	unlikeFn     func(context.Context, uint, uint) error
	isLikedFn    func(context.Context, uint, uint) (bool, error)
	likeCountFn  func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID, currentUserID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, currentUserID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Like(ctx context.Context, userID, commentID uint) error {
	return s.likeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) Unlike(ctx context.Context, userID, commentID uint) error {
	return s.unlikeFn(ctx, userID, commentID)
}
func (s *commentRepoStub) IsLiked(ctx context.Context, userID, commentID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, commentID)
}
func (s *commentRepoStub) LikeCount(ctx context.Context, commentID uint) (int64, error) {
	return s.likeCountFn(ctx, commentID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1}, nil
		},
		listByPostFn: func(_ context.Context, _, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		likeFn:       func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:     func(_ context.Context, _, _ uint) error { return nil },
		isLikedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeCountFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// channelRepoStub is a stub for repository.ChannelRepository.
type channelRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.Channel, error)
	getByNameFn      func(context.Context, string) (*models.Channel, error)
	listFn           func(context.Context) ([]*models.Channel, error)
	ensureDefaultsFn func(context.Context) error
}

func (s *channelRepoStub) GetByID(ctx context.Context, id uint) (*models.Channel, error) {
	return s.getByIDFn(ctx, id)
}
func (s *channelRepoStub) GetByName(ctx context.Context, name string) (*models.Channel, error) {
	return s.getByNameFn(ctx, name)
}
func (s *channelRepoStub) List(ctx context.Context) ([]*models.Channel, error) {
	return s.listFn(ctx)
}
func (s *channelRepoStub) EnsureDefaults(ctx context.Context) error {
	return s.ensureDefaultsFn(ctx)
}

func noopChannelRepo() *channelRepoStub {
	return &channelRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Channel, error) {
			return &models.Channel{ID: id, Name: models.ChannelPublic}, nil
		},
		getByNameFn: func(_ context.Context, name string) (*models.Channel, error) {
			return &models.Channel{ID: 1, Name: name}, nil
		},
		listFn:           func(_ context.Context) ([]*models.Channel, error) { return nil, nil },
		ensureDefaultsFn: func(_ context.Context) error { return nil },
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	toggleFn       func(context.Context, uint, uint, string) (string, error)
	countsByPostFn func(context.Context, uint) (map[string]int, error)
}

func (s *reactionRepoStub) Toggle(ctx context.Context, userID, postID uint, emoji string) (string, error) {
	return s.toggleFn(ctx, userID, postID, emoji)
}
func (s *reactionRepoStub) CountsByPost(ctx context.Context, postID uint) (map[string]int, error) {
	return s.countsByPostFn(ctx, postID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		toggleFn:       func(_ context.Context, _, _ uint, _ string) (string, error) { return "added", nil },
		countsByPostFn: func(_ context.Context, _ uint) (map[string]int, error) { return map[string]int{}, nil },
	}
}

// dmRepoStub is a stub for repository.DMRepository.
type dmRepoStub struct {
	getConversationByPairFn    func(context.Context, uint, uint) (*models.Conversation, error)
	getConversationByIDFn      func(context.Context, uint) (*models.Conversation, error)
	createConversationFn       func(context.Context, uint, uint) (*models.Conversation, error)
	listConversationsForUserFn func(context.Context, uint) ([]*models.Conversation, error)
	createMessageFn            func(context.Context, *models.DirectMessage) error
	listMessagesFn             func(context.Context, uint, int, int) ([]*models.DirectMessage, error)
}

func (s *dmRepoStub) GetConversationByPair(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	return s.getConversationByPairFn(ctx, userA, userB)
}
func (s *dmRepoStub) GetConversationByID(ctx context.Context, id uint) (*models.Conversation, error) {
	return s.getConversationByIDFn(ctx, id)
}
func (s *dmRepoStub) CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	return s.createConversationFn(ctx, userA, userB)
}
func (s *dmRepoStub) ListConversationsForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.listConversationsForUserFn(ctx, userID)
}
func (s *dmRepoStub) CreateMessage(ctx context.Context, message *models.DirectMessage) error {
	return s.createMessageFn(ctx, message)
}
func (s *dmRepoStub) ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]*models.DirectMessage, error) {
	return s.listMessagesFn(ctx, conversationID, limit, offset)
}

func noopDMRepo() *dmRepoStub {
	return &dmRepoStub{
		getConversationByPairFn: func(_ context.Context, _, _ uint) (*models.Conversation, error) { return nil, nil },
		getConversationByIDFn: func(_ context.Context, id uint) (*models.Conversation, error) {
			return &models.Conversation{ID: id, User1ID: 1, User2ID: 2}, nil
		},
		createConversationFn: func(_ context.Context, a, b uint) (*models.Conversation, error) {
			u1, u2 := models.NormalizePair(a, b)
			return &models.Conversation{ID: 1, User1ID: u1, User2ID: u2}, nil
		},
		listConversationsForUserFn: func(_ context.Context, _ uint) ([]*models.Conversation, error) { return nil, nil },
		createMessageFn:            func(_ context.Context, _ *models.DirectMessage) error { return nil },
		listMessagesFn:             func(_ context.Context, _ uint, _, _ int) ([]*models.DirectMessage, error) { return nil, nil },
	}
}
