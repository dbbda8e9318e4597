package service

import (
	"context"
	"strings"

	"campushub/internal/models"
	"campushub/internal/repository"
)

// LeaveStatus reports the outcome of a leave request.
type LeaveStatus string

const (
	// LeaveLeft means the membership was removed.
	LeaveLeft LeaveStatus = "left"
	// LeaveConfirmRequired means the caller is the last member and must
	// resend the request with Confirm set; nothing was changed.
	LeaveConfirmRequired LeaveStatus = "confirm_required"
	// LeaveCircleDeleted means the last member left and the circle was
	// cascade-deleted.
	LeaveCircleDeleted LeaveStatus = "circle_deleted"
)

// LeaderTitle is assigned to the creator's executive membership.
const LeaderTitle = "leader"

type CircleService struct {
	circleRepo   repository.CircleRepository
	timelineRepo repository.TimelineRepository
	userRepo     repository.UserRepository
}

type CreateCircleInput struct {
	CreatorID   uint
	Name        string
	Description string
	IsPublic    bool
}

type LeaveCircleInput struct {
	CircleID uint
	UserID   uint
	Confirm  bool
}

type CreateTimelineInput struct {
	CircleID  uint
	ActorID   uint
	Name      string
	MemberIDs []uint
}

func NewCircleService(
	circleRepo repository.CircleRepository,
	timelineRepo repository.TimelineRepository,
	userRepo repository.UserRepository,
) *CircleService {
	return &CircleService{
		circleRepo:   circleRepo,
		timelineRepo: timelineRepo,
		userRepo:     userRepo,
	}
}

// CreateCircle creates the circle with the creator as leader, sole
// executive (titled "leader") and first member.
func (s *CircleService) CreateCircle(ctx context.Context, in CreateCircleInput) (*models.Circle, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Circle name is required")
	}
	if len(name) > 100 {
		return nil, models.NewValidationError("Circle name too long (max 100 characters)")
	}

	circle := &models.Circle{
		Name:        name,
		Description: in.Description,
		LeaderID:    in.CreatorID,
		IsPublic:    in.IsPublic,
	}
	if err := s.circleRepo.Create(ctx, circle); err != nil {
		return nil, err
	}

	membership := &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   in.CreatorID,
		Role:     models.CircleRoleExecutive,
		Title:    LeaderTitle,
	}
	if err := s.circleRepo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}

	return s.circleRepo.GetByID(ctx, circle.ID)
}

func (s *CircleService) GetCircle(ctx context.Context, circleID uint) (*models.Circle, error) {
	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, models.NewNotFoundError("Circle", circleID)
	}
	return circle, nil
}

func (s *CircleService) ListCircles(ctx context.Context, limit, offset int) ([]*models.Circle, error) {
	return s.circleRepo.ListPublic(ctx, limit, offset)
}

func (s *CircleService) ListMyCircles(ctx context.Context, userID uint) ([]*models.Circle, error) {
	return s.circleRepo.ListByMember(ctx, userID)
}

// Join adds the user as a plain member. Joining twice is a conflict.
func (s *CircleService) Join(ctx context.Context, circleID, userID uint) error {
	if _, err := s.GetCircle(ctx, circleID); err != nil {
		return err
	}
	added, err := s.circleRepo.AddMember(ctx, &models.CircleMembership{
		CircleID: circleID,
		UserID:   userID,
		Role:     models.CircleRoleMember,
	})
	if err != nil {
		return err
	}
	if !added {
		return models.NewConflictError("Already a member of this circle")
	}
	return nil
}

// Invite adds another user directly. Only the leader or an executive
// may invite.
func (s *CircleService) Invite(ctx context.Context, circleID, actorID, targetID uint) error {
	circle, err := s.GetCircle(ctx, circleID)
	if err != nil {
		return err
	}
	if err := s.requireExecutive(ctx, circle, actorID); err != nil {
		return err
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundError("User", targetID)
	}

	added, err := s.circleRepo.AddMember(ctx, &models.CircleMembership{
		CircleID: circleID,
		UserID:   targetID,
		Role:     models.CircleRoleMember,
	})
	if err != nil {
		return err
	}
	if !added {
		return models.NewConflictError("User is already a member of this circle")
	}
	return nil
}

// Leave removes the membership. When the caller is the last member the
// circle would be orphaned, so the first call returns
// LeaveConfirmRequired without mutating anything; a confirmed call
// cascade-deletes the whole circle. Cascade failure rolls back and
// surfaces as CASCADE_FAILED.
func (s *CircleService) Leave(ctx context.Context, in LeaveCircleInput) (LeaveStatus, error) {
	circle, err := s.GetCircle(ctx, in.CircleID)
	if err != nil {
		return "", err
	}

	membership, err := s.circleRepo.GetMembership(ctx, in.CircleID, in.UserID)
	if err != nil {
		return "", err
	}
	if membership == nil {
		return "", models.NewValidationError("You are not a member of this circle")
	}

	count, err := s.circleRepo.MemberCount(ctx, in.CircleID)
	if err != nil {
		return "", err
	}
	if count <= 1 {
		if !in.Confirm {
			return LeaveConfirmRequired, nil
		}
		if err := s.circleRepo.DeleteCascade(ctx, circle.ID); err != nil {
			return "", models.NewCascadeError(err)
		}
		return LeaveCircleDeleted, nil
	}

	// The leader leaves like any other member; their role and title go
	// with the membership row.
	if err := s.circleRepo.RemoveMember(ctx, in.CircleID, in.UserID); err != nil {
		return "", err
	}
	return LeaveLeft, nil
}

// UpdateCircle edits circle metadata. Leader or executive only.
func (s *CircleService) UpdateCircle(ctx context.Context, circleID, actorID uint, description, backgroundImageURL *string, isPublic *bool) (*models.Circle, error) {
	circle, err := s.GetCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireExecutive(ctx, circle, actorID); err != nil {
		return nil, err
	}

	if description != nil {
		circle.Description = *description
	}
	if backgroundImageURL != nil {
		circle.BackgroundImageURL = *backgroundImageURL
	}
	if isPublic != nil {
		circle.IsPublic = *isPublic
	}
	if err := s.circleRepo.Update(ctx, circle); err != nil {
		return nil, err
	}
	return s.circleRepo.GetByID(ctx, circleID)
}

// Promote raises a member to executive. Leader only; promoting an
// existing executive is a conflict.
func (s *CircleService) Promote(ctx context.Context, circleID, actorID, targetID uint) error {
	circle, err := s.GetCircle(ctx, circleID)
	if err != nil {
		return err
	}
	if actorID != circle.LeaderID {
		return models.NewUnauthorizedError("Only the leader can promote members")
	}

	membership, err := s.circleRepo.GetMembership(ctx, circleID, targetID)
	if err != nil {
		return err
	}
	if membership == nil {
		return models.NewValidationError("Target user is not a member of this circle")
	}
	if membership.Role == models.CircleRoleExecutive {
		return models.NewConflictError("User is already an executive")
	}

	membership.Role = models.CircleRoleExecutive
	return s.circleRepo.UpdateMembership(ctx, membership)
}

// Demote strips executive status. Leader only; the leader cannot be
// demoted.
func (s *CircleService) Demote(ctx context.Context, circleID, actorID, targetID uint) error {
	circle, err := s.GetCircle(ctx, circleID)
	if err != nil {
		return err
	}
	if actorID != circle.LeaderID {
		return models.NewUnauthorizedError("Only the leader can demote executives")
	}
	if targetID == circle.LeaderID {
		return models.NewValidationError("The leader cannot be demoted")
	}

	membership, err := s.circleRepo.GetMembership(ctx, circleID, targetID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role != models.CircleRoleExecutive {
		return models.NewValidationError("Target user is not an executive")
	}

	membership.Role = models.CircleRoleMember
	membership.Title = ""
	return s.circleRepo.UpdateMembership(ctx, membership)
}

// SetExecutiveTitle lets an executive set or overwrite their own title.
func (s *CircleService) SetExecutiveTitle(ctx context.Context, circleID, actorID uint, title string) error {
	if _, err := s.GetCircle(ctx, circleID); err != nil {
		return err
	}

	membership, err := s.circleRepo.GetMembership(ctx, circleID, actorID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role != models.CircleRoleExecutive {
		return models.NewUnauthorizedError("Only executives can set a title")
	}

	membership.Title = strings.TrimSpace(title)
	return s.circleRepo.UpdateMembership(ctx, membership)
}

func (s *CircleService) ListMembers(ctx context.Context, circleID, actorID uint) ([]*models.CircleMembership, error) {
	circle, err := s.GetCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !circle.IsPublic {
		membership, err := s.circleRepo.GetMembership(ctx, circleID, actorID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			return nil, models.NewUnauthorizedError("You are not a member of this circle")
		}
	}
	return s.circleRepo.ListMembers(ctx, circleID)
}

// CreatePrivateTimeline creates an invite-scoped timeline. Only the
// leader or an executive may create one. Member ids outside the
// circle's membership are silently dropped; an empty resulting set
// fails validation. The creator is always included.
func (s *CircleService) CreatePrivateTimeline(ctx context.Context, in CreateTimelineInput) (*models.Timeline, error) {
	circle, err := s.GetCircle(ctx, in.CircleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireExecutive(ctx, circle, in.ActorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Timeline name is required")
	}

	memberIDs, err := s.filterToCircleMembers(ctx, in.CircleID, in.MemberIDs)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, models.NewValidationError("Timeline needs at least one member from the circle")
	}
	if !containsID(memberIDs, in.ActorID) {
		memberIDs = append(memberIDs, in.ActorID)
	}

	timeline := &models.Timeline{
		CircleID:  in.CircleID,
		Name:      name,
		CreatorID: in.ActorID,
	}
	if err := s.timelineRepo.Create(ctx, timeline, memberIDs); err != nil {
		return nil, err
	}
	return timeline, nil
}

// DeleteTimeline removes a private timeline and its tagged posts.
// Allowed for the timeline's creator, the circle leader or an executive.
func (s *CircleService) DeleteTimeline(ctx context.Context, circleID, timelineID, actorID uint) error {
	circle, err := s.GetCircle(ctx, circleID)
	if err != nil {
		return err
	}

	timeline, err := s.timelineRepo.GetByID(ctx, timelineID)
	if err != nil {
		return err
	}
	if timeline == nil || timeline.CircleID != circleID {
		return models.NewNotFoundError("Timeline", timelineID)
	}

	if timeline.CreatorID != actorID {
		if err := s.requireExecutive(ctx, circle, actorID); err != nil {
			return err
		}
	}

	if err := s.timelineRepo.DeleteCascade(ctx, timelineID); err != nil {
		return models.NewCascadeError(err)
	}
	return nil
}

// ListCircleTimelines returns the circle's private timelines visible to
// the user, i.e. the ones they are a member of.
func (s *CircleService) ListCircleTimelines(ctx context.Context, circleID, userID uint) ([]*models.Timeline, error) {
	if _, err := s.GetCircle(ctx, circleID); err != nil {
		return nil, err
	}
	membership, err := s.circleRepo.GetMembership(ctx, circleID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewUnauthorizedError("You are not a member of this circle")
	}
	return s.timelineRepo.ListByCircleForUser(ctx, circleID, userID)
}

// ListUserTimelines returns every private timeline the user belongs to,
// across circles. Powers the sidebar.
func (s *CircleService) ListUserTimelines(ctx context.Context, userID uint) ([]*models.Timeline, error) {
	return s.timelineRepo.ListForUser(ctx, userID)
}

// requireExecutive checks that the actor is the leader or an executive.
func (s *CircleService) requireExecutive(ctx context.Context, circle *models.Circle, actorID uint) error {
	if actorID == circle.LeaderID {
		return nil
	}
	membership, err := s.circleRepo.GetMembership(ctx, circle.ID, actorID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role != models.CircleRoleExecutive {
		return models.NewUnauthorizedError("Only the leader or an executive can do this")
	}
	return nil
}

func (s *CircleService) filterToCircleMembers(ctx context.Context, circleID uint, ids []uint) ([]uint, error) {
	memberships, err := s.circleRepo.ListMembers(ctx, circleID)
	if err != nil {
		return nil, err
	}
	members := make(map[uint]struct{}, len(memberships))
	for _, m := range memberships {
		members[m.UserID] = struct{}{}
	}

	var out []uint
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := members[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
