package service

import (
	"context"
	"strings"

	"campushub/internal/models"
	"campushub/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID     uint
	Bio        string
	Avatar     string
	University string
	Year       int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if in.University != "" {
		user.University = in.University
	}
	if in.Year != 0 {
		user.Year = in.Year
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow adds target to the caller's followed set. Idempotent.
func (s *UserService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.GetUserByID(ctx, followedID); err != nil {
		return err
	}
	return s.userRepo.Follow(ctx, followerID, followedID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	return s.userRepo.Unfollow(ctx, followerID, followedID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.userRepo.IsFollowing(ctx, followerID, followedID)
}

// Search finds users by username substring.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.Search(ctx, query, limit)
}

// IsAdmin is injected into other services as their admin check.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin, nil
}
