package services

import (
	"context"
	"errors"
	"strings"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// UserService is the user directory.
type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser stores the profile created at sign-up.
func (s *UserService) CreateUser(ctx context.Context, name, email, avatarImage string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return models.User{}, apperrors.Validation("name is required")
	}
	if email == "" {
		return models.User{}, apperrors.Validation("email is required")
	}

	user, err := s.users.CreateUser(ctx, name, email, avatarImage)
	if errors.Is(err, apperrors.ErrConflict) {
		return models.User{}, apperrors.Conflict("email already registered", err)
	}
	return user, err
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return s.users.GetUser(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
}

func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	return s.users.EmailExists(ctx, email)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateUser applies the non-empty fields of patch.
func (s *UserService) UpdateUser(ctx context.Context, userID int64, patch models.UserPatch) (models.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		patch.Name = nil
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		patch.Email = nil
	}
	if patch.Name == nil && patch.Email == nil {
		return s.users.GetUser(ctx, userID)
	}

	user, err := s.users.UpdateUser(ctx, userID, patch)
	if errors.Is(err, apperrors.ErrConflict) {
		return models.User{}, apperrors.Conflict("email already registered", err)
	}
	return user, err
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, avatarImage string) (models.User, error) {
	return s.users.UpdateAvatar(ctx, userID, avatarImage)
}

// SenderSnapshots resolves name and avatar for each id, falling back to
// models.UnknownSender for ids that no longer resolve.
func (s *UserService) SenderSnapshots(ctx context.Context, userIDs []int64) (map[int64]models.SenderSnapshot, error) {
	users, err := s.users.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]models.SenderSnapshot, len(users))
	for _, u := range users {
		found[u.ID] = models.SenderSnapshot{Name: u.Name, AvatarImage: u.AvatarImage}
	}
	snapshots := make(map[int64]models.SenderSnapshot, len(userIDs))
	for _, id := range userIDs {
		if snap, ok := found[id]; ok {
			snapshots[id] = snap
		} else {
			snapshots[id] = models.UnknownSender
		}
	}
	return snapshots, nil
}
