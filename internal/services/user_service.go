package services

import (
	"context"
	"strings"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"github.com/connectai/backend/internal/storage"
	"go.uber.org/zap"
)

const searchLimit = 20

// ProfileInput carries the optional fields of a profile update
type ProfileInput struct {
	Name      *string
	Bio       *string
	Interests []string
	Avatar    *Upload
}

// UserService serves profile reads and updates
type UserService struct {
	users    repositories.UserRepository
	uploader storage.Uploader
	log      *zap.Logger
}

func NewUserService(users repositories.UserRepository, uploader storage.Uploader, log *zap.Logger) *UserService {
	return &UserService{users: users, uploader: uploader, log: log}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	return getUser(ctx, s.users, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.InvalidArgument("username is required")
	}
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "user", "load user")
	}
	return user, nil
}

// SearchUsers matches query against name and username, case-insensitively.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidArgument("search query is required")
	}
	users, err := s.users.SearchUsers(ctx, query, searchLimit)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to search users")
	}
	return compact(users), nil
}

// UpdateProfile applies the non-nil fields of in. A failed avatar upload
// fails the whole update.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{Name: in.Name, Bio: in.Bio}
	if in.Interests != nil {
		update.Interests = normalizeTags(in.Interests)
	}
	if in.Avatar != nil {
		url, err := s.uploader.Upload(ctx, storage.ObjectName("avatars", in.Avatar.Filename), in.Avatar.Reader, in.Avatar.ContentType)
		if err != nil {
			s.log.Error("avatar upload failed", zap.String("user", userID), zap.Error(err))
			return nil, apperrors.Internal(err, "failed to upload avatar")
		}
		update.Avatar = &url
	}

	if err := s.users.UpdateProfile(ctx, id, update); err != nil {
		return nil, storeError(err, "user", "update profile")
	}
	return getUser(ctx, s.users, id)
}

func (s *UserService) SetMood(ctx context.Context, userID, mood string) error {
	id, err := parseID(userID, "user")
	if err != nil {
		return err
	}
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return apperrors.InvalidArgument("mood is required")
	}
	if err := s.users.UpdateProfile(ctx, id, models.ProfileUpdate{Mood: &mood}); err != nil {
		return storeError(err, "user", "set mood")
	}
	return nil
}
