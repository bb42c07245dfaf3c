package services

import (
	"context"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RelationshipService maintains the follow and friend edges stored on user
// documents. Each two-sided change is two single-document updates; when the
// second fails the first is kept and the failure is logged and returned.
type RelationshipService struct {
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	log           *zap.Logger
}

func NewRelationshipService(users repositories.UserRepository, notifications repositories.NotificationRepository, log *zap.Logger) *RelationshipService {
	return &RelationshipService{users: users, notifications: notifications, log: log}
}

func (s *RelationshipService) pair(ctx context.Context, actorID, targetID, verb string) (*models.User, primitive.ObjectID, error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	target, err := parseID(targetID, "target user")
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if actor == target {
		return nil, primitive.NilObjectID, apperrors.InvalidArgument("cannot %s yourself", verb)
	}
	actorUser, err := getUser(ctx, s.users, actor)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if _, err := getUser(ctx, s.users, target); err != nil {
		return nil, primitive.NilObjectID, err
	}
	return actorUser, target, nil
}

// Follow adds actor -> target. Repeating it changes nothing and sends no
// second notification.
func (s *RelationshipService) Follow(ctx context.Context, actorID, targetID string) error {
	actor, target, err := s.pair(ctx, actorID, targetID, "follow")
	if err != nil {
		return err
	}
	isNew := !actor.IsFollowing(target)

	if err := s.users.AddEdges(ctx, actor.ID, models.Edge{Field: models.FieldFollowing, Target: target}); err != nil {
		return storeError(err, "user", "follow user")
	}
	if err := s.users.AddEdges(ctx, target, models.Edge{Field: models.FieldFollowers, Target: actor.ID}); err != nil {
		s.partial("follow", actor.ID, target, err)
		return storeError(err, "user", "follow user")
	}

	if isNew {
		if _, err := emit(ctx, s.notifications, actor.ID, target, models.NotificationFollow, ""); err != nil {
			return err
		}
	}
	return nil
}

// Unfollow removes actor -> target. Removing a missing edge is a no-op.
func (s *RelationshipService) Unfollow(ctx context.Context, actorID, targetID string) error {
	actor, target, err := s.pair(ctx, actorID, targetID, "unfollow")
	if err != nil {
		return err
	}

	if err := s.users.RemoveEdges(ctx, actor.ID, models.Edge{Field: models.FieldFollowing, Target: target}); err != nil {
		return storeError(err, "user", "unfollow user")
	}
	if err := s.users.RemoveEdges(ctx, target, models.Edge{Field: models.FieldFollowers, Target: actor.ID}); err != nil {
		s.partial("unfollow", actor.ID, target, err)
		return storeError(err, "user", "unfollow user")
	}
	return nil
}

// Befriend makes a and b friends that follow each other. Each side is one
// update adding the other to friends, following and followers.
func (s *RelationshipService) Befriend(ctx context.Context, a, b primitive.ObjectID) error {
	if err := s.users.AddEdges(ctx, a, mutualEdges(b)...); err != nil {
		return storeError(err, "user", "add friend")
	}
	if err := s.users.AddEdges(ctx, b, mutualEdges(a)...); err != nil {
		s.partial("befriend", a, b, err)
		return storeError(err, "user", "add friend")
	}
	return nil
}

func mutualEdges(other primitive.ObjectID) []models.Edge {
	return []models.Edge{
		{Field: models.FieldFriends, Target: other},
		{Field: models.FieldFollowing, Target: other},
		{Field: models.FieldFollowers, Target: other},
	}
}

// Unfriend removes the friend edge on both sides. Follow edges stay.
func (s *RelationshipService) Unfriend(ctx context.Context, actorID, targetID string) error {
	actor, target, err := s.pair(ctx, actorID, targetID, "unfriend")
	if err != nil {
		return err
	}

	if err := s.users.RemoveEdges(ctx, actor.ID, models.Edge{Field: models.FieldFriends, Target: target}); err != nil {
		return storeError(err, "user", "remove friend")
	}
	if err := s.users.RemoveEdges(ctx, target, models.Edge{Field: models.FieldFriends, Target: actor.ID}); err != nil {
		s.partial("unfriend", actor.ID, target, err)
		return storeError(err, "user", "remove friend")
	}
	return nil
}

func (s *RelationshipService) ListFriends(ctx context.Context, userID string) ([]models.UserCompact, error) {
	return s.list(ctx, userID, func(u *models.User) []primitive.ObjectID { return u.Friends })
}

func (s *RelationshipService) ListFollowers(ctx context.Context, userID string) ([]models.UserCompact, error) {
	return s.list(ctx, userID, func(u *models.User) []primitive.ObjectID { return u.Followers })
}

func (s *RelationshipService) ListFollowing(ctx context.Context, userID string) ([]models.UserCompact, error) {
	return s.list(ctx, userID, func(u *models.User) []primitive.ObjectID { return u.Following })
}

func (s *RelationshipService) list(ctx context.Context, userID string, field func(*models.User) []primitive.ObjectID) ([]models.UserCompact, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := getUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetUsersByIDs(ctx, field(user))
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load users")
	}
	return compact(users), nil
}

func (s *RelationshipService) partial(op string, first, second primitive.ObjectID, err error) {
	s.log.Error("relationship update applied to one side only",
		zap.String("op", op),
		zap.String("applied", first.Hex()),
		zap.String("failed", second.Hex()),
		zap.Error(err),
	)
}
