// Package services holds the social graph, notification lifecycle, feed
// ranking and post interaction logic. Services accept ids as hex strings,
// talk to the stores through the repository interfaces and return
// apperrors-classified errors.
package services

import (
	"context"
	"strings"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidArgument("invalid %s id", what)
	}
	return id, nil
}

// storeError classifies a repository error. what names the entity in
// the NotFound and Conflict messages.
func storeError(err error, what, action string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound("%s not found", what)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Conflict("%s already exists", what)
	default:
		return apperrors.Internal(err, "failed to "+action)
	}
}

func getUser(ctx context.Context, users repositories.UserRepository, id primitive.ObjectID) (*models.User, error) {
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", "load user")
	}
	return user, nil
}

func getPost(ctx context.Context, posts repositories.PostRepository, id primitive.ObjectID) (*models.Post, error) {
	post, err := posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "post", "load post")
	}
	return post, nil
}

// emit records a social event for recipient. Events start pending, which
// doubles as unread for every type but friend-request.
func emit(ctx context.Context, notifications repositories.NotificationRepository, sender, recipient primitive.ObjectID, notificationType, targetID string) (*models.Notification, error) {
	n := &models.Notification{
		Sender:    sender,
		Recipient: recipient,
		Type:      notificationType,
		Status:    models.StatusPending,
		TargetID:  targetID,
	}
	if err := notifications.CreateNotification(ctx, n); err != nil {
		return nil, apperrors.Internal(err, "failed to create notification")
	}
	return n, nil
}

// normalizeTags lower-cases, trims and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func compact(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
