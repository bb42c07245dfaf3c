package services

import (
	"context"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationService drives the notification state machine. A notification
// leaves pending exactly once: friend requests go to accepted or rejected,
// every other type goes to read.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	relationships *RelationshipService
	log           *zap.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository, relationships *RelationshipService, log *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		relationships: relationships,
		log:           log,
	}
}

// SendFriendRequest creates a pending friend-request from sender to
// recipient. At most one request may be pending per unordered pair.
func (s *NotificationService) SendFriendRequest(ctx context.Context, senderID, recipientID string) (*models.Notification, error) {
	sender, err := parseID(senderID, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := parseID(recipientID, "recipient")
	if err != nil {
		return nil, err
	}
	if sender == recipient {
		return nil, apperrors.InvalidArgument("cannot send a friend request to yourself")
	}

	if _, err := s.users.GetUserByID(ctx, recipient); err != nil {
		return nil, storeError(err, "recipient", "load recipient")
	}
	senderUser, err := getUser(ctx, s.users, sender)
	if err != nil {
		return nil, err
	}
	if senderUser.IsFriend(recipient) {
		return nil, apperrors.Conflict("already friends")
	}

	_, err = s.notifications.FindPendingBetween(ctx, sender, recipient, models.NotificationFriendRequest)
	switch {
	case err == nil:
		return nil, apperrors.Conflict("friend request already pending")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperrors.Internal(err, "failed to check pending friend requests")
	}

	return emit(ctx, s.notifications, sender, recipient, models.NotificationFriendRequest, "")
}

// RespondToFriendRequest accepts or rejects a friend request addressed to actor.
func (s *NotificationService) RespondToFriendRequest(ctx context.Context, actorID, notificationID, status string) (*models.Notification, error) {
	if status != models.StatusAccepted && status != models.StatusRejected {
		return nil, apperrors.InvalidArgument("status must be accepted or rejected")
	}
	return s.transition(ctx, actorID, notificationID, status, true)
}

// UpdateNotificationStatus moves a pending notification addressed to actor
// into status. Accepting a friend request befriends the two users.
func (s *NotificationService) UpdateNotificationStatus(ctx context.Context, actorID, notificationID, status string) (*models.Notification, error) {
	switch status {
	case models.StatusRead, models.StatusAccepted, models.StatusRejected:
	default:
		return nil, apperrors.InvalidArgument("invalid status %q", status)
	}
	return s.transition(ctx, actorID, notificationID, status, false)
}

func (s *NotificationService) transition(ctx context.Context, actorID, notificationID, status string, friendRequestOnly bool) (*models.Notification, error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return nil, err
	}
	id, err := parseID(notificationID, "notification")
	if err != nil {
		return nil, err
	}

	n, err := s.notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "notification", "load notification")
	}
	if n.Recipient != actor {
		return nil, apperrors.Forbidden("only the recipient can respond to this notification")
	}

	isRequest := n.Type == models.NotificationFriendRequest
	if friendRequestOnly && !isRequest {
		return nil, apperrors.InvalidArgument("notification is not a friend request")
	}
	if isRequest && status == models.StatusRead {
		return nil, apperrors.InvalidArgument("friend requests must be accepted or rejected")
	}
	if !isRequest && status != models.StatusRead {
		return nil, apperrors.InvalidArgument("%s notifications can only be marked read", n.Type)
	}

	ok, err := s.notifications.UpdateStatus(ctx, id, models.StatusPending, status)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to update notification")
	}
	if !ok {
		return nil, apperrors.Conflict("notification has already been answered")
	}
	n.Status = status

	if isRequest && status == models.StatusAccepted {
		if err := s.relationships.Befriend(ctx, n.Sender, n.Recipient); err != nil {
			s.log.Error("friend request accepted but friendship not stored",
				zap.String("notification", n.ID.Hex()),
				zap.Error(err),
			)
			return nil, err
		}
	}
	return n, nil
}

// CreateNotification records a social event other than a friend request.
func (s *NotificationService) CreateNotification(ctx context.Context, senderID, recipientID, notificationType, targetID string) (*models.Notification, error) {
	if !models.IsNotificationType(notificationType) {
		return nil, apperrors.InvalidArgument("invalid notification type %q", notificationType)
	}
	if notificationType == models.NotificationFriendRequest {
		return nil, apperrors.InvalidArgument("friend requests are sent through the friends endpoint")
	}
	sender, err := parseID(senderID, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := parseID(recipientID, "recipient")
	if err != nil {
		return nil, err
	}
	if sender == recipient {
		return nil, apperrors.InvalidArgument("cannot notify yourself")
	}
	if _, err := s.users.GetUserByID(ctx, recipient); err != nil {
		return nil, storeError(err, "recipient", "load recipient")
	}
	return emit(ctx, s.notifications, sender, recipient, notificationType, targetID)
}

// GetNotifications returns the pending notifications of recipient joined
// with the sender's public profile, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, recipientID string) ([]models.NotificationWithSender, error) {
	recipient, err := parseID(recipientID, "user")
	if err != nil {
		return nil, err
	}
	list, err := s.notifications.GetPendingWithSender(ctx, recipient)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load notifications")
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	recipient, err := parseID(recipientID, "user")
	if err != nil {
		return 0, err
	}
	count, err := s.notifications.CountPending(ctx, recipient)
	if err != nil {
		return 0, apperrors.Internal(err, "failed to count notifications")
	}
	return count, nil
}

// MarkAllRead marks every pending notification except friend requests as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	recipient, err := parseID(recipientID, "user")
	if err != nil {
		return 0, err
	}
	n, err := s.notifications.MarkAllAsRead(ctx, recipient)
	if err != nil {
		return 0, apperrors.Internal(err, "failed to mark notifications read")
	}
	return n, nil
}

// DeleteNotification removes a notification in any status. Only its sender
// or recipient may delete it.
func (s *NotificationService) DeleteNotification(ctx context.Context, actorID, notificationID string) error {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return err
	}
	id, err := parseID(notificationID, "notification")
	if err != nil {
		return err
	}
	n, err := s.notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return storeError(err, "notification", "load notification")
	}
	if !involves(n, actor) {
		return apperrors.Forbidden("not allowed to delete this notification")
	}
	if err := s.notifications.DeleteNotification(ctx, id); err != nil {
		return storeError(err, "notification", "delete notification")
	}
	return nil
}

func involves(n *models.Notification, user primitive.ObjectID) bool {
	return n.Sender == user || n.Recipient == user
}
