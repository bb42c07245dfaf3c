package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationFriendRequest = "friend-request"
	NotificationFollow        = "follow"
	NotificationMessage       = "message"
	NotificationLike          = "like"
	NotificationComment       = "comment"
)

// Notification statuses
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusRead     = "read"
)

// Notification is a standalone social event record (MongoDB). A friend-request
// notification is the only record of an outstanding request.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Recipient primitive.ObjectID `json:"recipient" bson:"recipient"`
	Type      string             `json:"type" bson:"type"`
	Status    string             `json:"status" bson:"status"`
	TargetID  string             `json:"target_id,omitempty" bson:"target_id,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// NotificationWithSender joins a notification with the sender's public profile
type NotificationWithSender struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Type      string             `json:"type" bson:"type"`
	Status    string             `json:"status" bson:"status"`
	TargetID  string             `json:"target_id,omitempty" bson:"target_id,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	Sender    UserCompact        `json:"sender" bson:"sender"`
}

// IsNotificationType reports whether t is a known notification type.
func IsNotificationType(t string) bool {
	switch t {
	case NotificationFriendRequest, NotificationFollow, NotificationMessage, NotificationLike, NotificationComment:
		return true
	}
	return false
}

// CreateNotificationRequest defines the request body for creating a notification
type CreateNotificationRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Type      string `json:"type" validate:"required"`
	TargetID  string `json:"target_id,omitempty" validate:"omitempty,max=64"`
}

// UpdateNotificationRequest defines the request body for responding to a notification.
// Allowed values depend on the notification type and are checked by the service.
type UpdateNotificationRequest struct {
	Status string `json:"status" validate:"required"`
}
