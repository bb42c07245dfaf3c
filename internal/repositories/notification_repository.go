package repositories

import (
	"context"
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	// FindPendingBetween looks for a pending notification of type between a and b in either direction.
	FindPendingBetween(ctx context.Context, a, b primitive.ObjectID, notificationType string) (*models.Notification, error)
	GetPendingWithSender(ctx context.Context, recipientID primitive.ObjectID) ([]models.NotificationWithSender, error)
	// UpdateStatus moves a notification from one status to another. It reports false when
	// the notification was not in the from status.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error)
	CountPending(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}
	notification.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, notification)
	return errors.Wrap(err, "insert notification")
}

func (r *mongoNotificationRepository) findOne(ctx context.Context, filter bson.M) (*models.Notification, error) {
	var n models.Notification
	if err := r.collection.FindOne(ctx, filter).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find notification")
	}
	return &n, nil
}

func (r *mongoNotificationRepository) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoNotificationRepository) FindPendingBetween(ctx context.Context, a, b primitive.ObjectID, notificationType string) (*models.Notification, error) {
	return r.findOne(ctx, bson.M{
		"type":   notificationType,
		"status": models.StatusPending,
		"$or": bson.A{
			bson.M{"sender": a, "recipient": b},
			bson.M{"sender": b, "recipient": a},
		},
	})
}

// GetPendingWithSender joins pending notifications with the sender's public profile at read time
func (r *mongoNotificationRepository) GetPendingWithSender(ctx context.Context, recipientID primitive.ObjectID) ([]models.NotificationWithSender, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipient": recipientID, "status": models.StatusPending}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "sender",
			"foreignField": "_id",
			"as":           "sender_info",
		}}},
		{{Key: "$unwind", Value: "$sender_info"}},
		{{Key: "$project", Value: bson.M{
			"_id":        1,
			"type":       1,
			"status":     1,
			"target_id":  1,
			"created_at": 1,
			"sender": bson.M{
				"_id":      "$sender_info._id",
				"name":     "$sender_info.name",
				"username": "$sender_info.username",
				"email":    "$sender_info.email",
				"avatar":   "$sender_info.avatar",
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate notifications")
	}
	defer cursor.Close(ctx)

	notifications := []models.NotificationWithSender{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, errors.Wrap(err, "decode notifications")
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, errors.Wrap(err, "update notification status")
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoNotificationRepository) CountPending(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"recipient": recipientID, "status": models.StatusPending})
	return count, errors.Wrap(err, "count notifications")
}

// MarkAllAsRead marks pending notifications as read. Friend requests keep waiting for an answer.
func (r *mongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{
			"recipient": recipientID,
			"status":    models.StatusPending,
			"type":      bson.M{"$ne": models.NotificationFriendRequest},
		},
		bson.M{"$set": bson.M{"status": models.StatusRead, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "mark notifications read")
	}
	return res.ModifiedCount, nil
}

func (r *mongoNotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete notification")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
