package memory

import (
	"context"
	"sort"
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notifications

type notificationRepo Store

func (r *notificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateNotification", n.Recipient); err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	c := *n
	s.notifications[n.ID] = &c
	return nil
}

func (r *notificationRepo) GetNotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetNotificationByID", id); err != nil {
		return nil, err
	}
	n, ok := s.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r *notificationRepo) FindPendingBetween(_ context.Context, a, b primitive.ObjectID, notificationType string) (*models.Notification, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindPendingBetween", a); err != nil {
		return nil, err
	}
	for _, n := range s.notifications {
		if n.Type != notificationType || n.Status != models.StatusPending {
			continue
		}
		if (n.Sender == a && n.Recipient == b) || (n.Sender == b && n.Recipient == a) {
			c := *n
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// GetPendingWithSender drops notifications whose sender no longer exists, like $unwind does.
func (r *notificationRepo) GetPendingWithSender(_ context.Context, recipientID primitive.ObjectID) ([]models.NotificationWithSender, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetPendingWithSender", recipientID); err != nil {
		return nil, err
	}
	out := []models.NotificationWithSender{}
	for _, n := range s.notifications {
		if n.Recipient != recipientID || n.Status != models.StatusPending {
			continue
		}
		sender, ok := s.users[n.Sender]
		if !ok {
			continue
		}
		out = append(out, models.NotificationWithSender{
			ID:        n.ID,
			Type:      n.Type,
			Status:    n.Status,
			TargetID:  n.TargetID,
			CreatedAt: n.CreatedAt,
			Sender:    sender.ToCompact(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *notificationRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateStatus", id); err != nil {
		return false, err
	}
	n, ok := s.notifications[id]
	if !ok || n.Status != from {
		return false, nil
	}
	n.Status = to
	n.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *notificationRepo) CountPending(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountPending", recipientID); err != nil {
		return 0, err
	}
	var count int64
	for _, n := range s.notifications {
		if n.Recipient == recipientID && n.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) MarkAllAsRead(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkAllAsRead", recipientID); err != nil {
		return 0, err
	}
	var count int64
	for _, n := range s.notifications {
		if n.Recipient == recipientID && n.Status == models.StatusPending && n.Type != models.NotificationFriendRequest {
			n.Status = models.StatusRead
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteNotification", id); err != nil {
		return err
	}
	if _, ok := s.notifications[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// saved posts

type savedPostRepo Store

func (r *savedPostRepo) SavePost(savedPost *models.SavedPost) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SavePost", primitive.NilObjectID); err != nil {
		return err
	}
	key := savedPost.UserID + "/" + savedPost.PostID
	if _, ok := s.saved[key]; ok {
		return nil
	}
	s.savedID++
	savedPost.ID = s.savedID
	savedPost.CreatedAt = time.Now().UTC()
	c := *savedPost
	s.saved[key] = &c
	return nil
}

func (r *savedPostRepo) UnsavePost(userID, postID string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UnsavePost", primitive.NilObjectID); err != nil {
		return err
	}
	delete(s.saved, userID+"/"+postID)
	return nil
}

func (r *savedPostRepo) GetSavedPostsByUser(userID string) ([]models.SavedPost, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetSavedPostsByUser", primitive.NilObjectID); err != nil {
		return nil, err
	}
	out := []models.SavedPost{}
	for _, sp := range s.saved {
		if sp.UserID == userID {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *savedPostRepo) GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetSavedPostIDs", primitive.NilObjectID); err != nil {
		return nil, err
	}
	result := make(map[string]bool)
	for _, id := range postIDs {
		if _, ok := s.saved[userID+"/"+id]; ok {
			result[id] = true
		}
	}
	return result, nil
}

// token denylist

type denylist Store

func (d *denylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s := (*Store)(d)
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		s.revoked[tokenID] = time.Now().Add(ttl)
	}
	return nil
}

func (d *denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s := (*Store)(d)
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}
