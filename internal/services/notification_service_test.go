package services

import (
	"testing"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAcceptFriendRequestCreatesMutualEdges(t *testing.T) {
	tests := []struct {
		name        string
		priorFollow bool
	}{
		{"strangers", false},
		{"already following", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			alice := f.addUser(t, "alice")
			bob := f.addUser(t, "bob")
			if tt.priorFollow {
				if err := f.relationships.Follow(f.ctx, alice.ID.Hex(), bob.ID.Hex()); err != nil {
					t.Fatalf("Follow: %v", err)
				}
			}

			req, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
			if err != nil {
				t.Fatalf("SendFriendRequest: %v", err)
			}
			n, err := f.notifications.RespondToFriendRequest(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusAccepted)
			if err != nil {
				t.Fatalf("RespondToFriendRequest: %v", err)
			}
			if n.Status != models.StatusAccepted {
				t.Fatalf("status = %s", n.Status)
			}

			a, b := f.user(t, alice.ID), f.user(t, bob.ID)
			if !contains(a.Friends, bob.ID) || !contains(b.Friends, alice.ID) {
				t.Fatal("friend edges missing")
			}
			if !contains(a.Following, bob.ID) || !contains(b.Following, alice.ID) {
				t.Fatal("mutual follow missing")
			}
			if !contains(a.Followers, bob.ID) || !contains(b.Followers, alice.ID) {
				t.Fatal("mutual followers missing")
			}
			if len(a.Following) != 1 || len(b.Followers) != 1 {
				t.Fatalf("duplicate edges: %v %v", a.Following, b.Followers)
			}
		})
	}
}

func TestAcceptFriendRequestPartialFailure(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	req, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}

	f.store.Fail = func(op string, id primitive.ObjectID) error {
		if op == "AddEdges" && id == bob.ID {
			return errors.New("connection reset")
		}
		return nil
	}
	_, err = f.notifications.RespondToFriendRequest(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusAccepted)
	f.store.Fail = nil
	assertKind(t, err, apperrors.KindInternal)

	n, err := f.store.Notifications().GetNotificationByID(f.ctx, req.ID)
	if err != nil {
		t.Fatalf("GetNotificationByID: %v", err)
	}
	if n.Status != models.StatusAccepted {
		t.Fatalf("status = %s, want accepted", n.Status)
	}

	a, b := f.user(t, alice.ID), f.user(t, bob.ID)
	if !contains(a.Friends, bob.ID) || !contains(a.Following, bob.ID) || !contains(a.Followers, bob.ID) {
		t.Fatalf("sender edges missing: %+v", a)
	}
	if len(b.Friends) != 0 || len(b.Following) != 0 || len(b.Followers) != 0 {
		t.Fatalf("recipient edges should not have been applied: %+v", b)
	}
}

func TestDuplicateFriendRequests(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	if _, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex()); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}

	_, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
	assertKind(t, err, apperrors.KindConflict)
	if apperrors.Message(err) != "friend request already pending" {
		t.Fatalf("message = %q", apperrors.Message(err))
	}

	_, err = f.notifications.SendFriendRequest(f.ctx, bob.ID.Hex(), alice.ID.Hex())
	assertKind(t, err, apperrors.KindConflict)
}

func TestFriendRequestAfterRejectionIsAllowed(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	req, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if _, err := f.notifications.RespondToFriendRequest(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if a := f.user(t, alice.ID); len(a.Friends) != 0 {
		t.Fatal("rejection must not create edges")
	}
	if _, err := f.notifications.SendFriendRequest(f.ctx, bob.ID.Hex(), alice.ID.Hex()); err != nil {
		t.Fatalf("new request after rejection: %v", err)
	}
}

func TestSendFriendRequestValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	_, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), alice.ID.Hex())
	assertKind(t, err, apperrors.KindInvalidArgument)

	_, err = f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), primitive.NewObjectID().Hex())
	assertKind(t, err, apperrors.KindNotFound)

	if err := f.relationships.Befriend(f.ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Befriend: %v", err)
	}
	_, err = f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
	assertKind(t, err, apperrors.KindConflict)
}

func TestUpdateNotificationStatusRules(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	req, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}

	_, err = f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), req.ID.Hex(), "maybe")
	assertKind(t, err, apperrors.KindInvalidArgument)

	_, err = f.notifications.UpdateNotificationStatus(f.ctx, alice.ID.Hex(), req.ID.Hex(), models.StatusAccepted)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.notifications.UpdateNotificationStatus(f.ctx, carol.ID.Hex(), req.ID.Hex(), models.StatusAccepted)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusRead)
	assertKind(t, err, apperrors.KindInvalidArgument)

	_, err = f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), primitive.NewObjectID().Hex(), models.StatusAccepted)
	assertKind(t, err, apperrors.KindNotFound)

	if _, err := f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err = f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusRejected)
	assertKind(t, err, apperrors.KindConflict)

	if b := f.user(t, bob.ID); !contains(b.Friends, alice.ID) {
		t.Fatal("late rejection must not undo the friendship")
	}
}

func TestSocialNotificationsOnlyGoToRead(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	n, err := f.notifications.CreateNotification(f.ctx, alice.ID.Hex(), bob.ID.Hex(), models.NotificationLike, "post-1")
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	_, err = f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), n.ID.Hex(), models.StatusAccepted)
	assertKind(t, err, apperrors.KindInvalidArgument)

	_, err = f.notifications.RespondToFriendRequest(f.ctx, bob.ID.Hex(), n.ID.Hex(), models.StatusAccepted)
	assertKind(t, err, apperrors.KindInvalidArgument)

	if _, err := f.notifications.UpdateNotificationStatus(f.ctx, bob.ID.Hex(), n.ID.Hex(), models.StatusRead); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(f.pending(t, bob.ID)) != 0 {
		t.Fatal("read notification should leave the pending list")
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	_, err := f.notifications.CreateNotification(f.ctx, alice.ID.Hex(), bob.ID.Hex(), "poke", "")
	assertKind(t, err, apperrors.KindInvalidArgument)
	_, err = f.notifications.CreateNotification(f.ctx, alice.ID.Hex(), bob.ID.Hex(), models.NotificationFriendRequest, "")
	assertKind(t, err, apperrors.KindInvalidArgument)
	_, err = f.notifications.CreateNotification(f.ctx, alice.ID.Hex(), primitive.NewObjectID().Hex(), models.NotificationMessage, "")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestGetNotificationsJoinsSender(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	if _, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex()); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if _, err := f.notifications.CreateNotification(f.ctx, carol.ID.Hex(), bob.ID.Hex(), models.NotificationComment, "p"); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	list := f.pending(t, bob.ID)
	if len(list) != 2 {
		t.Fatalf("expected 2 pending notifications, got %d", len(list))
	}
	senders := map[string]models.UserCompact{}
	for _, n := range list {
		senders[n.Type] = n.Sender
	}
	if s := senders[models.NotificationFriendRequest]; s.Username != "alice" || s.Email != "alice@example.com" {
		t.Fatalf("friend request sender = %+v", s)
	}
	if senders[models.NotificationComment].ID != carol.ID {
		t.Fatal("comment sender not joined")
	}
	if len(f.pending(t, alice.ID)) != 0 {
		t.Fatal("sender must not see their own request")
	}
}

func TestMarkAllReadKeepsFriendRequests(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	if _, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex()); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if err := f.relationships.Follow(f.ctx, alice.ID.Hex(), bob.ID.Hex()); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	count, err := f.notifications.UnreadCount(f.ctx, bob.ID.Hex())
	if err != nil || count != 2 {
		t.Fatalf("UnreadCount = %d, %v", count, err)
	}
	marked, err := f.notifications.MarkAllRead(f.ctx, bob.ID.Hex())
	if err != nil || marked != 1 {
		t.Fatalf("MarkAllRead = %d, %v", marked, err)
	}
	list := f.pending(t, bob.ID)
	if len(list) != 1 || list[0].Type != models.NotificationFriendRequest {
		t.Fatalf("remaining = %+v", list)
	}
}

func TestDeleteNotification(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	req, err := f.notifications.SendFriendRequest(f.ctx, alice.ID.Hex(), bob.ID.Hex())
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if _, err := f.notifications.RespondToFriendRequest(f.ctx, bob.ID.Hex(), req.ID.Hex(), models.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	assertKind(t, f.notifications.DeleteNotification(f.ctx, carol.ID.Hex(), req.ID.Hex()), apperrors.KindForbidden)
	if err := f.notifications.DeleteNotification(f.ctx, bob.ID.Hex(), req.ID.Hex()); err != nil {
		t.Fatalf("delete answered notification: %v", err)
	}
	assertKind(t, f.notifications.DeleteNotification(f.ctx, bob.ID.Hex(), req.ID.Hex()), apperrors.KindNotFound)
}
