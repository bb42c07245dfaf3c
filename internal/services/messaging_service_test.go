package services

import (
	"strconv"
	"testing"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateConversationIsDeduplicated(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	conv, created, err := f.messaging.CreateConversation(f.ctx, alice.ID.Hex(), []string{bob.ID.Hex(), alice.ID.Hex()})
	if err != nil || !created {
		t.Fatalf("CreateConversation = %v, %v", created, err)
	}
	if len(conv.Participants) != 2 {
		t.Fatalf("participants = %+v", conv.Participants)
	}

	again, created, err := f.messaging.CreateConversation(f.ctx, bob.ID.Hex(), []string{alice.ID.Hex()})
	if err != nil || created || again.ID != conv.ID {
		t.Fatalf("second CreateConversation = %+v, %v, %v", again, created, err)
	}
}

func TestCreateConversationValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	_, _, err := f.messaging.CreateConversation(f.ctx, alice.ID.Hex(), []string{alice.ID.Hex()})
	assertKind(t, err, apperrors.KindInvalidArgument)
	_, _, err = f.messaging.CreateConversation(f.ctx, alice.ID.Hex(), []string{"bogus"})
	assertKind(t, err, apperrors.KindInvalidArgument)
	_, _, err = f.messaging.CreateConversation(f.ctx, alice.ID.Hex(), []string{primitive.NewObjectID().Hex()})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestSendAndDeleteMessages(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	conv, _, err := f.messaging.CreateConversation(f.ctx, alice.ID.Hex(), []string{bob.ID.Hex()})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	_, err = f.messaging.SendMessage(f.ctx, carol.ID.Hex(), conv.ID, "", "hi")
	assertKind(t, err, apperrors.KindForbidden)
	_, err = f.messaging.SendMessage(f.ctx, alice.ID.Hex(), conv.ID, "fax", "hi")
	assertKind(t, err, apperrors.KindInvalidArgument)
	_, err = f.messaging.SendMessage(f.ctx, alice.ID.Hex(), conv.ID, "", "  ")
	assertKind(t, err, apperrors.KindInvalidArgument)
	_, err = f.messaging.SendMessage(f.ctx, alice.ID.Hex(), conv.ID+100, "", "hi")
	assertKind(t, err, apperrors.KindNotFound)

	first, err := f.messaging.SendMessage(f.ctx, alice.ID.Hex(), conv.ID, "", "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if first.MessageType != models.MessageText {
		t.Fatalf("default type = %q", first.MessageType)
	}
	if _, err := f.messaging.SendMessage(f.ctx, bob.ID.Hex(), conv.ID, models.MessageEmoji, "👋"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	notes := f.pending(t, bob.ID)
	if len(notes) != 1 || notes[0].Type != models.NotificationMessage || notes[0].TargetID != strconv.FormatUint(uint64(conv.ID), 10) {
		t.Fatalf("message notifications = %+v", notes)
	}

	messages, err := f.messaging.GetMessages(f.ctx, bob.ID.Hex(), conv.ID)
	if err != nil || len(messages) != 2 || messages[0].Content != "hello" {
		t.Fatalf("GetMessages = %+v, %v", messages, err)
	}
	_, err = f.messaging.GetMessages(f.ctx, carol.ID.Hex(), conv.ID)
	assertKind(t, err, apperrors.KindForbidden)

	list, err := f.messaging.ListConversations(f.ctx, bob.ID.Hex())
	if err != nil || len(list) != 1 || list[0].LastMessage != "👋" {
		t.Fatalf("ListConversations = %+v, %v", list, err)
	}

	assertKind(t, f.messaging.DeleteMessage(f.ctx, bob.ID.Hex(), first.ID), apperrors.KindForbidden)
	if err := f.messaging.DeleteMessage(f.ctx, alice.ID.Hex(), first.ID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	assertKind(t, f.messaging.DeleteMessage(f.ctx, alice.ID.Hex(), first.ID), apperrors.KindNotFound)
}
