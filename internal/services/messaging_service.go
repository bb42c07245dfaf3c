package services

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var messageTypes = map[string]bool{
	models.MessageText:    true,
	models.MessageImage:   true,
	models.MessageVideo:   true,
	models.MessageAudio:   true,
	models.MessageSticker: true,
	models.MessageEmoji:   true,
}

// MessagingService manages conversations and their messages
type MessagingService struct {
	conversations repositories.ConversationRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	log           *zap.Logger
}

func NewMessagingService(conversations repositories.ConversationRepository, users repositories.UserRepository, notifications repositories.NotificationRepository, log *zap.Logger) *MessagingService {
	return &MessagingService{conversations: conversations, users: users, notifications: notifications, log: log}
}

// CreateConversation returns the conversation between actor and
// participants, creating it when none exists. created reports whether a new
// conversation was stored.
func (s *MessagingService) CreateConversation(ctx context.Context, actorID string, participants []string) (conversation *models.Conversation, created bool, err error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return nil, false, err
	}

	seen := map[primitive.ObjectID]bool{actor: true}
	ids := []primitive.ObjectID{actor}
	for _, p := range participants {
		id, err := parseID(p, "participant")
		if err != nil {
			return nil, false, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return nil, false, apperrors.InvalidArgument("a conversation needs at least one other participant")
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, false, apperrors.Internal(err, "failed to load participants")
	}
	if len(users) != len(ids) {
		return nil, false, apperrors.NotFound("participant not found")
	}

	hexIDs := make([]string, len(ids))
	for i, id := range ids {
		hexIDs[i] = id.Hex()
	}
	sort.Strings(hexIDs)

	existing, err := s.conversations.FindByParticipants(hexIDs)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, apperrors.Internal(err, "failed to find conversation")
	}

	conversation = &models.Conversation{}
	for _, id := range hexIDs {
		conversation.Participants = append(conversation.Participants, models.ConversationParticipant{UserID: id})
	}
	if err := s.conversations.CreateConversation(conversation); err != nil {
		return nil, false, apperrors.Internal(err, "failed to create conversation")
	}
	return conversation, true, nil
}

// ListConversations returns the actor's conversations, most recently active first.
func (s *MessagingService) ListConversations(ctx context.Context, actorID string) ([]models.Conversation, error) {
	if _, err := parseID(actorID, "user"); err != nil {
		return nil, err
	}
	list, err := s.conversations.ListByParticipant(actorID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load conversations")
	}
	return list, nil
}

func (s *MessagingService) participantOf(actorID string, conversationID uint) (*models.Conversation, error) {
	conversation, err := s.conversations.GetConversationByID(conversationID)
	if err != nil {
		return nil, storeError(err, "conversation", "load conversation")
	}
	if !conversation.HasParticipant(actorID) {
		return nil, apperrors.Forbidden("you are not a participant of this conversation")
	}
	return conversation, nil
}

// SendMessage appends a message and notifies every other participant.
func (s *MessagingService) SendMessage(ctx context.Context, actorID string, conversationID uint, messageType, content string) (*models.Message, error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return nil, err
	}
	if messageType == "" {
		messageType = models.MessageText
	}
	if !messageTypes[messageType] {
		return nil, apperrors.InvalidArgument("invalid message type %q", messageType)
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidArgument("content is required")
	}

	conversation, err := s.participantOf(actorID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       actorID,
		MessageType:    messageType,
		Content:        content,
	}
	if err := s.conversations.CreateMessage(message); err != nil {
		return nil, apperrors.Internal(err, "failed to send message")
	}
	if err := s.conversations.TouchLastMessage(conversation.ID, content, message.CreatedAt); err != nil {
		s.log.Error("message stored but conversation not updated",
			zap.Uint("conversation", conversation.ID), zap.Error(err))
		return nil, storeError(err, "conversation", "update conversation")
	}

	target := strconv.FormatUint(uint64(conversation.ID), 10)
	for _, p := range conversation.Participants {
		if p.UserID == actorID {
			continue
		}
		recipient, err := primitive.ObjectIDFromHex(p.UserID)
		if err != nil {
			continue
		}
		if _, err := emit(ctx, s.notifications, actor, recipient, models.NotificationMessage, target); err != nil {
			return nil, err
		}
	}
	return message, nil
}

// GetMessages returns the conversation's messages, oldest first.
func (s *MessagingService) GetMessages(ctx context.Context, actorID string, conversationID uint) ([]models.Message, error) {
	if _, err := parseID(actorID, "user"); err != nil {
		return nil, err
	}
	if _, err := s.participantOf(actorID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.conversations.ListMessages(conversationID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load messages")
	}
	return messages, nil
}

// DeleteMessage removes a message. Only its sender may delete it.
func (s *MessagingService) DeleteMessage(ctx context.Context, actorID string, messageID uint) error {
	if _, err := parseID(actorID, "user"); err != nil {
		return err
	}
	message, err := s.conversations.GetMessageByID(messageID)
	if err != nil {
		return storeError(err, "message", "load message")
	}
	if message.SenderID != actorID {
		return apperrors.Forbidden("you can only delete your own messages")
	}
	if err := s.conversations.DeleteMessage(messageID); err != nil {
		return storeError(err, "message", "delete message")
	}
	return nil
}
