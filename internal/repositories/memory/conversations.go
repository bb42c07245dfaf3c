package memory

import (
	"sort"
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type conversationRepo Store

func cloneConversation(c *models.Conversation) *models.Conversation {
	out := *c
	out.Participants = append([]models.ConversationParticipant{}, c.Participants...)
	return &out
}

func (r *conversationRepo) CreateConversation(conversation *models.Conversation) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateConversation", primitive.NilObjectID); err != nil {
		return err
	}
	s.nextID++
	conversation.ID = s.nextID
	now := time.Now().UTC()
	conversation.CreatedAt, conversation.UpdatedAt = now, now
	for i := range conversation.Participants {
		s.nextID++
		conversation.Participants[i].ID = s.nextID
		conversation.Participants[i].ConversationID = conversation.ID
	}
	s.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

func (r *conversationRepo) GetConversationByID(id uint) (*models.Conversation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetConversationByID", primitive.NilObjectID); err != nil {
		return nil, err
	}
	c, ok := s.conversations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneConversation(c), nil
}

func (r *conversationRepo) FindByParticipants(userIDs []string) (*models.Conversation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindByParticipants", primitive.NilObjectID); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	for _, c := range s.conversations {
		if len(c.Participants) != len(want) {
			continue
		}
		match := true
		for _, p := range c.Participants {
			if !want[p.UserID] {
				match = false
				break
			}
		}
		if match {
			return cloneConversation(c), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *conversationRepo) ListByParticipant(userID string) ([]models.Conversation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListByParticipant", primitive.NilObjectID); err != nil {
		return nil, err
	}
	out := []models.Conversation{}
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *conversationRepo) TouchLastMessage(id uint, content string, at time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("TouchLastMessage", primitive.NilObjectID); err != nil {
		return err
	}
	c, ok := s.conversations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.LastMessage = content
	c.UpdatedAt = at
	return nil
}

func (r *conversationRepo) CreateMessage(message *models.Message) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateMessage", primitive.NilObjectID); err != nil {
		return err
	}
	s.nextID++
	message.ID = s.nextID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	c := *message
	s.messages[message.ID] = &c
	return nil
}

func (r *conversationRepo) GetMessageByID(id uint) (*models.Message, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetMessageByID", primitive.NilObjectID); err != nil {
		return nil, err
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *conversationRepo) ListMessages(conversationID uint) ([]models.Message, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListMessages", primitive.NilObjectID); err != nil {
		return nil, err
	}
	out := []models.Message{}
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *conversationRepo) DeleteMessage(id uint) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteMessage", primitive.NilObjectID); err != nil {
		return err
	}
	if _, ok := s.messages[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}
