package models

import "time"

// Message types
const (
	MessageText    = "text"
	MessageImage   = "image"
	MessageVideo   = "video"
	MessageAudio   = "audio"
	MessageSticker = "sticker"
	MessageEmoji   = "emoji"
)

// Conversation is a chat between two or more users (PostgreSQL)
type Conversation struct {
	ID           uint                      `json:"id" gorm:"primaryKey"`
	LastMessage  string                    `json:"last_message"`
	Participants []ConversationParticipant `json:"participants" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at" gorm:"index"`
}

// ConversationParticipant links a user (Mongo ObjectID hex) to a conversation
type ConversationParticipant struct {
	ID             uint   `json:"-" gorm:"primaryKey"`
	ConversationID uint   `json:"-" gorm:"index;uniqueIndex:idx_conversation_user"`
	UserID         string `json:"user_id" gorm:"size:24;index;uniqueIndex:idx_conversation_user"`
}

// ParticipantIDs returns the participant user ids in stored order.
func (c *Conversation) ParticipantIDs() []string {
	ids := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message (PostgreSQL)
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index"`
	SenderID       string    `json:"sender_id" gorm:"size:24;index"`
	MessageType    string    `json:"message_type" gorm:"size:20;default:'text'"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// CreateConversationRequest defines the request body for creating a conversation
type CreateConversationRequest struct {
	Participants []string `json:"participants" validate:"required,min=1,max=50,dive,len=24,hexadecimal"`
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image video audio sticker emoji"`
	Content     string `json:"content" validate:"required,min=1,max=4000"`
}
