package repositories

import (
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ConversationRepository defines the interface for conversation and message operations
type ConversationRepository interface {
	CreateConversation(conversation *models.Conversation) error
	GetConversationByID(id uint) (*models.Conversation, error)
	// FindByParticipants returns the conversation whose participant set is exactly userIDs.
	FindByParticipants(userIDs []string) (*models.Conversation, error)
	ListByParticipant(userID string) ([]models.Conversation, error)
	TouchLastMessage(id uint, content string, at time.Time) error

	CreateMessage(message *models.Message) error
	GetMessageByID(id uint) (*models.Message, error)
	ListMessages(conversationID uint) ([]models.Message, error)
	DeleteMessage(id uint) error
}

// PostgresConversationRepository implements ConversationRepository for PostgreSQL
type PostgresConversationRepository struct {
	db *gorm.DB
}

// NewPostgresConversationRepository creates a new PostgresConversationRepository
func NewPostgresConversationRepository(db *gorm.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// CreateConversation inserts the conversation and its participant rows in one transaction
func (r *PostgresConversationRepository) CreateConversation(conversation *models.Conversation) error {
	return errors.Wrap(r.db.Create(conversation).Error, "create conversation")
}

func (r *PostgresConversationRepository) GetConversationByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.Preload("Participants").First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find conversation")
	}
	return &conversation, nil
}

func (r *PostgresConversationRepository) FindByParticipants(userIDs []string) (*models.Conversation, error) {
	var ids []uint
	err := r.db.Model(&models.ConversationParticipant{}).
		Select("conversation_id").
		Group("conversation_id").
		Having("COUNT(*) = ? AND SUM(CASE WHEN user_id IN ? THEN 1 ELSE 0 END) = ?", len(userIDs), userIDs, len(userIDs)).
		Limit(1).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "find conversation by participants")
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return r.GetConversationByID(ids[0])
}

func (r *PostgresConversationRepository) ListByParticipant(userID string) ([]models.Conversation, error) {
	conversations := []models.Conversation{}
	err := r.db.Preload("Participants").
		Where("id IN (?)", r.db.Model(&models.ConversationParticipant{}).Select("conversation_id").Where("user_id = ?", userID)).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, errors.Wrap(err, "list conversations")
}

func (r *PostgresConversationRepository) TouchLastMessage(id uint, content string, at time.Time) error {
	res := r.db.Model(&models.Conversation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_message": content, "updated_at": at})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update conversation")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) CreateMessage(message *models.Message) error {
	return errors.Wrap(r.db.Create(message).Error, "create message")
}

func (r *PostgresConversationRepository) GetMessageByID(id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find message")
	}
	return &message, nil
}

func (r *PostgresConversationRepository) ListMessages(conversationID uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC, id ASC").Find(&messages).Error
	return messages, errors.Wrap(err, "list messages")
}

func (r *PostgresConversationRepository) DeleteMessage(id uint) error {
	res := r.db.Delete(&models.Message{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete message")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
