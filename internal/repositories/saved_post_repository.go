package repositories

import (
	"github.com/connectai/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	UnsavePost(userID, postID string) error
	GetSavedPostsByUser(userID string) ([]models.SavedPost, error)
	GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// SavePost inserts the bookmark. Saving twice is a no-op.
func (r *PostgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(savedPost).Error
	return errors.Wrap(err, "save post")
}

// UnsavePost removes the bookmark if present
func (r *PostgresSavedPostRepository) UnsavePost(userID, postID string) error {
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{}).Error
	return errors.Wrap(err, "unsave post")
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(userID string) ([]models.SavedPost, error) {
	saved := []models.SavedPost{}
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, errors.Wrap(err, "list saved posts")
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPost
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error
	if err != nil {
		return nil, errors.Wrap(err, "load saved post ids")
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}
