package repository

import (
	"context"

	"github.com/yukikurage/warbler/internal/database"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// Create creates a new message
func (r *GormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(msg).Error)
}

// FindByID finds a message by ID with optional preloading
func (r *GormMessageRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Message, error) {
	var msg models.Message
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&msg, id).Error; err != nil {
		return nil, err
	}

	return &msg, nil
}

// Delete deletes a message and its likes
func (r *GormMessageRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Message{}, id).Error
	})
}

// ListByUser lists a user's messages, most recent first
func (r *GormMessageRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]models.Message, error) {
	return r.ListByUsers(ctx, []uint64{userID}, limit)
}

// ListByUsers lists messages owned by any of userIDs, most recent first
func (r *GormMessageRepository) ListByUsers(ctx context.Context, userIDs []uint64, limit int) ([]models.Message, error) {
	if len(userIDs) == 0 {
		return []models.Message{}, nil
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("messages.user_id IN ?", userIDs).
		Scopes(database.NewestFirst).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
