package repository

import (
	"context"

	"github.com/yukikurage/warbler/internal/database"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLikeRepository is a GORM implementation of LikeRepository
type GormLikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &GormLikeRepository{db: db}
}

// Add inserts a likes edge, ignoring an existing one
func (r *GormLikeRepository) Add(ctx context.Context, userID, messageID uint64) error {
	return addLike(r.db.WithContext(ctx), userID, messageID)
}

// Remove deletes a likes edge
func (r *GormLikeRepository) Remove(ctx context.Context, userID, messageID uint64) error {
	return removeLike(r.db.WithContext(ctx), userID, messageID)
}

// Toggle flips the likes edge and reports whether it now exists
func (r *GormLikeRepository) Toggle(ctx context.Context, userID, messageID uint64) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := likeExists(tx, userID, messageID)
		if err != nil {
			return err
		}

		if exists {
			return removeLike(tx, userID, messageID)
		}

		liked = true
		return addLike(tx, userID, messageID)
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// Exists reports whether userID likes messageID
func (r *GormLikeRepository) Exists(ctx context.Context, userID, messageID uint64) (bool, error) {
	return likeExists(r.db.WithContext(ctx), userID, messageID)
}

// LikedMessages lists the messages userID likes, most recent first
func (r *GormLikeRepository) LikedMessages(ctx context.Context, userID uint64) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Scopes(database.NewestFirst).
		Find(&messages).Error
	return messages, err
}

// LikedBy lists the users who like messageID
func (r *GormLikeRepository) LikedBy(ctx context.Context, messageID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.message_id = ?", messageID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// LikedMessageIDs returns the subset of messageIDs that userID likes
func (r *GormLikeRepository) LikedMessageIDs(ctx context.Context, userID uint64, messageIDs []uint64) (map[uint64]bool, error) {
	liked := make(map[uint64]bool, len(messageIDs))
	if len(messageIDs) == 0 {
		return liked, nil
	}

	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Pluck("message_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func addLike(db *gorm.DB, userID, messageID uint64) error {
	like := models.Like{UserID: userID, MessageID: messageID}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	return apperrors.FromDB(err)
}

func removeLike(db *gorm.DB, userID, messageID uint64) error {
	return db.Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{}).Error
}

func likeExists(db *gorm.DB, userID, messageID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	return count > 0, err
}
