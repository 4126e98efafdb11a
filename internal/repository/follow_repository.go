package repository

import (
	"context"

	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFollowRepository is a GORM implementation of FollowRepository
type GormFollowRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &GormFollowRepository{db: db}
}

// Add inserts a follows edge, ignoring an existing one
func (r *GormFollowRepository) Add(ctx context.Context, followerID, followedID uint64) error {
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
	return apperrors.FromDB(err)
}

// Remove deletes a follows edge
func (r *GormFollowRepository) Remove(ctx context.Context, followerID, followedID uint64) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
}

// Exists is a primary key lookup on the follows table
func (r *GormFollowRepository) Exists(ctx context.Context, followerID, followedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// Followers lists the users following userID
func (r *GormFollowRepository) Followers(ctx context.Context, userID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// Following lists the users userID follows
func (r *GormFollowRepository) Following(ctx context.Context, userID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// FollowingIDs lists the ids of the users userID follows
func (r *GormFollowRepository) FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids).Error
	return ids, err
}
