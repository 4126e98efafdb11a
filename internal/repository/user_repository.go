package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/warbler/internal/database"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(user).Error)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Search lists users whose username contains query
func (r *GormUserRepository) Search(ctx context.Context, query string, params utils.PaginationParams) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(username) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(query))+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := q.Order("username ASC").
		Scopes(database.Paginate(params)).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update updates a user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Save(user).Error)
}

// Delete deletes a user and all related data in a transaction
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownMessages := tx.Model(&models.Message{}).Select("id").Where("user_id = ?", id)

		// Likes given by the user and likes on the user's messages
		if err := tx.Where("user_id = ? OR message_id IN (?)", id, ownMessages).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		// Follows in both directions
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Stats counts a user's messages and edges
func (r *GormUserRepository) Stats(ctx context.Context, id uint64) (UserStats, error) {
	var stats UserStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Message{}).Where("user_id = ?", id).Count(&stats.Messages).Error; err != nil {
		return UserStats{}, err
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", id).Count(&stats.Following).Error; err != nil {
		return UserStats{}, err
	}
	if err := db.Model(&models.Follow{}).Where("followed_id = ?", id).Count(&stats.Followers).Error; err != nil {
		return UserStats{}, err
	}
	if err := db.Model(&models.Like{}).Where("user_id = ?", id).Count(&stats.Likes).Error; err != nil {
		return UserStats{}, err
	}
	return stats, nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character,
// which every supported dialect accepts inside a string literal.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
