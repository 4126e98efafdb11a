package repository

import (
	"context"

	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create persists a new user. Duplicate usernames or emails surface as
	// apperrors.ErrConstraintViolation.
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// Search lists users whose username contains query, case-insensitively
	Search(ctx context.Context, query string, params utils.PaginationParams) ([]models.User, int64, error)

	// Update saves all profile fields of a user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user with their messages and every edge touching them
	Delete(ctx context.Context, id uint64) error

	// Stats counts a user's messages and edges
	Stats(ctx context.Context, id uint64) (UserStats, error)
}

// UserStats holds the counters shown on profile pages.
type UserStats struct {
	Messages  int64 `json:"messages"`
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
	Likes     int64 `json:"likes"`
}

// FollowRepository manages follows edges
type FollowRepository interface {
	// Add inserts the edge; adding an existing edge is a no-op
	Add(ctx context.Context, followerID, followedID uint64) error

	// Remove deletes the edge; removing a missing edge is a no-op
	Remove(ctx context.Context, followerID, followedID uint64) error

	// Exists reports whether followerID follows followedID
	Exists(ctx context.Context, followerID, followedID uint64) (bool, error)

	// Followers lists the users following userID
	Followers(ctx context.Context, userID uint64) ([]models.User, error)

	// Following lists the users userID follows
	Following(ctx context.Context, userID uint64) ([]models.User, error)

	// FollowingIDs lists the ids of the users userID follows
	FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// Create creates a new message
	Create(ctx context.Context, msg *models.Message) error

	// FindByID finds a message by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Message, error)

	// Delete removes a message and its likes
	Delete(ctx context.Context, id uint64) error

	// ListByUser lists a user's messages, most recent first
	ListByUser(ctx context.Context, userID uint64, limit int) ([]models.Message, error)

	// ListByUsers lists messages owned by any of userIDs, most recent first
	ListByUsers(ctx context.Context, userIDs []uint64, limit int) ([]models.Message, error)
}

// LikeRepository manages likes edges
type LikeRepository interface {
	// Add inserts the edge; adding an existing edge is a no-op
	Add(ctx context.Context, userID, messageID uint64) error

	// Remove deletes the edge; removing a missing edge is a no-op
	Remove(ctx context.Context, userID, messageID uint64) error

	// Toggle flips the edge in one transaction and reports whether it now exists
	Toggle(ctx context.Context, userID, messageID uint64) (bool, error)

	// Exists reports whether userID likes messageID
	Exists(ctx context.Context, userID, messageID uint64) (bool, error)

	// LikedMessages lists the messages userID likes, most recent first
	LikedMessages(ctx context.Context, userID uint64) ([]models.Message, error)

	// LikedBy lists the users who like messageID
	LikedBy(ctx context.Context, messageID uint64) ([]models.User, error)

	// LikedMessageIDs returns the subset of messageIDs that userID likes
	LikedMessageIDs(ctx context.Context, userID uint64, messageIDs []uint64) (map[uint64]bool, error)
}
