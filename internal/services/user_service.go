package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/warbler/internal/cache"
	"github.com/yukikurage/warbler/internal/constants"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/repository"
	"github.com/yukikurage/warbler/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCannotFollowSelf = errors.New("users cannot follow themselves")
	ErrWrongPassword    = errors.New("wrong password")
)

// UserService handles profiles and the follows graph.
type UserService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	messageRepo repository.MessageRepository
	stats       *cache.StatsCache
	bcryptCost  int
}

// NewUserService creates a new UserService. stats may be nil.
func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	likeRepo repository.LikeRepository,
	messageRepo repository.MessageRepository,
	stats *cache.StatsCache,
	bcryptCost int,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		messageRepo: messageRepo,
		stats:       stats,
		bcryptCost:  bcryptCost,
	}
}

// Search lists users whose username contains query.
func (s *UserService) Search(ctx context.Context, query string, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.Search(ctx, query, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return users, total, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Stats returns a user's counters, served from the cache when possible.
func (s *UserService) Stats(ctx context.Context, id uint64) (repository.UserStats, error) {
	if stats, ok := s.stats.Get(ctx, id); ok {
		return stats, nil
	}

	stats, err := s.userRepo.Stats(ctx, id)
	if err != nil {
		return repository.UserStats{}, fmt.Errorf("failed to count user stats: %w", err)
	}

	s.stats.Set(ctx, id, stats)
	return stats, nil
}

// Messages lists a user's most recent messages.
func (s *UserService) Messages(ctx context.Context, id uint64) ([]models.Message, error) {
	messages, err := s.messageRepo.ListByUser(ctx, id, constants.ProfileLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Follow makes actorID follow targetID. Following twice keeps a single edge.
func (s *UserService) Follow(ctx context.Context, actorID, targetID uint64) error {
	if actorID == targetID {
		return ErrCannotFollowSelf
	}
	if _, err := s.Get(ctx, targetID); err != nil {
		return err
	}

	if err := s.followRepo.Add(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}

	s.stats.Invalidate(ctx, actorID, targetID)
	return nil
}

// Unfollow removes the edge; unfollowing a user not followed is a no-op.
func (s *UserService) Unfollow(ctx context.Context, actorID, targetID uint64) error {
	if _, err := s.Get(ctx, targetID); err != nil {
		return err
	}

	if err := s.followRepo.Remove(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}

	s.stats.Invalidate(ctx, actorID, targetID)
	return nil
}

// IsFollowing reports whether userID follows otherID.
func (s *UserService) IsFollowing(ctx context.Context, userID, otherID uint64) (bool, error) {
	return s.followRepo.Exists(ctx, userID, otherID)
}

// IsFollowedBy reports whether otherID follows userID.
func (s *UserService) IsFollowedBy(ctx context.Context, userID, otherID uint64) (bool, error) {
	return s.followRepo.Exists(ctx, otherID, userID)
}

// Followers lists the users following id.
func (s *UserService) Followers(ctx context.Context, id uint64) ([]models.User, error) {
	users, err := s.followRepo.Followers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return users, nil
}

// Following lists the users id follows.
func (s *UserService) Following(ctx context.Context, id uint64) ([]models.User, error) {
	users, err := s.followRepo.Following(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return users, nil
}

// LikedMessages lists the messages id likes.
func (s *UserService) LikedMessages(ctx context.Context, id uint64) ([]models.Message, error) {
	messages, err := s.likeRepo.LikedMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked messages: %w", err)
	}
	return messages, nil
}

// UpdateProfileInput holds the editable profile fields. Password is the
// current password and must verify before anything changes; NewPassword is
// optional.
type UpdateProfileInput struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
	NewPassword    string
}

// UpdateProfile re-verifies the current password and then updates the
// profile. A duplicate username or email is apperrors.ErrConstraintViolation.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(input.Password) {
		return nil, ErrWrongPassword
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "is required")
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return nil, apperrors.NewValidationError("username", fmt.Sprintf("must be at most %d characters", constants.MaxUsernameLength))
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}

	user.Username = username
	user.Email = email
	user.ImageURL = orDefault(input.ImageURL, constants.DefaultImageURL)
	user.HeaderImageURL = orDefault(input.HeaderImageURL, constants.DefaultHeaderImageURL)
	user.Bio = strings.TrimSpace(input.Bio)
	user.Location = strings.TrimSpace(input.Location)

	if input.NewPassword != "" {
		hashed, err := models.HashPassword(input.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteAccount removes a user with their messages and edges.
func (s *UserService) DeleteAccount(ctx context.Context, id uint64) error {
	followers, err := s.followRepo.Followers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list followers: %w", err)
	}
	following, err := s.followRepo.FollowingIDs(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list following: %w", err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected := append([]uint64{id}, following...)
	for _, u := range followers {
		affected = append(affected, u.ID)
	}
	s.stats.Invalidate(ctx, affected...)
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
