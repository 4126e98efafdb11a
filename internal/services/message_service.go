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
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("only the author can delete this message")
)

// MessageService handles messages, likes and the home timeline.
type MessageService struct {
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
	followRepo  repository.FollowRepository
	userRepo    repository.UserRepository
	stats       *cache.StatsCache
}

// NewMessageService creates a new MessageService. stats may be nil.
func NewMessageService(
	messageRepo repository.MessageRepository,
	likeRepo repository.LikeRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	stats *cache.StatsCache,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		followRepo:  followRepo,
		userRepo:    userRepo,
		stats:       stats,
	}
}

// Create posts a message for userID.
func (s *MessageService) Create(ctx context.Context, userID uint64, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text", "is required")
	}
	if utf8.RuneCountInString(text) > constants.MaxMessageLength {
		return nil, apperrors.NewValidationError("text", fmt.Sprintf("must be at most %d characters", constants.MaxMessageLength))
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	msg := &models.Message{Text: text, UserID: userID}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.stats.Invalidate(ctx, userID)
	return msg, nil
}

// Get returns a message with its author.
func (s *MessageService) Get(ctx context.Context, id uint64) (*models.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, id, "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return msg, nil
}

// Delete removes a message if actorID owns it.
func (s *MessageService) Delete(ctx context.Context, id, actorID uint64) error {
	msg, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to find message: %w", err)
	}

	if msg.UserID != actorID {
		return ErrNotMessageOwner
	}

	likers, err := s.likeRepo.LikedBy(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list likers: %w", err)
	}

	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	affected := []uint64{actorID}
	for _, u := range likers {
		affected = append(affected, u.ID)
	}
	s.stats.Invalidate(ctx, affected...)
	return nil
}

// ToggleLike likes the message if userID does not yet like it, and unlikes
// it otherwise. It reports whether the message is liked afterwards.
func (s *MessageService) ToggleLike(ctx context.Context, userID, messageID uint64) (bool, error) {
	if _, err := s.Get(ctx, messageID); err != nil {
		return false, err
	}

	liked, err := s.likeRepo.Toggle(ctx, userID, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	s.stats.Invalidate(ctx, userID)
	return liked, nil
}

// IsLikedBy reports whether userID likes messageID.
func (s *MessageService) IsLikedBy(ctx context.Context, messageID, userID uint64) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, messageID)
}

// LikedBy lists the users who like messageID.
func (s *MessageService) LikedBy(ctx context.Context, messageID uint64) ([]models.User, error) {
	users, err := s.likeRepo.LikedBy(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	return users, nil
}

// LikedIDs returns which of messages userID likes.
func (s *MessageService) LikedIDs(ctx context.Context, userID uint64, messages []models.Message) (map[uint64]bool, error) {
	ids := make([]uint64, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	return s.likeRepo.LikedMessageIDs(ctx, userID, ids)
}

// Timeline lists the newest messages by userID and the users they follow.
func (s *MessageService) Timeline(ctx context.Context, userID uint64) ([]models.Message, error) {
	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}

	messages, err := s.messageRepo.ListByUsers(ctx, append(ids, userID), constants.TimelineLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return messages, nil
}
