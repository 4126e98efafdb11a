// Package seed fills a database with demo users, messages and edges for
// local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/repository"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user can log in with.
const DefaultPassword = "password"

// Options controls how much data the seeder creates.
type Options struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	LikesPerUser    int
	// MaxDays spreads message timestamps over this many past days.
	MaxDays    int
	BcryptCost int
	// RandomSeed makes runs reproducible. Zero picks a random seed.
	RandomSeed int64
	Clean      bool
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:           20,
		MessagesPerUser: 10,
		FollowsPerUser:  5,
		LikesPerUser:    10,
		MaxDays:         30,
		BcryptCost:      10,
	}
}

// Result reports what a run created.
type Result struct {
	Users    []models.User
	Messages []models.Message
	Follows  int
	Likes    int
}

// Seeder writes demo data through the repositories.
type Seeder struct {
	db       *gorm.DB
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	faker    *gofakeit.Faker
	opts     Options
	baseTime time.Time
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:       db,
		follows:  repository.NewFollowRepository(db),
		likes:    repository.NewLikeRepository(db),
		faker:    gofakeit.New(opts.RandomSeed),
		opts:     opts,
		baseTime: time.Now(),
	}
}

// Run creates users, their messages, then follows and likes between them.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if s.opts.Clean {
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
	}

	users, err := s.createUsers(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.createMessages(ctx, users)
	if err != nil {
		return nil, err
	}
	follows, err := s.createFollows(ctx, users)
	if err != nil {
		return nil, err
	}
	likes, err := s.createLikes(ctx, users, messages)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "seed completed",
		"users", len(users),
		"messages", len(messages),
		"follows", follows,
		"likes", likes,
	)
	return &Result{Users: users, Messages: messages, Follows: follows, Likes: likes}, nil
}

// Clear removes every row the app owns, edges first.
func (s *Seeder) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}
		return nil
	})
}

func (s *Seeder) createUsers(ctx context.Context) ([]models.User, error) {
	if s.opts.Users <= 0 {
		return nil, nil
	}

	// Every user shares one hash so large runs do not spend their time in bcrypt.
	hashed, err := models.HashPassword(DefaultPassword, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, s.opts.Users)
	users := make([]models.User, 0, s.opts.Users)
	for len(users) < s.opts.Users {
		username := s.username()
		if seen[username] {
			continue
		}
		seen[username] = true

		users = append(users, models.User{
			Username:       username,
			Email:          username + "@" + s.faker.DomainName(),
			Password:       hashed,
			ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
			HeaderImageURL: constants.DefaultHeaderImageURL,
			Bio:            truncate(s.faker.Sentence(8), 160),
			Location:       s.faker.City() + ", " + s.faker.StateAbr(),
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	return users, nil
}

func (s *Seeder) username() string {
	name := strings.ToLower(s.faker.Username()) + fmt.Sprintf("%d", s.faker.Number(10, 9999))
	return truncate(name, constants.MaxUsernameLength)
}

func (s *Seeder) createMessages(ctx context.Context, users []models.User) ([]models.Message, error) {
	if s.opts.MessagesPerUser <= 0 || len(users) == 0 {
		return nil, nil
	}

	messages := make([]models.Message, 0, len(users)*s.opts.MessagesPerUser)
	for _, user := range users {
		for i := 0; i < s.opts.MessagesPerUser; i++ {
			messages = append(messages, models.Message{
				Text:      truncate(s.faker.Sentence(s.faker.Number(3, 18)), constants.MaxMessageLength),
				Timestamp: s.pastTime(),
				UserID:    user.ID,
			})
		}
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&messages, 200).Error; err != nil {
		return nil, fmt.Errorf("failed to create messages: %w", err)
	}
	return messages, nil
}

func (s *Seeder) createFollows(ctx context.Context, users []models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	count := 0
	for _, user := range users {
		picked := s.pick(len(users), s.opts.FollowsPerUser)
		for _, idx := range picked {
			target := users[idx]
			if target.ID == user.ID {
				continue
			}
			if err := s.follows.Add(ctx, user.ID, target.ID); err != nil {
				return count, fmt.Errorf("failed to follow: %w", err)
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) createLikes(ctx context.Context, users []models.User, messages []models.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	count := 0
	for _, user := range users {
		for _, idx := range s.pick(len(messages), s.opts.LikesPerUser) {
			if err := s.likes.Add(ctx, user.ID, messages[idx].ID); err != nil {
				return count, fmt.Errorf("failed to like: %w", err)
			}
			count++
		}
	}
	return count, nil
}

// pick returns up to n distinct indexes below total.
func (s *Seeder) pick(total, n int) []int {
	if n > total {
		n = total
	}
	if n <= 0 {
		return nil
	}
	perm := s.faker.Rand.Perm(total)
	return perm[:n]
}

func (s *Seeder) pastTime() time.Time {
	maxDays := s.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(s.faker.Number(0, maxDays*24*60)) * time.Minute
	return s.baseTime.Add(-back)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
