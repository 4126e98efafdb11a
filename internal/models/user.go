package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/warbler/internal/constants"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:varchar(255);not null" json:"-"`
	ImageURL       string    `gorm:"type:text;default:'/static/images/default-pic.svg'" json:"image_url"`
	HeaderImageURL string    `gorm:"type:text;default:'/static/images/warbler-hero.svg'" json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"type:varchar(255)" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

// NewSignupUser validates the signup fields and returns an unpersisted user
// whose password holds a bcrypt hash. Uniqueness of username and email is
// only checked when the user is written.
func NewSignupUser(username, email, password, imageURL string, cost int) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperrors.NewValidationError("username", "is required")
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return nil, apperrors.NewValidationError("username", fmt.Sprintf("must be at most %d characters", constants.MaxUsernameLength))
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password", "is required")
	}

	hashed, err := HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(imageURL) == "" {
		imageURL = constants.DefaultImageURL
	}

	return &User{
		Username:       username,
		Email:          email,
		Password:       hashed,
		ImageURL:       imageURL,
		HeaderImageURL: constants.DefaultHeaderImageURL,
	}, nil
}

// HashPassword hashes a plaintext password with bcrypt. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
