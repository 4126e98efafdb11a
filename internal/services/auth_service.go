package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles signup and credential checks.
type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// Signup validates, hashes and persists a new user. Validation failures are
// *apperrors.ValidationError; duplicate usernames or emails are
// apperrors.ErrConstraintViolation.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	user, err := models.NewSignupUser(input.Username, input.Email, input.Password, input.ImageURL, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate looks up username and checks password. The boolean is the
// only signal of success: an unknown user or a wrong password yields
// (nil, false, nil). The error is reserved for store failures.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, false, nil
	}

	return user, true, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
