package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/repository"
	"github.com/yukikurage/warbler/internal/testutil"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := testutil.NewDB(t)
	return NewAuthService(repository.NewUserRepository(db), 4), db
}

func TestAuthService_Signup(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{
		Username: "testuser",
		Email:    "test@test.com",
		Password: "password",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password", user.Password)
	assert.True(t, user.CheckPassword("password"))

	stored, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", stored.Username)
	assert.NotEqual(t, "password", stored.Password)
	assert.Equal(t, "/static/images/default-pic.svg", stored.ImageURL)
}

func TestAuthService_SignupDuplicateUsername(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "testuser", Email: "a@test.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Username: "testuser", Email: "b@test.com", Password: "password"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "first", Email: "same@test.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Username: "second", Email: "same@test.com", Password: "password"})
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
}

func TestAuthService_SignupMissingFields(t *testing.T) {
	svc, db := setupAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"username", SignupInput{Email: "a@test.com", Password: "password"}, "username"},
		{"email", SignupInput{Username: "testuser", Password: "password"}, "email"},
		{"password", SignupInput{Username: "testuser", Email: "a@test.com"}, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.input)
			require.Error(t, err)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Username: "testuser", Email: "test@test.com", Password: "password"})
	require.NoError(t, err)

	user, ok, err := svc.Authenticate(ctx, "testuser", "password")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, user.ID)

	user, ok, err = svc.Authenticate(ctx, "badusername", "password")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)

	user, ok, err = svc.Authenticate(ctx, "testuser", "badpassword")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestAuthService_GetUserNotFound(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.GetUser(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
