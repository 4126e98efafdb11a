// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/warbler/internal/database"
	"github.com/yukikurage/warbler/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. The pool is pinned to
// one connection so every query sees the same in-memory schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user directly, without hashing, the way fixtures do.
// A zero id lets the store assign one.
func CreateUser(t *testing.T, db *gorm.DB, id uint64, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       id,
		Username: username,
		Email:    fmt.Sprintf("%s@email.com", username),
		Password: "HASHED_PASSWORD",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateSignedUpUser goes through the signup path so the password is usable.
func CreateSignedUpUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	user, err := models.NewSignupUser(username, username+"@email.com", password, "", 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMessage inserts a message owned by userID. A zero id lets the store assign one.
func CreateMessage(t *testing.T, db *gorm.DB, id, userID uint64, text string) *models.Message {
	t.Helper()

	msg := &models.Message{ID: id, Text: text, UserID: userID}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

// Follow inserts a follows edge.
func Follow(t *testing.T, db *gorm.DB, followerID, followedID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: followerID, FollowedID: followedID}).Error)
}

// Like inserts a likes edge.
func Like(t *testing.T, db *gorm.DB, userID, messageID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{UserID: userID, MessageID: messageID}).Error)
}
