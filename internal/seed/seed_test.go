package seed

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/testutil"
)

func testOptions() Options {
	return Options{
		Users:           6,
		MessagesPerUser: 3,
		FollowsPerUser:  2,
		LikesPerUser:    4,
		MaxDays:         7,
		BcryptCost:      4,
		RandomSeed:      42,
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewDB(t)

	result, err := NewSeeder(db, testOptions()).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Users, 6)
	assert.Len(t, result.Messages, 18)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(18), count)
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(result.Likes), count)

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followed_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	for _, msg := range result.Messages {
		assert.LessOrEqual(t, utf8.RuneCountInString(msg.Text), constants.MaxMessageLength)
	}
	for _, user := range result.Users {
		assert.LessOrEqual(t, len(user.Username), constants.MaxUsernameLength)
	}
}

func TestSeeder_UsersCanLogIn(t *testing.T) {
	db := testutil.NewDB(t)

	result, err := NewSeeder(db, testOptions()).Run(context.Background())
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, result.Users[0].ID).Error)
	assert.True(t, user.CheckPassword(DefaultPassword))
}

func TestSeeder_Clean(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, 0, "leftover")

	opts := testOptions()
	opts.Clean = true
	_, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "日本", truncate("日本語", 2))
}
