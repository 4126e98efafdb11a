package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/repository"
	"github.com/yukikurage/warbler/internal/testutil"
	"gorm.io/gorm"
)

type MessageServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *MessageService
	users   *UserService
	ctx     context.Context
}

func (s *MessageServiceTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())

	userRepo := repository.NewUserRepository(s.db)
	followRepo := repository.NewFollowRepository(s.db)
	likeRepo := repository.NewLikeRepository(s.db)
	messageRepo := repository.NewMessageRepository(s.db)

	s.service = NewMessageService(messageRepo, likeRepo, followRepo, userRepo, nil)
	s.users = NewUserService(userRepo, followRepo, likeRepo, messageRepo, nil, 4)
	s.ctx = context.Background()
}

func (s *MessageServiceTestSuite) TestCreate() {
	user := testutil.CreateUser(s.T(), s.db, 1, "test1")

	msg, err := s.service.Create(s.ctx, user.ID, "  Hello, world  ")
	s.Require().NoError(err)
	s.Equal("Hello, world", msg.Text)
	s.False(msg.Timestamp.IsZero())

	messages, err := s.users.Messages(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(messages, 1)
}

func (s *MessageServiceTestSuite) TestCreateValidation() {
	user := testutil.CreateUser(s.T(), s.db, 1, "test1")

	_, err := s.service.Create(s.ctx, user.ID, "   ")
	verr, ok := apperrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("text", verr.Field)

	_, err = s.service.Create(s.ctx, user.ID, strings.Repeat("a", 141))
	_, ok = apperrors.AsValidation(err)
	s.True(ok)

	_, err = s.service.Create(s.ctx, user.ID, strings.Repeat("あ", 140))
	s.NoError(err)

	_, err = s.service.Create(s.ctx, 999, "orphan")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *MessageServiceTestSuite) TestLikeScenario() {
	user := testutil.CreateUser(s.T(), s.db, 100, "test0")
	msg := testutil.CreateMessage(s.T(), s.db, 200, user.ID, "Hello")

	liked, err := s.service.IsLikedBy(s.ctx, msg.ID, user.ID)
	s.Require().NoError(err)
	s.False(liked)

	liked, err = s.service.ToggleLike(s.ctx, user.ID, msg.ID)
	s.Require().NoError(err)
	s.True(liked)

	liked, err = s.service.IsLikedBy(s.ctx, msg.ID, user.ID)
	s.Require().NoError(err)
	s.True(liked)

	likes, err := s.users.LikedMessages(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(likes, 1)
	s.Equal(msg.ID, likes[0].ID)

	likers, err := s.service.LikedBy(s.ctx, msg.ID)
	s.Require().NoError(err)
	s.Len(likers, 1)

	liked, err = s.service.ToggleLike(s.ctx, user.ID, msg.ID)
	s.Require().NoError(err)
	s.False(liked)

	likes, err = s.users.LikedMessages(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(likes)
}

func (s *MessageServiceTestSuite) TestToggleLikeUnknownMessage() {
	user := testutil.CreateUser(s.T(), s.db, 1, "test1")

	_, err := s.service.ToggleLike(s.ctx, user.ID, 999)
	s.ErrorIs(err, ErrMessageNotFound)
}

func (s *MessageServiceTestSuite) TestDeleteOwnerOnly() {
	owner := testutil.CreateUser(s.T(), s.db, 1, "owner")
	other := testutil.CreateUser(s.T(), s.db, 2, "other")
	msg := testutil.CreateMessage(s.T(), s.db, 0, owner.ID, "mine")
	testutil.Like(s.T(), s.db, other.ID, msg.ID)

	err := s.service.Delete(s.ctx, msg.ID, other.ID)
	s.ErrorIs(err, ErrNotMessageOwner)

	_, err = s.service.Get(s.ctx, msg.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, msg.ID, owner.ID))

	_, err = s.service.Get(s.ctx, msg.ID)
	s.ErrorIs(err, ErrMessageNotFound)

	var count int64
	s.Require().NoError(s.db.Model(&models.Like{}).Count(&count).Error)
	s.Zero(count)

	s.ErrorIs(s.service.Delete(s.ctx, msg.ID, owner.ID), ErrMessageNotFound)
}

func (s *MessageServiceTestSuite) TestTimeline() {
	me := testutil.CreateUser(s.T(), s.db, 1, "me")
	friend := testutil.CreateUser(s.T(), s.db, 2, "friend")
	stranger := testutil.CreateUser(s.T(), s.db, 3, "stranger")
	testutil.Follow(s.T(), s.db, me.ID, friend.ID)

	testutil.CreateMessage(s.T(), s.db, 1, me.ID, "mine")
	testutil.CreateMessage(s.T(), s.db, 2, friend.ID, "friend's")
	testutil.CreateMessage(s.T(), s.db, 3, stranger.ID, "stranger's")

	messages, err := s.service.Timeline(s.ctx, me.ID)
	s.Require().NoError(err)
	s.Len(messages, 2)
	for _, m := range messages {
		s.NotEqual(stranger.ID, m.UserID)
		s.NotZero(m.User.ID)
	}

	liked, err := s.service.LikedIDs(s.ctx, me.ID, messages)
	s.Require().NoError(err)
	s.Empty(liked)
}

func TestMessageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceTestSuite))
}
