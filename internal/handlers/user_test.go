package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/warbler/internal/dto"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/testutil"
)

// UserHandlerTestSuite signs up four users before each test and logs in
// as the first one.
type UserHandlerTestSuite struct {
	suite.Suite
	app   *testApp
	users []*models.User
}

func (s *UserHandlerTestSuite) SetupTest() {
	s.app = newTestApp(s.T())
	s.users = nil
	for i := 0; i < 4; i++ {
		s.users = append(s.users, testutil.CreateSignedUpUser(s.T(), s.app.db,
			fmt.Sprintf("test%d", i), fmt.Sprintf("password%d", i)))
	}
	s.app.login("test0", "password0")
}

func (s *UserHandlerTestSuite) TestFollowersPage() {
	testutil.Follow(s.T(), s.app.db, s.users[1].ID, s.users[0].ID)
	testutil.Follow(s.T(), s.app.db, s.users[2].ID, s.users[0].ID)

	w := s.app.get(fmt.Sprintf("/users/%d/followers", s.users[0].ID))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "@test1")
	s.Contains(w.Body.String(), "@test2")
	s.NotContains(w.Body.String(), "@test3")
}

func (s *UserHandlerTestSuite) TestFollowersPageAnonymous() {
	s.app.resetCookies()

	w := s.app.followRedirects(s.app.get(fmt.Sprintf("/users/%d/followers", s.users[0].ID)))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Access unauthorized")
}

func (s *UserHandlerTestSuite) TestUsersPage() {
	s.app.resetCookies()

	w := s.app.get("/users")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "@test1")
	s.Contains(w.Body.String(), "@test2")
	s.Contains(w.Body.String(), "@test3")
}

func (s *UserHandlerTestSuite) TestUsersSearch() {
	s.app.resetCookies()

	w := s.app.get("/users?q=test1")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "@test1")
	s.NotContains(w.Body.String(), "@test2")
	s.NotContains(w.Body.String(), "@test3")

	w = s.app.get("/users?q=nobody")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Sorry, no users found")
}

func (s *UserHandlerTestSuite) TestUsersSearchJSON() {
	w := s.app.request(http.MethodGet, "/users?q=TEST", nil, jsonHeader())
	s.Require().Equal(http.StatusOK, w.Code)

	var response dto.UserListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Len(response.Users, 4)
	s.Equal(int64(4), response.Pagination.Total)
}

func (s *UserHandlerTestSuite) TestShowUser() {
	testutil.CreateMessage(s.T(), s.app.db, 0, s.users[1].ID, "warble from test1")

	w := s.app.get(fmt.Sprintf("/users/%d", s.users[1].ID))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "@test1")
	s.Contains(w.Body.String(), "warble from test1")
	s.Contains(w.Body.String(), "Follow")
}

func (s *UserHandlerTestSuite) TestShowUserJSON() {
	testutil.CreateMessage(s.T(), s.app.db, 0, s.users[1].ID, "warble from test1")
	testutil.Follow(s.T(), s.app.db, s.users[0].ID, s.users[1].ID)

	w := s.app.request(http.MethodGet, fmt.Sprintf("/users/%d", s.users[1].ID), nil, jsonHeader())
	s.Require().Equal(http.StatusOK, w.Code)

	var response dto.ProfileDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Equal("test1", response.User.Username)
	s.True(response.IsFollowing)
	s.Equal(int64(1), response.Stats.Messages)
	s.Equal(int64(1), response.Stats.Followers)
	s.Len(response.Messages, 1)
}

func (s *UserHandlerTestSuite) TestShowUnknownUser() {
	w := s.app.get("/users/9999")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.app.get("/users/abc")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *UserHandlerTestSuite) TestFollow() {
	w := s.app.post(fmt.Sprintf("/users/follow/%d", s.users[1].ID), nil)
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal(fmt.Sprintf("/users/%d/following", s.users[0].ID), w.Header().Get("Location"))

	w = s.app.followRedirects(w)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "@test1")
}

func (s *UserHandlerTestSuite) TestFollowAnonymous() {
	s.app.resetCookies()

	w := s.app.followRedirects(s.app.post(fmt.Sprintf("/users/follow/%d", s.users[1].ID), nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Access unauthorized")

	var count int64
	s.Require().NoError(s.app.db.Model(&models.Follow{}).Count(&count).Error)
	s.Zero(count)
}

func (s *UserHandlerTestSuite) TestStopFollowing() {
	testutil.Follow(s.T(), s.app.db, s.users[0].ID, s.users[1].ID)

	w := s.app.followRedirects(s.app.post(fmt.Sprintf("/users/stop-following/%d", s.users[1].ID), nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), "@test1")
}

func (s *UserHandlerTestSuite) TestStopFollowingAnonymous() {
	s.app.resetCookies()

	w := s.app.followRedirects(s.app.post(fmt.Sprintf("/users/stop-following/%d", s.users[1].ID), nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Access unauthorized")
}

func (s *UserHandlerTestSuite) TestLikesPage() {
	msg := testutil.CreateMessage(s.T(), s.app.db, 0, s.users[1].ID, "likeable warble")
	testutil.Like(s.T(), s.app.db, s.users[0].ID, msg.ID)

	w := s.app.get(fmt.Sprintf("/users/%d/likes", s.users[0].ID))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "likeable warble")
}

func (s *UserHandlerTestSuite) TestEditProfile() {
	w := s.app.get("/users/profile")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "test0@email.com")

	w = s.app.post("/users/profile", url.Values{
		"username": {"updated"},
		"email":    {"updated@email.com"},
		"location": {"updated location"},
		"bio":      {"updated bio"},
		"password": {"password0"},
	})
	s.Require().Equal(http.StatusFound, w.Code)

	w = s.app.followRedirects(w)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "@updated")
	s.Contains(w.Body.String(), "updated bio")
	s.Contains(w.Body.String(), "updated location")

	var user models.User
	s.Require().NoError(s.app.db.First(&user, s.users[0].ID).Error)
	s.Equal("updated@email.com", user.Email)
}

func (s *UserHandlerTestSuite) TestEditProfileWrongPassword() {
	w := s.app.post("/users/profile", url.Values{
		"username": {"updated"},
		"email":    {"updated@email.com"},
		"password": {"wrong"},
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Wrong password, please try again.")

	var user models.User
	s.Require().NoError(s.app.db.First(&user, s.users[0].ID).Error)
	s.Equal("test0", user.Username)
}

func (s *UserHandlerTestSuite) TestDeleteUser() {
	testutil.CreateMessage(s.T(), s.app.db, 0, s.users[0].ID, "soon gone")
	testutil.Follow(s.T(), s.app.db, s.users[1].ID, s.users[0].ID)

	w := s.app.post("/users/delete", nil)
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/signup", w.Header().Get("Location"))

	var count int64
	s.Require().NoError(s.app.db.Model(&models.User{}).Count(&count).Error)
	s.Equal(int64(3), count)
	s.Require().NoError(s.app.db.Model(&models.Message{}).Count(&count).Error)
	s.Zero(count)
	s.Require().NoError(s.app.db.Model(&models.Follow{}).Count(&count).Error)
	s.Zero(count)

	w = s.app.get("/messages/new")
	s.Equal(http.StatusFound, w.Code)
}

func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
