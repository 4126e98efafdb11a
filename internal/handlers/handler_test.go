package handlers

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/repository"
	"github.com/yukikurage/warbler/internal/services"
	"github.com/yukikurage/warbler/internal/testutil"
	"gorm.io/gorm"
)

var baseURL = &url.URL{Scheme: "http", Host: "example.com", Path: "/"}

// testApp drives the full router like a browser: cookies persist between
// requests and redirects can be followed.
type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	jar    *cookiejar.Jar
	svc    Services
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	svc := Services{
		Auth:     services.NewAuthService(userRepo, 4),
		Users:    services.NewUserService(userRepo, followRepo, likeRepo, messageRepo, nil, 4),
		Messages: services.NewMessageService(messageRepo, likeRepo, followRepo, userRepo, nil),
	}

	store := cookie.NewStore([]byte("secret"))
	store.Options(middleware.SessionOptions(false))

	router, err := NewRouter(RouterConfig{
		SessionStore: store,
		DB:           db,
	}, svc)
	require.NoError(t, err)

	app := &testApp{t: t, db: db, router: router, svc: svc}
	app.resetCookies()
	return app
}

func (a *testApp) resetCookies() {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	a.jar = jar
}

func (a *testApp) request(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range a.jar.Cookies(baseURL) {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	a.jar.SetCookies(baseURL, w.Result().Cookies())
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.request(http.MethodGet, path, nil, nil)
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return a.request(http.MethodPost, path, form, nil)
}

// followRedirects keeps issuing GETs while the response is a redirect.
func (a *testApp) followRedirects(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	a.t.Helper()
	for i := 0; i < 5 && w.Code == http.StatusFound; i++ {
		w = a.get(w.Header().Get("Location"))
	}
	return w
}

func (a *testApp) login(username, password string) {
	a.t.Helper()
	w := a.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(a.t, http.StatusFound, w.Code)
	require.True(a.t, a.hasSession(), "session cookie was not kept after login")
}

func (a *testApp) hasSession() bool {
	for _, ck := range a.jar.Cookies(baseURL) {
		if ck.Name == constants.SessionCookieName {
			return true
		}
	}
	return false
}

func jsonHeader() http.Header {
	return http.Header{"Accept": {"application/json"}}
}
