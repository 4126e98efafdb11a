package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/services"
)

const sessionMaxAge = 86400 * 7 // 7 days

// SessionOptions returns the cookie attributes for the session store.
// Secure cookies are only sent back over https, so secure is off in
// development and tests.
func SessionOptions(secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// UserLoader resolves the user id kept in the session.
type UserLoader interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// LoadCurrentUser resolves the session's user id on every request and puts
// the user in the context. An id whose user no longer exists is dropped
// from the session and the request continues anonymously.
func LoadCurrentUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.SessionKeyUserID)
		if raw == nil {
			c.Next()
			return
		}

		id, ok := toUserID(raw)
		if !ok {
			session.Delete(constants.SessionKeyUserID)
			_ = session.Save()
			c.Next()
			return
		}

		user, err := users.GetUser(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(constants.ContextKeyUserID, user.ID)
			c.Set(constants.ContextKeyCurrentUser, user)
		case errors.Is(err, services.ErrUserNotFound):
			session.Delete(constants.SessionKeyUserID)
			_ = session.Save()
		default:
			slog.ErrorContext(c.Request.Context(), "failed to load session user", "user_id", id, "error", err)
		}

		c.Next()
	}
}

// RequireAuth refuses anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			Deny(c)
			return
		}
		c.Next()
	}
}

// Deny aborts the request the way the guard refuses access: JSON clients get
// a 401, browsers get a flash and a redirect to the home page.
func Deny(c *gin.Context) {
	if WantsJSON(c) {
		apperrors.Unauthorized(c, constants.MsgAccessUnauthorized)
		return
	}

	AddFlash(c, constants.FlashDanger, constants.MsgAccessUnauthorized)
	c.Redirect(http.StatusFound, "/")
	c.Abort()
}

// Login stores userID in the session.
func Login(c *gin.Context, userID uint64) error {
	session := sessions.Default(c)
	session.Set(constants.SessionKeyUserID, userID)
	return session.Save()
}

// Logout clears the whole session.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(constants.ContextKeyCurrentUser)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

func toUserID(v interface{}) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// WantsJSON reports whether the client prefers JSON over HTML.
func WantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
