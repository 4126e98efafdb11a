package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/services"
)

// MessageLoader looks up a message by id.
type MessageLoader interface {
	Get(ctx context.Context, id uint64) (*models.Message, error)
}

// RequireMessageOwner loads the :id message and refuses everyone but its
// author. Unknown or malformed ids abort with 404 before any rendering, so
// the error page middleware can fill in the body.
func RequireMessageOwner(messages MessageLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusNotFound)
			c.Abort()
			return
		}

		msg, err := messages.Get(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, services.ErrMessageNotFound) {
				slog.ErrorContext(c.Request.Context(), "failed to load message", "message_id", id, "error", err)
				c.Status(http.StatusInternalServerError)
			} else {
				c.Status(http.StatusNotFound)
			}
			c.Abort()
			return
		}

		userID, ok := GetUserID(c)
		if !ok || msg.UserID != userID {
			Deny(c)
			return
		}

		c.Set(constants.ContextKeyMessage, msg)
		c.Next()
	}
}

// CurrentMessage returns the message loaded by RequireMessageOwner.
func CurrentMessage(c *gin.Context) *models.Message {
	v, exists := c.Get(constants.ContextKeyMessage)
	if !exists {
		return nil
	}
	msg, _ := v.(*models.Message)
	return msg
}
