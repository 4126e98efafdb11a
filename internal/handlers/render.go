package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/services"
)

// page fills in the values every template's layout expects.
func page(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["CurrentUser"] = middleware.CurrentUser(c)
	data["Flashes"] = middleware.PopFlashes(c)
	if _, ok := data["Query"]; !ok {
		data["Query"] = ""
	}
	if _, ok := data["BodyClass"]; !ok {
		data["BodyClass"] = ""
	}
	return data
}

// respond renders name for browsers and payload for JSON clients.
func respond(c *gin.Context, status int, name, title string, data gin.H, payload interface{}) {
	if middleware.WantsJSON(c) {
		c.JSON(status, payload)
		return
	}
	c.HTML(status, name, page(c, title, data))
}

func renderNotFound(c *gin.Context) {
	if middleware.WantsJSON(c) {
		apperrors.NotFound(c, "")
		return
	}
	c.HTML(http.StatusNotFound, "404.html", page(c, "Not Found", nil))
	c.Abort()
}

func renderInternalError(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed",
		"request_id", c.GetString(constants.ContextKeyRequestID),
		"path", c.Request.URL.Path,
		"error", err,
	)
	if middleware.WantsJSON(c) {
		apperrors.InternalError(c, "")
		return
	}
	c.HTML(http.StatusInternalServerError, "500.html", page(c, "Error", nil))
	c.Abort()
}

// handleError maps service errors onto error pages.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		renderNotFound(c)
	default:
		renderInternalError(c, err)
	}
}

// parseID reads the :id path parameter. Malformed ids render the 404 page.
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		renderNotFound(c)
		return 0, false
	}
	return id, true
}

// currentUserID is only called behind RequireAuth.
func currentUserID(c *gin.Context) uint64 {
	id, _ := middleware.GetUserID(c)
	return id
}

// backPath returns the local part of the Referer, or "/" when the Referer
// is missing or points at another host.
func backPath(c *gin.Context) string {
	ref, err := url.Parse(c.Request.Referer())
	if err != nil || (ref.Host != "" && ref.Host != c.Request.Host) {
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return "/"
	}

	back := url.URL{Path: ref.Path, RawQuery: ref.RawQuery}
	return back.String()
}

func userPath(id uint64) string {
	return "/users/" + strconv.FormatUint(id, 10)
}

// ErrorPages renders an error page for requests that were aborted with an
// error status but no body, such as a guard refusing an unknown id.
func ErrorPages() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		switch status := c.Writer.Status(); {
		case status == http.StatusNotFound:
			renderNotFound(c)
		case status >= http.StatusInternalServerError:
			renderInternalError(c, errors.New(http.StatusText(status)))
		}
	}
}
