package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/warbler/internal/dto"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/services"
	"gorm.io/gorm"
)

// HomeHandler serves the landing page, the timeline and the health check.
type HomeHandler struct {
	userService    *services.UserService
	messageService *services.MessageService
	db             *gorm.DB
	redis          *redis.Client
}

// NewHomeHandler creates a new HomeHandler. redisClient may be nil.
func NewHomeHandler(userService *services.UserService, messageService *services.MessageService, db *gorm.DB, redisClient *redis.Client) *HomeHandler {
	return &HomeHandler{
		userService:    userService,
		messageService: messageService,
		db:             db,
		redis:          redisClient,
	}
}

// Home shows the landing page to anonymous visitors and the timeline of
// the current user and the users they follow otherwise.
func (h *HomeHandler) Home(c *gin.Context) {
	me, ok := middleware.GetUserID(c)
	if !ok {
		c.HTML(http.StatusOK, "home-anon.html", page(c, "", gin.H{"BodyClass": "homepage"}))
		return
	}

	ctx := c.Request.Context()
	messages, err := h.messageService.Timeline(ctx, me)
	if err != nil {
		handleError(c, err)
		return
	}

	liked, err := h.messageService.LikedIDs(ctx, me, messages)
	if err != nil {
		handleError(c, err)
		return
	}

	stats, err := h.userService.Stats(ctx, me)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "home.html", "Home", gin.H{
		"Messages": messages,
		"Liked":    liked,
		"Stats":    stats,
	}, dto.ToMessageDTOs(messages, liked))
}

// Health reports whether the database and, when configured, Redis respond.
func (h *HomeHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok"}
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		status["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
		}
	}

	c.JSON(code, status)
}
