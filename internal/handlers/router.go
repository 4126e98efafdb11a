package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/services"
	"github.com/yukikurage/warbler/internal/web"
	"gorm.io/gorm"
)

// RouterConfig carries everything the router needs besides the services.
type RouterConfig struct {
	SessionStore sessions.Store
	Logger       *slog.Logger
	// RateLimiter throttles login and signup submissions. Nil disables it.
	RateLimiter *middleware.IPRateLimiter
	// TemplateDir overrides the embedded templates when set.
	TemplateDir string
	DB          *gorm.DB
	Redis       *redis.Client
}

// Services groups the services the handlers call.
type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Messages *services.MessageService
}

// NewRouter wires middleware, templates and every route.
func NewRouter(cfg RouterConfig, svc Services) (*gin.Engine, error) {
	r := gin.New()

	if cfg.TemplateDir != "" {
		r.SetFuncMap(web.FuncMap())
		r.LoadHTMLGlob(filepath.Join(cfg.TemplateDir, "*.html"))
	} else {
		tmpl, err := web.Templates()
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		r.SetHTMLTemplate(tmpl)
	}
	r.StaticFS("/static", http.FS(web.Static()))

	// Middleware
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))
	r.Use(middleware.LoadCurrentUser(svc.Auth))
	r.Use(ErrorPages())

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users, svc.Messages)
	messageHandler := NewMessageHandler(svc.Messages)
	homeHandler := NewHomeHandler(svc.Users, svc.Messages, cfg.DB, cfg.Redis)

	throttle := func(c *gin.Context) { c.Next() }
	if cfg.RateLimiter != nil {
		throttle = middleware.RateLimit(cfg.RateLimiter)
	}
	requireAuth := middleware.RequireAuth()

	r.GET("/health", homeHandler.Health)
	r.GET("/", homeHandler.Home)

	// Auth routes
	r.GET("/signup", authHandler.ShowSignup)
	r.POST("/signup", throttle, authHandler.Signup)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", throttle, authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// User routes
	users := r.Group("/users")
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Show)
		users.GET("/:id/following", requireAuth, userHandler.Following)
		users.GET("/:id/followers", requireAuth, userHandler.Followers)
		users.GET("/:id/likes", requireAuth, userHandler.Likes)
		users.POST("/follow/:id", requireAuth, userHandler.Follow)
		users.POST("/stop-following/:id", requireAuth, userHandler.StopFollowing)
		users.GET("/profile", requireAuth, userHandler.EditProfile)
		users.POST("/profile", requireAuth, userHandler.UpdateProfile)
		users.POST("/delete", requireAuth, userHandler.Delete)
	}

	// Message routes
	messages := r.Group("/messages")
	{
		messages.GET("/new", requireAuth, messageHandler.New)
		messages.POST("/new", requireAuth, messageHandler.Create)
		messages.GET("/:id", messageHandler.Show)
		messages.POST("/:id/delete", requireAuth, middleware.RequireMessageOwner(svc.Messages), messageHandler.Delete)
		messages.POST("/:id/like", requireAuth, messageHandler.ToggleLike)
	}

	r.NoRoute(renderNotFound)

	return r, nil
}
