package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/warbler/internal/cache"
	"github.com/yukikurage/warbler/internal/config"
	"github.com/yukikurage/warbler/internal/database"
	"github.com/yukikurage/warbler/internal/handlers"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/repository"
	"github.com/yukikurage/warbler/internal/services"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return err
	}

	// Redis backs both the stats cache and the session store when configured
	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	stats := cache.NewStatsCache(redisClient, cfg.StatsCacheTTL)

	svc := handlers.Services{
		Auth:     services.NewAuthService(userRepo, cfg.BcryptCost),
		Users:    services.NewUserService(userRepo, followRepo, likeRepo, messageRepo, stats, cfg.BcryptCost),
		Messages: services.NewMessageService(messageRepo, likeRepo, followRepo, userRepo, stats),
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, 10*time.Minute)

	router, err := handlers.NewRouter(handlers.RouterConfig{
		SessionStore: store,
		Logger:       logger,
		RateLimiter:  limiter,
		TemplateDir:  cfg.TemplateDir,
		DB:           db,
		Redis:        redisClient,
	}, svc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	opts.Level = slog.LevelDebug
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newSessionStore keeps sessions in Redis when REDIS_URL is set and in
// signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisURL != "" {
		addr, username, password, err := redisAddr(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			addr,
			username,
			password,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(middleware.SessionOptions(cfg.IsProduction()))
	return store, nil
}

func redisAddr(raw string) (addr, username, password string, err error) {
	if !strings.Contains(raw, "://") {
		return raw, "", "", nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return opts.Addr, opts.Username, opts.Password, nil
}
