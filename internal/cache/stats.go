package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/warbler/internal/repository"
)

const statsKeyPrefix = "warbler:user:"

// StatsCache caches repository.UserStats per user. A nil *StatsCache, or one
// built without a client, misses on every read and ignores writes, so callers
// never need to check whether Redis is configured.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a StatsCache. client may be nil.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(userID uint64) string {
	return fmt.Sprintf("%s%d:stats", statsKeyPrefix, userID)
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached stats for userID.
func (c *StatsCache) Get(ctx context.Context, userID uint64) (repository.UserStats, bool) {
	if !c.enabled() {
		return repository.UserStats{}, false
	}

	raw, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "stats cache read failed", "user_id", userID, "error", err)
		}
		return repository.UserStats{}, false
	}

	var stats repository.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		slog.WarnContext(ctx, "stats cache entry corrupt", "user_id", userID, "error", err)
		return repository.UserStats{}, false
	}
	return stats, true
}

// Set stores stats for userID.
func (c *StatsCache) Set(ctx context.Context, userID uint64, stats repository.UserStats) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKey(userID), raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "stats cache write failed", "user_id", userID, "error", err)
	}
}

// Invalidate drops the cached stats of every given user.
func (c *StatsCache) Invalidate(ctx context.Context, userIDs ...uint64) {
	if !c.enabled() || len(userIDs) == 0 {
		return
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = statsKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "stats cache invalidation failed", "error", err)
	}
}
