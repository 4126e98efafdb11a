package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"golang.org/x/time/rate"
)

const minIdleTTL = time.Minute

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	clients map[string]*rateClient
	mu      sync.Mutex
	r       rate.Limit
	b       int
	idleTTL time.Duration
}

// NewIPRateLimiter creates a limiter allowing r requests per second with burst b.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*rateClient),
		r:       r,
		b:       b,
		idleTTL: idleTTL(r, b),
	}
}

// idleTTL is how long a client must stay quiet before its bucket is full
// again. Dropping it after that is indistinguishable from keeping it.
func idleTTL(r rate.Limit, b int) time.Duration {
	ttl := minIdleTTL
	if r > 0 && r != rate.Inf {
		refill := time.Duration(float64(b) / float64(r) * float64(time.Second))
		if refill > ttl {
			ttl = refill
		}
	}
	return ttl
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	client, exists := i.clients[ip]
	if !exists {
		client = &rateClient{limiter: rate.NewLimiter(i.r, i.b)}
		i.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// evictIdle drops clients not seen within idleTTL of now and reports how
// many were removed. Buckets that never refill are kept.
func (i *IPRateLimiter) evictIdle(now time.Time) int {
	if i.r <= 0 {
		return 0
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for ip, client := range i.clients {
		if now.Sub(client.lastSeen) > i.idleTTL {
			delete(i.clients, ip)
			removed++
		}
	}
	return removed
}

// StartCleanup evicts idle clients every interval until ctx is done.
func (i *IPRateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := i.evictIdle(now); n > 0 {
					slog.Debug("evicted idle rate limiter clients", "count", n)
				}
			}
		}
	}()
}

// RateLimit rejects clients that exceed their bucket with 429.
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			if WantsJSON(c) {
				apperrors.RespondWithError(c, http.StatusTooManyRequests,
					apperrors.NewAPIError(apperrors.ErrCodeRateLimited, constants.MsgRateLimited))
				return
			}
			c.String(http.StatusTooManyRequests, constants.MsgRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
