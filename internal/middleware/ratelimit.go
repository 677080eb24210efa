package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CounterStore counts hits per key inside a rolling window. Incr returns the
// count after the increment; the first hit of a window starts its TTL.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

type memoryCounterStore struct {
	mu      sync.Mutex
	counts  map[string]int
	expires map[string]time.Time
}

// NewMemoryCounterStore keeps counters in process. Good enough for a single
// instance; use the redis store when running more than one.
func NewMemoryCounterStore() CounterStore {
	return &memoryCounterStore{
		counts:  make(map[string]int),
		expires: make(map[string]time.Time),
	}
}

func (s *memoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.expires[key]; !ok || now.After(expiry) {
		s.counts[key] = 0
		s.expires[key] = now.Add(window)
	}
	s.counts[key]++
	return s.counts[key], nil
}

type redisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore shares counters across instances through redis.
func NewRedisCounterStore(client *redis.Client) CounterStore {
	return &redisCounterStore{client: client}
}

func (s *redisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	redisKey := "ratelimit:" + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set rate counter expiry: %w", err)
		}
	}
	return int(count), nil
}

// RateLimitMiddleware rejects clients that exceed limit requests per window,
// keyed by client IP. Store errors fail open so a redis outage never takes
// the API down with it.
func RateLimitMiddleware(store CounterStore, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.Incr(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			logger.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "❌ too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
