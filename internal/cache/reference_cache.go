package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReferenceCache keeps the reference-record table payloads (customers,
// suppliers, materials, products) in redis. Entity writes invalidate the
// written type's key so readers never see a stale table for long.
type ReferenceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewReferenceCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReferenceCache {
	return &ReferenceCache{client: client, ttl: ttl, logger: logger}
}

func (c *ReferenceCache) key(recordType string) string {
	return fmt.Sprintf("records:%s", recordType)
}

// Get unmarshals the cached table for recordType into dest. The bool result
// reports a hit; cache errors degrade to a miss and are only logged.
func (c *ReferenceCache) Get(ctx context.Context, recordType string, dest any) bool {
	if c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, c.key(recordType)).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("reference cache read failed", zap.String("type", recordType), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("reference cache decode failed", zap.String("type", recordType), zap.Error(err))
		return false
	}
	return true
}

// Set stores the table payload. Failures are logged, never propagated.
func (c *ReferenceCache) Set(ctx context.Context, recordType string, value any) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("reference cache encode failed", zap.String("type", recordType), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(recordType), data, c.ttl).Err(); err != nil {
		c.logger.Warn("reference cache write failed", zap.String("type", recordType), zap.Error(err))
	}
}

// Invalidate drops the cached table for recordType after a write.
func (c *ReferenceCache) Invalidate(ctx context.Context, recordType string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(recordType)).Err(); err != nil {
		c.logger.Warn("reference cache invalidation failed", zap.String("type", recordType), zap.Error(err))
	}
}
