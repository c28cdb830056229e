package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss signals a key absent from the reference cache.
var ErrCacheMiss = errors.New("reference cache miss")

// ReferenceCache stores slow-changing reference rows (SLA matrix entries,
// role locations) in Redis with a TTL. Computed recipient sets are never
// cached here.
type ReferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReferenceCache builds a cache wrapper. A nil client disables caching.
func NewReferenceCache(client *redis.Client, ttl time.Duration) *ReferenceCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ReferenceCache{client: client, ttl: ttl}
}

// GetJSON loads and unmarshals a cached value into dest.
func (c *ReferenceCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if c == nil || c.client == nil {
		return ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON marshals and stores a value under the configured TTL.
func (c *ReferenceCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
