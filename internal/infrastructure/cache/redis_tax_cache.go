package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisTaxCache implements TaxCache on Redis, for deployments where
// several instances should share one tax cache.
type RedisTaxCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisTaxCache creates a Redis-backed tax cache from configuration
func NewRedisTaxCache(cfg config.RedisConfig, ttl time.Duration) (*RedisTaxCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTaxCacheWithClient(client, ttl), nil
}

// NewRedisTaxCacheWithClient creates a cache on an existing Redis client
func NewRedisTaxCacheWithClient(client *redis.Client, ttl time.Duration) *RedisTaxCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisTaxCache{
		client:    client,
		keyPrefix: "docflow:tax:",
		ttl:       ttl,
	}
}

// Get implements TaxCache
func (c *RedisTaxCache) Get(ctx context.Context, code string) (*document.Tax, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tax document.Tax
	if err := json.Unmarshal(payload, &tax); err != nil {
		// A corrupt entry behaves like a miss; the read-through
		// path will overwrite it.
		_ = c.client.Del(ctx, c.keyPrefix+code).Err()
		return nil, nil
	}
	return &tax, nil
}

// Set implements TaxCache
func (c *RedisTaxCache) Set(ctx context.Context, tax *document.Tax) error {
	payload, err := json.Marshal(tax)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyPrefix+tax.Code, payload, c.ttl).Err()
}

// Invalidate implements TaxCache
func (c *RedisTaxCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.keyPrefix+code).Err()
}

// Close releases the Redis connection
func (c *RedisTaxCache) Close() error {
	return c.client.Close()
}
