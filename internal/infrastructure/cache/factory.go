package cache

import (
	"time"

	"github.com/erp/docflow/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewTaxCache picks the cache backend from configuration: Redis when a
// host is configured and reachable, otherwise the in-process cache.
func NewTaxCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) TaxCache {
	if cfg.Host == "" {
		return NewInMemoryTaxCache(ttl)
	}

	redisCache, err := NewRedisTaxCache(cfg, ttl)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory tax cache",
			zap.String("host", cfg.Host),
			zap.Error(err),
		)
		return NewInMemoryTaxCache(ttl)
	}

	logger.Info("Using Redis tax cache", zap.String("host", cfg.Host))
	return redisCache
}
