package repository

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"go.uber.org/zap"
)

const listKeyPrefix = "catalog:list:"

type RedisListCache struct {
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewRedisListCache(c *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *RedisListCache {
	return &RedisListCache{cache: c, ttl: ttl, logger: log}
}

func (c *RedisListCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.cache.Client.Get(ctx, listKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisListCache) Set(ctx context.Context, key string, data []byte) {
	if err := c.cache.Client.Set(ctx, listKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache batch list", zap.Error(err))
	}
}

func (c *RedisListCache) Flush(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, listKeyPrefix)
}
