package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/verification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	snapshotKeyPrefix   = "verify:snapshot:"
	generationKeyPrefix = "verify:gen:"
)

// Store only if the batch generation still matches. A missing counter is
// generation zero.
var setIfGenerationScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or "0"
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// RedisSnapshotCache keys snapshots by code. Serial codes start with their
// batch code, so one prefix delete drops a batch and every unit under it.
type RedisSnapshotCache struct {
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewRedisSnapshotCache(c *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *RedisSnapshotCache {
	return &RedisSnapshotCache{cache: c, ttl: ttl, logger: log}
}

func (c *RedisSnapshotCache) Get(ctx context.Context, code string) (*verification.Snapshot, bool) {
	val, err := c.cache.Client.Get(ctx, snapshotKeyPrefix+code).Bytes()
	if err != nil {
		return nil, false
	}
	var snap verification.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		c.logger.Warn("dropping unreadable snapshot", zap.String("code", code), zap.Error(err))
		return nil, false
	}
	return &snap, true
}

func (c *RedisSnapshotCache) Generation(ctx context.Context, batchCode string) (int64, error) {
	gen, err := c.cache.Client.Get(ctx, generationKeyPrefix+batchCode).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisSnapshotCache) Set(ctx context.Context, code, batchCode string, gen int64, snap *verification.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	keys := []string{generationKeyPrefix + batchCode, snapshotKeyPrefix + code}
	stored, err := setIfGenerationScript.Run(ctx, c.cache.Client, keys, strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("failed to cache snapshot", zap.String("code", code), zap.Error(err))
		return
	}
	if stored == 0 {
		c.logger.Debug("skipped stale snapshot", zap.String("code", code), zap.Int64("generation", gen))
	}
}

// InvalidateBatch bumps the generation first so lookups already in flight
// cannot store what they read, then drops the cached snapshots.
func (c *RedisSnapshotCache) InvalidateBatch(ctx context.Context, batchCode string) error {
	if err := c.cache.Client.Incr(ctx, generationKeyPrefix+batchCode).Err(); err != nil {
		return err
	}
	return c.cache.DeleteByPrefix(ctx, snapshotKeyPrefix+batchCode)
}
