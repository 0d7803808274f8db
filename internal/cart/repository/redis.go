package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// RedisStorage keeps each cart as one JSON value that expires after ttl of
// inactivity.
type RedisStorage struct {
	cache *cache.RedisClient
	ttl   time.Duration
}

func NewRedisStorage(c *cache.RedisClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{cache: c, ttl: ttl}
}

func (s *RedisStorage) Load(ctx context.Context, sessionID string) (*model.Cart, error) {
	val, err := s.cache.Client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var c model.Cart
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisStorage) Save(ctx context.Context, c *model.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.cache.Client.Set(ctx, cartKeyPrefix+c.SessionID, data, s.ttl).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Client.Del(ctx, cartKeyPrefix+sessionID).Err()
}
