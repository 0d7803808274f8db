package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrLockTimeout = errors.New("resource is busy, try again later")

// LocalLocker is an in-process keyed mutex. It is enough for a single
// instance; multi-instance deployments use the Redis locker.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// RedisLocker holds a keyed lock in Redis so that several service instances
// never interleave writes to the same key.
type RedisLocker struct {
	cache    *RedisClient
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	logger   logger.ZapLogger
}

func NewRedisLocker(c *RedisClient, log logger.ZapLogger) *RedisLocker {
	return &RedisLocker{
		cache:    c,
		ttl:      5 * time.Second,
		attempts: 20,
		backoff:  50 * time.Millisecond,
		logger:   log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	value := uuid.New().String()

	for i := 0; i < l.attempts; i++ {
		ok, err := l.cache.AcquireLock(ctx, key, value, l.ttl)
		if err != nil {
			l.logger.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return func() {
				// the request context may already be gone; release regardless
				if err := l.cache.ReleaseLock(context.Background(), key, value); err != nil {
					l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	return nil, ErrLockTimeout
}
