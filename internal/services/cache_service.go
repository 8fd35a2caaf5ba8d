package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donationhub/internal/utils"
	"donationhub/pkg/cache"
	"donationhub/pkg/logger"
)

// CacheService wraps Redis for read-through caching, write throttles and rate limits.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// AcquireWindow returns true for the first caller of key in each window.
	AcquireWindow(ctx context.Context, key string, window time.Duration) (bool, error)
	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
	Ping(ctx context.Context) error
}

type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Count      int64         `json:"count"`
	Remaining  int64         `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

type cacheService struct {
	redis     *cache.RedisCache
	logger    *logger.Logger
	keyPrefix string
}

func NewCacheService(redis *cache.RedisCache, logger *logger.Logger, keyPrefix string) CacheService {
	return &cacheService{
		redis:     redis,
		logger:    logger,
		keyPrefix: keyPrefix,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	err := s.redis.Get(ctx, s.buildKey(key), dest)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return err
		}
		return fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	s.logger.WithField("cache_key", key).Debug("Cache hit")
	return nil
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.redis.Set(ctx, s.buildKey(key), value, expiration); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = s.buildKey(key)
	}

	if err := s.redis.Delete(ctx, fullKeys...); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

func (s *cacheService) AcquireWindow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := s.redis.SetNX(ctx, s.buildKey(key), time.Now().Unix(), window)
	if err != nil {
		return false, fmt.Errorf("failed to acquire window %s: %w", key, err)
	}
	return ok, nil
}

func (s *cacheService) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	rateLimitKey := s.buildKey(utils.CacheRateLimitPrefix + key)

	count, err := s.redis.IncrementWindow(ctx, rateLimitKey, window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	retryAfter := time.Duration(0)
	if count > limit {
		retryAfter, _ = s.redis.GetTTL(ctx, rateLimitKey)
	}

	return &RateLimitResult{
		Allowed:    count <= limit,
		Count:      count,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}, nil
}

func (s *cacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}

func (s *cacheService) buildKey(key string) string {
	if s.keyPrefix != "" {
		return fmt.Sprintf("%s:%s", s.keyPrefix, key)
	}
	return key
}
