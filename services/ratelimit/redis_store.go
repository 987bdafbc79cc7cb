package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	"github.com/redis/go-redis/v9"
)

const (
	redisEntryPrefix = "ratelimit:entry:"
	redisBlockPrefix = "ratelimit:block:"
)

// RedisStore shares limiter state between instances. Expiry is delegated to
// key TTLs, so Sweep has nothing to do.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetEntry(ctx context.Context, key string) (*model.RateLimitEntry, error) {
	var entry model.RateLimitEntry
	found, err := s.get(ctx, redisEntryPrefix+key, &entry)
	if err != nil || !found {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) SaveEntry(ctx context.Context, key string, entry *model.RateLimitEntry, ttl time.Duration) error {
	return s.set(ctx, redisEntryPrefix+key, entry, ttl)
}

func (s *RedisStore) DeleteEntry(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisEntryPrefix+key).Err()
}

func (s *RedisStore) GetBlock(ctx context.Context, key string) (*model.BlockRecord, error) {
	var block model.BlockRecord
	found, err := s.get(ctx, redisBlockPrefix+key, &block)
	if err != nil || !found {
		return nil, err
	}
	return &block, nil
}

func (s *RedisStore) SaveBlock(ctx context.Context, key string, block *model.BlockRecord, ttl time.Duration) error {
	return s.set(ctx, redisBlockPrefix+key, block, ttl)
}

func (s *RedisStore) DeleteBlock(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisBlockPrefix+key).Err()
}

func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := shared.JSONUnmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return s.client.Del(ctx, key).Err()
	}
	data, err := shared.JSONMarshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}
