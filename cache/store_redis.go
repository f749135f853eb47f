package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore redis backend; the client is owned by the redis component
type RedisStore struct {
	name      string
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore keys are prefixed with keyPrefix
func NewRedisStore(name string, client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{
		name:      name,
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Name implements Store
func (s *RedisStore) Name() string {
	return s.name
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}
	return result, nil
}

// Set implements Store
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.buildKey(key), value, ttl).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// DeleteByPrefix scans with SCAN to avoid blocking the server
func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.buildKey(prefix)+"*", 100).Result()
		if err != nil {
			return ErrStoreDelete.Wrap(err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return ErrStoreDelete.Wrap(err)
		}
	}
	return nil
}

// Exists implements Store
func (s *RedisStore) Exists(ctx context.Context, key string) bool {
	n, err := s.client.Exists(ctx, s.buildKey(key)).Result()
	return err == nil && n > 0
}

// Ping implements Pinger
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op
func (s *RedisStore) Close() error {
	return nil
}
