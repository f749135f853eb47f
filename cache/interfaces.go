// Package cache layered key/value cache published as the "cache" component: an
// in-process LRU in front of an optional redis store.
package cache

import (
	"context"
	"time"
)

// Store cache backend
type Store interface {
	Name() string

	// Get returns ErrCacheMiss for absent or expired keys
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Exists(ctx context.Context, key string) bool
	Close() error
}

// Pinger backends reachable over the network
type Pinger interface {
	Ping(ctx context.Context) error
}

// Serializer value codec
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Name() string
}

// LoaderFunc produces the value of a missing key
type LoaderFunc func(ctx context.Context) (any, error)

// WarmFunc fills the cache during asynchronous start
type WarmFunc func(ctx context.Context, c *Cache) error

// Stats cache counters
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
	Errors  int64 `json:"errors"`
	Entries int   `json:"entries"`
}
