package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore in-process LRU; the store TTL caps every entry
type MemoryStore struct {
	name string
	lru  *expirable.LRU[string, memoryItem]
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// NewMemoryStore size <= 0 defaults to 10000 entries
func NewMemoryStore(name string, size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 10000
	}
	return &MemoryStore{
		name: name,
		lru:  expirable.NewLRU[string, memoryItem](size, nil, ttl),
	}
}

// Name implements Store
func (s *MemoryStore) Name() string {
	return s.name
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item, ok := s.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if item.expired(time.Now()) {
		s.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set implements Store; ttl <= 0 keeps the store TTL
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	s.lru.Add(key, item)
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

// DeleteByPrefix implements Store
func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.lru.Remove(key)
		}
	}
	return nil
}

// Exists implements Store
func (s *MemoryStore) Exists(_ context.Context, key string) bool {
	item, ok := s.lru.Peek(key)
	return ok && !item.expired(time.Now())
}

// Len entries currently held
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

// Close implements Store
func (s *MemoryStore) Close() error {
	s.lru.Purge()
	return nil
}
