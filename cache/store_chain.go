package cache

import (
	"context"
	"errors"
	"time"
)

// backfillTTL TTL of entries copied into a faster layer
const backfillTTL = time.Minute

// ChainStore layered store, fastest first
type ChainStore struct {
	name   string
	stores []Store
}

// NewChainStore reads through stores in order
func NewChainStore(name string, stores ...Store) *ChainStore {
	return &ChainStore{
		name:   name,
		stores: stores,
	}
}

// Name implements Store
func (s *ChainStore) Name() string {
	return s.name
}

// Get reads layers in order and backfills the layers in front of the hit
func (s *ChainStore) Get(ctx context.Context, key string) ([]byte, error) {
	var lastErr error
	for i, store := range s.stores {
		value, err := store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				lastErr = err
			}
			continue
		}
		for j := 0; j < i; j++ {
			_ = s.stores[j].Set(ctx, key, value, backfillTTL)
		}
		return value, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrCacheMiss
}

// Set writes every layer
func (s *ChainStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, store := range s.stores {
		if err := store.Set(ctx, key, value, ttl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes from every layer
func (s *ChainStore) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, store := range s.stores {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteByPrefix removes from every layer
func (s *ChainStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	var errs []error
	for _, store := range s.stores {
		if err := store.DeleteByPrefix(ctx, prefix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Exists true when any layer holds the key
func (s *ChainStore) Exists(ctx context.Context, key string) bool {
	for _, store := range s.stores {
		if store.Exists(ctx, key) {
			return true
		}
	}
	return false
}

// Ping pings every layer implementing Pinger
func (s *ChainStore) Ping(ctx context.Context) error {
	for _, store := range s.stores {
		if p, ok := store.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every layer
func (s *ChainStore) Close() error {
	var errs []error
	for _, store := range s.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
