package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache typed access over a Store
type Cache struct {
	store      Store
	memory     *MemoryStore
	serializer Serializer
	ttl        time.Duration
	preload    map[string]any
	log        *logger.CtxZapLogger
	group      singleflight.Group

	mu      sync.Mutex
	warmers []namedWarmer

	hits     atomic.Int64
	misses   atomic.Int64
	loads    atomic.Int64
	failures atomic.Int64
}

type namedWarmer struct {
	name string
	fn   WarmFunc
}

// Option configures a Cache
type Option func(*Cache)

// WithSerializer replaces the JSON codec
func WithSerializer(s Serializer) Option {
	return func(c *Cache) {
		c.serializer = s
	}
}

// WithStore puts store behind the in-process layer
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = NewChainStore("chain", c.memory, store)
	}
}

// New in-process cache, optionally layered over another store
func New(cfg Config, log *logger.CtxZapLogger, opts ...Option) (*Cache, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger("cache")
	}

	memory := NewMemoryStore("memory", cfg.Size, cfg.TTL)
	c := &Cache{
		store:      memory,
		memory:     memory,
		serializer: NewJSONSerializer(),
		ttl:        cfg.TTL,
		preload:    cfg.Preload,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Store backend in use
func (c *Cache) Store() Store {
	return c.store
}

// Get decodes the value of key into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			c.misses.Add(1)
		} else {
			c.failures.Add(1)
		}
		return err
	}
	c.hits.Add(1)

	if err := c.serializer.Deserialize(data, dest); err != nil {
		c.failures.Add(1)
		return ErrDeserialize.Wrap(err).WithData("key", key)
	}
	return nil
}

// Set encodes value; ttl <= 0 uses the configured TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := c.serializer.Serialize(value)
	if err != nil {
		c.failures.Add(1)
		return ErrSerialize.Wrap(err).WithData("key", key)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.failures.Add(1)
		return err
	}
	return nil
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// DeleteByPrefix removes every key starting with prefix
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	return c.store.DeleteByPrefix(ctx, prefix)
}

// Exists reports whether key is cached
func (c *Cache) Exists(ctx context.Context, key string) bool {
	return c.store.Exists(ctx, key)
}

// Remember reads key into dest, calling load on a miss. Concurrent misses of
// the same key share one load.
func (c *Cache) Remember(ctx context.Context, key string, ttl time.Duration, dest any, load LoaderFunc) error {
	err := c.Get(ctx, key, dest)
	if err == nil || !errors.Is(err, ErrCacheMiss) {
		return err
	}

	data, err, _ := c.group.Do(key, func() (any, error) {
		c.loads.Add(1)
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := c.serializer.Serialize(value)
		if err != nil {
			return nil, ErrSerialize.Wrap(err).WithData("key", key)
		}
		if ttl <= 0 {
			ttl = c.ttl
		}
		if err := c.store.Set(ctx, key, data, ttl); err != nil {
			c.log.WarnCtx(ctx, "cache write after load failed", zap.String("key", key), zap.Error(err))
		}
		return data, nil
	})
	if err != nil {
		c.failures.Add(1)
		return err
	}

	if err := c.serializer.Deserialize(data.([]byte), dest); err != nil {
		return ErrDeserialize.Wrap(err).WithData("key", key)
	}
	return nil
}

// Stats counters since creation
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Loads:   c.loads.Load(),
		Errors:  c.failures.Load(),
		Entries: c.memory.Len(),
	}
}

// AddWarmer registers a warm-up step run by StartAsync in registration order
func (c *Cache) AddWarmer(name string, fn WarmFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warmers = append(c.warmers, namedWarmer{name: name, fn: fn})
}

// Warm writes the preload entries then runs every warmer; all steps run even
// when one fails
func (c *Cache) Warm(ctx context.Context) error {
	var errs []error

	keys := make([]string, 0, len(c.preload))
	for key := range c.preload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := c.Set(ctx, key, c.preload[key], 0); err != nil {
			errs = append(errs, fmt.Errorf("preload %s: %w", key, err))
		}
	}

	c.mu.Lock()
	warmers := append([]namedWarmer(nil), c.warmers...)
	c.mu.Unlock()

	for _, w := range warmers {
		start := time.Now()
		if err := w.fn(ctx, c); err != nil {
			c.log.WarnCtx(ctx, "cache warmer failed", zap.String("warmer", w.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("warmer %s: %w", w.name, err))
			continue
		}
		c.log.DebugCtx(ctx, "cache warmer completed",
			zap.String("warmer", w.name),
			zap.Duration("duration", time.Since(start)))
	}

	if len(errs) > 0 {
		return ErrWarmup.Wrap(errors.Join(errs...))
	}
	c.log.InfoCtx(ctx, "cache warmed",
		zap.Int("preloaded", len(keys)),
		zap.Int("warmers", len(warmers)))
	return nil
}

// StartAsync implements component.AsyncStarter
func (c *Cache) StartAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Warm(ctx)
	}()
	return done
}

// Check implements the server health checker
func (c *Cache) Check(ctx context.Context) error {
	if p, ok := c.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Stop implements component.Stopper
func (c *Cache) Stop(context.Context) error {
	return c.store.Close()
}
