package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Manager named redis instances, standalone or cluster
type Manager struct {
	instances map[string]*redis.Client
	clusters  map[string]*redis.ClusterClient
	configs   map[string]Config
	log       *logger.CtxZapLogger
	mu        sync.RWMutex
	closed    bool
}

// NewManager connects every configured instance; a failed ping closes the
// ones already connected
func NewManager(ctx context.Context, configs map[string]Config, log *logger.CtxZapLogger) (*Manager, error) {
	if len(configs) == 0 {
		return nil, ErrNoInstances
	}
	if log == nil {
		log = logger.GetLogger("redis")
	}

	m := &Manager{
		instances: make(map[string]*redis.Client),
		clusters:  make(map[string]*redis.ClusterClient),
		configs:   make(map[string]Config),
		log:       log,
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := configs[name]
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("instance %s: %w", name, err)
		}

		var universal redis.UniversalClient
		switch cfg.Mode {
		case ModeStandalone:
			client, err := m.newClient(ctx, name, cfg)
			if err != nil {
				_ = m.Close()
				return nil, fmt.Errorf("connect %s: %w", name, err)
			}
			m.instances[name] = client
			universal = client
		case ModeCluster:
			cluster, err := m.newClusterClient(ctx, name, cfg)
			if err != nil {
				_ = m.Close()
				return nil, fmt.Errorf("connect cluster %s: %w", name, err)
			}
			m.clusters[name] = cluster
			universal = cluster
		}
		if cfg.Metrics {
			universal.AddHook(NewMetricsHook(name, nil))
		}

		m.configs[name] = cfg
		m.log.DebugCtx(ctx, "redis connected",
			zap.String("name", name),
			zap.String("mode", cfg.Mode),
			zap.Strings("addrs", cfg.Addrs))
	}
	return m, nil
}

func (m *Manager) newClient(ctx context.Context, name string, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addrs[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := m.waitReady(ctx, name, cfg, client.Ping); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

func (m *Manager) newClusterClient(ctx context.Context, name string, cfg Config) (*redis.ClusterClient, error) {
	cluster := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:        cfg.Addrs,
		Password:     cfg.Password,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := m.waitReady(ctx, name, cfg, cluster.Ping); err != nil {
		_ = cluster.Close()
		return nil, fmt.Errorf("ping cluster: %w", err)
	}
	return cluster, nil
}

// waitReady pings up to connect_attempts times with exponential backoff
func (m *Manager) waitReady(ctx context.Context, name string, cfg Config, ping func(context.Context) *redis.StatusCmd) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		return ping(ctx).Err()
	},
		retry.MaxAttempts(cfg.ConnectAttempts),
		retry.Backoff(retry.Exponential(cfg.ConnectBackoff)),
		retry.OnRetry(func(attempt int, err error, wait time.Duration) {
			m.log.WarnCtx(ctx, "redis not ready, retrying",
				zap.String("name", name),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}))
}

// Client standalone instance, nil when unknown or clustered
func (m *Manager) Client(name string) *redis.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Cluster cluster instance, nil when unknown or standalone
func (m *Manager) Cluster(name string) *redis.ClusterClient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clusters[name]
}

// Universal instance of either mode
func (m *Manager) Universal(name string) (redis.UniversalClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.instances[name]; ok {
		return c, nil
	}
	if c, ok := m.clusters[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
}

// Names every instance name, sorted
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.configs))
	for name := range m.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every instance
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, client := range m.instances {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping %s: %w", name, err)
		}
	}
	for name, cluster := range m.clusters {
		if err := cluster.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping cluster %s: %w", name, err)
		}
	}
	return nil
}

// Check implements the server health checker
func (m *Manager) Check(ctx context.Context) error {
	return m.Ping(ctx)
}

// Close closes every instance; later calls are no-ops
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	closeOne := func(name string, c interface{ Close() error }) {
		if err := c.Close(); err != nil {
			m.log.Error("close redis failed", zap.String("name", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			return
		}
		m.log.Debug("redis closed", zap.String("name", name))
	}
	for name, client := range m.instances {
		closeOne(name, client)
	}
	for name, cluster := range m.clusters {
		closeOne(name, cluster)
	}
	return errors.Join(errs...)
}

// Stop implements component.Stopper
func (m *Manager) Stop(context.Context) error {
	return m.Close()
}
