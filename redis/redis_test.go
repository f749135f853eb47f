package redis

import (
	"context"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testLogger() *logger.CtxZapLogger {
	return logger.NewCtxZapLogger(zap.NewNop(), "redis")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Addr: "localhost:6379"}
	cfg.ApplyDefaults()

	assert.Equal(t, ModeStandalone, cfg.Mode)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Addrs)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 1, cfg.ConnectAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.ConnectBackoff)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{"valid", Config{Mode: ModeStandalone, Addrs: []string{"a:1"}}, ""},
		{"valid cluster ignores db", Config{Mode: ModeCluster, Addrs: []string{"a:1"}, DB: 40}, ""},
		{"invalid mode", Config{Mode: "sentinel", Addrs: []string{"a:1"}}, "invalid mode"},
		{"empty addrs", Config{Mode: ModeStandalone}, "addrs cannot be empty"},
		{"db out of range", Config{Mode: ModeStandalone, Addrs: []string{"a:1"}, DB: 16}, "db must be between"},
		{"negative pool", Config{Mode: ModeStandalone, Addrs: []string{"a:1"}, PoolSize: -1}, "pool_size"},
		{"negative idle", Config{Mode: ModeStandalone, Addrs: []string{"a:1"}, MinIdleConns: -1}, "min_idle_conns"},
		{"negative connect attempts", Config{Mode: ModeStandalone, Addrs: []string{"a:1"}, ConnectAttempts: -1}, "connect_attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewManager(t *testing.T) {
	ctx := context.Background()

	t.Run("no instances", func(t *testing.T) {
		_, err := NewManager(ctx, nil, testLogger())
		assert.ErrorIs(t, err, ErrNoInstances)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewManager(ctx, map[string]Config{"main": {Mode: "invalid", Addr: "a:1"}}, testLogger())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := testutil.NewMiniRedis(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewManager(ctx, map[string]Config{
			"main": {Addr: addr, MaxRetries: -1, DialTimeout: 100 * time.Millisecond},
		}, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect main")
	})

	t.Run("retries until the server is up", func(t *testing.T) {
		mr := testutil.NewMiniRedis(t)
		addr := mr.Addr()
		mr.Close()

		core, logs := observer.New(zapcore.WarnLevel)
		restarted := false
		base := zap.New(core, zap.Hooks(func(zapcore.Entry) error {
			if !restarted {
				restarted = true
				return mr.Restart()
			}
			return nil
		}))

		m, err := NewManager(ctx, map[string]Config{
			"main": {
				Addr:            addr,
				MaxRetries:      -1,
				DialTimeout:     100 * time.Millisecond,
				ConnectAttempts: 3,
				ConnectBackoff:  10 * time.Millisecond,
			},
		}, logger.NewCtxZapLogger(base, "redis"))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, 1, logs.FilterMessage("redis not ready, retrying").Len())
		assert.NoError(t, m.Ping(ctx))

		mr.Close()
		start := time.Now()
		assert.Error(t, m.Ping(ctx))
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 1, logs.FilterMessage("redis not ready, retrying").Len(), "health pings are not retried")
	})

	t.Run("standalone instances", func(t *testing.T) {
		mr := testutil.NewMiniRedis(t)
		m, err := NewManager(ctx, map[string]Config{
			"main":    {Addr: mr.Addr()},
			"session": {Addr: mr.Addr(), DB: 1},
		}, testLogger())
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, []string{"main", "session"}, m.Names())
		require.NotNil(t, m.Client("main"))
		assert.Nil(t, m.Cluster("main"))
		assert.Nil(t, m.Client("missing"))

		require.NoError(t, m.Client("main").Set(ctx, "greeting", "hello", 0).Err())
		got, err := mr.Get("greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)

		u, err := m.Universal("session")
		require.NoError(t, err)
		assert.NoError(t, u.Ping(ctx).Err())

		_, err = m.Universal("missing")
		assert.ErrorIs(t, err, ErrInstanceNotFound)

		assert.NoError(t, m.Check(ctx))
	})
}

func TestManager_Close(t *testing.T) {
	mr := testutil.NewMiniRedis(t)
	m, err := NewManager(context.Background(), map[string]Config{"main": {Addr: mr.Addr()}}, testLogger())
	require.NoError(t, err)

	require.NoError(t, m.Stop(context.Background()))
	assert.NoError(t, m.Close())
	assert.Error(t, m.Ping(context.Background()))
}

func TestMetricsHook(t *testing.T) {
	ctx := context.Background()
	mr := testutil.NewMiniRedis(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(ctx)

	m, err := NewManager(ctx, map[string]Config{"main": {Addr: mr.Addr()}}, testLogger())
	require.NoError(t, err)
	defer m.Close()

	client := m.Client("main")
	client.AddHook(NewMetricsHook("main", mp))

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	_, err = client.Get(ctx, "absent").Result()
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), totals["redis.commands"])
	assert.Zero(t, totals["redis.errors"])
}

func TestModule(t *testing.T) {
	assert.Equal(t, "redis", Module().Name())

	mr := testutil.NewMiniRedis(t)
	deps := testutil.NewDeps(t, map[string]any{
		"redis.main.addr":    mr.Addr(),
		"redis.main.metrics": true,
	})

	instance, err := NewComponent(context.Background(), deps)
	require.NoError(t, err)
	m, ok := instance.(*Manager)
	require.True(t, ok)
	defer m.Close()

	assert.Equal(t, []string{"main"}, m.Names())
	var _ component.Stopper = m

	_, err = NewComponent(context.Background(), testutil.NewDeps(t, nil))
	assert.ErrorIs(t, err, ErrNoInstances)
}
