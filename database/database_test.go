package database

import (
	"context"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/retry"
	"github.com/KOMKZ/go-yogan-boot/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testUser struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func memoryConfig() Config {
	return Config{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}
}

func testLogger() *logger.CtxZapLogger {
	return logger.NewCtxZapLogger(zap.NewNop(), "database")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, 1000, cfg.TraceSQLMaxLen)
	assert.Equal(t, 1, cfg.ConnectAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectBackoff)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 5, MaxIdleConns: 2}, ""},
		{"unknown driver", Config{Driver: "oracle", DSN: "x", MaxOpenConns: 5}, "unsupported driver"},
		{"empty dsn", Config{Driver: "mysql", MaxOpenConns: 5}, "dsn cannot be empty"},
		{"idle exceeds open", Config{Driver: "postgres", DSN: "x", MaxOpenConns: 2, MaxIdleConns: 5}, "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("no connections", func(t *testing.T) {
		_, err := NewManager(context.Background(), nil, testLogger())
		assert.ErrorIs(t, err, ErrNoConnections)
	})

	t.Run("invalid connection", func(t *testing.T) {
		_, err := NewManager(context.Background(), map[string]Config{
			"main":  memoryConfig(),
			"other": {Driver: "oracle", DSN: "x"},
		}, testLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "connection other")
	})

	t.Run("retries a failing open", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		cfg := Config{
			Driver:          "sqlite",
			DSN:             t.TempDir() + "/missing/dir/app.db",
			ConnectAttempts: 2,
			ConnectBackoff:  time.Millisecond,
		}
		_, err := NewManager(context.Background(), map[string]Config{"main": cfg},
			logger.NewCtxZapLogger(zap.New(core), "database"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open database main")
		assert.Equal(t, 2, retry.Attempts(err))
		assert.Equal(t, 1, logs.FilterMessage("database not ready, retrying").Len())
	})

	t.Run("opens every connection", func(t *testing.T) {
		m, err := NewManager(context.Background(), map[string]Config{
			"main":    memoryConfig(),
			"reports": memoryConfig(),
		}, testLogger())
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, []string{"main", "reports"}, m.Names())
		assert.NotNil(t, m.DB("main"))
		assert.Nil(t, m.DB("missing"))
		assert.NoError(t, m.Ping(context.Background()))
		assert.NoError(t, m.Check(context.Background()))

		stats, err := m.Stats("main")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)

		_, err = m.Stats("missing")
		assert.ErrorIs(t, err, ErrConnectionNotFound)
	})
}

func TestManager_Queries(t *testing.T) {
	m, err := NewManager(context.Background(), map[string]Config{"main": memoryConfig()}, testLogger())
	require.NoError(t, err)
	defer m.Close()

	db := m.DB("main")
	require.NoError(t, db.AutoMigrate(&testUser{}))
	require.NoError(t, db.Create(&testUser{Name: "alice"}).Error)

	helper := testutil.NewDBHelper(db)
	count, err := helper.CountWhere("test_users", "name = ?", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestManager_Close(t *testing.T) {
	m, err := NewManager(context.Background(), map[string]Config{"main": memoryConfig()}, testLogger())
	require.NoError(t, err)

	require.NoError(t, m.Stop(context.Background()))
	assert.NoError(t, m.Close())
	assert.Error(t, m.Ping(context.Background()))
}

func TestManager_WithAuditLog(t *testing.T) {
	cfg := memoryConfig()
	cfg.EnableLog = true
	cfg.EnableAudit = true

	m, err := NewManager(context.Background(), map[string]Config{"main": cfg}, testLogger())
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, m.DB("main").Exec("SELECT 1").Error)
}

func TestOtelPlugin(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	cfg := memoryConfig()
	cfg.TraceSQL = true
	cfg.TraceSQLMaxLen = 20

	m, err := NewManager(context.Background(), map[string]Config{"main": cfg}, testLogger(), WithTracerProvider(tp))
	require.NoError(t, err)
	defer m.Close()

	db := m.DB("main")
	require.NoError(t, db.AutoMigrate(&testUser{}))
	recorder.Reset()

	require.NoError(t, db.Create(&testUser{Name: "bob"}).Error)
	var users []testUser
	require.NoError(t, db.Find(&users).Error)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "gorm.query test_users", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[1].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "sqlite", attrs["db.system"].AsString())
	assert.Equal(t, "SELECT", attrs["db.operation"].AsString())
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())

	statement := attrs["db.statement"].AsString()
	assert.Len(t, statement, 23)
	assert.Contains(t, statement, "...")
}

func TestModule(t *testing.T) {
	mod := Module()
	assert.Equal(t, "database", mod.Name())

	t.Run("builds manager from config", func(t *testing.T) {
		deps := testutil.NewDeps(t, map[string]any{
			"database.connections.main.driver":         "sqlite",
			"database.connections.main.dsn":            ":memory:",
			"database.connections.main.max_open_conns": 1,
			"database.connections.main.max_idle_conns": 1,
		})

		instance, err := NewComponent(context.Background(), deps)
		require.NoError(t, err)
		m, ok := instance.(*Manager)
		require.True(t, ok)
		defer m.Close()

		assert.Equal(t, []string{"main"}, m.Names())
		var _ component.Stopper = m
	})

	t.Run("missing section", func(t *testing.T) {
		deps := testutil.NewDeps(t, map[string]any{"app.name": "demo"})
		_, err := NewComponent(context.Background(), deps)
		assert.ErrorIs(t, err, ErrNoConnections)
	})

	t.Run("missing logger", func(t *testing.T) {
		deps := testutil.Resolver{component.NameConfig: testutil.NewConfig(t, nil)}
		_, err := NewComponent(context.Background(), deps)
		assert.Error(t, err)
	})
}
