package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/retry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Manager named GORM connections
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*gorm.DB
	configs   map[string]Config
	log       *logger.CtxZapLogger
	tracer    trace.TracerProvider
	closed    bool
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithTracerProvider traces statements on tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) ManagerOption {
	return func(m *Manager) {
		m.tracer = tp
	}
}

// NewManager opens every configured connection; any failure closes the ones
// already opened
func NewManager(ctx context.Context, configs map[string]Config, log *logger.CtxZapLogger, opts ...ManagerOption) (*Manager, error) {
	if len(configs) == 0 {
		return nil, ErrNoConnections
	}
	if log == nil {
		log = logger.GetLogger("database")
	}

	m := &Manager{
		instances: make(map[string]*gorm.DB),
		configs:   make(map[string]Config),
		log:       log,
	}
	for _, opt := range opts {
		opt(m)
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
			return nil, fmt.Errorf("connection %s: %w", name, err)
		}

		db, err := m.openDB(ctx, name, cfg)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("open database %s: %w", name, err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("get sql.DB for %s: %w", name, err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		m.instances[name] = db
		m.configs[name] = cfg
		m.log.Debug("database connected", zap.String("name", name), zap.String("driver", cfg.Driver))
	}

	return m, nil
}

// openDB retries gorm.Open, which pings mysql and postgres, up to
// connect_attempts times
func (m *Manager) openDB(ctx context.Context, name string, cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if cfg.EnableLog {
		gormLog = logger.NewGormLogger(m.log, logger.GormLoggerConfig{
			SlowThreshold: cfg.SlowThreshold,
			LogLevel:      gormlogger.Info,
			EnableAudit:   cfg.EnableAudit,
		})
	}

	db, err := retry.DoWithData(ctx, func(context.Context) (*gorm.DB, error) {
		return gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	},
		retry.MaxAttempts(cfg.ConnectAttempts),
		retry.Backoff(retry.Exponential(cfg.ConnectBackoff)),
		retry.OnRetry(func(attempt int, err error, wait time.Duration) {
			m.log.WarnCtx(ctx, "database not ready, retrying",
				zap.String("name", name),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}))
	if err != nil {
		return nil, err
	}

	plugin := NewOtelPlugin(m.tracer).WithTraceSQL(cfg.TraceSQL).WithSQLMaxLen(cfg.TraceSQLMaxLen)
	if err := db.Use(plugin); err != nil {
		return nil, fmt.Errorf("use otel plugin: %w", err)
	}
	return db, nil
}

// DB connection by name, nil when unknown
func (m *Manager) DB(name string) *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Names configured connection names, sorted
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every connection
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB for %s: %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("ping %s: %w", name, err)
		}
	}
	return nil
}

// Check implements the server health checker
func (m *Manager) Check(ctx context.Context) error {
	return m.Ping(ctx)
}

// Stats connection pool statistics
func (m *Manager) Stats(name string) (sql.DBStats, error) {
	db := m.DB(name)
	if db == nil {
		return sql.DBStats{}, fmt.Errorf("%w: %s", ErrConnectionNotFound, name)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// Close closes every connection; later calls are no-ops
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			m.log.Error("close database failed", zap.String("name", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			continue
		}
		m.log.Debug("database closed", zap.String("name", name))
	}
	return errors.Join(errs...)
}

// Stop implements component.Stopper
func (m *Manager) Stop(context.Context) error {
	return m.Close()
}
