// Package database multi-connection GORM manager published as the "database"
// component.
package database

import (
	"fmt"
	"slices"
	"time"
)

var supportedDrivers = []string{"mysql", "postgres", "sqlite"}

// Config one database connection (key: database.connections.<name>)
type Config struct {
	Driver          string        `mapstructure:"driver"` // mysql, postgres, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	EnableLog       bool          `mapstructure:"enable_log"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	EnableAudit     bool          `mapstructure:"enable_audit"` // log every statement at debug level

	// ConnectAttempts opens before giving up at startup, default 1
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`

	// OpenTelemetry
	TraceSQL       bool `mapstructure:"trace_sql"` // record statements on spans
	TraceSQLMaxLen int  `mapstructure:"trace_sql_max_len"`
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 100
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 10
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = 200 * time.Millisecond
	}
	if c.TraceSQLMaxLen <= 0 {
		c.TraceSQLMaxLen = 1000
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = 1
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = 500 * time.Millisecond
	}
}

// Validate implements config.Validator
func (c Config) Validate() error {
	if !slices.Contains(supportedDrivers, c.Driver) {
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("%w: dsn cannot be empty", ErrInvalidConfig)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("%w: max_idle_conns (%d) exceeds max_open_conns (%d)",
			ErrInvalidConfig, c.MaxIdleConns, c.MaxOpenConns)
	}
	return nil
}
