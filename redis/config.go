// Package redis named go-redis clients published as the "redis" component.
package redis

import (
	"fmt"
	"time"
)

const (
	ModeStandalone = "standalone"
	ModeCluster    = "cluster"
)

// Config one redis instance (key: redis.<name>)
type Config struct {
	// Mode standalone or cluster
	Mode string `mapstructure:"mode"`

	// Addrs standalone uses the first address, cluster uses all of them
	Addrs []string `mapstructure:"addrs"`

	// Addr shorthand for a single address
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`

	// DB standalone only, 0-15
	DB int `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ConnectAttempts pings before giving up at startup, default 1
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`

	// Metrics records command counters on the global meter provider
	Metrics bool `mapstructure:"metrics"`
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeStandalone
	}
	if c.Addr != "" && len(c.Addrs) == 0 {
		c.Addrs = []string{c.Addr}
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 1
	}
	if c.ConnectBackoff == 0 {
		c.ConnectBackoff = 200 * time.Millisecond
	}
}

// Validate implements config.Validator
func (c *Config) Validate() error {
	if c.Mode != ModeStandalone && c.Mode != ModeCluster {
		return fmt.Errorf("%w: invalid mode %s (must be standalone or cluster)", ErrInvalidConfig, c.Mode)
	}
	if len(c.Addrs) == 0 {
		return fmt.Errorf("%w: addrs cannot be empty", ErrInvalidConfig)
	}
	if c.Mode == ModeStandalone && (c.DB < 0 || c.DB > 15) {
		return fmt.Errorf("%w: db must be between 0 and 15, got: %d", ErrInvalidConfig, c.DB)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size must be >= 0, got: %d", ErrInvalidConfig, c.PoolSize)
	}
	if c.MinIdleConns < 0 {
		return fmt.Errorf("%w: min_idle_conns must be >= 0, got: %d", ErrInvalidConfig, c.MinIdleConns)
	}
	if c.ConnectAttempts < 0 {
		return fmt.Errorf("%w: connect_attempts must be >= 0, got: %d", ErrInvalidConfig, c.ConnectAttempts)
	}
	return nil
}
