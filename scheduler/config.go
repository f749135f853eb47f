// Package scheduler gocron scheduler published as the "scheduler" component.
// Jobs registered during initialization start running once every component is
// built.
package scheduler

import (
	"fmt"
	"time"
)

// Config scheduler section (key: scheduler)
type Config struct {
	// HeartbeatInterval logs a heartbeat job at this interval; 0 disables it
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// ShutdownTimeout wait for running jobs on stop
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Location time zone of cron expressions, e.g. "Asia/Shanghai"
	Location string `mapstructure:"location"`
}

// DefaultConfig no heartbeat, 30s shutdown, local time
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout: 30 * time.Second,
		Location:        "Local",
	}
}

// Validate implements config.Validator
func (c Config) Validate() error {
	if c.HeartbeatInterval < 0 {
		return fmt.Errorf("heartbeat_interval must be >= 0, got: %s", c.HeartbeatInterval)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be > 0, got: %s", c.ShutdownTimeout)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return nil
}
