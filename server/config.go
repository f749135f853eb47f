// Package server gin HTTP server published as the "server" component. It starts
// listening once every component is built and stops first on shutdown.
package server

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Config server section (key: server)
type Config struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"` // 0 picks a free port
	Mode             string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	HealthTimeout    time.Duration `mapstructure:"health_timeout"`
	EnableRequestLog bool          `mapstructure:"enable_request_log"`
	SkipLogPaths     []string      `mapstructure:"skip_log_paths"`
}

// DefaultConfig listens on 0.0.0.0:8080 in release mode
func DefaultConfig() Config {
	return Config{
		Host:             "0.0.0.0",
		Port:             8080,
		Mode:             gin.ReleaseMode,
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     15 * time.Second,
		HealthTimeout:    5 * time.Second,
		EnableRequestLog: true,
		SkipLogPaths:     []string{"/healthz"},
	}
}

// Addr host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate implements config.Validator
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", c.Port)
	}
	switch c.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid mode %q (must be debug, release or test)", c.Mode)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	return nil
}
