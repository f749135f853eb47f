package cache

import "time"

// Config cache section (key: cache)
type Config struct {
	// Size capacity of the in-process layer
	Size int `mapstructure:"size"`

	// TTL default expiration; in-process entries never outlive it
	TTL time.Duration `mapstructure:"ttl"`

	// RedisInstance adds a redis layer behind the in-process one when set
	RedisInstance string `mapstructure:"redis_instance"`

	// KeyPrefix prepended to redis keys
	KeyPrefix string `mapstructure:"key_prefix"`

	// Preload entries written during warm-up
	Preload map[string]any `mapstructure:"preload"`
}

// DefaultConfig in-process only
func DefaultConfig() Config {
	return Config{
		Size:      10000,
		TTL:       5 * time.Minute,
		KeyPrefix: "cache:",
	}
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Size == 0 {
		c.Size = 10000
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
}

// Validate implements config.Validator
func (c *Config) Validate() error {
	if c.Size < 0 {
		return ErrConfigInvalid.WithMsgf("size must be >= 0, got: %d", c.Size)
	}
	if c.TTL < 0 {
		return ErrConfigInvalid.WithMsgf("ttl must be >= 0, got: %s", c.TTL)
	}
	return nil
}
