// Package auth password hashing and JWT issuance published as the "auth"
// component; revocations live in the cache component.
package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config auth section (key: auth)
type Config struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Algorithm  string        `mapstructure:"algorithm"` // HS256, HS384, HS512
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`

	Password PasswordPolicy `mapstructure:"password"`
}

// PasswordPolicy password complexity rules
type PasswordPolicy struct {
	MinLength          int      `mapstructure:"min_length"`
	MaxLength          int      `mapstructure:"max_length"`
	RequireUppercase   bool     `mapstructure:"require_uppercase"`
	RequireLowercase   bool     `mapstructure:"require_lowercase"`
	RequireDigit       bool     `mapstructure:"require_digit"`
	RequireSpecialChar bool     `mapstructure:"require_special_char"`
	Blacklist          []string `mapstructure:"blacklist"`
}

// DefaultConfig everything but the secret
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "yogan-boot"
	}
	if c.Algorithm == "" {
		c.Algorithm = "HS256"
	}
	if c.AccessTTL == 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Password.MinLength == 0 {
		c.Password.MinLength = 8
	}
	if c.Password.MaxLength == 0 {
		c.Password.MaxLength = 128
	}
}

// Validate ozzo rules; wrap with validator.Validate for a layered error
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.Algorithm, validation.Required, validation.In("HS256", "HS384", "HS512")),
		validation.Field(&c.AccessTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RefreshTTL, validation.Required, validation.Min(c.AccessTTL)),
		validation.Field(&c.BcryptCost, validation.Min(4), validation.Max(31)),
		validation.Field(&c.Password),
	)
}

// Validate implements validation.Validatable
func (p PasswordPolicy) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.MinLength, validation.Required, validation.Min(1)),
		validation.Field(&p.MaxLength, validation.Required, validation.Min(p.MinLength)),
	)
}
