package application

import (
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppConfig framework-level settings; components read their own sections
type AppConfig struct {
	App       AppInfo         `mapstructure:"app"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// AppInfo identity reported in logs, telemetry and /healthz
type AppInfo struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// BootstrapConfig drives initialization
type BootstrapConfig struct {
	// FailFast aborts startup on the first failure instead of degrading
	FailFast bool `mapstructure:"fail_fast"`
	// Async also awaits AsyncStarter components (cache warmup)
	Async bool `mapstructure:"async"`
	// Modules catalog entries to load, by path or short name; empty loads all
	Modules         []string      `mapstructure:"modules"`
	StartupTimeout  time.Duration `mapstructure:"startup_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultAppConfig fail-fast synchronous startup of every module
func DefaultAppConfig() AppConfig {
	return AppConfig{
		App: AppInfo{Name: "yogan-boot"},
		Bootstrap: BootstrapConfig{
			FailFast:        true,
			StartupTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}

// Validate ozzo rules for both sections
func (c AppConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.App),
		validation.Field(&c.Bootstrap),
	)
}

// Validate implements validation.Validatable
func (a AppInfo) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
	)
}

// Validate implements validation.Validatable
func (b BootstrapConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.StartupTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&b.ShutdownTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&b.Modules, validation.Each(validation.Required)),
	)
}

// loadAppConfig decodes app and bootstrap over the defaults
func loadAppConfig(loader component.ConfigLoader) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if err := loader.UnmarshalKey("app", &cfg.App); err != nil {
		return cfg, fmt.Errorf("read app config: %w", err)
	}
	if err := loader.UnmarshalKey("bootstrap", &cfg.Bootstrap); err != nil {
		return cfg, fmt.Errorf("read bootstrap config: %w", err)
	}
	if err := validator.Validate("application", cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
