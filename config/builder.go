package config

import (
	"cmp"
	"os"
	"path/filepath"
)

// Priorities of the sources LoaderBuilder installs
const (
	PriorityDefaults  = 1
	PriorityBaseFile  = 10
	PriorityEnvFile   = 20
	PriorityEnvVars   = 50
	PriorityOverrides = 100
)

// LoaderBuilder assembles defaults, <dir>/config.yaml, <dir>/<env>.yaml,
// PREFIX_ variables and overrides, lowest to highest priority
type LoaderBuilder struct {
	configPath string
	envPrefix  string
	defaults   map[string]any
	overrides  map[string]any
}

func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{}
}

// WithConfigPath directory holding config.yaml and <env>.yaml
func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

// WithEnvPrefix e.g. "APP"
func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

func (b *LoaderBuilder) WithDefaults(defaults map[string]any) *LoaderBuilder {
	b.defaults = defaults
	return b
}

// WithOverrides values from the command line (--set)
func (b *LoaderBuilder) WithOverrides(overrides map[string]any) *LoaderBuilder {
	b.overrides = overrides
	return b
}

func (b *LoaderBuilder) Build() (*Loader, error) {
	var sources []ConfigSource
	if len(b.defaults) > 0 {
		sources = append(sources, NewMapSource("defaults", PriorityDefaults, b.defaults))
	}
	if b.configPath != "" {
		sources = append(sources,
			NewFileSource(filepath.Join(b.configPath, "config.yaml"), PriorityBaseFile),
			NewFileSource(filepath.Join(b.configPath, GetEnv()+".yaml"), PriorityEnvFile))
	}
	if b.envPrefix != "" {
		sources = append(sources, NewEnvSource(b.envPrefix, PriorityEnvVars))
	}
	if len(b.overrides) > 0 {
		sources = append(sources, NewMapSource("overrides", PriorityOverrides, b.overrides))
	}

	loader := NewLoader()
	for _, src := range sources {
		loader.AddSource(src)
	}
	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv deployment environment: APP_ENV, then ENV, then "dev"
func GetEnv() string {
	return cmp.Or(os.Getenv("APP_ENV"), os.Getenv("ENV"), "dev")
}
