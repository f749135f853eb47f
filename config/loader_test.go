package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "config.yaml", `
app:
  name: boot
bootstrap:
  fail_fast: false
  modules: [database, redis]
redis:
  main:
    addr: 127.0.0.1:6379
`)
	override := writeFile(t, dir, "prod.yaml", `
bootstrap:
  fail_fast: true
`)

	loader := NewLoader()
	// added out of order on purpose
	loader.AddSource(NewMapSource("overrides", 100, map[string]any{"redis.main.addr": "redis:6379"}))
	loader.AddSource(NewFileSource(override, 20))
	loader.AddSource(NewFileSource(base, 10))
	require.NoError(t, loader.Load())

	assert.Equal(t, "boot", loader.GetString("app.name"))
	assert.True(t, loader.GetBool("bootstrap.fail_fast"))
	assert.Equal(t, "redis:6379", loader.GetString("redis.main.addr"))
	assert.Equal(t, []string{"database", "redis"}, loader.GetStringSlice("bootstrap.modules"))
	assert.True(t, loader.IsSet("app.name"))
	assert.False(t, loader.IsSet("app.missing"))
	assert.Equal(t, []string{base, override}, loader.GetLoadedFiles())
}

func TestLoader_MissingFileIsEmpty(t *testing.T) {
	loader := NewLoader()
	loader.AddSource(NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"), 10))

	require.NoError(t, loader.Load())
	assert.Empty(t, loader.AllSettings())
	assert.Empty(t, loader.GetLoadedFiles())
}

func TestLoader_InvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "app: [unclosed")

	loader := NewLoader()
	loader.AddSource(NewFileSource(path, 10))
	err := loader.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load source file:")
}

func TestLoader_UnmarshalKey(t *testing.T) {
	type redisConfig struct {
		Addr     string `mapstructure:"addr"`
		DB       int    `mapstructure:"db"`
		PoolSize int    `mapstructure:"pool_size"`
	}

	loader := NewLoader()
	loader.AddSource(NewMapSource("defaults", 1, map[string]any{
		"redis.main.addr":      "localhost:6379",
		"redis.main.db":        2,
		"redis.main.pool_size": "20",
	}))
	require.NoError(t, loader.Load())

	var cfgs map[string]redisConfig
	require.NoError(t, loader.UnmarshalKey("redis", &cfgs))
	assert.Equal(t, redisConfig{Addr: "localhost:6379", DB: 2, PoolSize: 20}, cfgs["main"])

	var untouched redisConfig
	untouched.Addr = "keep"
	require.NoError(t, loader.UnmarshalKey("missing", &untouched))
	assert.Equal(t, "keep", untouched.Addr)
}

func TestLoader_Unmarshal(t *testing.T) {
	type appConfig struct {
		App struct {
			Name string `mapstructure:"name"`
		} `mapstructure:"app"`
	}

	loader := NewLoader()
	loader.AddSource(NewMapSource("defaults", 1, map[string]any{"app": map[string]any{"name": "nested"}}))
	require.NoError(t, loader.Load())

	var cfg appConfig
	require.NoError(t, loader.Unmarshal(&cfg))
	assert.Equal(t, "nested", cfg.App.Name)
	assert.NotNil(t, loader.GetViper())
}

func TestLoader_Reload(t *testing.T) {
	src := NewMapSource("defaults", 1, map[string]any{"app.name": "v1"})
	loader := NewLoader()
	loader.AddSource(src)
	require.NoError(t, loader.Load())
	assert.Equal(t, "v1", loader.GetString("app.name"))

	src.Set("app.name", "v2")
	require.NoError(t, loader.Reload())
	assert.Equal(t, "v2", loader.GetString("app.name"))
}

func TestEnvSource(t *testing.T) {
	t.Setenv("BOOTTEST_BOOTSTRAP__FAIL_FAST", "true")
	t.Setenv("BOOTTEST_SERVER__PORT", "9090")

	data, err := NewEnvSource("BOOTTEST", 50).Load()
	require.NoError(t, err)
	assert.Equal(t, "true", data["bootstrap.fail_fast"])
	assert.Equal(t, "9090", data["server.port"])

	loader := NewLoader()
	loader.AddSource(NewEnvSource("BOOTTEST", 50))
	require.NoError(t, loader.Load())
	assert.True(t, loader.GetBool("bootstrap.fail_fast"))
	assert.Equal(t, 9090, loader.GetInt("server.port"))
}

func TestEnvSource_Bindings(t *testing.T) {
	t.Setenv("BOOTTEST_REDIS_ADDR", "redis:6379")
	t.Setenv("BOOTTEST_IGNORED", "x")

	src := NewEnvSource("BOOTTEST", 50)
	src.AddBinding("redis.main.addr", "REDIS_ADDR")
	data, err := src.Load()

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"redis.main.addr": "redis:6379"}, data)
	assert.Equal(t, "env:BOOTTEST", src.Name())
	assert.Equal(t, 50, src.Priority())
}

func TestEnvSource_NoPrefix(t *testing.T) {
	data, err := NewEnvSource("", 50).Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLoaderBuilder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  port: 8080\napp:\n  name: base\n")
	writeFile(t, dir, "test.yaml", "app:\n  name: from-test\n")
	t.Setenv("APP_ENV", "test")
	t.Setenv("BUILDERTEST_SERVER__PORT", "8181")

	loader, err := NewLoaderBuilder().
		WithConfigPath(dir).
		WithEnvPrefix("BUILDERTEST").
		WithDefaults(map[string]any{"bootstrap.fail_fast": false, "app.name": "default"}).
		WithOverrides(map[string]any{"bootstrap.fail_fast": true}).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "from-test", loader.GetString("app.name"))
	assert.Equal(t, 8181, loader.GetInt("server.port"))
	assert.True(t, loader.GetBool("bootstrap.fail_fast"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	assert.Equal(t, "dev", GetEnv())

	t.Setenv("ENV", "staging")
	assert.Equal(t, "staging", GetEnv())

	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "prod", GetEnv())
}

type stubValidator struct{ err error }

func (s stubValidator) Validate() error { return s.err }

func TestValidateAll(t *testing.T) {
	assert.NoError(t, ValidateAll(stubValidator{}, stubValidator{}))

	first, second := errors.New("first"), errors.New("second")
	err := ValidateAll(stubValidator{err: first}, stubValidator{}, stubValidator{err: second})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

type portConfig struct {
	Port int `mapstructure:"port"`
}

func (c *portConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestLoadSection(t *testing.T) {
	loader, err := NewLoaderBuilder().WithOverrides(map[string]any{"http.port": 8080}).Build()
	require.NoError(t, err)

	cfg := portConfig{Port: 1}
	require.NoError(t, LoadSection(loader, "http", &cfg))
	assert.Equal(t, 8080, cfg.Port)

	cfg = portConfig{}
	assert.ErrorContains(t, LoadSection(loader, "admin", &cfg), "admin: port must be positive")
}
