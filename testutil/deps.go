// Package testutil helpers shared by package tests: a map-backed resolver with
// config and logger components, miniredis and sqlite helpers.
package testutil

import (
	"testing"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/config"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/stretchr/testify/require"
)

// Resolver map-backed component.Resolver
type Resolver map[string]any

// Lookup implements component.Resolver
func (r Resolver) Lookup(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// With returns a copy with one more component
func (r Resolver) With(name string, instance any) Resolver {
	out := make(Resolver, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[name] = instance
	return out
}

// NewConfig loads a config.Loader from dot-separated keys
//
//	loader := testutil.NewConfig(t, map[string]any{"redis.main.addr": mr.Addr()})
func NewConfig(t testing.TB, values map[string]any) *config.Loader {
	t.Helper()
	loader := config.NewLoader()
	loader.AddSource(config.NewMapSource("test", 1, values))
	require.NoError(t, loader.Load())
	return loader
}

// NewLogManager console-less logger manager closed on cleanup
func NewLogManager(t testing.TB) *logger.Manager {
	t.Helper()
	m := logger.NewManager(logger.ManagerConfig{Level: "debug"})
	t.Cleanup(m.CloseAll)
	return m
}

// NewDeps resolver holding the config and logger components
func NewDeps(t testing.TB, values map[string]any) Resolver {
	t.Helper()
	return Resolver{
		component.NameConfig: NewConfig(t, values),
		component.NameLogger: NewLogManager(t),
	}
}
