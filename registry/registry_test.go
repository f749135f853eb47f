package registry

import (
	"context"
	"testing"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constFactory(v any) component.Factory {
	return func(context.Context, component.Resolver) (any, error) {
		return v, nil
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("config", constFactory(1), component.WithPriority(component.PriorityConfig)))
	require.NoError(t, r.Register("cache", constFactory(2),
		component.DependsOn("config", "redis", "config", ""),
		component.WithPriority(component.PriorityCache)))

	reg, ok := r.Get("cache")
	require.True(t, ok)
	assert.Equal(t, "cache", reg.Name)
	assert.Equal(t, []string{"config", "redis"}, reg.Dependencies)
	assert.Equal(t, component.PriorityCache, reg.Priority)
	assert.Equal(t, 1, reg.Seq)

	assert.True(t, r.Has("config"))
	assert.False(t, r.Has("redis"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"config", "cache"}, r.Names())
}

func TestRegistry_DefaultPriority(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("svc", constFactory(nil)))

	reg, _ := r.Get("svc")
	assert.Equal(t, component.PriorityService, reg.Priority)
	assert.Empty(t, reg.Dependencies)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", constFactory(1)))

	tests := []struct {
		name    string
		reg     func() error
		wantErr *errcode.LayeredError
	}{
		{"empty name", func() error { return r.Register("", constFactory(1)) }, errcode.ErrInvalidRegistration},
		{"nil factory", func() error { return r.Register("b", nil) }, errcode.ErrInvalidRegistration},
		{"bad priority", func() error {
			return r.Register("c", constFactory(1), component.WithPriority(component.Priority(99)))
		}, errcode.ErrInvalidRegistration},
		{"duplicate", func() error { return r.Register("a", constFactory(2)) }, errcode.ErrDuplicateComponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", constFactory(1), component.DependsOn("b")))

	reg, _ := r.Get("a")
	reg.Dependencies[0] = "mutated"

	again, _ := r.Get("a")
	assert.Equal(t, []string{"b"}, again.Dependencies)
}

func TestRegistry_RegistrationsPriorityOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("api", constFactory(1), component.WithPriority(component.PriorityAPI)))
	require.NoError(t, r.Register("db", constFactory(1), component.WithPriority(component.PriorityDB)))
	require.NoError(t, r.Register("svc-b", constFactory(1)))
	require.NoError(t, r.Register("core", constFactory(1), component.WithPriority(component.PriorityCore)))
	require.NoError(t, r.Register("svc-a", constFactory(1)))

	var names []string
	for _, reg := range r.Registrations() {
		names = append(names, reg.Name)
	}
	assert.Equal(t, []string{"core", "db", "svc-b", "svc-a", "api"}, names)
}

func TestRegistry_BuildGraph(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("server", constFactory(1),
		component.DependsOn("auth"), component.WithPriority(component.PriorityAPI)))
	require.NoError(t, r.Register("config", constFactory(1), component.WithPriority(component.PriorityConfig)))

	g := r.BuildGraph()
	assert.Equal(t, 3, g.Len())

	node, ok := g.Node("server")
	require.True(t, ok)
	assert.Equal(t, []string{"auth"}, node.Dependencies())

	order, err := g.InitializationOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "auth", "server"}, order)
}

func TestRegistry_Plan(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("cache", constFactory(1),
		component.DependsOn("redis"), component.WithPriority(component.PriorityCache)))
	require.NoError(t, r.Register("config", constFactory(1), component.WithPriority(component.PriorityConfig)))

	plan, err := r.Plan()
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, PlanEntry{Name: "config", Priority: component.PriorityConfig, Dependencies: []string{}, Registered: true}, plan[0])
	assert.Equal(t, PlanEntry{Name: "redis"}, plan[1])
	assert.Equal(t, "cache", plan[2].Name)
	assert.True(t, plan[2].Registered)
}

func TestRegistry_PlanCycle(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", constFactory(1), component.DependsOn("b")))
	require.NoError(t, r.Register("b", constFactory(1), component.DependsOn("a")))

	_, err := r.Plan()
	assert.ErrorIs(t, err, errcode.ErrCycleDetected)
}
