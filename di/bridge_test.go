package di

import (
	"context"
	"testing"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/registry"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ greeting string }

func TestBridge_PublishAndInvoke(t *testing.T) {
	b := NewBridge(nil)
	require.NotNil(t, b.Injector())

	names := b.Publish(map[string]any{
		"greeter": &greeter{greeting: "hello"},
		"count":   42,
	})
	assert.Equal(t, []string{"count", "greeter"}, names)
	assert.Equal(t, []string{"count", "greeter"}, b.Published())

	g, err := Invoke[*greeter](b.Injector(), "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.greeting)
	assert.Equal(t, 42, MustInvoke[int](b.Injector(), "count"))
}

func TestBridge_PublishTwice(t *testing.T) {
	b := NewBridge(do.New())
	assert.Equal(t, []string{"a"}, b.Publish(map[string]any{"a": 1}))

	assert.Equal(t, []string{"b"}, b.Publish(map[string]any{"a": 2, "b": 3}))
	assert.Equal(t, 1, MustInvoke[int](b.Injector(), "a"))
}

func TestInvoke_Errors(t *testing.T) {
	b := NewBridge(nil)
	b.Publish(map[string]any{"count": 42})

	_, err := Invoke[int](b.Injector(), "missing")
	assert.ErrorContains(t, err, `component "missing" not published`)

	_, err = Invoke[string](b.Injector(), "count")
	assert.ErrorContains(t, err, "has type int")

	assert.Panics(t, func() { MustInvoke[string](b.Injector(), "count") })
}

func TestProvideValue(t *testing.T) {
	b := NewBridge(nil)
	ProvideValue(b, &greeter{greeting: "hi"})

	g, err := do.Invoke[*greeter](b.Injector())
	require.NoError(t, err)
	assert.Equal(t, "hi", g.greeting)
}

func TestBridge_PublishFrom(t *testing.T) {
	boot := registry.NewInitializer(registry.WithRegistry(registry.NewRegistry()))
	boot.MustRegisterComponent("greeter", func(context.Context, component.Resolver) (any, error) {
		return &greeter{greeting: "from registry"}, nil
	})
	boot.MustRegisterComponent("broken", func(context.Context, component.Resolver) (any, error) {
		return nil, assert.AnError
	})
	_, err := boot.InitializeAll(context.Background(), false)
	require.NoError(t, err)

	b := NewBridge(nil)
	assert.Equal(t, []string{"greeter"}, b.PublishFrom(boot))

	g := MustInvoke[*greeter](b.Injector(), "greeter")
	assert.Equal(t, "from registry", g.greeting)
}
