// Package di exposes initialized components to samber/do so code written
// against an injector can consume what the bootstrap built.
package di

import (
	"fmt"
	"sort"
	"sync"

	"github.com/KOMKZ/go-yogan-boot/registry"
	"github.com/samber/do/v2"
)

// Bridge publishes instances of an Initializer into a do root scope
//
//	instances, err := boot.InitializeAll(ctx, true)
//	bridge := di.NewBridge(do.New())
//	bridge.Publish(instances)
//	db, err := di.Invoke[*database.Manager](bridge.Injector(), "database")
type Bridge struct {
	injector *do.RootScope

	mu        sync.Mutex
	published map[string]bool
}

// NewBridge wraps injector; a nil injector gets a fresh root scope
func NewBridge(injector *do.RootScope) *Bridge {
	if injector == nil {
		injector = do.New()
	}
	return &Bridge{injector: injector, published: make(map[string]bool)}
}

// Injector underlying root scope
func (b *Bridge) Injector() *do.RootScope {
	return b.injector
}

// Publish registers each instance under its component name. Names already
// published are left untouched, so publishing after a second run is safe.
// Returns the newly published names, sorted.
func (b *Bridge) Publish(instances map[string]any) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(instances))
	for name := range instances {
		if !b.published[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		do.ProvideNamedValue(b.injector, name, instances[name])
		b.published[name] = true
	}
	return names
}

// PublishFrom publishes every live instance of boot
func (b *Bridge) PublishFrom(boot *registry.Initializer) []string {
	return b.Publish(boot.Instances())
}

// Published names known to the bridge, sorted
func (b *Bridge) Published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.published))
	for name := range b.published {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProvideValue registers value by type for do.Invoke[T] consumers
func ProvideValue[T any](b *Bridge, value T) {
	do.ProvideValue(b.injector, value)
}

// Invoke resolves a published component and asserts its type
func Invoke[T any](injector do.Injector, name string) (T, error) {
	var zero T
	v, err := do.InvokeNamed[any](injector, name)
	if err != nil {
		return zero, fmt.Errorf("component %q not published: %w", name, err)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("component %q has type %T, want %T", name, v, zero)
	}
	return typed, nil
}

// MustInvoke is Invoke that panics
func MustInvoke[T any](injector do.Injector, name string) T {
	v, err := Invoke[T](injector, name)
	if err != nil {
		panic(err)
	}
	return v
}
