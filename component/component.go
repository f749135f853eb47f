// Package component defines the contract between the bootstrap framework and the
// subsystems it brings up.
// This is the lowest-level package; it depends on no other package of the module.
package component

import (
	"context"
	"fmt"
)

// Factory builds one component.
//
// deps only exposes instances that were constructed earlier in the same process,
// which always includes every declared dependency.
type Factory func(ctx context.Context, deps Resolver) (any, error)

// Hook is a lifecycle callback not tied to a single component.
type Hook func(ctx context.Context) error

// AsyncHook starts work and returns a channel that yields its result.
// The channel must deliver exactly one value or be closed.
type AsyncHook func(ctx context.Context) <-chan error

// Async adapts a blocking function into an AsyncHook running on its own goroutine
func Async(fn func(ctx context.Context) error) AsyncHook {
	return func(ctx context.Context) <-chan error {
		done := make(chan error, 1)
		go func() {
			done <- fn(ctx)
		}()
		return done
	}
}

// Resolver gives access to already-initialized components by name
type Resolver interface {
	Lookup(name string) (any, bool)
}

// Lookup fetches a component and asserts its type
//
// Example:
//
//	mgr, err := component.Lookup[*redis.Manager](deps, component.NameRedis)
func Lookup[T any](r Resolver, name string) (T, error) {
	var zero T
	if r == nil {
		return zero, fmt.Errorf("component '%s' requested without a resolver", name)
	}

	v, ok := r.Lookup(name)
	if !ok {
		return zero, fmt.Errorf("component '%s' is not initialized", name)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("component '%s' has type %T, expected %T", name, v, zero)
	}
	return typed, nil
}

// Starter is implemented by instances that must start serving once every component
// is built (servers, schedulers). Start runs as a synchronous initialization hook.
type Starter interface {
	Start(ctx context.Context) error
}

// AsyncStarter is the asynchronous counterpart of Starter; it only runs in
// asynchronous initialization.
type AsyncStarter interface {
	StartAsync(ctx context.Context) <-chan error
}

// Stopper is implemented by instances holding resources.
// Stop runs as a shutdown hook and must be safe to call once during drain.
type Stopper interface {
	Stop(ctx context.Context) error
}
