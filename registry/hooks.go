package registry

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/component"
)

type namedHook struct {
	name string
	fn   component.Hook
}

type namedAsyncHook struct {
	name string
	fn   component.AsyncHook
}

// RegisterInitializationHook appends a hook run after every component is built,
// in registration order
func (i *Initializer) RegisterInitializationHook(hook component.Hook) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.initHooks = append(i.initHooks, namedHook{
		name: fmt.Sprintf("init#%d", len(i.initHooks)+1),
		fn:   hook,
	})
}

// RegisterAsyncInitializationHook appends a hook awaited after the synchronous
// phase of InitializeAllAsync; hooks are awaited one at a time
func (i *Initializer) RegisterAsyncInitializationHook(hook component.AsyncHook) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.asyncHooks = append(i.asyncHooks, namedAsyncHook{
		name: fmt.Sprintf("async#%d", len(i.asyncHooks)+1),
		fn:   hook,
	})
}

// RegisterShutdownHook appends a hook; Shutdown runs them in reverse order
func (i *Initializer) RegisterShutdownHook(hook component.Hook) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.shutdownHooks = append(i.shutdownHooks, namedHook{
		name: fmt.Sprintf("shutdown#%d", len(i.shutdownHooks)+1),
		fn:   hook,
	})
}

// wireLifecycle turns Starter / AsyncStarter / Stopper instances into hooks.
// An instance implementing both Starter and AsyncStarter is started synchronously.
func (i *Initializer) wireLifecycle(name string, instance any) {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch s := instance.(type) {
	case component.Starter:
		i.initHooks = append(i.initHooks, namedHook{name: name + ".Start", fn: s.Start})
	case component.AsyncStarter:
		i.asyncHooks = append(i.asyncHooks, namedAsyncHook{name: name + ".StartAsync", fn: s.StartAsync})
	}

	if s, ok := instance.(component.Stopper); ok {
		i.shutdownHooks = append(i.shutdownHooks, namedHook{name: name + ".Stop", fn: s.Stop})
	}
}

// nextInitHook advances the init cursor; hooks that already ran are never re-run
func (i *Initializer) nextInitHook() (namedHook, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.initCursor >= len(i.initHooks) {
		return namedHook{}, false
	}
	h := i.initHooks[i.initCursor]
	i.initCursor++
	return h, true
}

func (i *Initializer) nextAsyncHook() (namedAsyncHook, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.asyncCursor >= len(i.asyncHooks) {
		return namedAsyncHook{}, false
	}
	h := i.asyncHooks[i.asyncCursor]
	i.asyncCursor++
	return h, true
}

// callHook runs a hook inside its own failure boundary
func callHook(ctx context.Context, h component.Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return h(ctx)
}

// awaitHook starts an async hook and blocks until it reports.
// A nil or closed channel counts as success.
func awaitHook(ctx context.Context, h component.AsyncHook) (err error) {
	var done <-chan error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r}
			}
		}()
		done = h(ctx)
	}()
	if err != nil || done == nil {
		return err
	}
	return <-done
}
