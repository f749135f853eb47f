package registry

import (
	"context"
	"sync"
)

// Future result of InitializeAllAsync
type Future struct {
	done      chan struct{}
	once      sync.Once
	instances map[string]any
	err       error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(instances map[string]any, err error) {
	f.once.Do(func() {
		f.instances = instances
		f.err = err
		close(f.done)
	})
}

// Done is closed when the run finishes
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the run finishes or ctx ends. A ctx error does not stop the
// run; it keeps going in the background and Wait may be called again.
func (f *Future) Wait(ctx context.Context) (map[string]any, error) {
	select {
	case <-f.done:
		return f.instances, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
