package errcode

import (
	"fmt"
	"sync"
)

// Registry error code table (prevents code collisions between modules)
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

// NewRegistry creates an empty code registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

var globalRegistry = NewRegistry()

// Register records err in the global registry and returns it unchanged.
// Panics when the code is already taken by a different module:msgKey.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records err in r
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf("error code conflict: code %d is already registered as %s, cannot register as %s",
				err.Code(), existing, key))
		}
		return err
	}

	r.codes[err.Code()] = key
	return err
}

// Lookup returns the module:msgKey for code
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.codes[code]
	return key, ok
}

// Count number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// LookupCode queries the global registry
func LookupCode(code int) (string, bool) {
	return globalRegistry.Lookup(code)
}
