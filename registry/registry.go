// Package registry is the component registry and initializer of the bootstrap
// framework: components register with their dependencies and priority tier, the
// initializer builds them in dependency order, runs lifecycle hooks and tears them
// down in reverse.
package registry

import (
	"slices"
	"sort"
	"sync"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/errcode"
	"github.com/KOMKZ/go-yogan-boot/graph"
)

// Registration one registered component
type Registration struct {
	Name         string
	Factory      component.Factory
	Dependencies []string
	Priority     component.Priority
	// Seq registration sequence, the secondary sort key after Priority
	Seq int
}

// Registry name -> registration, append-only
type Registry struct {
	mu    sync.RWMutex
	regs  map[string]*Registration
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]*Registration)}
}

// Register adds a component. Empty names, nil factories and already-registered
// names are rejected; a component cannot be re-registered.
func (r *Registry) Register(name string, factory component.Factory, opts ...component.Option) error {
	if name == "" {
		return errcode.ErrInvalidRegistration.WithMsgf("component name must not be empty")
	}
	if factory == nil {
		return errcode.ErrInvalidRegistration.
			WithMsgf("component '%s' has no factory", name).
			WithData("component", name)
	}

	tag := component.NewTag(opts...)
	if !tag.Priority.Valid() {
		return errcode.ErrInvalidRegistration.
			WithMsgf("component '%s' has invalid priority %s", name, tag.Priority).
			WithData("component", name)
	}

	deps := make([]string, 0, len(tag.Dependencies))
	for _, d := range tag.Dependencies {
		if d != "" && !slices.Contains(deps, d) {
			deps = append(deps, d)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[name]; exists {
		return errcode.ErrDuplicateComponent.
			WithMsgf("component '%s' already registered", name).
			WithData("component", name)
	}

	r.regs[name] = &Registration{
		Name:         name,
		Factory:      factory,
		Dependencies: deps,
		Priority:     tag.Priority,
		Seq:          len(r.order),
	}
	r.order = append(r.order, name)
	return nil
}

// Get returns a copy of a registration
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.regs[name]
	if !ok {
		return Registration{}, false
	}
	return reg.clone(), true
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.regs[name]
	return ok
}

// Len number of registrations
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Names registered names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Registrations copies in priority order, ties kept in registration order
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	out := make([]Registration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.regs[name].clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// BuildGraph creates a fresh dependency graph: every registration is a node and
// every declared dependency an edge. Nodes are inserted by priority first so that
// independent components come out in tier order.
func (r *Registry) BuildGraph() *graph.Graph {
	regs := r.Registrations()
	g := graph.New()
	for _, reg := range regs {
		g.AddNode(reg.Name)
	}
	for _, reg := range regs {
		for _, dep := range reg.Dependencies {
			g.AddDependency(reg.Name, dep)
		}
	}
	return g
}

// PlanEntry one step of the initialization plan
type PlanEntry struct {
	Name         string
	Priority     component.Priority
	Dependencies []string
	// Registered is false for names only referenced as a dependency
	Registered bool
}

// Plan computes the initialization order without constructing anything
func (r *Registry) Plan() ([]PlanEntry, error) {
	order, err := r.BuildGraph().InitializationOrder()
	if err != nil {
		return nil, err
	}

	plan := make([]PlanEntry, 0, len(order))
	for _, name := range order {
		reg, ok := r.Get(name)
		if !ok {
			plan = append(plan, PlanEntry{Name: name})
			continue
		}
		plan = append(plan, PlanEntry{
			Name:         name,
			Priority:     reg.Priority,
			Dependencies: reg.Dependencies,
			Registered:   true,
		})
	}
	return plan, nil
}

func (reg *Registration) clone() Registration {
	c := *reg
	c.Dependencies = slices.Clone(reg.Dependencies)
	return c
}
