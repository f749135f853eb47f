package component

// Tag carries the registration metadata of a component.
// It is the marker the module scanner looks for.
type Tag struct {
	// Name overrides the member name when set
	Name         string
	Dependencies []string
	Priority     Priority
}

// Option configures a Tag
type Option func(*Tag)

// Named sets an explicit component name
func Named(name string) Option {
	return func(t *Tag) {
		t.Name = name
	}
}

// DependsOn declares components that must be initialized first
func DependsOn(names ...string) Option {
	return func(t *Tag) {
		t.Dependencies = append(t.Dependencies, names...)
	}
}

// WithPriority sets the priority tier (default SERVICE)
func WithPriority(p Priority) Option {
	return func(t *Tag) {
		t.Priority = p
	}
}

// NewTag builds a Tag with the SERVICE default applied
func NewTag(opts ...Option) *Tag {
	t := &Tag{Priority: PriorityService}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
