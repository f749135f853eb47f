package config

// ConfigSource a configuration data source; see the Priority constants for
// the order LoaderBuilder uses
type ConfigSource interface {
	// Name for logs and debugging
	Name() string

	// Priority higher values override lower ones
	Priority() int

	// Load returns dot-separated keys, such as "bootstrap.fail_fast"
	Load() (map[string]any, error)
}

// MapSource static key/value source (defaults, --set overrides)
type MapSource struct {
	name     string
	priority int
	values   map[string]any
}

// NewMapSource creates a source from dot-separated keys
func NewMapSource(name string, priority int, values map[string]any) *MapSource {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, priority: priority, values: copied}
}

// Name source name
func (s *MapSource) Name() string {
	return "map:" + s.name
}

// Priority source priority
func (s *MapSource) Priority() int {
	return s.priority
}

// Set adds or replaces one key
func (s *MapSource) Set(key string, value any) {
	s.values[key] = value
}

// Load returns nested maps flattened to dot keys
func (s *MapSource) Load() (map[string]any, error) {
	out := map[string]any{}
	flattenInto(out, "", s.values)
	return out, nil
}
