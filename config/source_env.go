package config

import (
	"os"
	"strings"
)

// EnvSource reads PREFIX_ variables.
//
// Without bindings a variable maps to a key by dropping the prefix, lowercasing
// and turning "__" into ".": APP_BOOTSTRAP__FAIL_FAST -> bootstrap.fail_fast.
// Once a binding is added only bound variables are read.
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // config key -> env var
}

func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority, bindings: map[string]string{}}
}

// AddBinding maps key to one variable, e.g. ("redis.main.addr", "REDIS_ADDR");
// the prefix is added unless envKey already carries it
func (s *EnvSource) AddBinding(key, envKey string) {
	s.bindings[key] = envKey
}

func (s *EnvSource) Name() string  { return "env:" + s.prefix }
func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]any, error) {
	if len(s.bindings) > 0 {
		return s.loadBindings(), nil
	}
	out := map[string]any{}
	if s.prefix == "" {
		return out, nil
	}
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		rest, ok := strings.CutPrefix(name, s.prefix+"_")
		if !ok {
			continue
		}
		out[strings.ReplaceAll(strings.ToLower(rest), "__", ".")] = value
	}
	return out, nil
}

func (s *EnvSource) loadBindings() map[string]any {
	out := make(map[string]any, len(s.bindings))
	for key, envKey := range s.bindings {
		if s.prefix != "" && !strings.HasPrefix(envKey, s.prefix+"_") {
			envKey = s.prefix + "_" + envKey
		}
		if value := os.Getenv(envKey); value != "" {
			out[key] = value
		}
	}
	return out
}
