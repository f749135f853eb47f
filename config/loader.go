package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Loader merges several sources by priority and exposes them through viper
type Loader struct {
	mu          sync.RWMutex
	sources     []ConfigSource
	merged      map[string]any
	v           *viper.Viper
	loadedFiles []string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		merged: make(map[string]any),
		v:      viper.New(),
	}
}

// AddSource adds a data source; takes effect on the next Load
func (l *Loader) AddSource(source ConfigSource) {
	l.mu.Lock()
	l.sources = append(l.sources, source)
	l.mu.Unlock()
}

// Load loads and merges all sources, low priority first
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]any)
	var files []string
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok && len(data) > 0 {
			files = append(files, fs.path)
		}
		for key, value := range data {
			merged[strings.ToLower(key)] = value
		}
	}

	v := viper.New()
	for key, value := range unflattenMap(merged) {
		v.Set(key, value)
	}

	l.merged = merged
	l.loadedFiles = files
	l.v = v
	return nil
}

// Reload re-reads every source
func (l *Loader) Reload() error {
	return l.Load()
}

// unflattenMap {"redis.main.addr": "x"} -> {"redis": {"main": {"addr": "x"}}}
func unflattenMap(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	// shorter keys first so deeper keys win over scalar parents
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) < len(keys[j]) })

	result := make(map[string]any)
	for _, key := range keys {
		setNestedValue(result, key, flat[key])
	}
	return result
}

func setNestedValue(m map[string]any, key string, value any) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return
	}

	current := m
	for _, k := range parts[:len(parts)-1] {
		nested, ok := current[k].(map[string]any)
		if !ok {
			nested = make(map[string]any)
			current[k] = nested
		}
		current = nested
	}
	current[parts[len(parts)-1]] = value
}

func splitKey(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool { return r == '.' })
}

func (l *Loader) viper() *viper.Viper {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.v
}

// Unmarshal decodes the whole configuration into v (mapstructure tags)
func (l *Loader) Unmarshal(v any) error {
	return l.viper().Unmarshal(v)
}

// UnmarshalKey decodes one subtree into v; a missing key leaves v untouched
func (l *Loader) UnmarshalKey(key string, v any) error {
	return l.viper().UnmarshalKey(key, v)
}

// Get raw value
func (l *Loader) Get(key string) any {
	return l.viper().Get(key)
}

// GetString string value
func (l *Loader) GetString(key string) string {
	return l.viper().GetString(key)
}

// GetInt integer value
func (l *Loader) GetInt(key string) int {
	return l.viper().GetInt(key)
}

// GetBool boolean value ("true"/"1" from env are accepted)
func (l *Loader) GetBool(key string) bool {
	return l.viper().GetBool(key)
}

// GetStringSlice list value; whitespace-separated strings are split
func (l *Loader) GetStringSlice(key string) []string {
	return l.viper().GetStringSlice(key)
}

// IsSet reports whether a key has a value
func (l *Loader) IsSet(key string) bool {
	return l.viper().IsSet(key)
}

// AllSettings nested view of the merged configuration
func (l *Loader) AllSettings() map[string]any {
	return l.viper().AllSettings()
}

// GetLoadedFiles files that contributed values
func (l *Loader) GetLoadedFiles() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.loadedFiles...)
}

// GetViper underlying viper instance
func (l *Loader) GetViper() *viper.Viper {
	return l.viper()
}
