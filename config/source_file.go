package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// FileSource one config file in any format viper reads (yaml, json, toml).
// A missing file loads as empty so per-environment overlays stay optional.
type FileSource struct {
	path     string
	priority int
}

func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

func (s *FileSource) Name() string  { return "file:" + s.path }
func (s *FileSource) Priority() int { return s.priority }
func (s *FileSource) Path() string  { return s.path }

func (s *FileSource) Load() (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}
	out := map[string]any{}
	flattenInto(out, "", v.AllSettings())
	return out, nil
}

// flattenInto writes {"redis": {"main": {"addr": "x"}}} as out["redis.main.addr"] = "x";
// empty maps are kept as values
func flattenInto(out map[string]any, prefix string, data map[string]any) {
	for key, value := range data {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = value
	}
}
