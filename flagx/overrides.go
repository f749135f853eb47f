package flagx

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseOverrides turns repeated "key=value" pairs into a config map. Values
// that parse as bool or integer keep that type; a comma-separated value
// becomes a list.
func ParseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q, want key=value", pair)
		}
		out[key] = parseValue(strings.TrimSpace(value))
	}
	return out, nil
}

func parseValue(s string) any {
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}
