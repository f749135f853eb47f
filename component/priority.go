package component

import (
	"fmt"
	"strings"
)

// Priority coarse initialization tier
//
// Lower value initializes earlier when nothing else decides.
// A priority never creates or overrides a dependency edge.
type Priority int

const (
	PriorityCore Priority = iota
	PriorityConfig
	PriorityDB
	PriorityCache
	PriorityAuth
	PriorityErrorHandling
	PriorityService
	PriorityAPI
)

var priorityNames = [...]string{
	PriorityCore:          "CORE",
	PriorityConfig:        "CONFIG",
	PriorityDB:            "DB",
	PriorityCache:         "CACHE",
	PriorityAuth:          "AUTH",
	PriorityErrorHandling: "ERROR_HANDLING",
	PriorityService:       "SERVICE",
	PriorityAPI:           "API",
}

// String tier name
func (p Priority) String() string {
	if p.Valid() {
		return priorityNames[p]
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Valid reports whether p is one of the declared tiers
func (p Priority) Valid() bool {
	return p >= PriorityCore && p <= PriorityAPI
}

// Priorities returns every tier in initialization order
func Priorities() []Priority {
	out := make([]Priority, 0, len(priorityNames))
	for p := PriorityCore; p <= PriorityAPI; p++ {
		out = append(out, p)
	}
	return out
}

// ParsePriority parses a tier name (case-insensitive)
func ParsePriority(s string) (Priority, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range priorityNames {
		if n == name {
			return Priority(p), nil
		}
	}
	return PriorityService, fmt.Errorf("unknown priority tier %q", s)
}
