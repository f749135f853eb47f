package registry

import (
	"slices"
	"time"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/graph"
)

// Report outcome of one initialization run
type Report struct {
	RunID     string
	Async     bool
	FailFast  bool
	StartedAt time.Time
	Elapsed   time.Duration

	// Order computed initialization order, including unregistered names
	Order []string
	// Initialized components built in this run, in build order
	Initialized []string
	// Reused components built by an earlier run and returned from cache
	Reused []string
	// Failed component -> factory error
	Failed map[string]error
	// Skipped component -> dependencies that were not available
	Skipped map[string][]string
	// Unregistered names referenced as dependencies only
	Unregistered []string
	Durations    map[string]time.Duration
	// Tiers registered names of Order grouped by priority
	Tiers      map[component.Priority][]string
	HookErrors []error
	// Err the error returned to the caller, nil on a completed run
	Err error
}

func newReport(runID string, async, failFast bool) *Report {
	return &Report{
		RunID:     runID,
		Async:     async,
		FailFast:  failFast,
		StartedAt: time.Now(),
		Failed:    make(map[string]error),
		Skipped:   make(map[string][]string),
		Durations: make(map[string]time.Duration),
		Tiers:     make(map[component.Priority][]string),
	}
}

// Status of name in this run; reused components count as initialized
func (r *Report) Status(name string) graph.Status {
	switch {
	case r.Failed[name] != nil:
		return graph.StatusFailed
	case slices.Contains(r.Initialized, name), slices.Contains(r.Reused, name):
		return graph.StatusInitialized
	default:
		return graph.StatusPending
	}
}

// Degraded reports whether anything failed, was skipped or had a failing hook
func (r *Report) Degraded() bool {
	return len(r.Failed) > 0 || len(r.Skipped) > 0 || len(r.HookErrors) > 0
}

// Live every component available after the run, in order
func (r *Report) Live() []string {
	live := make([]string, 0, len(r.Reused)+len(r.Initialized))
	for _, name := range r.Order {
		if slices.Contains(r.Reused, name) || slices.Contains(r.Initialized, name) {
			live = append(live, name)
		}
	}
	return live
}

// FailedNames failed components in order
func (r *Report) FailedNames() []string {
	return r.namesIn(func(name string) bool {
		_, ok := r.Failed[name]
		return ok
	})
}

// SkippedNames skipped components in order
func (r *Report) SkippedNames() []string {
	return r.namesIn(func(name string) bool {
		_, ok := r.Skipped[name]
		return ok
	})
}

func (r *Report) namesIn(match func(string) bool) []string {
	var out []string
	for _, name := range r.Order {
		if match(name) {
			out = append(out, name)
		}
	}
	return out
}
