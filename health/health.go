// Package health aggregates component health checks for the /healthz endpoint.
package health

import (
	"context"
	"time"
)

// Status overall or per-check health
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Checker implemented by components that can probe their backend
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

// Check implements Checker
func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// CheckResult one check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Response aggregated result
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
}

// IsHealthy overall status is healthy
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}
