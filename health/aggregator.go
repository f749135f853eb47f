package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Aggregator runs every registered check concurrently under one timeout
type Aggregator struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	optional map[string]bool
	timeout  time.Duration
	metadata map[string]any
}

// NewAggregator timeout <= 0 defaults to 5s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		checkers: make(map[string]Checker),
		optional: make(map[string]bool),
		timeout:  timeout,
		metadata: make(map[string]any),
	}
}

// Register adds a check; a failing check makes the service unhealthy
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers[name] = checker
	delete(a.optional, name)
}

// RegisterOptional adds a check whose failure only degrades the service
func (a *Aggregator) RegisterOptional(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers[name] = checker
	a.optional[name] = true
}

// SetMetadata attaches a value to every response
func (a *Aggregator) SetMetadata(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Names registered checks, sorted
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.checkers))
	for name := range a.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every check
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, c := range a.checkers {
		checkers[name] = c
	}
	optional := make(map[string]bool, len(a.optional))
	for name := range a.optional {
		optional[name] = true
	}
	metadata := make(map[string]any, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make(chan CheckResult, len(checkers))
	for name, checker := range checkers {
		go func(name string, c Checker) {
			results <- checkOne(checkCtx, name, c, optional[name])
		}(name, checker)
	}

	checks := make(map[string]CheckResult, len(checkers))
	for range checkers {
		result := <-results
		checks[result.Name] = result
	}

	return &Response{
		Status:    overallStatus(checks),
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Checks:    checks,
		Metadata:  metadata,
	}
}

func checkOne(ctx context.Context, name string, checker Checker, optional bool) (result CheckResult) {
	start := time.Now()
	result = CheckResult{Name: name, Timestamp: start, Status: StatusHealthy}
	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusUnhealthy
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		if result.Status == StatusUnhealthy && optional {
			result.Status = StatusDegraded
		}
		result.Duration = time.Since(start)
	}()

	if err := checker.Check(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

func overallStatus(checks map[string]CheckResult) Status {
	status := StatusHealthy
	for _, result := range checks {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
