package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KOMKZ/go-yogan-boot/errcode"
)

var (
	// ErrNotRegistered cause of a missing dependency nobody registered
	ErrNotRegistered = errors.New("dependency is not registered")

	// ErrDependencySkipped cause of a missing dependency that was itself skipped
	ErrDependencySkipped = errors.New("dependency was skipped")

	// ErrShuttingDown a run was stopped or refused because Shutdown began
	ErrShuttingDown = errors.New("initializer is shutting down")
)

// UnresolvedDependencyError a component whose dependencies did not initialize
type UnresolvedDependencyError struct {
	Component string
	Missing   []string
	// Causes aligned with Missing
	Causes []error
}

func (e *UnresolvedDependencyError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		parts[i] = name
		if i < len(e.Causes) && e.Causes[i] != nil {
			parts[i] = fmt.Sprintf("%s (%v)", name, e.Causes[i])
		}
	}
	return fmt.Sprintf("component '%s' has unresolved dependencies: %s", e.Component, strings.Join(parts, ", "))
}

// Is matches errcode.ErrUnresolvedDependency
func (e *UnresolvedDependencyError) Is(target error) bool {
	return target == errcode.ErrUnresolvedDependency
}

// Unwrap exposes the causes
func (e *UnresolvedDependencyError) Unwrap() []error {
	out := make([]error, 0, len(e.Causes))
	for _, c := range e.Causes {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ComponentInitializationError a factory returned an error or panicked
type ComponentInitializationError struct {
	Component string
	Err       error
}

func (e *ComponentInitializationError) Error() string {
	return fmt.Sprintf("component '%s' initialization failed: %v", e.Component, e.Err)
}

// Is matches errcode.ErrComponentInitialization
func (e *ComponentInitializationError) Is(target error) bool {
	return target == errcode.ErrComponentInitialization
}

func (e *ComponentInitializationError) Unwrap() error {
	return e.Err
}

// Hook phases
const (
	PhaseInit     = "init"
	PhaseAsync    = "async_init"
	PhaseShutdown = "shutdown"
)

// HookExecutionError an initialization or shutdown hook failed
type HookExecutionError struct {
	Hook  string
	Phase string
	Err   error
}

func (e *HookExecutionError) Error() string {
	return fmt.Sprintf("%s hook '%s' failed: %v", e.Phase, e.Hook, e.Err)
}

// Is matches errcode.ErrHookExecution
func (e *HookExecutionError) Is(target error) bool {
	return target == errcode.ErrHookExecution
}

func (e *HookExecutionError) Unwrap() error {
	return e.Err
}

// PanicError a recovered panic from a factory or hook
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
