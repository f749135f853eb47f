package graph

import (
	"strings"

	"github.com/KOMKZ/go-yogan-boot/errcode"
)

// CycleError dependency cycle, always fatal
type CycleError struct {
	// Path from the cycle entry back to itself, e.g. [a b c a]
	Path []string
}

// Error implements error
func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " -> ")
}

// Is matches errcode.ErrCycleDetected
func (e *CycleError) Is(target error) bool {
	return target == errcode.ErrCycleDetected
}

// Code hierarchical error code
func (e *CycleError) Code() int {
	return errcode.ErrCycleDetected.Code()
}
