package retry

import (
	"errors"
	"fmt"
)

// Error every failed attempt of one Do call
type Error struct {
	Attempts int
	// Errs one per attempt, plus the context error when it stopped the loop
	Errs []error
}

func (e *Error) Error() string {
	if len(e.Errs) == 0 {
		return fmt.Sprintf("retry failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("retry failed after %d attempts: %v", e.Attempts, e.Errs[len(e.Errs)-1])
}

// Unwrap exposes every attempt error to errors.Is
func (e *Error) Unwrap() []error {
	return e.Errs
}

// Attempts number of attempts behind err, 0 when err did not come from Do
func Attempts(err error) int {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Attempts
	}
	return 0
}
