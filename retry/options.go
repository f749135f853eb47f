package retry

import "time"

type config struct {
	maxAttempts int
	backoff     BackoffStrategy
	retryIf     func(err error) bool
	onRetry     func(attempt int, err error, wait time.Duration)
}

func defaultConfig() *config {
	return &config{
		maxAttempts: 3,
		backoff:     Exponential(100 * time.Millisecond),
		retryIf:     func(error) bool { return true },
	}
}

// Option configures Do
type Option func(*config)

// MaxAttempts total attempts including the first; values below 1 are ignored
func MaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Backoff delay strategy between attempts
func Backoff(b BackoffStrategy) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// If retries only errors for which retryable returns true
func If(retryable func(err error) bool) Option {
	return func(c *config) {
		if retryable != nil {
			c.retryIf = retryable
		}
	}
}

// OnRetry called before each wait
func OnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}
