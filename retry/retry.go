// Package retry re-runs an operation with backoff until it succeeds, the
// attempts run out or the context ends. Components use it to wait for
// backends that come up after the process.
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return client.Ping(ctx).Err()
//	}, retry.MaxAttempts(5), retry.Backoff(retry.Exponential(200*time.Millisecond)))
package retry

import (
	"context"
	"time"
)

// Do runs operation until it returns nil
func Do(ctx context.Context, operation func(ctx context.Context) error, opts ...Option) error {
	_, err := DoWithData(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	}, opts...)
	return err
}

// DoWithData runs operation until it returns a nil error and hands back its data
func DoWithData[T any](ctx context.Context, operation func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var zero T
	var errs []error
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &Error{Attempts: attempt - 1, Errs: append(errs, err)}
		}

		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if attempt == cfg.maxAttempts || !cfg.retryIf(err) {
			return zero, &Error{Attempts: attempt, Errs: errs}
		}

		wait := cfg.backoff.Next(attempt)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return zero, &Error{Attempts: attempt, Errs: append(errs, context.DeadlineExceeded)}
		}
		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, &Error{Attempts: attempt, Errs: append(errs, ctx.Err())}
		}
	}
	return zero, &Error{Attempts: cfg.maxAttempts, Errs: errs}
}
