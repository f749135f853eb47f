package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	var retried []int
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	},
		MaxAttempts(5),
		Backoff(Constant(time.Millisecond)),
		OnRetry(func(attempt int, err error, wait time.Duration) {
			retried = append(retried, attempt)
			assert.ErrorIs(t, err, errBoom)
			assert.Equal(t, time.Millisecond, wait)
		}))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, MaxAttempts(3), Backoff(Constant(time.Millisecond)))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, Attempts(err))
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDo_NonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	}, MaxAttempts(5), If(func(err error) bool { return !errors.Is(err, fatal) }))

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Do(ctx, func(context.Context) error {
		cancel()
		return errBoom
	}, MaxAttempts(5), Backoff(Constant(time.Hour)))

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, Attempts(err))
}

func TestDo_DeadlineShorterThanBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Do(ctx, func(context.Context) error { return errBoom },
		MaxAttempts(5), Backoff(Constant(time.Minute)))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	v, err := DoWithData(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errBoom
		}
		return "ok", nil
	}, Backoff(Constant(0)))

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 0, Attempts(nil))
}

func TestExponential(t *testing.T) {
	b := Exponential(100*time.Millisecond, WithJitter(0), WithMaxDelay(time.Second))
	assert.Equal(t, time.Duration(0), b.Next(0))
	assert.Equal(t, 100*time.Millisecond, b.Next(1))
	assert.Equal(t, 200*time.Millisecond, b.Next(2))
	assert.Equal(t, 400*time.Millisecond, b.Next(3))
	assert.Equal(t, time.Second, b.Next(10))

	jittered := Exponential(time.Second, WithJitter(0.5), WithMultiplier(3))
	for i := 0; i < 20; i++ {
		d := jittered.Next(2)
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 4500*time.Millisecond)
	}
}
