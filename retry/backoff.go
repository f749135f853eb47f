package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy delay before retry number attempt (starting at 1)
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

// BackoffOption tunes Exponential
type BackoffOption func(*exponential)

// WithMultiplier growth factor, default 2
func WithMultiplier(m float64) BackoffOption {
	return func(b *exponential) {
		if m >= 1 {
			b.multiplier = m
		}
	}
}

// WithMaxDelay cap, default 10s
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *exponential) {
		if d > 0 {
			b.maxDelay = d
		}
	}
}

// WithJitter random spread ratio in [0, 1], default 0.2
func WithJitter(ratio float64) BackoffOption {
	return func(b *exponential) {
		if ratio >= 0 && ratio <= 1 {
			b.jitter = ratio
		}
	}
}

type exponential struct {
	base       time.Duration
	multiplier float64
	maxDelay   time.Duration
	jitter     float64
}

// Exponential base * multiplier^(attempt-1), capped and jittered
func Exponential(base time.Duration, opts ...BackoffOption) BackoffStrategy {
	b := &exponential{base: base, multiplier: 2, maxDelay: 10 * time.Second, jitter: 0.2}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *exponential) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(b.base) * math.Pow(b.multiplier, float64(attempt-1))
	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}
	if b.jitter > 0 {
		delay += delay * b.jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(delay)
}

type constant time.Duration

// Constant same delay before every retry
func Constant(d time.Duration) BackoffStrategy {
	return constant(d)
}

func (c constant) Next(int) time.Duration {
	return time.Duration(c)
}
