// Package resilience provides retry with exponential backoff for the
// outbound calls the pipeline makes (Anthropic API, listing sources).
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior.
type Policy struct {
	// Attempts is the total number of tries including the first.
	// 1 means no retries. Default: 3.
	Attempts int

	// BaseDelay is the sleep before the first retry. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff. Default: 20s.
	MaxDelay time.Duration

	// Factor scales the delay after each failed attempt. Default: 2.0.
	Factor float64

	// Jitter is the fraction of the delay randomized in both directions.
	// 0.25 means each sleep lands within ±25% of the computed delay.
	Jitter float64

	// Retryable overrides the transient-error check when non-nil.
	Retryable func(err error) bool

	// OnRetry fires before each retry sleep.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns the policy used for API calls.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  20 * time.Second,
		Factor:    2.0,
		Jitter:    0.25,
	}
}

// Do runs fn until it succeeds, the error is not retryable, the attempts
// run out, or ctx is cancelled. The last error is returned on failure.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions that return a value.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(lastErr) {
			return zero, lastErr
		}
		if attempt == p.Attempts-1 {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 20 * time.Second
	}
	if p.Factor <= 0 {
		p.Factor = 2.0
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// LogRetries returns an OnRetry hook that logs each retry with zap.
func LogRetries(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
