package api

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
	defaultRetryMaxDelay = 5 * time.Second
)

// Sleeper suspends the calling goroutine for the given duration, returning
// early with the context error if the context is cancelled first. Tests
// inject a no-op implementation.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy bounds how transient failures are retried at the point of
// occurrence. Non-transient failures are never retried regardless of policy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Sleep       Sleeper
}

// DefaultRetryPolicy returns the small bounded policy used by upload,
// download, and poll-query call sites.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultRetryAttempts,
		BaseDelay:   defaultRetryDelay,
		MaxDelay:    defaultRetryMaxDelay,
		Sleep:       SleepContext,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) sleeper() Sleeper {
	if p.Sleep == nil {
		return SleepContext
	}
	return p.Sleep
}

// delay computes the backoff before the next attempt. attempt is 1-based:
// attempt 1 -> base, attempt 2 -> base*2, doubling up to MaxDelay.
func (p RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d > maxDelay/2 {
			return maxDelay
		}
		d *= 2
	}
	return d
}

// Retry runs fn up to the policy's attempt budget, sleeping between attempts.
// It stops early on success, on a non-retryable failure, or when the context
// is cancelled.
func (p RetryPolicy) Retry(ctx context.Context, fn func() error) error {
	attempts := p.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !Retryable(err) || attempt == attempts || ctx.Err() != nil {
			break
		}
		if sleepErr := p.sleeper()(ctx, p.delay(attempt)); sleepErr != nil {
			return fmt.Errorf("retry interrupted: %w", sleepErr)
		}
	}
	return lastErr
}
