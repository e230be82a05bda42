// Package resilience wraps calls to external services with retry and
// circuit-breaker behavior. The calculation core never talks to the network
// directly; everything flows through these primitives.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/finhelm/taxengine/internal/domain"
)

// RetryConfig controls the backoff schedule and the error classification.
type RetryConfig struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	// Jitter is the fraction of the delay randomized in both directions:
	// delay * (1 + U(-Jitter, +Jitter)).
	Jitter float64

	// Retryable is the whitelist: when non-empty, only matching errors are
	// retried. NonRetryable is the blacklist and always wins.
	Retryable    []error
	NonRetryable []error

	// OnRetry is invoked before each sleep with the attempt number (1-based)
	// and the error that caused it.
	OnRetry func(attempt int, err error, delay time.Duration)

	// now and rand are swapped in tests.
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64
}

// DefaultRetryConfig matches the settings used for AI and knowledge calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BaseDelay:         200 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.2,
	}
}

// Delay returns the sleep before attempt n+1, n being the 1-based attempt
// that just failed: min(max, base * multiplier^(n-1)) with jitter applied,
// floored at zero.
func (c RetryConfig) Delay(attempt int) time.Duration {
	base := float64(c.BaseDelay) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if max := float64(c.MaxDelay); c.MaxDelay > 0 && base > max {
		base = max
	}
	jitter := 0.0
	if c.Jitter > 0 {
		rf := c.randFloat
		if rf == nil {
			rf = rand.Float64
		}
		jitter = (rf()*2 - 1) * c.Jitter
	}
	d := time.Duration(base * (1 + jitter))
	if d < 0 {
		d = 0
	}
	return d
}

func (c RetryConfig) shouldRetry(err error) bool {
	for _, nr := range c.NonRetryable {
		if errors.Is(err, nr) {
			return false
		}
	}
	if len(c.Retryable) == 0 {
		return true
	}
	for _, r := range c.Retryable {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// Retry runs fn until it succeeds, a non-retryable error surfaces, the
// context is cancelled, or attempts run out. Exhaustion wraps the last error
// in RetryExhaustedError.
func Retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	sleep := cfg.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var last error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ErrCancelled
		}
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if errors.Is(last, domain.ErrCancelled) || errors.Is(last, context.Canceled) {
			return domain.ErrCancelled
		}
		if !cfg.shouldRetry(last) {
			return last
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		delay := cfg.Delay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, last, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return domain.ErrCancelled
		}
	}
	return &domain.RetryExhaustedError{Attempts: cfg.MaxAttempts, Last: last}
}

// sleepContext sleeps for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
