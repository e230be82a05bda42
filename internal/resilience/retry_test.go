package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

var errFlaky = errors.New("flaky")

func instantRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		BaseDelay:         time.Millisecond,
		MaxDelay:          10 * time.Millisecond,
		BackoffMultiplier: 2.0,
		sleep:             func(context.Context, time.Duration) error { return nil },
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	cfg := instantRetryConfig(5)
	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustionWrapsLastError(t *testing.T) {
	calls := 0
	cfg := instantRetryConfig(3)
	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		return errFlaky
	})

	var exhausted *domain.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestRetryNonRetryableSurfacesImmediately(t *testing.T) {
	calls := 0
	cfg := instantRetryConfig(5)
	cfg.NonRetryable = []error{domain.ErrNotFound}

	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		return domain.ErrNotFound
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryWhitelistBlocksUnlistedErrors(t *testing.T) {
	calls := 0
	cfg := instantRetryConfig(5)
	cfg.Retryable = []error{errFlaky}
	other := errors.New("other")

	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		return other
	})
	require.ErrorIs(t, err, other)
	assert.Equal(t, 1, calls)
}

func TestRetryBlacklistWinsOverWhitelist(t *testing.T) {
	wrapped := &domain.ExternalUnavailableError{Op: "complete", Err: domain.ErrNotFound}
	cfg := instantRetryConfig(5)
	cfg.Retryable = []error{wrapped}
	cfg.NonRetryable = []error{domain.ErrNotFound}

	calls := 0
	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		return wrapped
	})
	require.Equal(t, 1, calls)
	assert.Error(t, err)
}

func TestRetryOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := instantRetryConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}
	_ = Retry(context.Background(), cfg, func(context.Context) error { return errFlaky })

	// The callback fires before each sleep, never after the last attempt.
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, instantRetryConfig(3), func(context.Context) error { return errFlaky })
	require.ErrorIs(t, err, domain.ErrCancelled)
}

func TestDelaySchedule(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:         100 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 400*time.Millisecond, cfg.Delay(3))
	// Capped by MaxDelay.
	assert.Equal(t, time.Second, cfg.Delay(5))
}

func TestDelayJitterBounds(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:         100 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.5,
	}

	// Jitter at the extremes of U(-0.5, +0.5).
	cfg.randFloat = func() float64 { return 0 } // maps to -0.5
	assert.Equal(t, 50*time.Millisecond, cfg.Delay(1))
	cfg.randFloat = func() float64 { return 1 } // maps to +0.5
	assert.Equal(t, 150*time.Millisecond, cfg.Delay(1))
}
