package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
	"github.com/finhelm/taxengine/internal/resilience"
)

type fakeProvider struct {
	failures int
	calls    int
	content  string
}

func (f *fakeProvider) Complete(_ context.Context, _ string) (*Completion, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream timeout")
	}
	return &Completion{Content: f.content}, nil
}

func testClientConfig(attempts int) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Retry = resilience.RetryConfig{
		MaxAttempts:       attempts,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Millisecond,
		BackoffMultiplier: 1.0,
	}
	return cfg
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	c := NewClient(testClientConfig(3))
	p := &fakeProvider{failures: 2, content: "Your AMT exposure stems from the ISO exercise."}
	c.Register("narrative", p)

	got, err := c.Complete(context.Background(), "explain the AMT result", "narrative")
	require.NoError(t, err)
	assert.Equal(t, p.content, got.Content)
	assert.Equal(t, 3, p.calls)
}

func TestCompleteExhaustsRetries(t *testing.T) {
	c := NewClient(testClientConfig(2))
	p := &fakeProvider{failures: 10}
	c.Register("narrative", p)

	_, err := c.Complete(context.Background(), "prompt", "narrative")
	var exhausted *domain.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)

	var unavailable *domain.ExternalUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 2, p.calls)
}

func TestCompleteUnknownProvider(t *testing.T) {
	c := NewClient(testClientConfig(1))
	_, err := c.Complete(context.Background(), "prompt", "nope")
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "unknown_provider", invalid.Code)
}

func TestCompleteOpensBreakerAfterRepeatedFailures(t *testing.T) {
	cfg := testClientConfig(1)
	cfg.Breaker = resilience.BreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Hour,
	}
	c := NewClient(cfg)
	p := &fakeProvider{failures: 100}
	c.Register("knowledge", p)

	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), "prompt", "knowledge")
		require.Error(t, err)
	}
	require.Equal(t, resilience.StateOpen, c.BreakerState("knowledge"))

	// The open circuit rejects before the provider is reached.
	callsBefore := p.calls
	_, err := c.Complete(context.Background(), "prompt", "knowledge")
	require.Error(t, err)
	var open *domain.CircuitOpenError
	assert.ErrorAs(t, err, &open)
	assert.Equal(t, callsBefore, p.calls)
}

func TestCompleteCancelledContext(t *testing.T) {
	c := NewClient(testClientConfig(3))
	c.Register("narrative", &fakeProvider{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "prompt", "narrative")
	assert.ErrorIs(t, err, domain.ErrCancelled)
}
