// Package ai defines the AI/knowledge contract: a single completion call the
// core only ever reaches through retry and circuit-breaker wrappers. Actual
// providers (narrative generation, chart configs, document mapping) live
// outside the engine.
package ai

import (
	"context"
	"time"

	"github.com/finhelm/taxengine/internal/domain"
	"github.com/finhelm/taxengine/internal/resilience"
)

// Completion is the provider's answer.
type Completion struct {
	Content string `json:"content"`
}

// Provider is one backing completion service.
type Provider interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// Client routes a completion to a named provider through the resilience
// stack: per-call timeout, retry with backoff, and a shared circuit breaker
// per provider name.
type Client struct {
	providers map[string]Provider
	registry  *resilience.Registry
	retry     resilience.RetryConfig
	breaker   resilience.BreakerConfig
	timeout   time.Duration
}

// ClientConfig tunes the resilience stack around providers.
type ClientConfig struct {
	Retry   resilience.RetryConfig
	Breaker resilience.BreakerConfig
	Timeout time.Duration
}

// DefaultClientConfig uses the stock retry/breaker settings and a 30s
// per-call timeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Retry:   resilience.DefaultRetryConfig(),
		Breaker: resilience.DefaultBreakerConfig(),
		Timeout: 30 * time.Second,
	}
}

// NewClient creates a client with no providers registered.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		providers: make(map[string]Provider),
		registry:  resilience.NewRegistry(),
		retry:     cfg.Retry,
		breaker:   cfg.Breaker,
		timeout:   cfg.Timeout,
	}
}

// Register adds a provider under a name. Registering the same name again
// replaces the provider but keeps its breaker state.
func (c *Client) Register(name string, p Provider) {
	c.providers[name] = p
}

// Complete runs prompt against the named provider. Provider failures are
// wrapped as ExternalUnavailableError so the retry layer treats them as
// retryable; an open breaker or exhausted retries surface as their own
// error types.
func (c *Client) Complete(ctx context.Context, prompt, provider string) (*Completion, error) {
	p, ok := c.providers[provider]
	if !ok {
		return nil, &domain.InvalidInputError{
			Path: "ai.provider", Code: "unknown_provider", Message: provider,
		}
	}
	breaker := c.registry.Get(provider, c.breaker)

	var completion *Completion
	err := resilience.Retry(ctx, c.retry, func(ctx context.Context) error {
		return breaker.Call(ctx, func(ctx context.Context) error {
			callCtx := ctx
			if c.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}
			result, err := p.Complete(callCtx, prompt)
			if err != nil {
				return &domain.ExternalUnavailableError{Op: "complete", Err: err}
			}
			completion = result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return completion, nil
}

// BreakerState exposes the named provider's circuit state for diagnostics.
func (c *Client) BreakerState(provider string) resilience.State {
	return c.registry.Get(provider, c.breaker).State()
}
