package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/finhelm/taxengine/internal/domain"
)

// State is the circuit breaker state machine position.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// BreakerConfig controls the trip and recovery thresholds.
type BreakerConfig struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit from CLOSED.
	FailureThreshold int
	// SuccessThreshold is the success count in HALF_OPEN that closes it.
	SuccessThreshold int
	// Timeout is how long an OPEN circuit rejects before probing.
	Timeout time.Duration
	// FailureErrors is the match list; empty means every error counts.
	FailureErrors []error

	now func() time.Time
}

// DefaultBreakerConfig matches the settings used for AI and knowledge calls.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// Breaker is a named circuit breaker. All state transitions happen under the
// mutex; Call itself runs outside it so slow calls do not serialize.
type Breaker struct {
	name string
	cfg  BreakerConfig

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	lastFailure  time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	return &Breaker{name: name, cfg: cfg, state: StateClosed}
}

// Name returns the registry key.
func (b *Breaker) Name() string { return b.name }

// State returns the current state, applying the OPEN timeout transition.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) now() time.Time {
	if b.cfg.now != nil {
		return b.cfg.now()
	}
	return time.Now()
}

func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.lastFailure) >= b.cfg.Timeout {
		b.state = StateHalfOpen
		b.successCount = 0
	}
	return b.state
}

// Call runs fn through the breaker. While OPEN it rejects immediately with
// CircuitOpenError carrying the time remaining until the next probe.
func (b *Breaker) Call(ctx context.Context, fn func(context.Context) error) error {
	b.mu.Lock()
	switch b.stateLocked() {
	case StateOpen:
		remaining := b.cfg.Timeout - b.now().Sub(b.lastFailure)
		if remaining < 0 {
			remaining = 0
		}
		b.mu.Unlock()
		return &domain.CircuitOpenError{Name: b.name, TimeRemaining: remaining}
	}
	b.mu.Unlock()

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && b.countsAsFailure(err) {
		b.onFailure()
		return err
	}
	if err == nil {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) countsAsFailure(err error) bool {
	if errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled) {
		return false
	}
	if len(b.cfg.FailureErrors) == 0 {
		return true
	}
	for _, fe := range b.cfg.FailureErrors {
		if errors.Is(err, fe) {
			return true
		}
	}
	return false
}

func (b *Breaker) onFailure() {
	b.lastFailure = b.now()
	switch b.state {
	case StateHalfOpen:
		// Any failure during probing reopens immediately.
		b.state = StateOpen
		b.successCount = 0
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.cfg.FailureThreshold {
			b.state = StateOpen
		}
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
		}
	}
}
