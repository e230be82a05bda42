package resilience

import "sync"

// Registry indexes breakers by name so callers share one instance per
// logical endpoint. Reads and writes are linearizable under the mutex.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*Breaker)}
}

// Get returns the breaker registered under name, creating it with cfg on
// first use. Later calls ignore cfg.
func (r *Registry) Get(name string, cfg BreakerConfig) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, cfg)
	r.breakers[name] = b
	return b
}

// Names returns the registered breaker names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	return names
}

// defaultRegistry is the process-wide instance used by the AI client.
var defaultRegistry = NewRegistry()

// GetBreaker fetches a breaker from the process-wide registry.
func GetBreaker(name string, cfg BreakerConfig) *Breaker {
	return defaultRegistry.Get(name, cfg)
}
