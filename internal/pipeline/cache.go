package pipeline

import (
	"context"
	"sync"

	"github.com/finhelm/taxengine/internal/calculation"
)

// ResultCache is the content-addressed calculation cache. Keys are
// fingerprints of the normalized request; equal fingerprints always map to
// byte-identical results, so last-writer-wins is acceptable for concurrent
// writers.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*calculation.FederalTaxResult, bool, error)
	Set(ctx context.Context, fingerprint string, result *calculation.FederalTaxResult) error
}

// MemoryCache is an unbounded in-process ResultCache. Cached results are
// shared pointers and must be treated as read-only by callers.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*calculation.FederalTaxResult
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*calculation.FederalTaxResult)}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (*calculation.FederalTaxResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[fingerprint]
	return result, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, fingerprint string, result *calculation.FederalTaxResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = result
	return nil
}

// Len reports the number of cached results.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
