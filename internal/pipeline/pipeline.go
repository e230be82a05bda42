// Package pipeline orchestrates a calculation request: validate, fingerprint,
// cache lookup, compute, cache store. The pipeline never mutates the
// submitted TaxReturn; all derived state travels on the result.
package pipeline

import (
	"context"
	"time"

	"github.com/finhelm/taxengine/internal/calculation"
	"github.com/finhelm/taxengine/internal/domain"
	"github.com/finhelm/taxengine/pkg/hashutil"
)

// Request carries one calculation's inputs.
type Request struct {
	Return *domain.TaxReturn
	Prior  domain.PriorYearCarryovers

	// UseCache enables the fingerprint lookup and the store-on-success.
	UseCache bool
	// Strict aborts before compute when any error-severity rule fires.
	// Lenient mode accumulates the same errors on the result and proceeds.
	Strict bool
}

// Result is what callers receive for every routine outcome, including
// validation failures. Federal is nil only when compute never ran.
type Result struct {
	Success     bool                          `json:"success"`
	CacheHit    bool                          `json:"cache_hit"`
	Fingerprint string                        `json:"fingerprint"`
	Errors      []domain.ValidationIssue      `json:"errors,omitempty"`
	Warnings    []domain.ValidationIssue      `json:"warnings,omitempty"`
	Federal     *calculation.FederalTaxResult `json:"federal,omitempty"`
}

// Pipeline wires the validator, cache, engine, and metrics sink.
type Pipeline struct {
	engine    *calculation.FederalEngine
	validator Validator
	cache     ResultCache
	metrics   MetricsSink

	now func() time.Time
}

// Option overrides one collaborator.
type Option func(*Pipeline)

// WithValidator replaces the built-in rule validator.
func WithValidator(v Validator) Option { return func(p *Pipeline) { p.validator = v } }

// WithCache replaces the in-memory result cache.
func WithCache(c ResultCache) Option { return func(p *Pipeline) { p.cache = c } }

// WithMetrics replaces the discard sink.
func WithMetrics(m MetricsSink) Option { return func(p *Pipeline) { p.metrics = m } }

// WithLogger sets the engine's logger.
func WithLogger(l calculation.Logger) Option { return func(p *Pipeline) { p.engine.SetLogger(l) } }

// New builds a pipeline around a federal engine for the configured year.
func New(cfg *domain.TaxYearConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:    calculation.NewFederalEngine(cfg),
		validator: NewRuleValidator(cfg.Year),
		cache:     NewMemoryCache(),
		metrics:   NopMetrics{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fingerprint computes the deterministic cache key for a request: the
// normalized-JSON hash over the return and the prior-year carryovers.
func Fingerprint(tr *domain.TaxReturn, prior domain.PriorYearCarryovers) (string, error) {
	return hashutil.Hash(map[string]any{
		"tax_return": tr,
		"prior":      prior,
	})
}

// Calculate runs the request through the pipeline. Routine validation
// failures come back on the Result; only cancellation, structural input
// errors, and infrastructure failures surface as Go errors.
func (p *Pipeline) Calculate(ctx context.Context, req Request) (*Result, error) {
	start := p.now()
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	if req.Return == nil {
		return nil, &domain.InvalidInputError{Path: "tax_return", Code: "required", Message: "tax return is required"}
	}

	issues, err := p.validator.Validate(ctx, req.Return)
	if err != nil {
		return nil, err
	}
	errs, warnings := Partition(issues)

	res := &Result{Errors: errs, Warnings: warnings}
	record := func() {
		p.metrics.RecordCalculation(CalculationMetrics{
			CacheHit:      res.CacheHit,
			ErrorCount:    len(res.Errors),
			WarningCount:  len(res.Warnings),
			LatencyMillis: p.now().Sub(start).Milliseconds(),
			FilingStatus:  req.Return.Taxpayer.FilingStatus,
		})
	}

	if req.Strict && len(errs) > 0 {
		record()
		return res, nil
	}

	fingerprint, err := Fingerprint(req.Return, req.Prior)
	if err != nil {
		return nil, &domain.ComputationError{Form: "pipeline", Op: "fingerprint", Err: err}
	}
	res.Fingerprint = fingerprint

	if req.UseCache {
		if err := ctx.Err(); err != nil {
			return nil, domain.ErrCancelled
		}
		// A cache failure is never fatal; compute proceeds as a miss.
		if cached, ok, err := p.cache.Get(ctx, fingerprint); err == nil && ok {
			res.Federal = cached
			res.CacheHit = true
			res.Success = len(errs) == 0
			record()
			return res, nil
		}
	}

	federal, err := p.engine.Calculate(ctx, req.Return, req.Prior)
	if err != nil {
		return nil, err
	}
	res.Federal = federal
	res.Success = len(errs) == 0

	if req.UseCache {
		if err := ctx.Err(); err != nil {
			return nil, domain.ErrCancelled
		}
		_ = p.cache.Set(ctx, fingerprint, federal)
	}

	record()
	return res, nil
}
