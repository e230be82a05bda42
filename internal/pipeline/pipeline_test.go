package pipeline

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

func wageReturn(wages float64) *domain.TaxReturn {
	return &domain.TaxReturn{
		TaxYear: 2025,
		Taxpayer: domain.TaxpayerInfo{
			FilingStatus: domain.FilingSingle,
			Age:          40,
		},
		Income: domain.Income{
			W2Forms: []domain.W2{{Employer: "Acme", Wages: decimal.NewFromFloat(wages)}},
		},
	}
}

func TestPipelineComputesAndCaches(t *testing.T) {
	metrics := NewMemoryMetrics()
	cache := NewMemoryCache()
	p := New(domain.NewTaxYear2025(), WithCache(cache), WithMetrics(metrics))
	ctx := context.Background()

	req := Request{Return: wageReturn(100000), UseCache: true}
	first, err := p.Calculate(ctx, req)
	require.NoError(t, err)
	require.True(t, first.Success)
	require.NotNil(t, first.Federal)
	assert.False(t, first.CacheHit)
	assert.NotEmpty(t, first.Fingerprint)
	assert.Equal(t, 1, cache.Len())

	second, err := p.Calculate(ctx, req)
	require.NoError(t, err)
	require.True(t, second.Success)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	// A hit returns the same breakdown a fresh computation would produce.
	assert.True(t, first.Federal.TotalTax.Equal(second.Federal.TotalTax))

	records := metrics.Records()
	require.Len(t, records, 2)
	assert.False(t, records[0].CacheHit)
	assert.True(t, records[1].CacheHit)
	assert.Equal(t, domain.FilingSingle, records[1].FilingStatus)
}

func TestPipelineFingerprintIsDeterministic(t *testing.T) {
	a, err := Fingerprint(wageReturn(100000), domain.PriorYearCarryovers{})
	require.NoError(t, err)
	b, err := Fingerprint(wageReturn(100000), domain.PriorYearCarryovers{})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Fingerprint(wageReturn(100001), domain.PriorYearCarryovers{})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// Prior-year state participates in the key.
	d, err := Fingerprint(wageReturn(100000), domain.PriorYearCarryovers{
		IRABasis: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestPipelineStrictModeAbortsOnErrors(t *testing.T) {
	p := New(domain.NewTaxYear2025())
	tr := wageReturn(100000)
	tr.Taxpayer.FilingStatus = "commune"

	res, err := p.Calculate(context.Background(), Request{Return: tr, Strict: true})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Federal)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "filing_status_required", res.Errors[0].RuleID)
}

func TestPipelineLenientModeComputesDespiteErrors(t *testing.T) {
	p := New(domain.NewTaxYear2025())
	tr := wageReturn(100000)
	tr.Income.W2Forms = append(tr.Income.W2Forms, domain.W2{
		Employer: "Negative Co", Wages: decimal.NewFromInt(-1),
	})

	res, err := p.Calculate(context.Background(), Request{Return: tr})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotNil(t, res.Federal)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "wages_negative", res.Errors[0].RuleID)
	assert.Equal(t, "income.w2_forms[1].wages", res.Errors[0].Path)
}

func TestPipelineWarningsDoNotBlockStrictMode(t *testing.T) {
	p := New(domain.NewTaxYear2025())
	tr := wageReturn(100000)
	tr.Deductions.Itemize = true // fires itemize_without_items as a warning

	res, err := p.Calculate(context.Background(), Request{Return: tr, Strict: true})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotNil(t, res.Federal)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "itemize_without_items", res.Warnings[0].RuleID)
}

func TestPipelineNilReturnRejected(t *testing.T) {
	p := New(domain.NewTaxYear2025())
	_, err := p.Calculate(context.Background(), Request{})
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "tax_return", invalid.Path)
}

func TestPipelineCancellation(t *testing.T) {
	p := New(domain.NewTaxYear2025())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Calculate(ctx, Request{Return: wageReturn(100000)})
	require.ErrorIs(t, err, domain.ErrCancelled)
}

func TestPipelineCacheDisabledNeverStores(t *testing.T) {
	cache := NewMemoryCache()
	p := New(domain.NewTaxYear2025(), WithCache(cache))

	res, err := p.Calculate(context.Background(), Request{Return: wageReturn(100000)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, cache.Len())
}

func TestRuleValidatorHoursAndYearRules(t *testing.T) {
	v := NewRuleValidator(2025)
	tr := wageReturn(50000)
	tr.TaxYear = 2024
	tr.Income.Form8582 = &domain.Form8582Input{
		Activities: []domain.PassiveActivity{{TaxpayerHours: 8000, SpouseHours: 1000}},
	}

	issues, err := v.Validate(context.Background(), tr)
	require.NoError(t, err)
	errs, _ := Partition(issues)

	ids := make([]string, len(errs))
	for i, e := range errs {
		ids[i] = e.RuleID
	}
	assert.Contains(t, ids, "tax_year_unsupported")
	assert.Contains(t, ids, "participation_hours_impossible")
}
