package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

func mtcCalc() *Form8801Calculator {
	return NewForm8801Calculator(domain.NewTaxYear2025())
}

func TestForm8801DeferralOnlyGeneratesCredit(t *testing.T) {
	calc := mtcCalc()
	res, err := calc.Calculate(&domain.Form8801Input{
		PriorYear: domain.PriorYearAMTDetail{
			TotalAMT:             decimal.NewFromInt(12000),
			DeferralAdjustments:  decimal.NewFromInt(60000),
			ExclusionAdjustments: decimal.NewFromInt(20000),
			BreakdownKnown:       true,
		},
	}, MTCContext{
		FilingStatus: domain.FilingSingle,
		RegularTax:   decimal.NewFromInt(40000),
		TMT:          decimal.NewFromInt(30000),
		TaxYear:      2025,
	})
	require.NoError(t, err)

	// Deferral share 60/80 of 12000.
	assert.True(t, res.CurrentYearMTC.Equal(decimal.NewFromInt(9000)), "got %s", res.CurrentYearMTC)
	assert.True(t, res.CreditLimit.Equal(decimal.NewFromInt(10000)))
	assert.True(t, res.CreditAllowed.Equal(decimal.NewFromInt(9000)))
	assert.True(t, res.NextYearCarryforward.IsZero())
}

func TestForm8801UnknownBreakdownCarriesWholeAMT(t *testing.T) {
	calc := mtcCalc()
	res, err := calc.Calculate(&domain.Form8801Input{
		PriorYear: domain.PriorYearAMTDetail{TotalAMT: decimal.NewFromInt(5000)},
	}, MTCContext{
		FilingStatus: domain.FilingSingle,
		RegularTax:   decimal.NewFromInt(20000),
		TMT:          decimal.NewFromInt(19000),
		TaxYear:      2025,
	})
	require.NoError(t, err)

	assert.True(t, res.CurrentYearMTC.Equal(decimal.NewFromInt(5000)))
	// Limit 1000 caps the credit; the rest carries forward indefinitely.
	assert.True(t, res.CreditAllowed.Equal(decimal.NewFromInt(1000)))
	assert.True(t, res.NextYearCarryforward.Equal(decimal.NewFromInt(4000)))
}

func TestForm8801CarryforwardsConsumedFIFO(t *testing.T) {
	calc := mtcCalc()
	res, err := calc.Calculate(&domain.Form8801Input{
		Carryforwards: []domain.MTCCarryforward{
			{CarryoverRecord: domain.CarryoverRecord{OriginYear: 2023, OriginalAmount: decimal.NewFromInt(3000)}},
			{CarryoverRecord: domain.CarryoverRecord{OriginYear: 2022, OriginalAmount: decimal.NewFromInt(2000)}},
		},
		PriorYear: domain.PriorYearAMTDetail{TotalAMT: decimal.NewFromInt(4000)},
	}, MTCContext{
		FilingStatus: domain.FilingSingle,
		RegularTax:   decimal.NewFromInt(50000),
		TMT:          decimal.NewFromInt(44000),
		TaxYear:      2025,
	})
	require.NoError(t, err)

	// Limit 6000: carryforwards (5000) drain oldest-first, then 1000 of
	// the current-year credit; 3000 carries to next year.
	assert.True(t, res.CreditAllowed.Equal(decimal.NewFromInt(6000)))
	assert.True(t, res.NextYearCarryforward.Equal(decimal.NewFromInt(3000)))

	// Oldest-first: 2022 and 2023 fully drained, the current-year residue
	// joins the pool.
	require.Len(t, res.UpdatedCarryforwards, 3)
	assert.Equal(t, 2022, res.UpdatedCarryforwards[0].OriginYear)
	assert.True(t, res.UpdatedCarryforwards[0].Remaining().IsZero())
	assert.True(t, res.UpdatedCarryforwards[1].Remaining().IsZero())
	assert.Equal(t, 2024, res.UpdatedCarryforwards[2].OriginYear)
	assert.True(t, res.UpdatedCarryforwards[2].Remaining().Equal(decimal.NewFromInt(3000)))
}

func TestForm8801NoCreditWhenTMTExceedsRegularTax(t *testing.T) {
	calc := mtcCalc()
	res, err := calc.Calculate(&domain.Form8801Input{
		PriorYear: domain.PriorYearAMTDetail{TotalAMT: decimal.NewFromInt(8000)},
	}, MTCContext{
		FilingStatus: domain.FilingSingle,
		RegularTax:   decimal.NewFromInt(25000),
		TMT:          decimal.NewFromInt(27000),
		TaxYear:      2025,
	})
	require.NoError(t, err)

	assert.True(t, res.CreditLimit.IsZero())
	assert.True(t, res.CreditAllowed.IsZero())
	assert.True(t, res.NextYearCarryforward.Equal(decimal.NewFromInt(8000)))
}

func TestForm8801ExclusionRecompute(t *testing.T) {
	calc := mtcCalc()
	res, err := calc.Calculate(&domain.Form8801Input{
		PriorTaxableIncome: decimal.NewFromInt(150000),
		Exclusions: domain.ExclusionItems{
			SALT: decimal.NewFromInt(10000),
		},
	}, MTCContext{
		FilingStatus: domain.FilingSingle,
		RegularTax:   decimal.NewFromInt(30000),
		TMT:          decimal.NewFromInt(28000),
		TaxYear:      2025,
	})
	require.NoError(t, err)

	// (160000 - 88100) * 26%.
	want := decimal.NewFromInt(71900).Mul(decimal.RequireFromString("0.26"))
	assert.True(t, res.NetMinTaxOnExclusions.Equal(want), "got %s", res.NetMinTaxOnExclusions)
}
