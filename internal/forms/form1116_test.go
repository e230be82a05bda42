package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

func ftcCalc() *Form1116Calculator {
	return NewForm1116Calculator(domain.NewTaxYear2025())
}

func ftcCtx() FTCContext {
	return FTCContext{
		FilingStatus:          domain.FilingSingle,
		TotalTaxableIncome:    decimal.NewFromInt(150000),
		TotalTaxBeforeCredits: decimal.NewFromInt(25000),
		TaxYear:               2025,
	}
}

func TestForm1116PassiveBasket(t *testing.T) {
	// $20K gross foreign income, $3K foreign taxes, $150K taxable, $25K tax:
	// limitation ~= 3333.33, credit 3000, excess limitation ~= 333.33.
	calc := ftcCalc()
	input := &domain.Form1116Input{
		Baskets: []domain.FTCBasketInput{{
			Category:           domain.FTCCategoryPassive,
			GrossForeignIncome: decimal.NewFromInt(20000),
			TaxesPaid:          []domain.ForeignCountryTax{{Country: "DE", Amount: decimal.NewFromInt(3000)}},
		}},
	}
	res, err := calc.Calculate(input, ftcCtx())
	require.NoError(t, err)
	require.Len(t, res.Baskets, 1)
	b := res.Baskets[0]

	assert.False(t, res.SimplifiedMethod, "3000 exceeds the simplified election limit")
	assert.True(t, b.NetForeignIncome.Equal(decimal.NewFromInt(20000)))

	wantLimit := decimal.NewFromInt(25000).Mul(decimal.NewFromInt(20000)).Div(decimal.NewFromInt(150000))
	assert.True(t, b.Limitation.Sub(wantLimit).Abs().LessThan(decimal.NewFromFloat(0.01)), "limitation=%s", b.Limitation)
	assert.True(t, b.CreditAllowed.Equal(decimal.NewFromInt(3000)))
	assert.True(t, b.NewCarryforward.IsZero())
	assert.True(t, b.ExcessLimitation.GreaterThan(decimal.NewFromInt(333)))
}

func TestForm1116Conservation(t *testing.T) {
	// taxes_paid = credit_before_carryover + new_carryforward for any basket.
	calc := ftcCalc()
	input := &domain.Form1116Input{
		Baskets: []domain.FTCBasketInput{{
			Category:           domain.FTCCategoryGeneral,
			GrossForeignIncome: decimal.NewFromInt(10000),
			TaxesPaid:          []domain.ForeignCountryTax{{Country: "JP", Amount: decimal.NewFromInt(5000)}},
		}},
	}
	res, err := calc.Calculate(input, ftcCtx())
	require.NoError(t, err)
	b := res.Baskets[0]

	assert.True(t, b.CreditAllowed.LessThanOrEqual(decimal.Min(b.TaxesPaid, b.Limitation).Add(b.CarryoverUsed)))
	assert.True(t, b.NewCarryforward.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, b.TaxesPaid.Equal(b.CreditBeforeCarry.Add(b.NewCarryforward)))
}

func TestForm1116DeductionsReduceNetIncome(t *testing.T) {
	calc := ftcCalc()
	input := &domain.Form1116Input{
		Baskets: []domain.FTCBasketInput{{
			Category:                    domain.FTCCategoryGeneral,
			GrossForeignIncome:          decimal.NewFromInt(20000),
			DefinitelyRelatedDeductions: decimal.NewFromInt(4000),
			AllocatedInterest:           decimal.NewFromInt(1000),
			AllocatedSALT:               decimal.NewFromInt(500),
			LossesFromOtherCategories:   decimal.NewFromInt(2500),
			TaxesPaid:                   []domain.ForeignCountryTax{{Country: "FR", Amount: decimal.NewFromInt(2000)}},
		}},
	}
	res, err := calc.Calculate(input, ftcCtx())
	require.NoError(t, err)
	assert.True(t, res.Baskets[0].NetForeignIncome.Equal(decimal.NewFromInt(12000)))

	// Deductions exceeding gross floor at zero.
	input.Baskets[0].DefinitelyRelatedDeductions = decimal.NewFromInt(50000)
	res, err = calc.Calculate(input, ftcCtx())
	require.NoError(t, err)
	assert.True(t, res.Baskets[0].NetForeignIncome.IsZero())
	assert.True(t, res.Baskets[0].CreditAllowed.IsZero())
}

func TestForm1116SimplifiedElection(t *testing.T) {
	calc := ftcCalc()
	input := &domain.Form1116Input{
		Baskets: []domain.FTCBasketInput{{
			Category:           domain.FTCCategoryPassive,
			GrossForeignIncome: decimal.NewFromInt(2000),
			TaxesPaid:          []domain.ForeignCountryTax{{Country: "UK", Amount: decimal.NewFromInt(250)}},
		}},
	}

	res, err := calc.Calculate(input, ftcCtx())
	require.NoError(t, err)
	assert.True(t, res.SimplifiedMethod)
	assert.True(t, res.TotalCredit.Equal(decimal.NewFromInt(250)))

	// MFJ doubles the election limit.
	input.Baskets[0].TaxesPaid[0].Amount = decimal.NewFromInt(550)
	ctx := ftcCtx()
	ctx.FilingStatus = domain.FilingMarriedJoint
	res, err = calc.Calculate(input, ctx)
	require.NoError(t, err)
	assert.True(t, res.SimplifiedMethod)

	// A general basket never qualifies.
	input.Baskets[0].Category = domain.FTCCategoryGeneral
	res, err = calc.Calculate(input, ctx)
	require.NoError(t, err)
	assert.False(t, res.SimplifiedMethod)
}

func TestForm1116CarryoverFIFOConsumption(t *testing.T) {
	calc := ftcCalc()
	input := &domain.Form1116Input{
		Baskets: []domain.FTCBasketInput{{
			Category:           domain.FTCCategoryPassive,
			GrossForeignIncome: decimal.NewFromInt(60000),
			TaxesPaid:          []domain.ForeignCountryTax{{Country: "CA", Amount: decimal.NewFromInt(2000)}},
			Carryovers: []domain.FTCCarryover{
				{CarryoverRecord: domain.CarryoverRecord{OriginYear: 2023, OriginalAmount: decimal.NewFromInt(4000)}, Category: domain.FTCCategoryPassive},
				{CarryoverRecord: domain.CarryoverRecord{OriginYear: 2022, OriginalAmount: decimal.NewFromInt(3000)}, Category: domain.FTCCategoryPassive},
				// Expired: 2014 + 10 < 2025.
				{CarryoverRecord: domain.CarryoverRecord{OriginYear: 2014, OriginalAmount: decimal.NewFromInt(9999)}, Category: domain.FTCCategoryPassive},
			},
		}},
	}
	res, err := calc.Calculate(input, ftcCtx())
	require.NoError(t, err)
	b := res.Baskets[0]

	// Limitation = 25000 * min(1, 60000/150000) = 10000; excess = 8000.
	assert.True(t, b.Limitation.Equal(decimal.NewFromInt(10000)))
	assert.True(t, b.ExcessLimitation.Equal(decimal.NewFromInt(8000)))
	// 2022 consumed before 2023; expired 2014 untouched.
	assert.True(t, b.CarryoverUsed.Equal(decimal.NewFromInt(7000)))
	assert.True(t, b.CreditAllowed.Equal(decimal.NewFromInt(9000)))
	for _, co := range b.UpdatedCarryovers {
		assert.True(t, co.Remaining().GreaterThanOrEqual(decimal.Zero))
		assert.NotEqual(t, 2014, co.OriginYear)
	}
}

func TestForm1116AMTVariant(t *testing.T) {
	calc := ftcCalc()
	input := &domain.Form1116Input{
		AMTI: decimal.NewFromInt(200000),
		Baskets: []domain.FTCBasketInput{{
			Category:           domain.FTCCategoryPassive,
			GrossForeignIncome: decimal.NewFromInt(40000),
			TaxesPaid:          []domain.ForeignCountryTax{{Country: "DE", Amount: decimal.NewFromInt(9000)}},
		}},
	}
	tmt := decimal.NewFromInt(40000)
	res, err := calc.CalculateAMT(input, ftcCtx(), tmt)
	require.NoError(t, err)
	assert.False(t, res.ApproximateRatio)

	// Limitation = 40000 * (40000/200000) = 8000.
	assert.True(t, res.Baskets[0].Limitation.Equal(decimal.NewFromInt(8000)))
	assert.True(t, res.TotalCredit.Equal(decimal.NewFromInt(8000)))

	// Without AMTI the regular-tax ratio stands in, flagged approximate.
	input.AMTI = decimal.Zero
	res, err = calc.CalculateAMT(input, ftcCtx(), tmt)
	require.NoError(t, err)
	assert.True(t, res.ApproximateRatio)

	// The AMT FTC never reduces TMT below zero.
	assert.True(t, res.TotalCredit.LessThanOrEqual(tmt))
}
