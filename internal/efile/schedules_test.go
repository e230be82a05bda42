package efile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/calculation"
	"github.com/finhelm/taxengine/internal/domain"
)

func computed(t *testing.T, tr *domain.TaxReturn) *calculation.FederalTaxResult {
	t.Helper()
	res, err := calculation.NewFederalEngine(domain.NewTaxYear2025()).
		Calculate(context.Background(), tr, domain.PriorYearCarryovers{})
	require.NoError(t, err)
	return res
}

func baseReturn() *domain.TaxReturn {
	return &domain.TaxReturn{
		TaxYear:  2025,
		Taxpayer: domain.TaxpayerInfo{FilingStatus: domain.FilingSingle, Age: 40},
		Income: domain.Income{
			W2Forms: []domain.W2{{Employer: "Acme", Wages: decimal.NewFromInt(90000)}},
		},
	}
}

func TestWageOnlyReturnNeedsNoSchedules(t *testing.T) {
	tr := baseReturn()
	assert.Empty(t, RequiredSchedules(tr, computed(t, tr)))
}

func TestSelfEmploymentSchedules(t *testing.T) {
	tr := baseReturn()
	tr.Income.BusinessIncome = decimal.NewFromInt(40000)

	schedules := RequiredSchedules(tr, computed(t, tr))
	assert.Contains(t, schedules, Schedule1)
	assert.Contains(t, schedules, Schedule2)
	assert.Contains(t, schedules, ScheduleC)
	assert.Contains(t, schedules, ScheduleSE)
	assert.NotContains(t, schedules, ScheduleA)
	assert.NotContains(t, schedules, ScheduleB)
}

func TestItemizerNeedsScheduleA(t *testing.T) {
	tr := baseReturn()
	tr.Deductions.Itemize = true
	tr.Deductions.Itemized.MortgageInterest = decimal.NewFromInt(20000)

	assert.Contains(t, RequiredSchedules(tr, computed(t, tr)), ScheduleA)
}

func TestScheduleBThreshold(t *testing.T) {
	tr := baseReturn()
	tr.Income.Interest = decimal.NewFromInt(1500)
	assert.NotContains(t, RequiredSchedules(tr, computed(t, tr)), ScheduleB)

	tr.Income.Interest = decimal.RequireFromString("1500.01")
	assert.Contains(t, RequiredSchedules(tr, computed(t, tr)), ScheduleB)

	tr.Income.Interest = decimal.Zero
	tr.Income.Dividends = decimal.NewFromInt(2000)
	assert.Contains(t, RequiredSchedules(tr, computed(t, tr)), ScheduleB)
}

func TestRentalNeedsScheduleEAndSchedule1(t *testing.T) {
	tr := baseReturn()
	tr.Income.RentalProperties = []domain.RentalProperty{{NetIncome: decimal.NewFromInt(12000)}}

	schedules := RequiredSchedules(tr, computed(t, tr))
	assert.Contains(t, schedules, ScheduleE)
	assert.Contains(t, schedules, Schedule1)
	assert.NotContains(t, schedules, ScheduleSE)
}

func TestSchedule1FiresOnAdjustmentsAlone(t *testing.T) {
	tr := baseReturn()
	tr.Deductions.StudentLoanInterest = decimal.NewFromInt(1800)

	assert.Contains(t, RequiredSchedules(tr, computed(t, tr)), Schedule1)
}

func TestBuildPayload(t *testing.T) {
	tr := baseReturn()
	tr.Income.BusinessIncome = decimal.NewFromInt(40000)
	res := computed(t, tr)

	p := BuildPayload(tr, res, map[string]any{"total_tax": "9000.00"})
	assert.Equal(t, SchemaVersion, p.SchemaVersion)
	assert.Equal(t, 2025, p.TaxYear)
	assert.NotEmpty(t, p.Schedules)
	assert.Equal(t, "9000.00", p.Content["total_tax"])
}
