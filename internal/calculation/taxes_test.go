package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finhelm/taxengine/internal/domain"
)

func TestOrdinaryBracketWalk(t *testing.T) {
	rtc := NewRegularTaxCalculator(domain.NewTaxYear2025())

	tests := []struct {
		name   string
		income string
		fs     domain.FilingStatus
		want   string
	}{
		{"zero income", "0", domain.FilingSingle, "0"},
		{"inside first bracket", "10000", domain.FilingSingle, "1000"},
		{"first bracket boundary", "11925", domain.FilingSingle, "1192.5"},
		{"spanning three brackets", "100000", domain.FilingSingle, "16914"},
		{"joint spanning two brackets", "50000", domain.FilingMarriedJoint, "5523"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rtc.OrdinaryTax(decimal.RequireFromString(tt.income), tt.fs)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestPreferentialStacking(t *testing.T) {
	rtc := NewRegularTaxCalculator(domain.NewTaxYear2025())

	// 60000 taxable, 20000 preferential: ordinary slice 40000, preferential
	// stacked from 40000 to 60000. 8350 falls in the 0% band (up to 48350),
	// 11650 at 15%.
	got := rtc.Tax(decimal.NewFromInt(60000), decimal.NewFromInt(20000), domain.FilingSingle)
	ordinary := rtc.OrdinaryTax(decimal.NewFromInt(40000), domain.FilingSingle)
	want := ordinary.Add(decimal.NewFromInt(11650).Mul(decimal.RequireFromString("0.15")))
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestPreferentialAllInZeroBand(t *testing.T) {
	rtc := NewRegularTaxCalculator(domain.NewTaxYear2025())

	// Everything under the 0% breakpoint: the preferential slice is free.
	got := rtc.Tax(decimal.NewFromInt(40000), decimal.NewFromInt(15000), domain.FilingSingle)
	want := rtc.OrdinaryTax(decimal.NewFromInt(25000), domain.FilingSingle)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestSETaxDecomposition(t *testing.T) {
	sec := NewSETaxCalculator(domain.NewTaxYear2025())
	res := sec.Calculate(decimal.NewFromInt(70000), decimal.Zero)

	assert.True(t, res.NetEarnings.Equal(decimal.RequireFromString("64645")), "got %s", res.NetEarnings)
	assert.True(t, res.SocialSecurity.Equal(decimal.RequireFromString("8015.98")), "got %s", res.SocialSecurity)
	assert.True(t, res.Medicare.Equal(decimal.RequireFromString("1874.705")), "got %s", res.Medicare)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("9890.685")), "got %s", res.Total)
	assert.True(t, res.HalfDeduction.Equal(decimal.RequireFromString("4945.3425")), "got %s", res.HalfDeduction)
}

func TestSETaxWageBaseCap(t *testing.T) {
	sec := NewSETaxCalculator(domain.NewTaxYear2025())

	// W-2 wages consume most of the base; only the remainder bears the
	// Social Security piece.
	res := sec.Calculate(decimal.NewFromInt(100000), decimal.NewFromInt(150000))
	remaining := decimal.NewFromInt(26100)
	assert.True(t, res.SocialSecurity.Equal(remaining.Mul(decimal.RequireFromString("0.124"))), "got %s", res.SocialSecurity)
	// Medicare is uncapped.
	assert.True(t, res.Medicare.Equal(res.NetEarnings.Mul(decimal.RequireFromString("0.029"))))
}

func TestSETaxZeroOnLoss(t *testing.T) {
	sec := NewSETaxCalculator(domain.NewTaxYear2025())
	res := sec.Calculate(decimal.NewFromInt(-5000), decimal.Zero)
	assert.True(t, res.Total.IsZero())
	assert.True(t, res.HalfDeduction.IsZero())
}

func TestQBIDeductionCap(t *testing.T) {
	cfg := domain.NewTaxYear2025()

	// Uncapped: 20% of (70000 - 4945.3425).
	uncapped := QBIDeduction(cfg, decimal.NewFromInt(70000), decimal.RequireFromString("4945.3425"), decimal.NewFromInt(500000))
	assert.True(t, uncapped.Equal(decimal.RequireFromString("13010.9315")), "got %s", uncapped)

	// Capped at 20% of taxable income before the deduction.
	capped := QBIDeduction(cfg, decimal.NewFromInt(70000), decimal.RequireFromString("4945.3425"), decimal.NewFromInt(50000))
	assert.True(t, capped.Equal(decimal.NewFromInt(10000)), "got %s", capped)
}

func TestStandardDeductionSeniors(t *testing.T) {
	cfg := domain.NewTaxYear2025()

	single := StandardDeduction(cfg, domain.TaxpayerInfo{FilingStatus: domain.FilingSingle, Age: 70})
	assert.True(t, single.Equal(decimal.NewFromInt(16550)))

	both := StandardDeduction(cfg, domain.TaxpayerInfo{FilingStatus: domain.FilingMarriedJoint, Age: 66, SpouseAge: 67})
	assert.True(t, both.Equal(decimal.NewFromInt(33100)))
}

func TestItemizedTotalSALTCap(t *testing.T) {
	cfg := domain.NewTaxYear2025()
	it := domain.ItemizedDeductions{
		StateLocalTaxes:  decimal.NewFromInt(24000),
		MortgageInterest: decimal.NewFromInt(12000),
	}
	assert.True(t, ItemizedTotal(cfg, it, domain.FilingSingle, decimal.Zero).Equal(decimal.NewFromInt(22000)))
	assert.True(t, ItemizedTotal(cfg, it, domain.FilingMarriedSeparate, decimal.Zero).Equal(decimal.NewFromInt(17000)))
}

func TestItemizedTotalMedicalAGIFloor(t *testing.T) {
	cfg := domain.NewTaxYear2025()
	it := domain.ItemizedDeductions{MedicalExpenses: decimal.NewFromInt(12000)}

	// 7.5% of 100,000 = 7,500; only the 4,500 excess is deductible.
	agi := decimal.NewFromInt(100000)
	assert.True(t, ItemizedTotal(cfg, it, domain.FilingSingle, agi).Equal(decimal.NewFromInt(4500)))

	// Below the floor nothing survives.
	agi = decimal.NewFromInt(200000)
	assert.True(t, ItemizedTotal(cfg, it, domain.FilingSingle, agi).IsZero())

	// Zero AGI leaves the expenses intact.
	assert.True(t, ItemizedTotal(cfg, it, domain.FilingSingle, decimal.Zero).Equal(decimal.NewFromInt(12000)))
}
