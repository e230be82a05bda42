package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form8606Calculator applies the nondeductible IRA pro-rata rule (Parts I
// and II) and the Roth ordering rules (Part III).
type Form8606Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm8606Calculator builds the calculator from a year table.
func NewForm8606Calculator(cfg *domain.TaxYearConfig) *Form8606Calculator {
	return &Form8606Calculator{Config: cfg}
}

// FirstHomeLifetimeCap is the lifetime first-home exception amount.
var FirstHomeLifetimeCap = decimal.NewFromInt(10000)

// Form8606Result is the computed form. Conservation holds:
// RemainingBasis = TotalBasis - NontaxableDistribution, never negative.
type Form8606Result struct {
	TotalBasis             decimal.Decimal `json:"total_basis"`
	AggregateValue         decimal.Decimal `json:"aggregate_value"`
	NontaxablePercentage   decimal.Decimal `json:"nontaxable_percentage"`
	NontaxableDistribution decimal.Decimal `json:"nontaxable_distribution"`
	TaxableDistribution    decimal.Decimal `json:"taxable_distribution"`
	RemainingBasis         decimal.Decimal `json:"remaining_basis"`

	// Part II: the same pro-rata split applied to Roth conversions.
	ConversionNontaxable decimal.Decimal `json:"conversion_nontaxable"`
	ConversionTaxable    decimal.Decimal `json:"conversion_taxable"`

	// Part III: Roth distribution ordering.
	RothQualified         bool            `json:"roth_qualified"`
	RothFromContributions decimal.Decimal `json:"roth_from_contributions"`
	RothFromConversions   decimal.Decimal `json:"roth_from_conversions"`
	RothFromEarnings      decimal.Decimal `json:"roth_from_earnings"`
	RothTaxable           decimal.Decimal `json:"roth_taxable"`
	RothPenaltySubject    decimal.Decimal `json:"roth_penalty_subject"`
}

// Summary returns the compact line projection used in report content.
func (r *Form8606Result) Summary() map[string]any {
	return map[string]any{
		"total_basis":             emit(r.TotalBasis),
		"nontaxable_percentage":   r.NontaxablePercentage.Round(6),
		"nontaxable_distribution": emit(r.NontaxableDistribution),
		"taxable_distribution":    emit(r.TaxableDistribution),
		"remaining_basis":         emit(r.RemainingBasis),
		"roth_taxable":            emit(r.RothTaxable),
	}
}

// Calculate runs Parts I through III.
func (c *Form8606Calculator) Calculate(input *domain.Form8606Input, taxYear int) (*Form8606Result, error) {
	if input == nil {
		input = &domain.Form8606Input{}
	}
	res := &Form8606Result{}

	// Part I: pro-rata rule. Basis spreads across every traditional IRA
	// dollar that left or remained this year.
	res.TotalBasis = input.PriorBasis.Add(input.CurrentNondeductible)
	outflow := input.Distributions.Add(input.Conversions)
	res.AggregateValue = input.YearEndValue.Add(outflow)

	if res.AggregateValue.GreaterThan(decimal.Zero) {
		res.NontaxablePercentage = decimal.Min(one, res.TotalBasis.Div(res.AggregateValue))
	} else if res.TotalBasis.GreaterThan(decimal.Zero) {
		res.NontaxablePercentage = one
	}

	res.NontaxableDistribution = outflow.Mul(res.NontaxablePercentage)
	res.TaxableDistribution = outflow.Sub(res.NontaxableDistribution)
	res.RemainingBasis = floorZero(res.TotalBasis.Sub(res.NontaxableDistribution))

	// Part II: the conversion share of the same split.
	res.ConversionNontaxable = input.Conversions.Mul(res.NontaxablePercentage)
	res.ConversionTaxable = input.Conversions.Sub(res.ConversionNontaxable)

	// Part III: Roth ordering is contributions, then conversions, then
	// earnings.
	c.calculateRoth(input, taxYear, res)

	return res, nil
}

func (c *Form8606Calculator) calculateRoth(input *domain.Form8606Input, taxYear int, res *Form8606Result) {
	dist := input.RothDistributions
	if dist.LessThanOrEqual(decimal.Zero) {
		return
	}

	res.RothQualified = c.rothQualified(input, taxYear)

	res.RothFromContributions = decimal.Min(dist, input.RothContributionBasis)
	remaining := dist.Sub(res.RothFromContributions)

	res.RothFromConversions = decimal.Min(remaining, input.RothConversionBasis)
	remaining = remaining.Sub(res.RothFromConversions)

	res.RothFromEarnings = remaining

	if res.RothQualified {
		return
	}

	// Earnings are taxable in a nonqualified distribution; contribution and
	// conversion basis come out tax-free.
	res.RothTaxable = res.RothFromEarnings

	// The 10% penalty reaches earnings, and conversion basis withdrawn
	// within the simplified 5-year conversion window before age 59 1/2.
	penalty := res.RothFromEarnings
	if input.ConversionWithin5Years && input.Age < 59 {
		penalty = penalty.Add(res.RothFromConversions)
	}
	// First-home expenses shelter up to the lifetime cap.
	shelter := decimal.Min(input.FirstHomeExpense, FirstHomeLifetimeCap)
	res.RothPenaltySubject = floorZero(penalty.Sub(shelter))
}

// rothQualified tests the 5-year period from the first-ever Roth
// contribution combined with the age, disability, death, or first-home
// conditions.
func (c *Form8606Calculator) rothQualified(input *domain.Form8606Input, taxYear int) bool {
	if input.FirstRothYear == 0 || taxYear < input.FirstRothYear+5 {
		return false
	}
	if input.Age >= 59 {
		// Age 59 1/2, tested in whole years.
		return true
	}
	if input.Disabled || input.Inherited {
		return true
	}
	return input.FirstHomeExpense.GreaterThan(decimal.Zero)
}
