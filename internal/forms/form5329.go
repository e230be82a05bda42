package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form5329Calculator computes the additional taxes on qualified plans. Each
// part is an independent additive component: the 10% early-distribution
// penalty, the 6% excises on excess contributions, and the RMD shortfall
// penalty.
type Form5329Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm5329Calculator builds the calculator from a year table.
func NewForm5329Calculator(cfg *domain.TaxYearConfig) *Form5329Calculator {
	return &Form5329Calculator{Config: cfg}
}

var (
	earlyDistributionRate = decimal.NewFromFloat(0.10)
	excessExciseRate      = decimal.NewFromFloat(0.06)
	rmdPenaltyRate        = decimal.NewFromFloat(0.25)
	rmdCorrectedRate      = decimal.NewFromFloat(0.10)
)

// ExcessResult is one 6% excise component.
type ExcessResult struct {
	AccountType string          `json:"account_type"`
	Excess      decimal.Decimal `json:"excess"`
	Excise      decimal.Decimal `json:"excise"`
}

// Form5329Result is the computed form.
type Form5329Result struct {
	EarlyDistributionTax decimal.Decimal `json:"early_distribution_tax"`
	ExcessResults        []ExcessResult  `json:"excess_results,omitempty"`
	ExcessExciseTotal    decimal.Decimal `json:"excess_excise_total"`
	RMDShortfall         decimal.Decimal `json:"rmd_shortfall"`
	RMDPenalty           decimal.Decimal `json:"rmd_penalty"`
	RMDWaived            bool            `json:"rmd_waived,omitempty"`
	TotalAdditionalTax   decimal.Decimal `json:"total_additional_tax"`
}

// Summary returns the compact line projection used in report content.
func (r *Form5329Result) Summary() map[string]any {
	return map[string]any{
		"early_distribution_tax": emit(r.EarlyDistributionTax),
		"excess_excise_total":    emit(r.ExcessExciseTotal),
		"rmd_penalty":            emit(r.RMDPenalty),
		"total_additional_tax":   emit(r.TotalAdditionalTax),
	}
}

// Calculate sums the nine parts.
func (c *Form5329Calculator) Calculate(input *domain.Form5329Input) (*Form5329Result, error) {
	if input == nil {
		input = &domain.Form5329Input{}
	}
	res := &Form5329Result{}

	// Part I: 10% on the taxable amount net of any exception.
	for _, ed := range input.EarlyDistributions {
		subject := floorZero(ed.TaxableAmount.Sub(ed.ExceptionAmount))
		res.EarlyDistributionTax = res.EarlyDistributionTax.Add(subject.Mul(earlyDistributionRate))
	}

	// Parts II-VII, IX: 6% excise on the cumulative excess, capped at the
	// year-end account value by statute; the excise applies to whichever is
	// smaller.
	for _, ec := range input.ExcessContributions {
		currentExcess := floorZero(ec.Contributions.Sub(ec.Limit))
		excess := floorZero(ec.PriorYearExcess.
			Add(currentExcess).
			Sub(ec.Withdrawn).
			Sub(ec.Recharacterized).
			Sub(ec.AppliedToPrior))
		base := excess
		if ec.YearEndValue.GreaterThan(decimal.Zero) {
			base = decimal.Min(excess, ec.YearEndValue)
		}
		excise := base.Mul(excessExciseRate)
		res.ExcessResults = append(res.ExcessResults, ExcessResult{
			AccountType: ec.AccountType,
			Excess:      excess,
			Excise:      excise,
		})
		res.ExcessExciseTotal = res.ExcessExciseTotal.Add(excise)
	}

	// Part VIII: RMD shortfall at 25%, reduced to 10% when corrected within
	// the correction window, waived entirely on a reasonable-cause request.
	if input.RMD != nil {
		res.RMDShortfall = floorZero(input.RMD.RequiredAmount.Sub(input.RMD.DistributedAmount))
		switch {
		case input.RMD.WaiverRequested:
			res.RMDWaived = true
		case input.RMD.CorrectedInWindow:
			res.RMDPenalty = res.RMDShortfall.Mul(rmdCorrectedRate)
		default:
			res.RMDPenalty = res.RMDShortfall.Mul(rmdPenaltyRate)
		}
	}

	res.TotalAdditionalTax = res.EarlyDistributionTax.
		Add(res.ExcessExciseTotal).
		Add(res.RMDPenalty)
	return res, nil
}

// RothContributionLimit applies the MAGI phaseout to the annual Roth IRA
// contribution limit: linear reduction across the phaseout range, a $200
// floor whenever the reduced amount is positive, rounded to the nearest $10.
func (c *Form5329Calculator) RothContributionLimit(magi decimal.Decimal, fs domain.FilingStatus, age int) decimal.Decimal {
	limit := c.Config.IRAContributionLimit
	if age >= 50 {
		limit = limit.Add(c.Config.IRACatchUp)
	}

	phaseout := c.Config.RothPhaseout[fs]
	ratio := phaseout.Ratio(magi)
	if ratio.Equal(one) {
		return limit
	}
	if ratio.IsZero() {
		return decimal.Zero
	}

	reduced := limit.Mul(ratio)
	// Round to the nearest $10.
	reduced = reduced.Div(decimal.NewFromInt(10)).Round(0).Mul(decimal.NewFromInt(10))
	floor := decimal.NewFromInt(200)
	if reduced.LessThan(floor) {
		return floor
	}
	return reduced
}
