package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form8801Calculator computes the minimum tax credit for prior-year AMT paid
// on deferral items. Part I recomputes the prior year's tentative minimum
// tax on exclusion items only; Part II assembles the available credit from
// FIFO carryforwards plus the deferral share of last year's AMT and applies
// the regular-tax-over-TMT limit.
type Form8801Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm8801Calculator builds the calculator from a year table.
func NewForm8801Calculator(cfg *domain.TaxYearConfig) *Form8801Calculator {
	return &Form8801Calculator{Config: cfg}
}

// MTCContext carries the current-year figures the credit limit needs.
type MTCContext struct {
	FilingStatus domain.FilingStatus
	RegularTax   decimal.Decimal
	TMT          decimal.Decimal
	TaxYear      int
}

// Form8801Result is the computed form.
type Form8801Result struct {
	NetMinTaxOnExclusions decimal.Decimal          `json:"net_min_tax_on_exclusions"`
	CurrentYearMTC        decimal.Decimal          `json:"current_year_mtc"`
	CarryforwardAvailable decimal.Decimal          `json:"carryforward_available"`
	TotalAvailable        decimal.Decimal          `json:"total_available"`
	CreditLimit           decimal.Decimal          `json:"credit_limit"`
	CreditAllowed         decimal.Decimal          `json:"credit_allowed"`
	NextYearCarryforward  decimal.Decimal          `json:"next_year_carryforward"`
	UpdatedCarryforwards  []domain.MTCCarryforward `json:"updated_carryforwards,omitempty"`
}

// Summary returns the compact line projection used in report content.
func (r *Form8801Result) Summary() map[string]any {
	return map[string]any{
		"total_available":        emit(r.TotalAvailable),
		"credit_limit":           emit(r.CreditLimit),
		"credit_allowed":         emit(r.CreditAllowed),
		"next_year_carryforward": emit(r.NextYearCarryforward),
	}
}

// Calculate runs Parts I and II.
func (c *Form8801Calculator) Calculate(input *domain.Form8801Input, ctx MTCContext) (*Form8801Result, error) {
	if input == nil {
		input = &domain.Form8801Input{}
	}
	res := &Form8801Result{}

	// Part I: TMT recomputed with exclusion items only. Exclusion items are
	// permanent differences and never generate credit; this line exists to
	// separate them out.
	exclusionTotal := input.Exclusions.SALT.
		Add(input.Exclusions.PABInterest).
		Add(input.Exclusions.Depletion).
		Add(input.Exclusions.Other)
	exclusionAMTI := input.PriorTaxableIncome.Add(exclusionTotal)
	amtCalc := NewForm6251Calculator(c.Config)
	exemption := amtCalc.ExemptionFor(ctx.FilingStatus, exclusionAMTI)
	res.NetMinTaxOnExclusions = amtCalc.tentativeTax(ctx.FilingStatus, floorZero(exclusionAMTI.Sub(exemption)))

	// Part II: the deferral-only portion of last year's AMT generates
	// credit. With an unknown breakdown the whole AMT carries.
	res.CurrentYearMTC = c.deferralPortion(input.PriorYear)

	for _, cf := range input.Carryforwards {
		res.CarryforwardAvailable = res.CarryforwardAvailable.Add(cf.Remaining())
	}
	res.TotalAvailable = res.CarryforwardAvailable.Add(res.CurrentYearMTC)

	res.CreditLimit = floorZero(ctx.RegularTax.Sub(ctx.TMT))
	res.CreditAllowed = decimal.Min(res.TotalAvailable, res.CreditLimit)

	// Consume carryforwards FIFO before touching the current-year credit.
	fromCarryforwards := decimal.Min(res.CreditAllowed, res.CarryforwardAvailable)
	_, updated := domain.ConsumeFIFO(input.Carryforwards, fromCarryforwards,
		func(cf domain.MTCCarryforward) domain.CarryoverRecord { return cf.CarryoverRecord },
		func(cf domain.MTCCarryforward, r domain.CarryoverRecord) domain.MTCCarryforward {
			cf.CarryoverRecord = r
			return cf
		},
	)

	// Any unconsumed current-year credit joins the carryforward pool;
	// the minimum tax credit never expires.
	currentUsed := res.CreditAllowed.Sub(fromCarryforwards)
	currentRemaining := res.CurrentYearMTC.Sub(currentUsed)
	if currentRemaining.GreaterThan(decimal.Zero) {
		updated = append(updated, domain.MTCCarryforward{
			CarryoverRecord: domain.CarryoverRecord{
				OriginYear:     ctx.TaxYear - 1,
				OriginalAmount: res.CurrentYearMTC,
				UsedAmount:     currentUsed,
			},
		})
	}
	res.UpdatedCarryforwards = updated
	res.NextYearCarryforward = res.TotalAvailable.Sub(res.CreditAllowed)

	return res, nil
}

// deferralPortion splits prior-year AMT by the deferral/exclusion adjustment
// ratio. Only deferral (timing) items generate minimum tax credit.
func (c *Form8801Calculator) deferralPortion(prior domain.PriorYearAMTDetail) decimal.Decimal {
	if prior.TotalAMT.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if !prior.BreakdownKnown {
		return prior.TotalAMT
	}
	denom := prior.DeferralAdjustments.Add(prior.ExclusionAdjustments)
	if denom.LessThanOrEqual(decimal.Zero) {
		return prior.TotalAMT
	}
	return prior.TotalAMT.Mul(prior.DeferralAdjustments).Div(denom)
}
