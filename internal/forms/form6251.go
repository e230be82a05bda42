package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form6251Calculator computes the alternative minimum tax. Part I rebuilds
// AMTI from regular taxable income plus preference items, Part II applies the
// exemption phaseout and the 26/28 rate schedule, Part III reprices the
// preferential-rate slice when net capital gain or qualified dividends are
// present.
type Form6251Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm6251Calculator builds the calculator from a year table.
func NewForm6251Calculator(cfg *domain.TaxYearConfig) *Form6251Calculator {
	return &Form6251Calculator{Config: cfg}
}

// AMTContext carries the cross-form figures Form 6251 depends on: the regular
// tax computation and the Schedule A detail.
type AMTContext struct {
	FilingStatus       domain.FilingStatus
	TaxableIncome      decimal.Decimal
	RegularTaxForAMT   decimal.Decimal
	Itemized           bool
	StandardDeduction  decimal.Decimal
	SALTDeducted       decimal.Decimal
	InvestmentInterest decimal.Decimal
	QualifiedDividends decimal.Decimal
	NetCapitalGain     decimal.Decimal
	PriorYearMTC       decimal.Decimal
}

// Form6251Result is the computed form.
type Form6251Result struct {
	AMTI             decimal.Decimal `json:"amti"`
	ISOSpread        decimal.Decimal `json:"iso_spread"`
	PABInterest      decimal.Decimal `json:"pab_interest"`
	DepreciationAdj  decimal.Decimal `json:"depreciation_adjustment"`
	SALTAddback      decimal.Decimal `json:"salt_addback"`
	Exemption        decimal.Decimal `json:"exemption"`
	AMTTaxable       decimal.Decimal `json:"amt_taxable"`
	TMT              decimal.Decimal `json:"tmt"`
	AMT              decimal.Decimal `json:"amt"`
	MTCApplied       decimal.Decimal `json:"mtc_applied"`
	DeferralAmount   decimal.Decimal `json:"deferral_amount"`
	ExclusionAmount  decimal.Decimal `json:"exclusion_amount"`
	UsedPreferential bool            `json:"used_preferential_rates"`
}

// HasLiability reports whether the form produced positive AMT.
func (r *Form6251Result) HasLiability() bool {
	return r.AMT.GreaterThan(decimal.Zero)
}

// Summary returns the compact line projection used in report content.
func (r *Form6251Result) Summary() map[string]any {
	return map[string]any{
		"amti":        emit(r.AMTI),
		"exemption":   emit(r.Exemption),
		"amt_taxable": emit(r.AMTTaxable),
		"tmt":         emit(r.TMT),
		"amt":         emit(r.AMT),
	}
}

// Calculate runs Parts I through III.
func (c *Form6251Calculator) Calculate(input *domain.Form6251Input, ctx AMTContext) (*Form6251Result, error) {
	if input == nil {
		input = &domain.Form6251Input{}
	}
	res := &Form6251Result{}

	// Part I: AMTI = taxable income + adjustments. The SALT addback applies
	// only when itemizing, capped at the deducted (already capped) amount.
	amti := ctx.TaxableIncome

	if ctx.Itemized {
		saltCap := c.Config.SALTCapFor(ctx.FilingStatus)
		res.SALTAddback = decimal.Min(ctx.SALTDeducted, saltCap)
		amti = amti.Add(res.SALTAddback)
		amti = amti.Add(ctx.InvestmentInterest)
	} else {
		// The standard deduction is not allowed against AMTI.
		amti = amti.Add(ctx.StandardDeduction)
	}

	// State tax refund taxed in regular income reverses out of AMTI.
	amti = amti.Sub(input.TaxRefundIncluded)

	for _, ex := range input.ISOExercises {
		res.ISOSpread = res.ISOSpread.Add(ex.Spread())
	}
	amti = amti.Add(res.ISOSpread)
	res.DeferralAmount = res.DeferralAmount.Add(res.ISOSpread)

	for _, bond := range input.PrivateActivityBonds {
		if bond.PostAugust1986 {
			res.PABInterest = res.PABInterest.Add(bond.Interest)
		}
	}
	amti = amti.Add(res.PABInterest)
	res.ExclusionAmount = res.ExclusionAmount.Add(res.PABInterest)

	for _, dep := range input.Depreciation {
		res.DepreciationAdj = res.DepreciationAdj.Add(dep.Difference())
	}
	amti = amti.Add(res.DepreciationAdj)
	res.DeferralAmount = res.DeferralAmount.Add(res.DepreciationAdj)

	amti = amti.Add(input.AdjustedGainLoss)
	res.DeferralAmount = res.DeferralAmount.Add(input.AdjustedGainLoss)

	for _, adj := range input.OtherAdjustments {
		amti = amti.Add(adj.Amount)
		if adj.IsDeferral {
			res.DeferralAmount = res.DeferralAmount.Add(adj.Amount)
		} else {
			res.ExclusionAmount = res.ExclusionAmount.Add(adj.Amount)
		}
	}
	// SALT is a permanent difference.
	res.ExclusionAmount = res.ExclusionAmount.Add(res.SALTAddback)

	res.AMTI = amti

	// Part II: exemption with phaseout, then the two-rate schedule.
	res.Exemption = c.ExemptionFor(ctx.FilingStatus, amti)
	res.AMTTaxable = floorZero(amti.Sub(res.Exemption))

	prefIncome := floorZero(ctx.NetCapitalGain).Add(floorZero(ctx.QualifiedDividends))
	if prefIncome.GreaterThan(decimal.Zero) {
		res.UsedPreferential = true
		res.TMT = c.tentativeTaxWithPreferential(ctx.FilingStatus, res.AMTTaxable, prefIncome)
	} else {
		res.TMT = c.tentativeTax(ctx.FilingStatus, res.AMTTaxable)
	}

	amt := floorZero(res.TMT.Sub(ctx.RegularTaxForAMT))

	// Prior-year minimum tax credit reduces AMT, never below zero.
	res.MTCApplied = decimal.Min(floorZero(ctx.PriorYearMTC), amt)
	res.AMT = amt.Sub(res.MTCApplied)

	return res, nil
}

// ExemptionFor applies the phaseout: the exemption shrinks 25 cents per
// dollar of AMTI over the phaseout start, floored at zero.
func (c *Form6251Calculator) ExemptionFor(fs domain.FilingStatus, amti decimal.Decimal) decimal.Decimal {
	base := c.Config.AMT.Exemption[fs]
	start := c.Config.AMT.PhaseoutStart[fs]
	if amti.LessThanOrEqual(start) {
		return base
	}
	reduction := amti.Sub(start).Mul(c.Config.AMT.PhaseoutRate)
	return floorZero(base.Sub(reduction))
}

// tentativeTax applies the 26%/28% schedule to the AMT taxable amount.
func (c *Form6251Calculator) tentativeTax(fs domain.FilingStatus, amtTaxable decimal.Decimal) decimal.Decimal {
	threshold := c.Config.AMT.HighRateThreshold
	if fs.IsMFS() {
		threshold = c.Config.AMT.HighRateThresholdMFS
	}
	if amtTaxable.LessThanOrEqual(threshold) {
		return amtTaxable.Mul(c.Config.AMT.LowRate)
	}
	low := threshold.Mul(c.Config.AMT.LowRate)
	high := amtTaxable.Sub(threshold).Mul(c.Config.AMT.HighRate)
	return low.Add(high)
}

// tentativeTaxWithPreferential taxes the preferential slice at capital gains
// rates stacked on top of the ordinary slice, and the remainder at 26/28.
func (c *Form6251Calculator) tentativeTaxWithPreferential(fs domain.FilingStatus, amtTaxable, preferential decimal.Decimal) decimal.Decimal {
	pref := decimal.Min(preferential, amtTaxable)
	ordinary := amtTaxable.Sub(pref)
	tax := c.tentativeTax(fs, ordinary)

	for _, bracket := range c.Config.CapGainsBrackets[fs] {
		if ordinary.Add(pref).LessThanOrEqual(bracket.Min) {
			break
		}
		sliceTop := decimal.Min(ordinary.Add(pref), bracket.Max)
		sliceBottom := decimal.Max(ordinary, bracket.Min)
		if sliceTop.GreaterThan(sliceBottom) {
			tax = tax.Add(sliceTop.Sub(sliceBottom).Mul(bracket.Rate))
		}
	}
	return tax
}

// AMTRiskFactor is a lightweight signal used for UI warnings without running
// the full form.
type AMTRiskFactor struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckAMTLikely screens for the common AMT triggers. It intentionally avoids
// the full Part I recomputation.
func (c *Form6251Calculator) CheckAMTLikely(taxableIncome, saltDeduction, isoSpread decimal.Decimal, fs domain.FilingStatus) []AMTRiskFactor {
	var factors []AMTRiskFactor

	if isoSpread.GreaterThan(decimal.Zero) {
		factors = append(factors, AMTRiskFactor{
			Code:    "iso_spread",
			Message: "ISO exercise spread is an AMT preference item",
		})
	}
	saltCap := c.Config.SALTCapFor(fs)
	if saltDeduction.GreaterThanOrEqual(saltCap) {
		factors = append(factors, AMTRiskFactor{
			Code:    "salt_at_cap",
			Message: "state and local tax deduction at the cap is added back for AMT",
		})
	}
	exemption := c.Config.AMT.Exemption[fs]
	phaseoutStart := c.Config.AMT.PhaseoutStart[fs]
	approxAMTI := taxableIncome.Add(saltDeduction).Add(isoSpread)
	if approxAMTI.GreaterThan(phaseoutStart) {
		factors = append(factors, AMTRiskFactor{
			Code:    "exemption_phaseout",
			Message: "income level reduces or eliminates the AMT exemption",
		})
	} else if approxAMTI.GreaterThan(exemption.Mul(decimal.NewFromInt(3))) {
		factors = append(factors, AMTRiskFactor{
			Code:    "high_income",
			Message: "income level is in the range where AMT commonly applies",
		})
	}
	return factors
}
