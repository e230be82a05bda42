package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form5471Calculator determines U.S.-shareholder status in a controlled
// foreign corporation and the Subpart F and GILTI inclusions that follow.
// Schedules C/E/F/H/I-1 are carried through as structured inputs whose
// totals are derived, not recomputed.
type Form5471Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm5471Calculator builds the calculator from a year table.
func NewForm5471Calculator(cfg *domain.TaxYearConfig) *Form5471Calculator {
	return &Form5471Calculator{Config: cfg}
}

var (
	tenPercent     = decimal.NewFromFloat(0.10)
	qbaiReturnRate = decimal.NewFromFloat(0.10)
)

// Form5471Result is the computed form.
type Form5471Result struct {
	IsCFC             bool                       `json:"is_cfc"`
	TotalOwnership    decimal.Decimal            `json:"total_ownership"`
	IsTenPercentOwner bool                       `json:"is_ten_percent_owner"`
	InclusionRequired bool                       `json:"inclusion_required"`
	NetSubpartF       decimal.Decimal            `json:"net_subpart_f"`
	SubpartFInclusion decimal.Decimal            `json:"subpart_f_inclusion"`
	GILTIInclusion    decimal.Decimal            `json:"gilti_inclusion"`
	TotalInclusion    decimal.Decimal            `json:"total_inclusion"`
	ScheduleTotals    map[string]decimal.Decimal `json:"schedule_totals,omitempty"`
}

// Summary returns the compact line projection used in report content.
func (r *Form5471Result) Summary() map[string]any {
	return map[string]any{
		"is_cfc":              r.IsCFC,
		"total_ownership":     r.TotalOwnership.Round(6),
		"subpart_f_inclusion": emit(r.SubpartFInclusion),
		"gilti_inclusion":     emit(r.GILTIInclusion),
		"total_inclusion":     emit(r.TotalInclusion),
	}
}

// Calculate determines status and inclusions.
func (c *Form5471Calculator) Calculate(input *domain.Form5471Input) (*Form5471Result, error) {
	if input == nil {
		input = &domain.Form5471Input{}
	}
	res := &Form5471Result{IsCFC: input.IsCFC}

	// Direct + indirect + constructive ownership, as a fraction.
	res.TotalOwnership = input.DirectOwnership.
		Add(input.IndirectOwnership).
		Add(input.ConstructiveOwnership)
	res.IsTenPercentOwner = res.TotalOwnership.GreaterThanOrEqual(tenPercent)
	res.InclusionRequired = res.IsCFC && res.IsTenPercentOwner

	res.ScheduleTotals = map[string]decimal.Decimal{
		"schedule_c":  sumLines(input.ScheduleC),
		"schedule_e":  sumLines(input.ScheduleE),
		"schedule_f":  sumLines(input.ScheduleF),
		"schedule_h":  sumLines(input.ScheduleH),
		"schedule_i1": sumLines(input.ScheduleI1),
	}

	if !res.InclusionRequired {
		return res, nil
	}

	share := res.TotalOwnership

	// Subpart F: gross less the high-tax, de-minimis and same-country
	// exclusions, floored at zero, times the pro-rata share.
	res.NetSubpartF = floorZero(input.GrossSubpartF.
		Sub(input.HighTaxExclusion).
		Sub(input.DeMinimisExclusion).
		Sub(input.SameCountryExclusion))
	res.SubpartFInclusion = share.Mul(res.NetSubpartF)

	// GILTI: tested income above a 10% routine return on QBAI.
	giltiBase := floorZero(input.NetTestedIncome.Sub(input.QBAI.Mul(qbaiReturnRate)))
	res.GILTIInclusion = share.Mul(giltiBase)

	res.TotalInclusion = res.SubpartFInclusion.Add(res.GILTIInclusion)
	return res, nil
}

func sumLines(lines []domain.ScheduleLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
