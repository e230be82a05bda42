package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form8814Calculator applies the parent's election to report a child's
// interest and dividends on the parent's return.
type Form8814Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm8814Calculator builds the calculator from a year table.
func NewForm8814Calculator(cfg *domain.TaxYearConfig) *Form8814Calculator {
	return &Form8814Calculator{Config: cfg}
}

// ChildResult is the per-child outcome of the election.
type ChildResult struct {
	Name              string          `json:"name"`
	Eligible          bool            `json:"eligible"`
	IneligibleReason  string          `json:"ineligible_reason,omitempty"`
	GrossIncome       decimal.Decimal `json:"gross_income"`
	TaxAtChildRate    decimal.Decimal `json:"tax_at_child_rate"`
	IncludedOnParent  decimal.Decimal `json:"included_on_parent"`
	IncludedOrdinary  decimal.Decimal `json:"included_ordinary"`
	IncludedQualified decimal.Decimal `json:"included_qualified"`
	IncludedCapGains  decimal.Decimal `json:"included_cap_gains"`
}

// Form8814Result is the computed form across all elected children.
type Form8814Result struct {
	Children           []ChildResult   `json:"children"`
	TotalAdditionalTax decimal.Decimal `json:"total_additional_tax"`
	TotalIncluded      decimal.Decimal `json:"total_included"`
	IncludedOrdinary   decimal.Decimal `json:"included_ordinary"`
	IncludedQualified  decimal.Decimal `json:"included_qualified"`
	IncludedCapGains   decimal.Decimal `json:"included_cap_gains"`
}

// Summary returns the compact line projection used in report content.
func (r *Form8814Result) Summary() map[string]any {
	return map[string]any{
		"children":             len(r.Children),
		"total_additional_tax": emit(r.TotalAdditionalTax),
		"total_included":       emit(r.TotalIncluded),
	}
}

// Calculate evaluates eligibility and the tiered inclusion per child.
func (c *Form8814Calculator) Calculate(input *domain.Form8814Input) (*Form8814Result, error) {
	if input == nil {
		input = &domain.Form8814Input{}
	}
	res := &Form8814Result{}
	kiddie := c.Config.Kiddie

	for _, child := range input.Children {
		cr := ChildResult{Name: child.Name}
		cr.GrossIncome = child.Interest.
			Add(child.OrdinaryDividends).
			Add(child.CapitalGainDistributions).
			Add(child.AlaskaPFD)

		cr.Eligible, cr.IneligibleReason = c.eligible(child, kiddie, cr.GrossIncome)
		if !cr.Eligible {
			res.Children = append(res.Children, cr)
			continue
		}

		// First band excluded, second band taxed at the child rate, the
		// excess lands on the parent's return.
		afterExclusion := floorZero(cr.GrossIncome.Sub(kiddie.Exclusion))
		childRateBand := decimal.Min(afterExclusion, kiddie.ChildRateBand)
		cr.TaxAtChildRate = childRateBand.Mul(kiddie.ChildRate)
		cr.IncludedOnParent = floorZero(afterExclusion.Sub(kiddie.ChildRateBand))

		// Allocate the included amount by the child's income composition.
		if cr.IncludedOnParent.GreaterThan(decimal.Zero) && cr.GrossIncome.GreaterThan(decimal.Zero) {
			qualified := child.QualifiedDividends
			capGains := child.CapitalGainDistributions
			ordinary := cr.GrossIncome.Sub(qualified).Sub(capGains)

			cr.IncludedOrdinary = cr.IncludedOnParent.Mul(ordinary).Div(cr.GrossIncome)
			cr.IncludedQualified = cr.IncludedOnParent.Mul(qualified).Div(cr.GrossIncome)
			cr.IncludedCapGains = cr.IncludedOnParent.Mul(capGains).Div(cr.GrossIncome)
		}

		res.TotalAdditionalTax = res.TotalAdditionalTax.Add(cr.TaxAtChildRate)
		res.TotalIncluded = res.TotalIncluded.Add(cr.IncludedOnParent)
		res.IncludedOrdinary = res.IncludedOrdinary.Add(cr.IncludedOrdinary)
		res.IncludedQualified = res.IncludedQualified.Add(cr.IncludedQualified)
		res.IncludedCapGains = res.IncludedCapGains.Add(cr.IncludedCapGains)
		res.Children = append(res.Children, cr)
	}
	return res, nil
}

func (c *Form8814Calculator) eligible(child domain.ChildInvestmentIncome, kiddie domain.KiddieTaxConfig, gross decimal.Decimal) (bool, string) {
	ageLimit := kiddie.AgeLimit
	if child.FullTimeStudent {
		ageLimit = kiddie.StudentAgeLimit
	}
	switch {
	case child.Age >= ageLimit:
		return false, "child over the age limit"
	case child.OtherIncome.GreaterThan(decimal.Zero):
		return false, "income beyond interest, dividends and capital gain distributions"
	case gross.GreaterThanOrEqual(kiddie.GrossIncomeLimit):
		return false, "gross income at or over the election limit"
	case child.FederalWithholding.GreaterThan(decimal.Zero):
		return false, "child had federal withholding"
	case child.EstimatedPayments.GreaterThan(decimal.Zero):
		return false, "child made estimated tax payments"
	}
	return true, ""
}
