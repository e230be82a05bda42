package forms

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form982Calculator excludes cancelled-debt income under an elected
// exclusion path and reduces tax attributes in statutory order. Credits
// are reduced one dollar for every three dollars of exclusion; everything
// else is dollar for dollar.
type Form982Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm982Calculator builds the calculator from a year table.
func NewForm982Calculator(cfg *domain.TaxYearConfig) *Form982Calculator {
	return &Form982Calculator{Config: cfg}
}

var creditReductionRate = decimal.NewFromInt(3)

// AttributeReduction records one step of the reduction sequence.
type AttributeReduction struct {
	Attribute string          `json:"attribute"`
	Before    decimal.Decimal `json:"before"`
	Reduction decimal.Decimal `json:"reduction"`
	After     decimal.Decimal `json:"after"`
}

// Form982Result is the computed form.
type Form982Result struct {
	CODIncome          decimal.Decimal      `json:"cod_income"`
	ExclusionLimit     decimal.Decimal      `json:"exclusion_limit"`
	ExcludedAmount     decimal.Decimal      `json:"excluded_amount"`
	TaxableCOD         decimal.Decimal      `json:"taxable_cod"`
	Reductions         []AttributeReduction `json:"reductions,omitempty"`
	UnappliedExclusion decimal.Decimal      `json:"unapplied_exclusion"`
	Attributes         domain.TaxAttributes `json:"attributes_after"`
}

// Summary returns the compact line projection used in report content.
func (r *Form982Result) Summary() map[string]any {
	return map[string]any{
		"cod_income":      emit(r.CODIncome),
		"excluded_amount": emit(r.ExcludedAmount),
		"taxable_cod":     emit(r.TaxableCOD),
	}
}

// Calculate applies the elected exclusion and runs attribute reduction.
func (c *Form982Calculator) Calculate(input *domain.Form982Input) (*Form982Result, error) {
	if input == nil {
		return nil, &domain.InvalidInputError{Path: "form_982", Code: "required", Message: "input is required"}
	}
	if input.CODIncome.LessThan(decimal.Zero) {
		return nil, &domain.InvalidInputError{Path: "form_982.cod_income", Code: "negative", Message: "must be non-negative"}
	}
	if input.ReduceNonBasisUnderQPRI {
		return nil, &domain.InvalidInputError{
			Path:    "form_982.reduce_non_basis_under_qpri",
			Code:    "qpri_basis_only",
			Message: "the principal-residence exclusion reduces residence basis only",
		}
	}

	res := &Form982Result{CODIncome: input.CODIncome}

	limit, err := c.exclusionLimit(input)
	if err != nil {
		return nil, err
	}
	res.ExclusionLimit = limit
	res.ExcludedAmount = decimal.Min(input.CODIncome, limit)
	res.TaxableCOD = input.CODIncome.Sub(res.ExcludedAmount)

	if input.ExclusionType == domain.CODExclusionQPRI {
		// QPRI reduces the basis of the residence only, never the general
		// attribute ladder, and never below the secured liabilities still
		// outstanding after the discharge.
		attrs := input.Attributes
		reducible := floorZero(input.ResidenceBasis.Sub(input.ResidenceSecuredDebt))
		reduction := decimal.Min(res.ExcludedAmount, reducible)
		res.Reductions = append(res.Reductions, AttributeReduction{
			Attribute: "residence_basis",
			Before:    input.ResidenceBasis,
			Reduction: reduction,
			After:     input.ResidenceBasis.Sub(reduction),
		})
		res.UnappliedExclusion = res.ExcludedAmount.Sub(reduction)
		res.Attributes = attrs
		return res, nil
	}

	res.Attributes, res.Reductions, res.UnappliedExclusion = reduceAttributes(input.Attributes, res.ExcludedAmount)
	return res, nil
}

func (c *Form982Calculator) exclusionLimit(input *domain.Form982Input) (decimal.Decimal, error) {
	switch input.ExclusionType {
	case domain.CODExclusionBankruptcy:
		// Title 11 discharges are excluded in full.
		return input.CODIncome, nil
	case domain.CODExclusionInsolvency:
		// Excludable only to the extent of insolvency immediately before
		// the discharge.
		return floorZero(input.Liabilities.Sub(input.Assets)), nil
	case domain.CODExclusionQPRI:
		// Capped; discharge above the cap stays taxable COD.
		return c.Config.QPRIExclusionCap, nil
	case domain.CODExclusionOther:
		// Elective catch-all: full exclusion through the standard ladder.
		return input.CODIncome, nil
	case domain.CODExclusionFarm, domain.CODExclusionQRPBI:
		// Limited to the aggregate basis of qualifying property.
		return input.QualifyingPropertyBasis, nil
	case domain.CODExclusionNone, "":
		return decimal.Zero, nil
	default:
		return decimal.Zero, &domain.InvalidInputError{
			Path:    "form_982.exclusion_type",
			Code:    "unknown_exclusion",
			Message: fmt.Sprintf("unknown exclusion type %q", input.ExclusionType),
		}
	}
}

// reduceAttributes walks the statutory ladder. Credits absorb exclusion at
// one third of their face value.
func reduceAttributes(attrs domain.TaxAttributes, excluded decimal.Decimal) (domain.TaxAttributes, []AttributeReduction, decimal.Decimal) {
	remaining := excluded
	var steps []AttributeReduction

	dollar := func(name string, balance *decimal.Decimal) {
		if remaining.LessThanOrEqual(decimal.Zero) || balance.LessThanOrEqual(decimal.Zero) {
			return
		}
		used := decimal.Min(remaining, *balance)
		steps = append(steps, AttributeReduction{
			Attribute: name,
			Before:    *balance,
			Reduction: used,
			After:     balance.Sub(used),
		})
		*balance = balance.Sub(used)
		remaining = remaining.Sub(used)
	}
	credit := func(name string, balance *decimal.Decimal) {
		if remaining.LessThanOrEqual(decimal.Zero) || balance.LessThanOrEqual(decimal.Zero) {
			return
		}
		// One dollar of credit absorbs three dollars of exclusion.
		creditUsed := decimal.Min(balance.Mul(creditReductionRate), remaining).Div(creditReductionRate)
		exclusionUsed := creditUsed.Mul(creditReductionRate)
		steps = append(steps, AttributeReduction{
			Attribute: name,
			Before:    *balance,
			Reduction: creditUsed,
			After:     balance.Sub(creditUsed),
		})
		*balance = balance.Sub(creditUsed)
		remaining = remaining.Sub(exclusionUsed)
	}

	dollar("nol", &attrs.NOL)
	credit("general_business_credit", &attrs.GeneralBusinessCredit)
	dollar("net_capital_loss", &attrs.NetCapitalLoss)
	dollar("property_basis", &attrs.PropertyBasis)
	dollar("passive_losses", &attrs.PassiveLosses)
	credit("passive_credits", &attrs.PassiveCredits)
	credit("ftc_carryover", &attrs.FTCCarryover)

	return attrs, steps, remaining
}
