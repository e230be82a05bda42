package pipeline

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Validator runs the rule set against a return and reports every fired rule.
// Implementations must not mutate the return.
type Validator interface {
	Validate(ctx context.Context, tr *domain.TaxReturn) ([]domain.ValidationIssue, error)
}

// RuleValidator is the built-in structural rule set. Rules are checked
// independently; all fired issues are reported, not just the first.
type RuleValidator struct {
	TaxYear int
}

// NewRuleValidator creates a validator pinned to the supported tax year.
func NewRuleValidator(taxYear int) *RuleValidator {
	return &RuleValidator{TaxYear: taxYear}
}

// hoursInYear bounds participation-hour claims. 366 days × 24.
const hoursInYear = 8784

func (v *RuleValidator) Validate(ctx context.Context, tr *domain.TaxReturn) ([]domain.ValidationIssue, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	var issues []domain.ValidationIssue
	addError := func(ruleID, path, message string) {
		issues = append(issues, domain.ValidationIssue{RuleID: ruleID, Path: path, Message: message, Severity: domain.SeverityError})
	}
	addWarning := func(ruleID, path, message string) {
		issues = append(issues, domain.ValidationIssue{RuleID: ruleID, Path: path, Message: message, Severity: domain.SeverityWarning})
	}

	if !tr.Taxpayer.FilingStatus.Valid() {
		addError("filing_status_required", "taxpayer.filing_status",
			fmt.Sprintf("filing status %q is not recognized", tr.Taxpayer.FilingStatus))
	}
	if tr.TaxYear != 0 && tr.TaxYear != v.TaxYear {
		addError("tax_year_unsupported", "tax_year",
			fmt.Sprintf("tax year %d is not supported; only %d is configured", tr.TaxYear, v.TaxYear))
	}
	if tr.Taxpayer.Age < 0 || tr.Taxpayer.Age > 120 {
		addError("age_out_of_range", "taxpayer.age", fmt.Sprintf("age %d is out of range", tr.Taxpayer.Age))
	}
	if tr.Taxpayer.Dependents < 0 {
		addError("dependents_negative", "taxpayer.dependents", "dependents count cannot be negative")
	}

	for i, w2 := range tr.Income.W2Forms {
		if w2.Wages.IsNegative() {
			addError("wages_negative", fmt.Sprintf("income.w2_forms[%d].wages", i), "wages cannot be negative")
		}
		if w2.FederalWithholding.IsNegative() {
			addError("withholding_negative", fmt.Sprintf("income.w2_forms[%d].federal_withholding", i), "withholding cannot be negative")
		}
	}
	if tr.Income.Interest.IsNegative() {
		addError("interest_negative", "income.interest", "interest income cannot be negative")
	}
	if tr.Income.Dividends.IsNegative() {
		addError("dividends_negative", "income.dividends", "dividend income cannot be negative")
	}
	if tr.Income.QualifiedDividends.GreaterThan(tr.Income.Dividends) {
		addError("qualified_dividends_exceed_total", "income.qualified_dividends",
			"qualified dividends cannot exceed total dividends")
	}
	if tr.Income.UnemploymentComp.IsNegative() {
		addError("unemployment_negative", "income.unemployment", "unemployment compensation cannot be negative")
	}
	for i, rd := range tr.Income.Retirement {
		if rd.TaxableAmount.GreaterThan(rd.GrossAmount) {
			addError("retirement_taxable_exceeds_gross", fmt.Sprintf("income.retirement[%d].taxable_amount", i),
				"taxable amount cannot exceed gross distribution")
		}
	}

	if tr.Income.Form8582 != nil {
		for i, act := range tr.Income.Form8582.Activities {
			if act.TaxpayerHours+act.SpouseHours > hoursInYear {
				addError("participation_hours_impossible",
					fmt.Sprintf("income.form_8582.activities[%d]", i),
					fmt.Sprintf("combined participation of %d hours exceeds the hours in a year", act.TaxpayerHours+act.SpouseHours))
			}
		}
	}

	if tr.Deductions.Itemize && itemizedSum(tr.Deductions.Itemized).IsZero() {
		addWarning("itemize_without_items", "deductions.itemized",
			"itemizing selected but no itemized amounts are present")
	}
	if tr.Income.QualifiedDividends.IsPositive() && tr.Income.Dividends.IsZero() {
		addWarning("qualified_without_ordinary", "income.qualified_dividends",
			"qualified dividends reported without total dividends")
	}
	for i, emp := range tr.Credits.WOTCEmployees {
		if emp.HoursWorked < 0 {
			addError("wotc_hours_negative", fmt.Sprintf("credits.wotc_employees[%d].hours_worked", i), "hours worked cannot be negative")
		}
		if !emp.Certified {
			addWarning("wotc_uncertified", fmt.Sprintf("credits.wotc_employees[%d]", i),
				"employee lacks Form 8850 certification and earns no credit")
		}
	}

	return issues, nil
}

func itemizedSum(it domain.ItemizedDeductions) decimal.Decimal {
	return it.MedicalExpenses.Add(it.StateLocalTaxes).Add(it.MortgageInterest).
		Add(it.CharitableGifts).Add(it.InvestmentInterest).Add(it.Other)
}

// Partition splits fired issues by severity.
func Partition(issues []domain.ValidationIssue) (errs, warnings []domain.ValidationIssue) {
	for _, issue := range issues {
		if issue.Severity == domain.SeverityError {
			errs = append(errs, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}
	return errs, warnings
}
