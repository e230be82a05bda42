package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form5884Calculator computes the work opportunity credit. The credit rate
// follows first-year hours worked; qualified wages are capped by target
// group, with a second-year tier for long-term family assistance hires.
type Form5884Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm5884Calculator builds the calculator from a year table.
func NewForm5884Calculator(cfg *domain.TaxYearConfig) *Form5884Calculator {
	return &Form5884Calculator{Config: cfg}
}

var (
	wotcRate25 = decimal.NewFromFloat(0.25)
	wotcRate40 = decimal.NewFromFloat(0.40)
	wotcRate50 = decimal.NewFromFloat(0.50)

	wotcCapStandard         = decimal.NewFromInt(6000)
	wotcCapSummerYouth      = decimal.NewFromInt(3000)
	wotcCapDisabledVet      = decimal.NewFromInt(12000)
	wotcCapDisabledUnempVet = decimal.NewFromInt(24000)
	wotcCapLTFA             = decimal.NewFromInt(10000)
)

// EmployeeCredit is the per-hire outcome.
type EmployeeCredit struct {
	Name             string          `json:"name"`
	Eligible         bool            `json:"eligible"`
	IneligibleReason string          `json:"ineligible_reason,omitempty"`
	CappedWages      decimal.Decimal `json:"capped_wages"`
	Rate             decimal.Decimal `json:"rate"`
	Credit           decimal.Decimal `json:"credit"`
}

// Form5884Result is the computed form.
type Form5884Result struct {
	Employees   []EmployeeCredit `json:"employees"`
	TotalCredit decimal.Decimal  `json:"total_credit"`
}

// Summary returns the compact line projection used in report content.
func (r *Form5884Result) Summary() map[string]any {
	return map[string]any{
		"employees":    len(r.Employees),
		"total_credit": emit(r.TotalCredit),
	}
}

// Calculate evaluates every hire and totals the credit.
func (c *Form5884Calculator) Calculate(employees []domain.WOTCEmployee) (*Form5884Result, error) {
	res := &Form5884Result{}
	for _, emp := range employees {
		ec := c.employeeCredit(emp)
		res.TotalCredit = res.TotalCredit.Add(ec.Credit)
		res.Employees = append(res.Employees, ec)
	}
	return res, nil
}

func (c *Form5884Calculator) employeeCredit(emp domain.WOTCEmployee) EmployeeCredit {
	ec := EmployeeCredit{Name: emp.Name}
	if !emp.Certified {
		ec.IneligibleReason = "no state workforce agency certification"
		return ec
	}

	rate := hoursRate(emp.HoursWorked)
	if rate.IsZero() {
		ec.IneligibleReason = "fewer than 120 hours worked"
		return ec
	}

	ec.Eligible = true
	ec.Rate = rate
	ec.CappedWages = decimal.Min(emp.QualifiedWages, wageCap(emp.TargetGroup))
	ec.Credit = ec.CappedWages.Mul(rate)

	// Long-term family assistance hires earn a second-year tier at 50%
	// of wages up to the same cap.
	if emp.TargetGroup == domain.WOTCGroupLongTermFamily && emp.SecondYear {
		secondYear := decimal.Min(emp.SecondYearWages, wotcCapLTFA)
		ec.Credit = ec.Credit.Add(secondYear.Mul(wotcRate50))
	}
	return ec
}

// hoursRate is 0 under 120 hours, 25% from 120 through 399, and 40% at 400
// hours or more.
func hoursRate(hours int) decimal.Decimal {
	switch {
	case hours < 120:
		return decimal.Zero
	case hours < 400:
		return wotcRate25
	default:
		return wotcRate40
	}
}

func wageCap(group domain.WOTCTargetGroup) decimal.Decimal {
	switch group {
	case domain.WOTCGroupSummerYouth:
		return wotcCapSummerYouth
	case domain.WOTCGroupDisabledVeteran:
		return wotcCapDisabledVet
	case domain.WOTCGroupDisabledUnemployed:
		return wotcCapDisabledUnempVet
	case domain.WOTCGroupLongTermFamily:
		return wotcCapLTFA
	default:
		return wotcCapStandard
	}
}
