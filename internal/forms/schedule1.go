package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Schedule1Calculator aggregates additional income (Part I) and adjustments
// to income (Part II). Derived figures such as allowed passive losses,
// taxable cancelled debt and the deductible half of self-employment tax are
// computed upstream and passed in.
type Schedule1Calculator struct {
	Config *domain.TaxYearConfig
}

// NewSchedule1Calculator builds the calculator from a year table.
func NewSchedule1Calculator(cfg *domain.TaxYearConfig) *Schedule1Calculator {
	return &Schedule1Calculator{Config: cfg}
}

var (
	educatorExpenseCap     = decimal.NewFromInt(300)
	studentLoanInterestCap = decimal.NewFromInt(2500)
)

// Schedule1Context carries amounts derived by other forms that land on
// Schedule 1 lines.
type Schedule1Context struct {
	FilingStatus      domain.FilingStatus
	Age               int
	PassiveNetAllowed decimal.Decimal // Form 8582 output, replaces raw rental/K-1 nets
	UsePassiveNet     bool
	TaxableCOD        decimal.Decimal // Form 982 output
	KiddieInclusion   decimal.Decimal // Form 8814 output
	HalfSETax         decimal.Decimal
}

// Schedule1Result is the computed schedule.
type Schedule1Result struct {
	BusinessIncome   decimal.Decimal `json:"business_income"`
	RentalAndK1      decimal.Decimal `json:"rental_and_k1"`
	Unemployment     decimal.Decimal `json:"unemployment"`
	TaxableCOD       decimal.Decimal `json:"taxable_cod"`
	KiddieInclusion  decimal.Decimal `json:"kiddie_inclusion"`
	OtherIncome      decimal.Decimal `json:"other_income"`
	AdditionalIncome decimal.Decimal `json:"additional_income"`

	EducatorExpenses    decimal.Decimal `json:"educator_expenses"`
	HSADeduction        decimal.Decimal `json:"hsa_deduction"`
	HalfSETax           decimal.Decimal `json:"half_se_tax"`
	IRADeduction        decimal.Decimal `json:"ira_deduction"`
	StudentLoanInterest decimal.Decimal `json:"student_loan_interest"`
	Adjustments         decimal.Decimal `json:"adjustments"`
}

// Summary returns the compact line projection used in report content.
func (r *Schedule1Result) Summary() map[string]any {
	return map[string]any{
		"additional_income": emit(r.AdditionalIncome),
		"adjustments":       emit(r.Adjustments),
	}
}

// Calculate fills both parts from the return and the upstream context.
func (c *Schedule1Calculator) Calculate(income domain.Income, ded domain.Deductions, ctx Schedule1Context) (*Schedule1Result, error) {
	res := &Schedule1Result{}

	// Part I: additional income.
	res.BusinessIncome = income.BusinessIncome
	if ctx.UsePassiveNet {
		res.RentalAndK1 = ctx.PassiveNetAllowed
	} else {
		res.RentalAndK1 = income.TotalRentalNet()
		for _, k1 := range income.K1Forms {
			res.RentalAndK1 = res.RentalAndK1.Add(k1.OrdinaryIncome).Add(k1.RentalIncome)
		}
	}
	res.Unemployment = income.UnemploymentComp
	res.TaxableCOD = ctx.TaxableCOD
	res.KiddieInclusion = ctx.KiddieInclusion
	res.OtherIncome = income.OtherIncome
	res.AdditionalIncome = res.BusinessIncome.
		Add(res.RentalAndK1).
		Add(res.Unemployment).
		Add(res.TaxableCOD).
		Add(res.KiddieInclusion).
		Add(res.OtherIncome)

	// Part II: adjustments, each capped by its statutory limit.
	res.EducatorExpenses = decimal.Min(ded.EducatorExpenses, educatorExpenseCap)
	res.HSADeduction = decimal.Min(ded.HSAContribution, c.hsaLimit(ctx.FilingStatus))
	res.HalfSETax = ctx.HalfSETax
	res.IRADeduction = decimal.Min(ded.IRAContribution, c.iraLimit(ctx.Age))
	res.StudentLoanInterest = decimal.Min(ded.StudentLoanInterest, studentLoanInterestCap)
	res.Adjustments = res.EducatorExpenses.
		Add(res.HSADeduction).
		Add(res.HalfSETax).
		Add(res.IRADeduction).
		Add(res.StudentLoanInterest)

	return res, nil
}

func (c *Schedule1Calculator) hsaLimit(fs domain.FilingStatus) decimal.Decimal {
	if fs.IsJoint() {
		return c.Config.HSALimitFamily
	}
	return c.Config.HSALimitSelf
}

func (c *Schedule1Calculator) iraLimit(age int) decimal.Decimal {
	limit := c.Config.IRAContributionLimit
	if age >= 50 {
		limit = limit.Add(c.Config.IRACatchUp)
	}
	return limit
}
