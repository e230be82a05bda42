package domain

import (
	"github.com/shopspring/decimal"
)

// TaxReturn is the aggregate root submitted to the calculation pipeline.
// The engine consumes it read-only; derived state is always returned
// alongside, never written back.
type TaxReturn struct {
	TaxYear    int          `yaml:"tax_year" json:"tax_year"`
	Taxpayer   TaxpayerInfo `yaml:"taxpayer" json:"taxpayer"`
	Income     Income       `yaml:"income" json:"income"`
	Deductions Deductions   `yaml:"deductions" json:"deductions"`
	Credits    Credits      `yaml:"credits" json:"credits"`

	// Attached standalone form inputs. Presence is explicit: a nil pointer
	// means the form was not filed with this return.
	Form8606 *Form8606Input `yaml:"form_8606,omitempty" json:"form_8606,omitempty"`
	Form5329 *Form5329Input `yaml:"form_5329,omitempty" json:"form_5329,omitempty"`
	Form5471 *Form5471Input `yaml:"form_5471,omitempty" json:"form_5471,omitempty"`
	Form8801 *Form8801Input `yaml:"form_8801,omitempty" json:"form_8801,omitempty"`
	Form8814 *Form8814Input `yaml:"form_8814,omitempty" json:"form_8814,omitempty"`
	Form8863 *Form8863Input `yaml:"form_8863,omitempty" json:"form_8863,omitempty"`
	Form982  *Form982Input  `yaml:"form_982,omitempty" json:"form_982,omitempty"`
	Form1116 *Form1116Input `yaml:"form_1116,omitempty" json:"form_1116,omitempty"`
}

// TaxpayerInfo carries the identity and status signals the year tables are
// addressed by.
type TaxpayerInfo struct {
	FilingStatus    FilingStatus `yaml:"filing_status" json:"filing_status"`
	Dependents      int          `yaml:"dependents" json:"dependents"`
	State           string       `yaml:"state,omitempty" json:"state,omitempty"`
	Age             int          `yaml:"age" json:"age"`
	SpouseAge       int          `yaml:"spouse_age,omitempty" json:"spouse_age,omitempty"`
	Blind           bool         `yaml:"blind,omitempty" json:"blind,omitempty"`
	LivedWithSpouse bool         `yaml:"lived_with_spouse,omitempty" json:"lived_with_spouse,omitempty"`
}

// W2 is a single wage statement.
type W2 struct {
	Employer           string          `yaml:"employer" json:"employer"`
	Wages              decimal.Decimal `yaml:"wages" json:"wages"`
	FederalWithholding decimal.Decimal `yaml:"federal_withholding" json:"federal_withholding"`
	StateWithholding   decimal.Decimal `yaml:"state_withholding,omitempty" json:"state_withholding,omitempty"`
}

// ScheduleK1 is a pass-through income share.
type ScheduleK1 struct {
	EntityName     string          `yaml:"entity_name" json:"entity_name"`
	OrdinaryIncome decimal.Decimal `yaml:"ordinary_income" json:"ordinary_income"`
	RentalIncome   decimal.Decimal `yaml:"rental_income,omitempty" json:"rental_income,omitempty"`
	IsPassive      bool            `yaml:"is_passive,omitempty" json:"is_passive,omitempty"`
	IsPTP          bool            `yaml:"is_ptp,omitempty" json:"is_ptp,omitempty"`
}

// RentalProperty supports either the enhanced gross-expenses-depreciation
// breakdown or a simple pre-netted amount. When Enhanced is true the net is
// Gross - Expenses - Depreciation; otherwise NetIncome is used as given.
type RentalProperty struct {
	Description  string          `yaml:"description,omitempty" json:"description,omitempty"`
	Enhanced     bool            `yaml:"enhanced,omitempty" json:"enhanced,omitempty"`
	Gross        decimal.Decimal `yaml:"gross,omitempty" json:"gross,omitempty"`
	Expenses     decimal.Decimal `yaml:"expenses,omitempty" json:"expenses,omitempty"`
	Depreciation decimal.Decimal `yaml:"depreciation,omitempty" json:"depreciation,omitempty"`
	NetIncome    decimal.Decimal `yaml:"net_income,omitempty" json:"net_income,omitempty"`
}

// Net returns the rental net income under either input mode.
func (rp RentalProperty) Net() decimal.Decimal {
	if rp.Enhanced {
		return rp.Gross.Sub(rp.Expenses).Sub(rp.Depreciation)
	}
	return rp.NetIncome
}

// RetirementDistribution is a 1099-R style distribution.
type RetirementDistribution struct {
	Payer         string          `yaml:"payer,omitempty" json:"payer,omitempty"`
	GrossAmount   decimal.Decimal `yaml:"gross_amount" json:"gross_amount"`
	TaxableAmount decimal.Decimal `yaml:"taxable_amount" json:"taxable_amount"`
	IsEarly       bool            `yaml:"is_early,omitempty" json:"is_early,omitempty"`
	ExceptionCode string          `yaml:"exception_code,omitempty" json:"exception_code,omitempty"`
}

// Income aggregates every income source on the return. Amounts are
// non-negative unless the field is explicitly signed (capital gains,
// business income, rental nets).
type Income struct {
	W2Forms            []W2                     `yaml:"w2_forms,omitempty" json:"w2_forms,omitempty"`
	K1Forms            []ScheduleK1             `yaml:"k1_forms,omitempty" json:"k1_forms,omitempty"`
	Interest           decimal.Decimal          `yaml:"interest,omitempty" json:"interest,omitempty"`
	TaxExemptInterest  decimal.Decimal          `yaml:"tax_exempt_interest,omitempty" json:"tax_exempt_interest,omitempty"`
	Dividends          decimal.Decimal          `yaml:"dividends,omitempty" json:"dividends,omitempty"`
	QualifiedDividends decimal.Decimal          `yaml:"qualified_dividends,omitempty" json:"qualified_dividends,omitempty"`
	LongTermGains      decimal.Decimal          `yaml:"long_term_gains,omitempty" json:"long_term_gains,omitempty"`
	ShortTermGains     decimal.Decimal          `yaml:"short_term_gains,omitempty" json:"short_term_gains,omitempty"`
	BusinessIncome     decimal.Decimal          `yaml:"business_income,omitempty" json:"business_income,omitempty"`
	RentalProperties   []RentalProperty         `yaml:"rental_properties,omitempty" json:"rental_properties,omitempty"`
	Retirement         []RetirementDistribution `yaml:"retirement,omitempty" json:"retirement,omitempty"`
	SocialSecurity     decimal.Decimal          `yaml:"social_security,omitempty" json:"social_security,omitempty"`
	UnemploymentComp   decimal.Decimal          `yaml:"unemployment,omitempty" json:"unemployment,omitempty"`
	OtherIncome        decimal.Decimal          `yaml:"other_income,omitempty" json:"other_income,omitempty"`

	// Attached form inputs feeding AMT and passive loss computation.
	// Explicit presence, never attribute-probed.
	Form6251 *Form6251Input `yaml:"form_6251,omitempty" json:"form_6251,omitempty"`
	Form8582 *Form8582Input `yaml:"form_8582,omitempty" json:"form_8582,omitempty"`
}

// TotalWages sums every W-2 box 1 amount.
func (inc Income) TotalWages() decimal.Decimal {
	total := decimal.Zero
	for _, w2 := range inc.W2Forms {
		total = total.Add(w2.Wages)
	}
	return total
}

// TotalWithholding sums federal withholding across W-2s.
func (inc Income) TotalWithholding() decimal.Decimal {
	total := decimal.Zero
	for _, w2 := range inc.W2Forms {
		total = total.Add(w2.FederalWithholding)
	}
	return total
}

// TotalRentalNet sums the net across all rental properties.
func (inc Income) TotalRentalNet() decimal.Decimal {
	total := decimal.Zero
	for _, rp := range inc.RentalProperties {
		total = total.Add(rp.Net())
	}
	return total
}

// TotalRetirementTaxable sums taxable retirement distributions.
func (inc Income) TotalRetirementTaxable() decimal.Decimal {
	total := decimal.Zero
	for _, rd := range inc.Retirement {
		total = total.Add(rd.TaxableAmount)
	}
	return total
}

// ItemizedDeductions carries the Schedule A line items. SALT is capped at
// the year-table SALT cap when the deduction is taken.
type ItemizedDeductions struct {
	MedicalExpenses    decimal.Decimal `yaml:"medical_expenses,omitempty" json:"medical_expenses,omitempty"`
	StateLocalTaxes    decimal.Decimal `yaml:"state_local_taxes,omitempty" json:"state_local_taxes,omitempty"`
	MortgageInterest   decimal.Decimal `yaml:"mortgage_interest,omitempty" json:"mortgage_interest,omitempty"`
	CharitableGifts    decimal.Decimal `yaml:"charitable_gifts,omitempty" json:"charitable_gifts,omitempty"`
	InvestmentInterest decimal.Decimal `yaml:"investment_interest,omitempty" json:"investment_interest,omitempty"`
	Other              decimal.Decimal `yaml:"other,omitempty" json:"other,omitempty"`
}

// Deductions selects standard vs itemized and carries the itemized detail.
type Deductions struct {
	Itemize  bool               `yaml:"itemize,omitempty" json:"itemize,omitempty"`
	Itemized ItemizedDeductions `yaml:"itemized,omitempty" json:"itemized,omitempty"`

	// Adjustments to income (Schedule 1 Part II inputs).
	EducatorExpenses    decimal.Decimal `yaml:"educator_expenses,omitempty" json:"educator_expenses,omitempty"`
	HSAContribution     decimal.Decimal `yaml:"hsa_contribution,omitempty" json:"hsa_contribution,omitempty"`
	IRAContribution     decimal.Decimal `yaml:"ira_contribution,omitempty" json:"ira_contribution,omitempty"`
	StudentLoanInterest decimal.Decimal `yaml:"student_loan_interest,omitempty" json:"student_loan_interest,omitempty"`
}

// WOTCEmployee is one certified-target-group hire for Form 5884.
type WOTCEmployee struct {
	Name            string          `yaml:"name,omitempty" json:"name,omitempty"`
	TargetGroup     WOTCTargetGroup `yaml:"target_group" json:"target_group"`
	HoursWorked     int             `yaml:"hours_worked" json:"hours_worked"`
	QualifiedWages  decimal.Decimal `yaml:"qualified_wages" json:"qualified_wages"`
	Certified       bool            `yaml:"certified" json:"certified"`
	SecondYear      bool            `yaml:"second_year,omitempty" json:"second_year,omitempty"`
	SecondYearWages decimal.Decimal `yaml:"second_year_wages,omitempty" json:"second_year_wages,omitempty"`
}

// WOTCTargetGroup selects the Form 5884 wage limit tier.
type WOTCTargetGroup string

const (
	WOTCGroupStandard           WOTCTargetGroup = "standard"
	WOTCGroupSummerYouth        WOTCTargetGroup = "summer_youth"
	WOTCGroupDisabledVeteran    WOTCTargetGroup = "disabled_veteran"
	WOTCGroupDisabledUnemployed WOTCTargetGroup = "disabled_unemployed_veteran"
	WOTCGroupLongTermFamily     WOTCTargetGroup = "long_term_family_assistance"
)

// Credits collects nonrefundable/refundable credit inputs and the WOTC
// employee list.
type Credits struct {
	ChildTaxCreditQualifying int             `yaml:"ctc_qualifying_children,omitempty" json:"ctc_qualifying_children,omitempty"`
	ForeignTaxPaid           decimal.Decimal `yaml:"foreign_tax_paid,omitempty" json:"foreign_tax_paid,omitempty"`
	EstimatedPayments        decimal.Decimal `yaml:"estimated_payments,omitempty" json:"estimated_payments,omitempty"`
	WOTCEmployees            []WOTCEmployee  `yaml:"wotc_employees,omitempty" json:"wotc_employees,omitempty"`
}
