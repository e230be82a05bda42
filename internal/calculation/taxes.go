package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// RegularTaxCalculator handles ordinary-rate and preferential-rate federal
// tax. Qualified dividends and net long-term gains stack on top of ordinary
// income and run through their own bracket schedule.
type RegularTaxCalculator struct {
	Config *domain.TaxYearConfig
}

// NewRegularTaxCalculator creates a regular tax calculator from a year table.
func NewRegularTaxCalculator(cfg *domain.TaxYearConfig) *RegularTaxCalculator {
	return &RegularTaxCalculator{Config: cfg}
}

// bracketWalk taxes income through a marginal schedule.
func bracketWalk(income decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	tax := decimal.Zero
	for _, b := range brackets {
		if income.LessThanOrEqual(b.Min) {
			break
		}
		inBracket := decimal.Min(income, b.Max).Sub(b.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			tax = tax.Add(inBracket.Mul(b.Rate))
		}
	}
	return tax
}

// OrdinaryTax taxes the full amount at ordinary rates.
func (rtc *RegularTaxCalculator) OrdinaryTax(taxableIncome decimal.Decimal, fs domain.FilingStatus) decimal.Decimal {
	return bracketWalk(taxableIncome, rtc.Config.BracketsFor(fs))
}

// Tax splits taxable income into an ordinary slice and a preferential slice.
// The preferential slice starts where ordinary income ends, so each capital
// gains band applies to the portion of the stack falling inside it.
func (rtc *RegularTaxCalculator) Tax(taxableIncome, preferential decimal.Decimal, fs domain.FilingStatus) decimal.Decimal {
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pref := decimal.Min(preferential, taxableIncome)
	if pref.LessThanOrEqual(decimal.Zero) {
		return rtc.OrdinaryTax(taxableIncome, fs)
	}
	ordinary := taxableIncome.Sub(pref)
	tax := rtc.OrdinaryTax(ordinary, fs)

	for _, b := range rtc.Config.CapGainsBrackets[fs] {
		lo := decimal.Max(b.Min, ordinary)
		hi := decimal.Min(b.Max, taxableIncome)
		if hi.GreaterThan(lo) {
			tax = tax.Add(hi.Sub(lo).Mul(b.Rate))
		}
	}
	return tax
}

// SETaxResult carries the self-employment tax decomposition.
type SETaxResult struct {
	NetEarnings    decimal.Decimal `json:"net_earnings"`
	SocialSecurity decimal.Decimal `json:"social_security"`
	Medicare       decimal.Decimal `json:"medicare"`
	Total          decimal.Decimal `json:"total"`
	HalfDeduction  decimal.Decimal `json:"half_deduction"`
}

// SETaxCalculator handles self-employment tax. The Social Security piece is
// capped at the wage base net of W-2 wages already subject to it; Medicare
// is uncapped.
type SETaxCalculator struct {
	Config *domain.TaxYearConfig
}

// NewSETaxCalculator creates a self-employment tax calculator from a year table.
func NewSETaxCalculator(cfg *domain.TaxYearConfig) *SETaxCalculator {
	return &SETaxCalculator{Config: cfg}
}

// Calculate computes SE tax on net business income. w2Wages consume wage
// base before self-employment earnings do.
func (sec *SETaxCalculator) Calculate(businessIncome, w2Wages decimal.Decimal) SETaxResult {
	var res SETaxResult
	if businessIncome.LessThanOrEqual(decimal.Zero) {
		return res
	}
	res.NetEarnings = businessIncome.Mul(sec.Config.SENetEarnFactor)

	ssBase := decimal.Max(decimal.Zero, sec.Config.SSWageBase.Sub(w2Wages))
	res.SocialSecurity = decimal.Min(res.NetEarnings, ssBase).Mul(sec.Config.SESSRate)
	res.Medicare = res.NetEarnings.Mul(sec.Config.SEMedicareRate)
	res.Total = res.SocialSecurity.Add(res.Medicare)
	res.HalfDeduction = res.Total.Div(decimal.NewFromInt(2))
	return res
}

// QBIDeduction is 20% of qualified business income net of the SE-tax
// deduction, capped at 20% of taxable income before the deduction.
func QBIDeduction(cfg *domain.TaxYearConfig, businessIncome, halfSETax, taxableBeforeQBI decimal.Decimal) decimal.Decimal {
	qbi := businessIncome.Sub(halfSETax)
	if qbi.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	deduction := qbi.Mul(cfg.QBIRate)
	cap := decimal.Max(decimal.Zero, taxableBeforeQBI).Mul(cfg.QBIRate)
	return decimal.Min(deduction, cap)
}

// StandardDeduction applies the age-65 additions the way the base deduction
// table expects: one per qualifying spouse.
func StandardDeduction(cfg *domain.TaxYearConfig, tp domain.TaxpayerInfo) decimal.Decimal {
	ded := cfg.StandardDeductionFor(tp.FilingStatus)
	if tp.Age >= 65 {
		ded = ded.Add(cfg.AdditionalStdDed65)
	}
	if tp.FilingStatus.IsJoint() && tp.SpouseAge >= 65 {
		ded = ded.Add(cfg.AdditionalStdDed65)
	}
	return ded
}

// ItemizedTotal applies the SALT cap and the medical AGI floor, then sums
// the Schedule A lines. Medical expenses count only past 7.5% of AGI.
func ItemizedTotal(cfg *domain.TaxYearConfig, it domain.ItemizedDeductions, fs domain.FilingStatus, agi decimal.Decimal) decimal.Decimal {
	salt := decimal.Min(it.StateLocalTaxes, cfg.SALTCapFor(fs))
	medicalFloor := decimal.Max(decimal.Zero, agi).Mul(cfg.MedicalAGIFloor)
	medical := decimal.Max(decimal.Zero, it.MedicalExpenses.Sub(medicalFloor))
	return salt.
		Add(medical).
		Add(it.MortgageInterest).
		Add(it.CharitableGifts).
		Add(it.InvestmentInterest).
		Add(it.Other)
}
