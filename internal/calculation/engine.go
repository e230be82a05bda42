package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
	"github.com/finhelm/taxengine/internal/forms"
)

// FederalEngine drives a full federal calculation: income assembly, passive
// loss limitation, adjustments, deductions, regular tax with preferential
// stacking, AMT, and the credit ladder. Ordering is fixed by data
// dependencies: passive losses resolve before AGI, AMT after regular tax and
// itemized deductions, the minimum tax credit after AMT, and the foreign tax
// credit after total tax before credits.
type FederalEngine struct {
	Config *domain.TaxYearConfig
	Logger Logger

	RegularTax *RegularTaxCalculator
	SETax      *SETaxCalculator
	Form6251   *forms.Form6251Calculator
	Form8582   *forms.Form8582Calculator
	Form1116   *forms.Form1116Calculator
	Form8606   *forms.Form8606Calculator
	Form5329   *forms.Form5329Calculator
	Form5471   *forms.Form5471Calculator
	Form8801   *forms.Form8801Calculator
	Form8814   *forms.Form8814Calculator
	Form8863   *forms.Form8863Calculator
	Form982    *forms.Form982Calculator
	Form5884   *forms.Form5884Calculator
	Schedule1  *forms.Schedule1Calculator
}

// NewFederalEngine wires every form calculator to a single year table.
func NewFederalEngine(cfg *domain.TaxYearConfig) *FederalEngine {
	return &FederalEngine{
		Config:     cfg,
		Logger:     NopLogger{},
		RegularTax: NewRegularTaxCalculator(cfg),
		SETax:      NewSETaxCalculator(cfg),
		Form6251:   forms.NewForm6251Calculator(cfg),
		Form8582:   forms.NewForm8582Calculator(cfg),
		Form1116:   forms.NewForm1116Calculator(cfg),
		Form8606:   forms.NewForm8606Calculator(cfg),
		Form5329:   forms.NewForm5329Calculator(cfg),
		Form5471:   forms.NewForm5471Calculator(cfg),
		Form8801:   forms.NewForm8801Calculator(cfg),
		Form8814:   forms.NewForm8814Calculator(cfg),
		Form8863:   forms.NewForm8863Calculator(cfg),
		Form982:    forms.NewForm982Calculator(cfg),
		Form5884:   forms.NewForm5884Calculator(cfg),
		Schedule1:  forms.NewSchedule1Calculator(cfg),
	}
}

// SetLogger replaces the engine's logger; nil restores the no-op logger.
func (e *FederalEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// FormResults collects the per-form outputs attached to a breakdown.
type FormResults struct {
	Form6251  *forms.Form6251Result  `json:"form_6251,omitempty"`
	Form8582  *forms.Form8582Result  `json:"form_8582,omitempty"`
	Form1116  *forms.Form1116Result  `json:"form_1116,omitempty"`
	Form8606  *forms.Form8606Result  `json:"form_8606,omitempty"`
	Form5329  *forms.Form5329Result  `json:"form_5329,omitempty"`
	Form5471  *forms.Form5471Result  `json:"form_5471,omitempty"`
	Form8801  *forms.Form8801Result  `json:"form_8801,omitempty"`
	Form8814  *forms.Form8814Result  `json:"form_8814,omitempty"`
	Form8863  *forms.Form8863Result  `json:"form_8863,omitempty"`
	Form982   *forms.Form982Result   `json:"form_982,omitempty"`
	Form5884  *forms.Form5884Result  `json:"form_5884,omitempty"`
	Schedule1 *forms.Schedule1Result `json:"schedule_1,omitempty"`
}

// FederalTaxResult is the full breakdown for one return.
type FederalTaxResult struct {
	TaxYear      int                 `json:"tax_year"`
	FilingStatus domain.FilingStatus `json:"filing_status"`

	TotalIncome    decimal.Decimal `json:"total_income"`
	AGI            decimal.Decimal `json:"agi"`
	DeductionTaken decimal.Decimal `json:"deduction_taken"`
	Itemized       bool            `json:"itemized"`
	QBIDeduction   decimal.Decimal `json:"qbi_deduction"`
	TaxableIncome  decimal.Decimal `json:"taxable_income"`

	RegularTax      decimal.Decimal `json:"regular_tax"`
	AMT             decimal.Decimal `json:"amt"`
	SETax           decimal.Decimal `json:"se_tax"`
	AdditionalTaxes decimal.Decimal `json:"additional_taxes"`
	KiddieTax       decimal.Decimal `json:"kiddie_tax"`

	NonrefundableCredits decimal.Decimal `json:"nonrefundable_credits"`
	RefundableCredits    decimal.Decimal `json:"refundable_credits"`

	TotalTax   decimal.Decimal `json:"total_tax"`
	Payments   decimal.Decimal `json:"payments"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	Refund     decimal.Decimal `json:"refund"`

	EffectiveRate decimal.Decimal `json:"effective_rate"`
	MarginalRate  decimal.Decimal `json:"marginal_rate"`

	Forms      FormResults                `json:"forms"`
	Carryovers domain.PriorYearCarryovers `json:"carryovers"`
	AMTRisks   []forms.AMTRiskFactor      `json:"amt_risks,omitempty"`
}

// Calculate runs the full pipeline for one return. The return is read-only;
// derived carryover state comes back on the result.
func (e *FederalEngine) Calculate(ctx context.Context, tr *domain.TaxReturn, prior domain.PriorYearCarryovers) (*FederalTaxResult, error) {
	if tr == nil {
		return nil, &domain.InvalidInputError{Path: "tax_return", Code: "required", Message: "tax return is required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	fs := tr.Taxpayer.FilingStatus
	if !fs.Valid() {
		return nil, &domain.InvalidInputError{Path: "taxpayer.filing_status", Code: "invalid", Message: fmt.Sprintf("unknown filing status %q", fs)}
	}

	res := &FederalTaxResult{TaxYear: tr.TaxYear, FilingStatus: fs}

	// Self-employment tax resolves first: its half-deduction feeds
	// Schedule 1 and the QBI base.
	wages := tr.Income.TotalWages()
	se := e.SETax.Calculate(tr.Income.BusinessIncome, wages)
	res.SETax = se.Total

	// IRA basis recovery can shrink taxable retirement income.
	retirementTaxable := tr.Income.TotalRetirementTaxable()
	if tr.Form8606 != nil {
		r8606, err := e.Form8606.Calculate(tr.Form8606, tr.TaxYear)
		if err != nil {
			return nil, err
		}
		res.Forms.Form8606 = r8606
		retirementTaxable = decimal.Max(decimal.Zero, retirementTaxable.Sub(r8606.NontaxableDistribution))
		res.Carryovers.IRABasis = r8606.RemainingBasis
	}

	// CFC inclusions are additional ordinary income.
	cfcInclusion := decimal.Zero
	if tr.Form5471 != nil {
		r5471, err := e.Form5471.Calculate(tr.Form5471)
		if err != nil {
			return nil, err
		}
		res.Forms.Form5471 = r5471
		cfcInclusion = r5471.TotalInclusion
	}

	// Kiddie election: the child-rate tax is a separate liability, the
	// excess joins the parent's income with character preserved.
	kiddieIncluded := decimal.Zero
	kiddieQualified := decimal.Zero
	kiddieCapGains := decimal.Zero
	if tr.Form8814 != nil {
		r8814, err := e.Form8814.Calculate(tr.Form8814)
		if err != nil {
			return nil, err
		}
		res.Forms.Form8814 = r8814
		res.KiddieTax = r8814.TotalAdditionalTax
		kiddieIncluded = r8814.TotalIncluded
		kiddieQualified = r8814.IncludedQualified
		kiddieCapGains = r8814.IncludedCapGains
	}

	// Cancelled debt resolves before income assembly.
	taxableCOD := decimal.Zero
	if tr.Form982 != nil {
		r982, err := e.Form982.Calculate(tr.Form982)
		if err != nil {
			return nil, err
		}
		res.Forms.Form982 = r982
		taxableCOD = r982.TaxableCOD
	}

	// Non-passive income base used both for the PAL MAGI approximation and
	// the final AGI assembly.
	netCapitalGains := tr.Income.LongTermGains.Add(tr.Income.ShortTermGains)
	baseIncome := wages.
		Add(tr.Income.Interest).
		Add(tr.Income.Dividends).
		Add(netCapitalGains).
		Add(tr.Income.BusinessIncome).
		Add(retirementTaxable).
		Add(tr.Income.SocialSecurity).
		Add(cfcInclusion).
		Add(kiddieIncluded).
		Add(taxableCOD).
		Add(tr.Income.UnemploymentComp).
		Add(tr.Income.OtherIncome)

	// Passive loss limitation. MAGI for the special allowance excludes the
	// passive activity results themselves.
	usePassiveNet := false
	passiveNet := decimal.Zero
	if tr.Income.Form8582 != nil {
		r8582, err := e.Form8582.Calculate(tr.Income.Form8582, forms.PALContext{
			FilingStatus:   fs,
			MAGI:           baseIncome,
			MFSLivingApart: fs.IsMFS() && !tr.Taxpayer.LivedWithSpouse,
			TaxYear:        tr.TaxYear,
		})
		if err != nil {
			return nil, err
		}
		res.Forms.Form8582 = r8582
		res.Carryovers.SuspendedLosses = r8582.SuspendedLosses
		usePassiveNet = true
		passiveNet = r8582.NetAllowed()
	}

	// Schedule 1 assembles additional income and adjustments.
	sched1, err := e.Schedule1.Calculate(tr.Income, tr.Deductions, forms.Schedule1Context{
		FilingStatus:      fs,
		Age:               tr.Taxpayer.Age,
		PassiveNetAllowed: passiveNet,
		UsePassiveNet:     usePassiveNet,
		TaxableCOD:        taxableCOD,
		KiddieInclusion:   kiddieIncluded,
		HalfSETax:         se.HalfDeduction,
	})
	if err != nil {
		return nil, err
	}
	res.Forms.Schedule1 = sched1

	res.TotalIncome = wages.
		Add(tr.Income.Interest).
		Add(tr.Income.Dividends).
		Add(netCapitalGains).
		Add(retirementTaxable).
		Add(tr.Income.SocialSecurity).
		Add(cfcInclusion).
		Add(sched1.AdditionalIncome)
	res.AGI = res.TotalIncome.Sub(sched1.Adjustments)

	// Deduction choice.
	standardDed := StandardDeduction(e.Config, tr.Taxpayer)
	itemizedTotal := ItemizedTotal(e.Config, tr.Deductions.Itemized, fs, res.AGI)
	if tr.Deductions.Itemize && itemizedTotal.GreaterThan(standardDed) {
		res.Itemized = true
		res.DeductionTaken = itemizedTotal
	} else {
		res.DeductionTaken = standardDed
	}

	taxableBeforeQBI := res.AGI.Sub(res.DeductionTaken)
	res.QBIDeduction = QBIDeduction(e.Config, tr.Income.BusinessIncome, se.HalfDeduction, taxableBeforeQBI)
	res.TaxableIncome = decimal.Max(decimal.Zero, taxableBeforeQBI.Sub(res.QBIDeduction))

	// Regular tax with the preferential slice stacked on top.
	preferential := tr.Income.QualifiedDividends.
		Add(decimal.Max(decimal.Zero, tr.Income.LongTermGains)).
		Add(kiddieQualified).
		Add(kiddieCapGains)
	res.RegularTax = e.RegularTax.Tax(res.TaxableIncome, preferential, fs)
	res.MarginalRate = e.marginalRate(res.TaxableIncome, fs)

	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	// AMT rides on taxable income plus adjustments and preferences.
	amt := decimal.Zero
	tmt := res.RegularTax
	if tr.Income.Form6251 != nil {
		saltDeducted := decimal.Min(tr.Deductions.Itemized.StateLocalTaxes, e.Config.SALTCapFor(fs))
		r6251, err := e.Form6251.Calculate(tr.Income.Form6251, forms.AMTContext{
			FilingStatus:       fs,
			TaxableIncome:      res.TaxableIncome,
			RegularTaxForAMT:   res.RegularTax,
			Itemized:           res.Itemized,
			StandardDeduction:  res.DeductionTaken,
			SALTDeducted:       saltDeducted,
			InvestmentInterest: tr.Deductions.Itemized.InvestmentInterest,
			QualifiedDividends: tr.Income.QualifiedDividends,
			NetCapitalGain:     decimal.Max(decimal.Zero, tr.Income.LongTermGains),
		})
		if err != nil {
			return nil, err
		}
		res.Forms.Form6251 = r6251
		res.AMTRisks = e.Form6251.CheckAMTLikely(res.TaxableIncome, saltDeducted, r6251.ISOSpread, fs)
		amt = r6251.AMT
		tmt = r6251.TMT
	}
	res.AMT = amt

	// Minimum tax credit needs both the regular tax and the current TMT.
	if tr.Form8801 != nil {
		r8801, err := e.Form8801.Calculate(tr.Form8801, forms.MTCContext{
			FilingStatus: fs,
			RegularTax:   res.RegularTax,
			TMT:          tmt,
			TaxYear:      tr.TaxYear,
		})
		if err != nil {
			return nil, err
		}
		res.Forms.Form8801 = r8801
		res.NonrefundableCredits = res.NonrefundableCredits.Add(r8801.CreditAllowed)
		res.Carryovers.MTCCarryforwards = r8801.UpdatedCarryforwards
	}

	taxBeforeCredits := res.RegularTax.Add(amt)

	// Foreign tax credit limits against total tax before credits.
	if tr.Form1116 != nil {
		r1116, err := e.Form1116.Calculate(tr.Form1116, forms.FTCContext{
			FilingStatus:          fs,
			TotalTaxableIncome:    res.TaxableIncome,
			TotalTaxBeforeCredits: taxBeforeCredits,
			TaxYear:               tr.TaxYear,
		})
		if err != nil {
			return nil, err
		}
		res.Forms.Form1116 = r1116
		res.NonrefundableCredits = res.NonrefundableCredits.Add(r1116.TotalCredit)
		for _, basket := range r1116.Baskets {
			res.Carryovers.FTCCarryovers = append(res.Carryovers.FTCCarryovers, basket.UpdatedCarryovers...)
		}
	}

	// Education credits.
	if tr.Form8863 != nil {
		r8863, err := e.Form8863.Calculate(tr.Form8863, res.AGI, fs)
		if err != nil {
			return nil, err
		}
		res.Forms.Form8863 = r8863
		res.NonrefundableCredits = res.NonrefundableCredits.Add(r8863.AOTCNonrefundable).Add(r8863.LLC)
		res.RefundableCredits = res.RefundableCredits.Add(r8863.AOTCRefundable)
	}

	// Work opportunity credit for employer returns.
	if len(tr.Credits.WOTCEmployees) > 0 {
		r5884, err := e.Form5884.Calculate(tr.Credits.WOTCEmployees)
		if err != nil {
			return nil, err
		}
		res.Forms.Form5884 = r5884
		res.NonrefundableCredits = res.NonrefundableCredits.Add(r5884.TotalCredit)
	}

	res.NonrefundableCredits = res.NonrefundableCredits.Add(e.childTaxCredit(tr, res.AGI))

	// Retirement penalties and excises stack on after credits.
	if tr.Form5329 != nil {
		r5329, err := e.Form5329.Calculate(tr.Form5329)
		if err != nil {
			return nil, err
		}
		res.Forms.Form5329 = r5329
		res.AdditionalTaxes = res.AdditionalTaxes.Add(r5329.TotalAdditionalTax)
	}

	// Nonrefundable credits cannot push income tax below zero.
	incomeTaxAfterCredits := decimal.Max(decimal.Zero, taxBeforeCredits.Sub(res.NonrefundableCredits))
	res.TotalTax = incomeTaxAfterCredits.
		Add(res.SETax).
		Add(res.AdditionalTaxes).
		Add(res.KiddieTax)

	res.Payments = tr.Income.TotalWithholding().
		Add(tr.Credits.EstimatedPayments).
		Add(res.RefundableCredits)
	diff := res.TotalTax.Sub(res.Payments)
	if diff.GreaterThan(decimal.Zero) {
		res.BalanceDue = diff
	} else {
		res.Refund = diff.Neg()
	}

	// Carry forward state the current year did not touch, and decompose any
	// AMT paid this year for next year's minimum tax credit.
	if tr.Form8606 == nil {
		res.Carryovers.IRABasis = prior.IRABasis
	}
	res.Carryovers.CapitalLossCarry = prior.CapitalLossCarry
	res.Carryovers.NOLCarryover = prior.NOLCarryover
	if f := res.Forms.Form6251; f != nil && f.AMT.GreaterThan(decimal.Zero) {
		res.Carryovers.PriorYearAMT = &domain.PriorYearAMTDetail{
			TotalAMT:             f.AMT,
			DeferralAdjustments:  f.DeferralAmount,
			ExclusionAdjustments: f.ExclusionAmount,
			BreakdownKnown:       true,
		}
	}

	if res.AGI.GreaterThan(decimal.Zero) {
		res.EffectiveRate = res.TotalTax.Div(res.AGI)
	}
	e.Logger.Debugf("computed %s return: AGI %s, taxable %s, total tax %s",
		fs, res.AGI.Round(2), res.TaxableIncome.Round(2), res.TotalTax.Round(2))
	return res, nil
}

// childTaxCredit is the simple per-child credit with the high-income
// phaseout from the year table.
func (e *FederalEngine) childTaxCredit(tr *domain.TaxReturn, agi decimal.Decimal) decimal.Decimal {
	n := tr.Credits.ChildTaxCreditQualifying
	if n <= 0 {
		return decimal.Zero
	}
	ctc := e.Config.CTC
	credit := ctc.PerChild.Mul(decimal.NewFromInt(int64(n)))
	threshold := ctc.PhaseoutStart
	if tr.Taxpayer.FilingStatus.IsJoint() {
		threshold = ctc.PhaseoutStartJoint
	}
	if agi.GreaterThan(threshold) {
		steps := agi.Sub(threshold).Div(ctc.PhaseoutStep).Ceil()
		credit = credit.Sub(steps.Mul(ctc.ReductionPerStep))
	}
	return decimal.Max(decimal.Zero, credit)
}

// marginalRate is the rate of the ordinary bracket the last dollar falls in.
func (e *FederalEngine) marginalRate(taxableIncome decimal.Decimal, fs domain.FilingStatus) decimal.Decimal {
	rate := decimal.Zero
	for _, b := range e.Config.BracketsFor(fs) {
		if taxableIncome.GreaterThan(b.Min) {
			rate = b.Rate
		}
	}
	return rate
}
