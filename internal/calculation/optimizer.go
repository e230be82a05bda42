package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// EntityType identifies one business structure under comparison.
type EntityType string

const (
	EntitySoleProp EntityType = "sole_proprietorship"
	EntityLLC      EntityType = "single_member_llc"
	EntitySCorp    EntityType = "s_corporation"
)

// Annual compliance cost assumptions per entity. Sole props file on
// Schedule C with no extra overhead; LLCs carry formation and annual state
// fees; S-corps add a separate return and payroll service.
var (
	llcAnnualCost   = decimal.NewFromInt(800)
	scorpAnnualCost = decimal.NewFromInt(3000)
)

// OptimizerInput describes the business being analyzed.
type OptimizerInput struct {
	GrossRevenue     decimal.Decimal     `json:"gross_revenue"`
	BusinessExpenses decimal.Decimal     `json:"business_expenses"`
	FilingStatus     domain.FilingStatus `json:"filing_status"`
	State            string              `json:"state,omitempty"`
	CurrentEntity    EntityType          `json:"current_entity,omitempty"`
	SSTB             bool                `json:"sstb,omitempty"`
}

// EntityAnalysis is the tax picture under one structure.
type EntityAnalysis struct {
	Entity           EntityType      `json:"entity"`
	NetIncome        decimal.Decimal `json:"net_income"`
	ReasonableSalary decimal.Decimal `json:"reasonable_salary,omitempty"`
	K1Distribution   decimal.Decimal `json:"k1_distribution,omitempty"`
	EmploymentTax    decimal.Decimal `json:"employment_tax"`
	QBIDeduction     decimal.Decimal `json:"qbi_deduction"`
	TaxableIncome    decimal.Decimal `json:"taxable_income"`
	IncomeTax        decimal.Decimal `json:"income_tax"`
	ComplianceCost   decimal.Decimal `json:"compliance_cost"`
	TotalTax         decimal.Decimal `json:"total_tax"`
}

// RiskTier grades how defensible the recommendation is under audit.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// OptimizerResult compares the three structures.
type OptimizerResult struct {
	Analyses         []EntityAnalysis `json:"analyses"`
	Recommended      EntityType       `json:"recommended"`
	Savings          decimal.Decimal  `json:"savings"`
	BreakevenRevenue decimal.Decimal  `json:"breakeven_revenue"`
	Confidence       int              `json:"confidence"`
	RiskTier         RiskTier         `json:"risk_tier"`
	Methodology      string           `json:"methodology"`
	Warnings         []string         `json:"warnings,omitempty"`
}

// methodology describes the comparison so a reviewer can audit the numbers
// without reading the code.
const methodology = "Compares sole proprietorship, single-member LLC, and S-corporation on identical net income: SE tax or FICA payroll on the earned share, QBI deduction, standard deduction, ordinary brackets, and fixed annual compliance costs. Reasonable salary uses a declining-percentage heuristic. State taxes excluded."

// EntityOptimizer compares sole proprietorship, single-member LLC, and
// S-corporation treatment of the same business.
type EntityOptimizer struct {
	Config  *domain.TaxYearConfig
	Regular *RegularTaxCalculator
	SETax   *SETaxCalculator
}

// NewEntityOptimizer creates an optimizer from a year table.
func NewEntityOptimizer(cfg *domain.TaxYearConfig) *EntityOptimizer {
	return &EntityOptimizer{
		Config:  cfg,
		Regular: NewRegularTaxCalculator(cfg),
		SETax:   NewSETaxCalculator(cfg),
	}
}

// ReasonableSalary is the declining-percentage heuristic: small businesses
// pay most of their profit as salary, large ones can defend a lower share.
func (eo *EntityOptimizer) ReasonableSalary(netIncome decimal.Decimal) decimal.Decimal {
	if netIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var pct decimal.Decimal
	switch {
	case netIncome.LessThanOrEqual(decimal.NewFromInt(50000)):
		pct = decimal.NewFromFloat(0.75)
	case netIncome.LessThanOrEqual(decimal.NewFromInt(100000)):
		pct = decimal.NewFromFloat(0.70)
	case netIncome.LessThanOrEqual(decimal.NewFromInt(150000)):
		pct = decimal.NewFromFloat(0.65)
	case netIncome.LessThanOrEqual(decimal.NewFromInt(250000)):
		pct = decimal.NewFromFloat(0.60)
	case netIncome.LessThanOrEqual(decimal.NewFromInt(500000)):
		pct = decimal.NewFromFloat(0.55)
	default:
		pct = decimal.NewFromFloat(0.50)
	}
	return netIncome.Mul(pct)
}

// passThroughAnalysis covers sole prop and single-member LLC, which differ
// only in compliance cost: both pay SE tax on the full net.
func (eo *EntityOptimizer) passThroughAnalysis(entity EntityType, netIncome decimal.Decimal, fs domain.FilingStatus, compliance decimal.Decimal) EntityAnalysis {
	se := eo.SETax.Calculate(netIncome, decimal.Zero)
	stdDed := eo.Config.StandardDeductionFor(fs)

	taxableBeforeQBI := decimal.Max(decimal.Zero, netIncome.Sub(se.HalfDeduction).Sub(stdDed))
	qbi := QBIDeduction(eo.Config, netIncome, se.HalfDeduction, taxableBeforeQBI)
	taxable := decimal.Max(decimal.Zero, taxableBeforeQBI.Sub(qbi))
	incomeTax := eo.Regular.OrdinaryTax(taxable, fs)

	return EntityAnalysis{
		Entity:         entity,
		NetIncome:      netIncome,
		EmploymentTax:  se.Total,
		QBIDeduction:   qbi,
		TaxableIncome:  taxable,
		IncomeTax:      incomeTax,
		ComplianceCost: compliance,
		TotalTax:       incomeTax.Add(se.Total).Add(compliance),
	}
}

// scorpAnalysis splits net income into salary (FICA-taxed) and a K-1
// distribution exempt from employment tax. QBI applies to the K-1 share only.
func (eo *EntityOptimizer) scorpAnalysis(netIncome decimal.Decimal, fs domain.FilingStatus) EntityAnalysis {
	salary := eo.ReasonableSalary(netIncome)

	ssTaxed := decimal.Min(salary, eo.Config.SSWageBase)
	payroll := ssTaxed.Mul(eo.Config.SESSRate).Add(salary.Mul(eo.Config.SEMedicareRate))
	employerHalf := payroll.Div(decimal.NewFromInt(2))

	k1 := decimal.Max(decimal.Zero, netIncome.Sub(salary).Sub(employerHalf))
	stdDed := eo.Config.StandardDeductionFor(fs)

	taxableBeforeQBI := decimal.Max(decimal.Zero, salary.Add(k1).Sub(stdDed))
	qbi := QBIDeduction(eo.Config, k1, decimal.Zero, taxableBeforeQBI)
	taxable := decimal.Max(decimal.Zero, taxableBeforeQBI.Sub(qbi))
	incomeTax := eo.Regular.OrdinaryTax(taxable, fs)

	return EntityAnalysis{
		Entity:           EntitySCorp,
		NetIncome:        netIncome,
		ReasonableSalary: salary,
		K1Distribution:   k1,
		EmploymentTax:    payroll,
		QBIDeduction:     qbi,
		TaxableIncome:    taxable,
		IncomeTax:        incomeTax,
		ComplianceCost:   scorpAnnualCost,
		TotalTax:         incomeTax.Add(payroll).Add(scorpAnnualCost),
	}
}

// Optimize compares the three structures and recommends the cheapest,
// tempered by a 0-100 confidence score.
func (eo *EntityOptimizer) Optimize(input OptimizerInput) (*OptimizerResult, error) {
	if !input.FilingStatus.Valid() {
		return nil, &domain.InvalidInputError{
			Path: "optimizer.filing_status", Code: "unknown_filing_status",
			Message: string(input.FilingStatus),
		}
	}
	netIncome := input.GrossRevenue.Sub(input.BusinessExpenses)

	analyses := []EntityAnalysis{
		eo.passThroughAnalysis(EntitySoleProp, netIncome, input.FilingStatus, decimal.Zero),
		eo.passThroughAnalysis(EntityLLC, netIncome, input.FilingStatus, llcAnnualCost),
		eo.scorpAnalysis(netIncome, input.FilingStatus),
	}

	best, worst := analyses[0], analyses[0]
	for _, a := range analyses[1:] {
		if a.TotalTax.LessThan(best.TotalTax) {
			best = a
		}
		if a.TotalTax.GreaterThan(worst.TotalTax) {
			worst = a
		}
	}

	res := &OptimizerResult{
		Analyses:         analyses,
		Recommended:      best.Entity,
		Savings:          worst.TotalTax.Sub(best.TotalTax),
		BreakevenRevenue: eo.breakevenRevenue(input),
		Methodology:      methodology,
	}
	res.Confidence = eo.confidence(netIncome, res.Savings, input.SSTB)
	res.RiskTier = riskTier(res.Confidence, input.SSTB)

	if input.SSTB {
		res.Warnings = append(res.Warnings, "specified service trade or business: QBI deduction phases out at higher incomes and may not survive the income levels modeled")
	}
	if best.Entity == EntitySCorp && netIncome.LessThan(decimal.NewFromInt(50000)) {
		res.Warnings = append(res.Warnings, "S-corporation payroll and filing overhead often exceeds employment-tax savings below $50,000 of net income")
	}
	if input.State != "" {
		res.Warnings = append(res.Warnings, "state-level entity taxes and franchise fees are not included in the federal comparison")
	}
	return res, nil
}

// breakevenRevenue scans for the revenue at which the S-corp structure first
// beats the sole proprietorship, holding expenses fixed. Zero means no
// breakeven below $2M.
func (eo *EntityOptimizer) breakevenRevenue(input OptimizerInput) decimal.Decimal {
	step := decimal.NewFromInt(5000)
	limit := decimal.NewFromInt(2000000)
	for revenue := input.BusinessExpenses.Add(step); revenue.LessThanOrEqual(limit); revenue = revenue.Add(step) {
		net := revenue.Sub(input.BusinessExpenses)
		sole := eo.passThroughAnalysis(EntitySoleProp, net, input.FilingStatus, decimal.Zero)
		scorp := eo.scorpAnalysis(net, input.FilingStatus)
		if scorp.TotalTax.LessThan(sole.TotalTax) {
			return revenue
		}
	}
	return decimal.Zero
}

// riskTier maps the confidence score onto an audit-risk grade; SSTB status
// is never better than medium because the QBI phase-out is fact-dependent.
func riskTier(confidence int, sstb bool) RiskTier {
	tier := RiskHigh
	switch {
	case confidence >= 75:
		tier = RiskLow
	case confidence >= 50:
		tier = RiskMedium
	}
	if sstb && tier == RiskLow {
		tier = RiskMedium
	}
	return tier
}

// confidence scores the recommendation 0-100: wider spreads and higher
// incomes raise it, SSTB status and thin margins lower it.
func (eo *EntityOptimizer) confidence(netIncome, savings decimal.Decimal, sstb bool) int {
	score := 50
	spreadPoints := savings.Div(decimal.NewFromInt(1000)).IntPart()
	if spreadPoints > 30 {
		spreadPoints = 30
	}
	score += int(spreadPoints)
	if netIncome.GreaterThan(decimal.NewFromInt(150000)) {
		score += 10
	}
	if netIncome.LessThan(decimal.NewFromInt(50000)) {
		score -= 15
	}
	if sstb {
		score -= 20
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
