package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form1116Calculator computes the foreign tax credit per separate limitation
// basket, including FIFO consumption of prior-year carryovers and the
// simplified no-1116 election for small passive-only foreign taxes.
type Form1116Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm1116Calculator builds the calculator from a year table.
func NewForm1116Calculator(cfg *domain.TaxYearConfig) *Form1116Calculator {
	return &Form1116Calculator{Config: cfg}
}

// FTCContext carries the whole-return figures the limitation is built from.
type FTCContext struct {
	FilingStatus          domain.FilingStatus
	TotalTaxableIncome    decimal.Decimal
	TotalTaxBeforeCredits decimal.Decimal
	TaxYear               int
}

// FTCBasketResult is the per-basket outcome. Conservation holds:
// TaxesPaid = CreditAllowed + NewCarryforward.
type FTCBasketResult struct {
	Category          domain.FTCCategory    `json:"category"`
	NetForeignIncome  decimal.Decimal       `json:"net_foreign_income"`
	Limitation        decimal.Decimal       `json:"limitation"`
	TaxesPaid         decimal.Decimal       `json:"taxes_paid"`
	CreditBeforeCarry decimal.Decimal       `json:"credit_before_carryover"`
	CarryoverUsed     decimal.Decimal       `json:"carryover_used"`
	CreditAllowed     decimal.Decimal       `json:"credit_allowed"`
	ExcessLimitation  decimal.Decimal       `json:"excess_limitation"`
	NewCarryforward   decimal.Decimal       `json:"new_carryforward"`
	UpdatedCarryovers []domain.FTCCarryover `json:"updated_carryovers,omitempty"`
}

// Form1116Result is the computed form across every basket.
type Form1116Result struct {
	Baskets          []FTCBasketResult `json:"baskets"`
	TotalCredit      decimal.Decimal   `json:"total_credit"`
	SimplifiedMethod bool              `json:"simplified_method"`
	ApproximateRatio bool              `json:"approximate_ratio,omitempty"`
}

// Summary returns the compact line projection used in report content.
func (r *Form1116Result) Summary() map[string]any {
	return map[string]any{
		"total_credit":      emit(r.TotalCredit),
		"basket_count":      len(r.Baskets),
		"simplified_method": r.SimplifiedMethod,
	}
}

// SimplifiedEligible reports whether the no-1116 election applies: a single
// passive basket with total foreign taxes at or under $300 ($600 MFJ).
func (c *Form1116Calculator) SimplifiedEligible(input *domain.Form1116Input, fs domain.FilingStatus) bool {
	if input == nil || len(input.Baskets) != 1 {
		return false
	}
	basket := input.Baskets[0]
	if basket.Category != domain.FTCCategoryPassive {
		return false
	}
	limit := c.Config.FTCSimplifiedLimitSingle
	if fs.IsJoint() {
		limit = c.Config.FTCSimplifiedLimitJoint
	}
	return basket.TotalTaxesPaid().LessThanOrEqual(limit)
}

// Calculate runs the regular-tax FTC.
func (c *Form1116Calculator) Calculate(input *domain.Form1116Input, ctx FTCContext) (*Form1116Result, error) {
	if input == nil {
		input = &domain.Form1116Input{}
	}

	if c.SimplifiedEligible(input, ctx.FilingStatus) {
		taxes := input.Baskets[0].TotalTaxesPaid()
		return &Form1116Result{
			SimplifiedMethod: true,
			TotalCredit:      taxes,
			Baskets: []FTCBasketResult{{
				Category:      input.Baskets[0].Category,
				TaxesPaid:     taxes,
				CreditAllowed: taxes,
			}},
		}, nil
	}

	res := &Form1116Result{}
	for _, basket := range input.Baskets {
		br := c.calculateBasket(basket, ctx.TotalTaxableIncome, ctx.TotalTaxBeforeCredits, ctx.TaxYear)
		res.Baskets = append(res.Baskets, br)
		res.TotalCredit = res.TotalCredit.Add(br.CreditAllowed)
	}
	return res, nil
}

// CalculateAMT runs the AMT FTC: the same basket structure with AMTI and TMT
// substituted for taxable income and regular tax. When AMTI was not supplied
// the regular-tax ratio stands in and the result is flagged approximate.
func (c *Form1116Calculator) CalculateAMT(input *domain.Form1116Input, ctx FTCContext, tmt decimal.Decimal) (*Form1116Result, error) {
	if input == nil {
		input = &domain.Form1116Input{}
	}
	res := &Form1116Result{}

	incomeBase := input.AMTI
	if incomeBase.IsZero() {
		incomeBase = ctx.TotalTaxableIncome
		res.ApproximateRatio = true
	}

	for _, basket := range input.Baskets {
		br := c.calculateBasket(basket, incomeBase, tmt, ctx.TaxYear)
		// The AMT FTC cannot reduce TMT below zero.
		remaining := floorZero(tmt.Sub(res.TotalCredit))
		br.CreditAllowed = decimal.Min(br.CreditAllowed, remaining)
		res.Baskets = append(res.Baskets, br)
		res.TotalCredit = res.TotalCredit.Add(br.CreditAllowed)
	}
	return res, nil
}

func (c *Form1116Calculator) calculateBasket(basket domain.FTCBasketInput, totalIncome, totalTax decimal.Decimal, taxYear int) FTCBasketResult {
	br := FTCBasketResult{Category: basket.Category, TaxesPaid: basket.TotalTaxesPaid()}

	// Net foreign source income, floored at zero.
	net := basket.GrossForeignIncome.
		Sub(basket.DefinitelyRelatedDeductions).
		Sub(basket.AllocatedInterest).
		Sub(basket.AllocatedSALT).
		Sub(basket.OtherAllocatedDeductions).
		Sub(basket.LossesFromOtherCategories)
	br.NetForeignIncome = floorZero(net)

	// Limitation = total tax * min(1, net foreign / total taxable).
	if totalIncome.GreaterThan(decimal.Zero) {
		ratio := decimal.Min(one, br.NetForeignIncome.Div(totalIncome))
		br.Limitation = totalTax.Mul(ratio)
	}

	br.CreditBeforeCarry = decimal.Min(br.TaxesPaid, br.Limitation)
	br.NewCarryforward = br.TaxesPaid.Sub(br.CreditBeforeCarry)
	br.ExcessLimitation = floorZero(br.Limitation.Sub(br.TaxesPaid))

	// Excess limitation absorbs prior-year carryovers FIFO, skipping expired
	// records.
	if br.ExcessLimitation.GreaterThan(decimal.Zero) && len(basket.Carryovers) > 0 {
		live := make([]domain.FTCCarryover, 0, len(basket.Carryovers))
		for _, co := range basket.Carryovers {
			if !co.Expired(taxYear) {
				live = append(live, co)
			}
		}
		used, updated := domain.ConsumeFIFO(live, br.ExcessLimitation,
			func(co domain.FTCCarryover) domain.CarryoverRecord { return co.CarryoverRecord },
			func(co domain.FTCCarryover, r domain.CarryoverRecord) domain.FTCCarryover {
				co.CarryoverRecord = r
				return co
			},
		)
		br.CarryoverUsed = used
		br.UpdatedCarryovers = updated
	} else {
		br.UpdatedCarryovers = basket.Carryovers
	}

	br.CreditAllowed = br.CreditBeforeCarry.Add(br.CarryoverUsed)
	return br
}
