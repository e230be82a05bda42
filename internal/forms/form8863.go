package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form8863Calculator computes the American Opportunity and Lifetime Learning
// credits. AOTC is per student; LLC is per return and only reaches expenses
// of students not claiming AOTC. The two credits never apply to the same
// student in the same year.
type Form8863Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm8863Calculator builds the calculator from a year table.
func NewForm8863Calculator(cfg *domain.TaxYearConfig) *Form8863Calculator {
	return &Form8863Calculator{Config: cfg}
}

var (
	aotcFullTier    = decimal.NewFromInt(2000)
	aotcQuarterTier = decimal.NewFromInt(4000)
	aotcMax         = decimal.NewFromInt(2500)
	aotcRefundShare = decimal.NewFromFloat(0.40)
	llcExpenseCap   = decimal.NewFromInt(10000)
	llcRate         = decimal.NewFromFloat(0.20)
)

// StudentCredit is the per-student AOTC outcome.
type StudentCredit struct {
	Name             string          `json:"name"`
	Eligible         bool            `json:"eligible"`
	IneligibleReason string          `json:"ineligible_reason,omitempty"`
	Tentative        decimal.Decimal `json:"tentative"`
	AfterPhaseout    decimal.Decimal `json:"after_phaseout"`
}

// Form8863Result is the computed form.
type Form8863Result struct {
	Students          []StudentCredit `json:"students"`
	PhaseoutRatio     decimal.Decimal `json:"phaseout_ratio"`
	AOTCTotal         decimal.Decimal `json:"aotc_total"`
	AOTCRefundable    decimal.Decimal `json:"aotc_refundable"`
	AOTCNonrefundable decimal.Decimal `json:"aotc_nonrefundable"`
	LLCExpenses       decimal.Decimal `json:"llc_expenses"`
	LLC               decimal.Decimal `json:"llc"`
	TotalCredit       decimal.Decimal `json:"total_credit"`
}

// Summary returns the compact line projection used in report content.
func (r *Form8863Result) Summary() map[string]any {
	return map[string]any{
		"aotc_total":         emit(r.AOTCTotal),
		"aotc_refundable":    emit(r.AOTCRefundable),
		"aotc_nonrefundable": emit(r.AOTCNonrefundable),
		"llc":                emit(r.LLC),
		"total_credit":       emit(r.TotalCredit),
	}
}

// Calculate computes both credits under the shared MAGI phaseout.
func (c *Form8863Calculator) Calculate(input *domain.Form8863Input, magi decimal.Decimal, fs domain.FilingStatus) (*Form8863Result, error) {
	if input == nil {
		input = &domain.Form8863Input{}
	}
	res := &Form8863Result{}
	res.PhaseoutRatio = c.Config.EducationPhaseout[fs].Ratio(magi)

	for _, student := range input.Students {
		sc := StudentCredit{Name: student.Name}
		if student.ClaimAOTC {
			sc.Eligible, sc.IneligibleReason = aotcEligible(student)
		}
		if sc.Eligible {
			sc.Tentative = aotcTentative(student.QualifiedExpenses)
			sc.AfterPhaseout = sc.Tentative.Mul(res.PhaseoutRatio)
			res.AOTCTotal = res.AOTCTotal.Add(sc.AfterPhaseout)
		} else {
			// Expenses of non-AOTC students feed the per-return LLC.
			res.LLCExpenses = res.LLCExpenses.Add(student.QualifiedExpenses)
		}
		res.Students = append(res.Students, sc)
	}

	res.AOTCRefundable = res.AOTCTotal.Mul(aotcRefundShare)
	res.AOTCNonrefundable = res.AOTCTotal.Sub(res.AOTCRefundable)

	res.LLC = llcRate.Mul(decimal.Min(llcExpenseCap, res.LLCExpenses)).Mul(res.PhaseoutRatio)
	res.TotalCredit = res.AOTCTotal.Add(res.LLC)
	return res, nil
}

// aotcTentative is min(2500, 100% of the first 2000 + 25% of the next 2000).
func aotcTentative(expenses decimal.Decimal) decimal.Decimal {
	first := decimal.Min(expenses, aotcFullTier)
	quarter := floorZero(decimal.Min(expenses, aotcQuarterTier).Sub(aotcFullTier)).Mul(decimal.NewFromFloat(0.25))
	return decimal.Min(aotcMax, first.Add(quarter))
}

func aotcEligible(s domain.EducationStudent) (bool, string) {
	switch {
	case !s.HalfTime:
		return false, "not enrolled at least half-time"
	case !s.DegreeSeeking:
		return false, "not pursuing a degree"
	case !s.FirstFourYears:
		return false, "beyond the first four undergraduate years"
	case s.PriorAOTCClaims > 3:
		return false, "AOTC already claimed four times"
	case s.FelonyDrugConviction:
		return false, "felony drug conviction"
	case !s.Received1098T:
		return false, "no Form 1098-T received"
	}
	return true, ""
}
