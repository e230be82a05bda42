package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

func eligibleStudent(expenses string) domain.EducationStudent {
	return domain.EducationStudent{
		Name:              "student",
		QualifiedExpenses: decimal.RequireFromString(expenses),
		HalfTime:          true,
		DegreeSeeking:     true,
		FirstFourYears:    true,
		Received1098T:     true,
		ClaimAOTC:         true,
	}
}

func TestAOTCTentativeTiers(t *testing.T) {
	tests := []struct {
		expenses string
		want     string
	}{
		{"0", "0"},
		{"2000", "2000"},
		{"2000.01", "2000.0025"},
		{"4000", "2500"},
		{"4001", "2500"},
	}
	for _, tt := range tests {
		t.Run(tt.expenses, func(t *testing.T) {
			got := aotcTentative(decimal.RequireFromString(tt.expenses))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestForm8863MidPhaseout(t *testing.T) {
	calc := NewForm8863Calculator(domain.NewTaxYear2025())
	res, err := calc.Calculate(&domain.Form8863Input{
		Students: []domain.EducationStudent{eligibleStudent("4500")},
	}, decimal.NewFromInt(85000), domain.FilingSingle)
	require.NoError(t, err)

	// Halfway through the single phaseout: 2500 * 0.5.
	assert.True(t, res.PhaseoutRatio.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, res.AOTCTotal.Equal(decimal.NewFromInt(1250)), "got %s", res.AOTCTotal)
	assert.True(t, res.AOTCRefundable.Equal(decimal.NewFromInt(500)), "got %s", res.AOTCRefundable)
	assert.True(t, res.AOTCNonrefundable.Equal(decimal.NewFromInt(750)))
	assert.True(t, res.LLC.IsZero())
}

func TestForm8863IneligibleStudentFallsToLLC(t *testing.T) {
	calc := NewForm8863Calculator(domain.NewTaxYear2025())
	grad := eligibleStudent("12000")
	grad.FirstFourYears = false

	res, err := calc.Calculate(&domain.Form8863Input{
		Students: []domain.EducationStudent{grad},
	}, decimal.NewFromInt(70000), domain.FilingSingle)
	require.NoError(t, err)

	require.Len(t, res.Students, 1)
	assert.False(t, res.Students[0].Eligible)
	assert.True(t, res.AOTCTotal.IsZero())
	// 20% of expenses capped at 10000.
	assert.True(t, res.LLC.Equal(decimal.NewFromInt(2000)), "got %s", res.LLC)
}

func TestForm8863MutualExclusivityPerStudent(t *testing.T) {
	calc := NewForm8863Calculator(domain.NewTaxYear2025())
	aotc := eligibleStudent("4000")
	llcOnly := eligibleStudent("5000")
	llcOnly.ClaimAOTC = false

	res, err := calc.Calculate(&domain.Form8863Input{
		Students: []domain.EducationStudent{aotc, llcOnly},
	}, decimal.NewFromInt(50000), domain.FilingSingle)
	require.NoError(t, err)

	// The AOTC student's expenses never reach the LLC pool.
	assert.True(t, res.AOTCTotal.Equal(decimal.NewFromInt(2500)))
	assert.True(t, res.LLCExpenses.Equal(decimal.NewFromInt(5000)))
	assert.True(t, res.LLC.Equal(decimal.NewFromInt(1000)))
	assert.True(t, res.TotalCredit.Equal(decimal.NewFromInt(3500)))
}

func TestForm8863MFSDisqualified(t *testing.T) {
	calc := NewForm8863Calculator(domain.NewTaxYear2025())
	res, err := calc.Calculate(&domain.Form8863Input{
		Students: []domain.EducationStudent{eligibleStudent("4000")},
	}, decimal.NewFromInt(40000), domain.FilingMarriedSeparate)
	require.NoError(t, err)

	assert.True(t, res.AOTCTotal.IsZero())
	assert.True(t, res.LLC.IsZero())
}

func TestForm8863AboveLimitIsZero(t *testing.T) {
	calc := NewForm8863Calculator(domain.NewTaxYear2025())
	res, err := calc.Calculate(&domain.Form8863Input{
		Students: []domain.EducationStudent{eligibleStudent("4000")},
	}, decimal.NewFromInt(95000), domain.FilingSingle)
	require.NoError(t, err)

	assert.True(t, res.TotalCredit.IsZero())
}
