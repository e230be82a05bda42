package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

func codCalc() *Form982Calculator {
	return NewForm982Calculator(domain.NewTaxYear2025())
}

func TestForm982BankruptcyExcludesEverything(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(80000),
		ExclusionType: domain.CODExclusionBankruptcy,
	})
	require.NoError(t, err)
	assert.True(t, res.ExcludedAmount.Equal(decimal.NewFromInt(80000)))
	assert.True(t, res.TaxableCOD.IsZero())
}

func TestForm982InsolvencyLimitsExclusion(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(50000),
		ExclusionType: domain.CODExclusionInsolvency,
		Assets:        decimal.NewFromInt(100000),
		Liabilities:   decimal.NewFromInt(130000),
	})
	require.NoError(t, err)

	// Insolvent by 30000; the remaining 20000 is taxable.
	assert.True(t, res.ExcludedAmount.Equal(decimal.NewFromInt(30000)))
	assert.True(t, res.TaxableCOD.Equal(decimal.NewFromInt(20000)))
}

func TestForm982SolventBorrowerExcludesNothing(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(50000),
		ExclusionType: domain.CODExclusionInsolvency,
		Assets:        decimal.NewFromInt(130000),
		Liabilities:   decimal.NewFromInt(130000),
	})
	require.NoError(t, err)
	assert.True(t, res.ExcludedAmount.IsZero())
	assert.True(t, res.TaxableCOD.Equal(decimal.NewFromInt(50000)))
}

func TestForm982AttributeReductionOrder(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(40000),
		ExclusionType: domain.CODExclusionBankruptcy,
		Attributes: domain.TaxAttributes{
			NOL:                   decimal.NewFromInt(10000),
			GeneralBusinessCredit: decimal.NewFromInt(2000),
			NetCapitalLoss:        decimal.NewFromInt(5000),
			PropertyBasis:         decimal.NewFromInt(50000),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Reductions, 4)
	assert.Equal(t, "nol", res.Reductions[0].Attribute)
	assert.Equal(t, "general_business_credit", res.Reductions[1].Attribute)
	assert.Equal(t, "net_capital_loss", res.Reductions[2].Attribute)
	assert.Equal(t, "property_basis", res.Reductions[3].Attribute)

	// NOL absorbs 10000, GBC absorbs 6000 of exclusion at one third
	// (credit drops by 2000), capital loss 5000, basis the rest.
	assert.True(t, res.Attributes.NOL.IsZero())
	assert.True(t, res.Attributes.GeneralBusinessCredit.IsZero())
	assert.True(t, res.Attributes.NetCapitalLoss.IsZero())
	assert.True(t, res.Attributes.PropertyBasis.Equal(decimal.NewFromInt(31000)), "got %s", res.Attributes.PropertyBasis)
	assert.True(t, res.UnappliedExclusion.IsZero())
}

func TestForm982ExclusionSurvivesExhaustedAttributes(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(25000),
		ExclusionType: domain.CODExclusionBankruptcy,
		Attributes: domain.TaxAttributes{
			NOL: decimal.NewFromInt(4000),
		},
	})
	require.NoError(t, err)

	// The exclusion stands even with nothing left to reduce.
	assert.True(t, res.ExcludedAmount.Equal(decimal.NewFromInt(25000)))
	assert.True(t, res.UnappliedExclusion.Equal(decimal.NewFromInt(21000)))
}

func TestForm982QPRIReducesResidenceBasisOnly(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:      decimal.NewFromInt(100000),
		ExclusionType:  domain.CODExclusionQPRI,
		ResidenceBasis: decimal.NewFromInt(250000),
		Attributes: domain.TaxAttributes{
			NOL: decimal.NewFromInt(40000),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Reductions, 1)
	assert.Equal(t, "residence_basis", res.Reductions[0].Attribute)
	assert.True(t, res.Reductions[0].After.Equal(decimal.NewFromInt(150000)))
	// General attributes are untouched.
	assert.True(t, res.Attributes.NOL.Equal(decimal.NewFromInt(40000)))
}

func TestForm982QPRICappedAt750k(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:      decimal.NewFromInt(900000),
		ExclusionType:  domain.CODExclusionQPRI,
		ResidenceBasis: decimal.NewFromInt(1000000),
	})
	require.NoError(t, err)

	// The discharge above the cap stays taxable.
	assert.True(t, res.ExcludedAmount.Equal(decimal.NewFromInt(750000)))
	assert.True(t, res.TaxableCOD.Equal(decimal.NewFromInt(150000)))
}

func TestForm982QPRIBasisFlooredAtSecuredDebt(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:            decimal.NewFromInt(300000),
		ExclusionType:        domain.CODExclusionQPRI,
		ResidenceBasis:       decimal.NewFromInt(400000),
		ResidenceSecuredDebt: decimal.NewFromInt(250000),
	})
	require.NoError(t, err)

	// Only 150000 of basis sits above the remaining secured debt.
	require.Len(t, res.Reductions, 1)
	assert.True(t, res.Reductions[0].Reduction.Equal(decimal.NewFromInt(150000)))
	assert.True(t, res.Reductions[0].After.Equal(decimal.NewFromInt(250000)))
	assert.True(t, res.UnappliedExclusion.Equal(decimal.NewFromInt(150000)))
}

func TestForm982QPRISecuredDebtAboveBasis(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:            decimal.NewFromInt(50000),
		ExclusionType:        domain.CODExclusionQPRI,
		ResidenceBasis:       decimal.NewFromInt(200000),
		ResidenceSecuredDebt: decimal.NewFromInt(260000),
	})
	require.NoError(t, err)

	require.Len(t, res.Reductions, 1)
	assert.True(t, res.Reductions[0].Reduction.IsZero())
	assert.True(t, res.Reductions[0].After.Equal(decimal.NewFromInt(200000)))
}

func TestForm982OtherExclusionUsesStandardLadder(t *testing.T) {
	res, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(15000),
		ExclusionType: domain.CODExclusionOther,
		Attributes: domain.TaxAttributes{
			NOL: decimal.NewFromInt(20000),
		},
	})
	require.NoError(t, err)

	assert.True(t, res.ExcludedAmount.Equal(decimal.NewFromInt(15000)))
	assert.True(t, res.TaxableCOD.IsZero())
	require.Len(t, res.Reductions, 1)
	assert.Equal(t, "nol", res.Reductions[0].Attribute)
	assert.True(t, res.Attributes.NOL.Equal(decimal.NewFromInt(5000)))
}

func TestForm982QPRINonBasisRequestRejected(t *testing.T) {
	_, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:               decimal.NewFromInt(10000),
		ExclusionType:           domain.CODExclusionQPRI,
		ReduceNonBasisUnderQPRI: true,
	})
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestForm982UnknownExclusionRejected(t *testing.T) {
	_, err := codCalc().Calculate(&domain.Form982Input{
		CODIncome:     decimal.NewFromInt(10000),
		ExclusionType: "student_loan",
	})
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}
