package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/taxengine/internal/domain"
)

func palCalc() *Form8582Calculator {
	return NewForm8582Calculator(domain.NewTaxYear2025())
}

func TestClassifyMaterialParticipation(t *testing.T) {
	calc := palCalc()

	tests := []struct {
		name     string
		activity domain.PassiveActivity
		wantMP   bool
		wantTest string
	}{
		{
			name:     "500 combined hours",
			activity: domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 300, SpouseHours: 250},
			wantMP:   true,
			wantTest: "test_1",
		},
		{
			name:     "substantially all participation",
			activity: domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 180, TotalParticipationHours: 190},
			wantMP:   true,
			wantTest: "test_2",
		},
		{
			name:     "100 hours and not less than others",
			activity: domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 120, TotalParticipationHours: 400, MaxOtherIndividualHours: 110},
			wantMP:   true,
			wantTest: "test_3",
		},
		{
			name:     "100 hours but another participates more",
			activity: domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 120, TotalParticipationHours: 800, MaxOtherIndividualHours: 400},
			wantMP:   false,
		},
		{
			name:     "tests 4-7 collapse to input flag",
			activity: domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 50, MaterialParticipation: true},
			wantMP:   true,
			wantTest: "tests_4_7",
		},
		{
			name:     "oil and gas working interest never passive",
			activity: domain.PassiveActivity{Type: domain.ActivityOilGasWorking},
			wantMP:   true,
			wantTest: "working_interest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := calc.Classify(tt.activity, false)
			assert.Equal(t, tt.wantMP, cls.MaterialParticipation)
			if tt.wantTest != "" {
				assert.Equal(t, tt.wantTest, cls.TestID)
			}
			if tt.wantMP {
				assert.False(t, cls.Passive)
			}
		})
	}
}

func TestClassifyStableUnderHourPermutation(t *testing.T) {
	// Swapping taxpayer and spouse hours preserves the tested quantities.
	calc := palCalc()
	a := domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 350, SpouseHours: 200}
	b := domain.PassiveActivity{Type: domain.ActivityTradeBusiness, TaxpayerHours: 200, SpouseHours: 350}
	assert.Equal(t, calc.Classify(a, false), calc.Classify(b, false))
}

func TestRentalPerSePassiveUnlessREPro(t *testing.T) {
	calc := palCalc()
	rental := domain.PassiveActivity{Type: domain.ActivityRentalRealEstate, TaxpayerHours: 600}

	// Material participation alone does not unpassivate a rental.
	cls := calc.Classify(rental, false)
	assert.True(t, cls.Passive)

	// A real estate professional with material participation does.
	cls = calc.Classify(rental, true)
	assert.False(t, cls.Passive)
}

func TestRealEstateProfessionalThresholds(t *testing.T) {
	assert.True(t, realEstateProfessional(&domain.Form8582Input{RealPropertyHours: 800, TotalWorkHours: 1500}))
	assert.False(t, realEstateProfessional(&domain.Form8582Input{RealPropertyHours: 700, TotalWorkHours: 1200}), "under 750 hours")
	assert.False(t, realEstateProfessional(&domain.Form8582Input{RealPropertyHours: 800, TotalWorkHours: 1700}), "not more than half of work hours")
}

func TestSpecialAllowancePhaseout(t *testing.T) {
	calc := palCalc()

	tests := []struct {
		name string
		ctx  PALContext
		want int64
	}{
		{"below start", PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(90000)}, 25000},
		{"at start", PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(100000)}, 25000},
		{"phased 120k", PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(120000)}, 15000},
		{"fully phased 150k", PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(150000)}, 0},
		{"mfs apart", PALContext{FilingStatus: domain.FilingMarriedSeparate, MFSLivingApart: true, MAGI: decimal.NewFromInt(55000)}, 10000},
		{"mfs together", PALContext{FilingStatus: domain.FilingMarriedSeparate, MAGI: decimal.NewFromInt(40000)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.SpecialAllowance(tt.ctx)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

func TestForm8582RentalLossWithPhaseout(t *testing.T) {
	// MAGI $120K, $25K eligible rental loss, active participant: allowance
	// available 15000, all used, 10000 suspended.
	calc := palCalc()
	input := &domain.Form8582Input{
		Activities: []domain.PassiveActivity{
			{
				Name:              "duplex",
				Type:              domain.ActivityRentalRealEstate,
				GrossIncome:       decimal.NewFromInt(10000),
				Deductions:        decimal.NewFromInt(35000),
				ActiveParticipant: true,
			},
		},
	}
	res, err := calc.Calculate(input, PALContext{
		FilingStatus: domain.FilingSingle,
		MAGI:         decimal.NewFromInt(120000),
		TaxYear:      2025,
	})
	require.NoError(t, err)

	assert.True(t, res.AllowanceAvailable.Equal(decimal.NewFromInt(15000)), "available=%s", res.AllowanceAvailable)
	assert.True(t, res.AllowanceUsed.Equal(decimal.NewFromInt(15000)))
	assert.True(t, res.AllowedLoss.Equal(decimal.NewFromInt(15000)))
	require.Len(t, res.SuspendedLosses, 1)
	assert.True(t, res.SuspendedLosses[0].Amount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 2025, res.SuspendedLosses[0].OriginYear)
}

func TestForm8582PassiveIncomeAbsorbsLosses(t *testing.T) {
	calc := palCalc()
	input := &domain.Form8582Input{
		Activities: []domain.PassiveActivity{
			{Name: "loss-biz", Type: domain.ActivityTradeBusiness, Deductions: decimal.NewFromInt(20000)},
			{Name: "income-biz", Type: domain.ActivityTradeBusiness, GrossIncome: decimal.NewFromInt(30000)},
		},
	}
	res, err := calc.Calculate(input, PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(200000), TaxYear: 2025})
	require.NoError(t, err)

	// Income fully absorbs the loss; nothing suspends.
	assert.True(t, res.AllowedLoss.Equal(decimal.NewFromInt(20000)))
	assert.Empty(t, res.SuspendedLosses)
	assert.True(t, res.NetAllowed().Equal(decimal.NewFromInt(10000)))
}

func TestForm8582PriorSuspendedAddsToCurrent(t *testing.T) {
	calc := palCalc()
	input := &domain.Form8582Input{
		Activities: []domain.PassiveActivity{
			{
				Name:                   "old-rental",
				Type:                   domain.ActivityRentalRealEstate,
				Deductions:             decimal.NewFromInt(5000),
				PriorYearUnallowedLoss: decimal.NewFromInt(7000),
			},
		},
	}
	// High MAGI, not an active participant: everything suspends.
	res, err := calc.Calculate(input, PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(300000), TaxYear: 2025})
	require.NoError(t, err)
	assert.True(t, res.PassiveLoss.Equal(decimal.NewFromInt(12000)))
	assert.True(t, res.AllowedLoss.IsZero())
	require.Len(t, res.SuspendedLosses, 1)
	assert.True(t, res.SuspendedLosses[0].Amount.Equal(decimal.NewFromInt(12000)))
}

func TestForm8582DispositionReleasesSuspended(t *testing.T) {
	calc := palCalc()
	input := &domain.Form8582Input{
		Activities: []domain.PassiveActivity{
			{
				Name:                   "sold-rental",
				Type:                   domain.ActivityRentalRealEstate,
				Deductions:             decimal.NewFromInt(4000),
				PriorYearUnallowedLoss: decimal.NewFromInt(16000),
				DisposedCompletely:     true,
			},
		},
	}
	res, err := calc.Calculate(input, PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(500000), TaxYear: 2025})
	require.NoError(t, err)

	require.Len(t, res.Activities, 1)
	assert.True(t, res.Activities[0].ReleasedByDisposition)
	assert.True(t, res.Activities[0].AllowedLoss.Equal(decimal.NewFromInt(20000)))
	assert.Empty(t, res.SuspendedLosses)
}

func TestForm8582PTPSeparateBasket(t *testing.T) {
	calc := palCalc()
	input := &domain.Form8582Input{
		Activities: []domain.PassiveActivity{
			{Name: "ptp-a", Type: domain.ActivityPTP, Deductions: decimal.NewFromInt(8000)},
			{Name: "ptp-b", Type: domain.ActivityPTP, GrossIncome: decimal.NewFromInt(5000)},
			{Name: "biz", Type: domain.ActivityTradeBusiness, GrossIncome: decimal.NewFromInt(10000)},
		},
	}
	res, err := calc.Calculate(input, PALContext{FilingStatus: domain.FilingSingle, MAGI: decimal.NewFromInt(200000), TaxYear: 2025})
	require.NoError(t, err)

	// ptp-a's loss cannot offset ptp-b's income or the other passive income.
	require.Len(t, res.PTPs, 2)
	var a, b PTPResult
	for _, p := range res.PTPs {
		if p.Name == "ptp-a" {
			a = p
		} else {
			b = p
		}
	}
	assert.True(t, a.AllowedLoss.IsZero())
	assert.True(t, a.SuspendedLoss.Equal(decimal.NewFromInt(8000)))
	assert.True(t, b.Income.Equal(decimal.NewFromInt(5000)))
	require.Len(t, res.SuspendedLosses, 1)
	assert.Equal(t, "ptp-a", res.SuspendedLosses[0].ActivityName)
}
