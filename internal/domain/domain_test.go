package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilingStatusValid(t *testing.T) {
	for _, fs := range AllFilingStatuses {
		assert.True(t, fs.Valid(), string(fs))
	}
	assert.False(t, FilingStatus("married").Valid())
	assert.True(t, FilingQualifyingWidow.IsJoint())
	assert.True(t, FilingMarriedSeparate.IsMFS())
}

func TestTaxYearDispatch(t *testing.T) {
	cfg, err := TaxYearFor(2025)
	require.NoError(t, err)
	assert.Equal(t, 2025, cfg.Year)
	assert.True(t, cfg.StandardDeductionFor(FilingMarriedJoint).Equal(decimal.NewFromInt(30000)))
	assert.True(t, cfg.AMT.Exemption[FilingSingle].Equal(decimal.NewFromInt(88100)))

	_, err = TaxYearFor(2024)
	assert.Error(t, err)
}

func TestSALTCapHalvedForMFS(t *testing.T) {
	cfg := NewTaxYear2025()
	assert.True(t, cfg.SALTCapFor(FilingSingle).Equal(decimal.NewFromInt(10000)))
	assert.True(t, cfg.SALTCapFor(FilingMarriedSeparate).Equal(decimal.NewFromInt(5000)))
}

func TestPhaseoutRatioBounds(t *testing.T) {
	p := PhaseoutRange{Limit: decimal.NewFromInt(90000), Range: decimal.NewFromInt(10000)}

	tests := []struct {
		name string
		magi int64
		want string
	}{
		{"well below", 50000, "1"},
		{"at limit minus range", 80000, "1"},
		{"midpoint", 85000, "0.5"},
		{"at limit", 90000, "0"},
		{"above limit", 95000, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Ratio(decimal.NewFromInt(tt.magi))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), got.String())
		})
	}

	// Zero range disqualifies at any MAGI.
	disq := PhaseoutRange{}
	assert.True(t, disq.Ratio(decimal.Zero).IsZero())
}

func TestISOExerciseSpread(t *testing.T) {
	ex := ISOExercise{Shares: 1000, ExercisePrice: decimal.NewFromInt(10), FMVAtExercise: decimal.NewFromInt(60)}
	assert.True(t, ex.Spread().Equal(decimal.NewFromInt(50000)))

	// Disqualifying disposition contributes nothing.
	ex.SoldSameYear = true
	assert.True(t, ex.Spread().IsZero())

	// Underwater exercise floors at zero.
	under := ISOExercise{Shares: 100, ExercisePrice: decimal.NewFromInt(50), FMVAtExercise: decimal.NewFromInt(40)}
	assert.True(t, under.Spread().IsZero())
}

func TestConsumeFIFOOrdersByOriginYear(t *testing.T) {
	records := []FTCCarryover{
		{CarryoverRecord: CarryoverRecord{OriginYear: 2023, OriginalAmount: decimal.NewFromInt(500)}, Category: FTCCategoryPassive},
		{CarryoverRecord: CarryoverRecord{OriginYear: 2021, OriginalAmount: decimal.NewFromInt(300)}, Category: FTCCategoryPassive},
		{CarryoverRecord: CarryoverRecord{OriginYear: 2022, OriginalAmount: decimal.NewFromInt(200), UsedAmount: decimal.NewFromInt(150)}, Category: FTCCategoryPassive},
	}

	consumed, updated := ConsumeFIFO(records, decimal.NewFromInt(400),
		func(c FTCCarryover) CarryoverRecord { return c.CarryoverRecord },
		func(c FTCCarryover, r CarryoverRecord) FTCCarryover { c.CarryoverRecord = r; return c },
	)

	assert.True(t, consumed.Equal(decimal.NewFromInt(400)))
	// Oldest first: 300 from 2021, 50 from 2022, 50 from 2023.
	byYear := map[int]decimal.Decimal{}
	for _, u := range updated {
		byYear[u.OriginYear] = u.Remaining()
	}
	assert.True(t, byYear[2021].IsZero())
	assert.True(t, byYear[2022].IsZero())
	assert.True(t, byYear[2023].Equal(decimal.NewFromInt(450)))

	// Input slice untouched.
	assert.True(t, records[0].UsedAmount.IsZero())
}

func TestConsumeFIFOCapacityExceedsPool(t *testing.T) {
	records := []MTCCarryforward{
		{CarryoverRecord: CarryoverRecord{OriginYear: 2024, OriginalAmount: decimal.NewFromInt(100)}},
	}
	consumed, updated := ConsumeFIFO(records, decimal.NewFromInt(1000),
		func(c MTCCarryforward) CarryoverRecord { return c.CarryoverRecord },
		func(c MTCCarryforward, r CarryoverRecord) MTCCarryforward { c.CarryoverRecord = r; return c },
	)
	assert.True(t, consumed.Equal(decimal.NewFromInt(100)))
	assert.True(t, updated[0].Remaining().IsZero())
}

func TestFTCCarryoverExpiry(t *testing.T) {
	c := FTCCarryover{CarryoverRecord: CarryoverRecord{OriginYear: 2015, OriginalAmount: decimal.NewFromInt(100)}}
	assert.False(t, c.Expired(2025))
	assert.True(t, c.Expired(2026))
}

func TestRentalPropertyNet(t *testing.T) {
	enhanced := RentalProperty{Enhanced: true, Gross: decimal.NewFromInt(30000), Expenses: decimal.NewFromInt(12000), Depreciation: decimal.NewFromInt(8000)}
	assert.True(t, enhanced.Net().Equal(decimal.NewFromInt(10000)))

	simple := RentalProperty{NetIncome: decimal.NewFromInt(-5000)}
	assert.True(t, simple.Net().Equal(decimal.NewFromInt(-5000)))
}
