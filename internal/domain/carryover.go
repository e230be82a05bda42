package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CarryoverRecord is the shared shape for aged, origin-year-tagged balances
// (FTC carryovers, MTC carryforwards, suspended passive losses). Consumption
// is always FIFO by origin year.
type CarryoverRecord struct {
	OriginYear     int             `yaml:"origin_year" json:"origin_year"`
	OriginalAmount decimal.Decimal `yaml:"original_amount" json:"original_amount"`
	UsedAmount     decimal.Decimal `yaml:"used_amount" json:"used_amount"`
}

// Remaining is the unconsumed balance.
func (c CarryoverRecord) Remaining() decimal.Decimal {
	return c.OriginalAmount.Sub(c.UsedAmount)
}

// FTCCategory names a Form 1116 separate limitation basket.
type FTCCategory string

const (
	FTCCategoryGILTI         FTCCategory = "section_951a"
	FTCCategoryForeignBranch FTCCategory = "foreign_branch"
	FTCCategoryPassive       FTCCategory = "passive"
	FTCCategoryGeneral       FTCCategory = "general"
	FTCCategory901J          FTCCategory = "section_901j"
	FTCCategoryLumpSum       FTCCategory = "lump_sum"
	FTCCategoryTreaty        FTCCategory = "treaty_resourced"
)

// FTCCarryover is a per-basket foreign tax credit carryover record.
// Carryback window is 1 year, carryforward 10 years from origin.
type FTCCarryover struct {
	CarryoverRecord `yaml:",inline" json:",inline"`
	Category        FTCCategory `yaml:"category" json:"category"`
}

// FTCCarryforwardYears is the statutory carryforward window.
const FTCCarryforwardYears = 10

// Expired reports whether the record can no longer be used in taxYear.
func (c FTCCarryover) Expired(taxYear int) bool {
	return taxYear > c.OriginYear+FTCCarryforwardYears
}

// MTCCarryforward is a minimum tax credit record. Carryforward is indefinite.
type MTCCarryforward struct {
	CarryoverRecord `yaml:",inline" json:",inline"`
}

// SuspendedLoss is a per-activity passive loss carried forward by Form 8582.
type SuspendedLoss struct {
	ActivityName string          `yaml:"activity_name" json:"activity_name"`
	OriginYear   int             `yaml:"origin_year" json:"origin_year"`
	Amount       decimal.Decimal `yaml:"amount" json:"amount"`
}

// PriorYearAMTDetail decomposes a previous year's AMT into deferral and
// exclusion components. Only the deferral portion generates minimum tax
// credit.
type PriorYearAMTDetail struct {
	TotalAMT             decimal.Decimal `yaml:"total_amt" json:"total_amt"`
	DeferralAdjustments  decimal.Decimal `yaml:"deferral_adjustments" json:"deferral_adjustments"`
	ExclusionAdjustments decimal.Decimal `yaml:"exclusion_adjustments" json:"exclusion_adjustments"`
	BreakdownKnown       bool            `yaml:"breakdown_known" json:"breakdown_known"`
}

// PriorYearCarryovers is the cross-year state snapshot the pipeline threads
// through a calculation. The engine reads it and returns an updated snapshot;
// it never mutates the input.
type PriorYearCarryovers struct {
	SuspendedLosses  []SuspendedLoss     `yaml:"suspended_losses,omitempty" json:"suspended_losses,omitempty"`
	FTCCarryovers    []FTCCarryover      `yaml:"ftc_carryovers,omitempty" json:"ftc_carryovers,omitempty"`
	MTCCarryforwards []MTCCarryforward   `yaml:"mtc_carryforwards,omitempty" json:"mtc_carryforwards,omitempty"`
	IRABasis         decimal.Decimal     `yaml:"ira_basis,omitempty" json:"ira_basis,omitempty"`
	CapitalLossCarry decimal.Decimal     `yaml:"capital_loss_carryover,omitempty" json:"capital_loss_carryover,omitempty"`
	NOLCarryover     decimal.Decimal     `yaml:"nol_carryover,omitempty" json:"nol_carryover,omitempty"`
	PriorYearAMT     *PriorYearAMTDetail `yaml:"prior_year_amt,omitempty" json:"prior_year_amt,omitempty"`
}

// ConsumeFIFO draws up to capacity from records ordered by origin year
// ascending and returns the amount consumed plus the updated records.
// Records are copied; the input slice is left untouched.
func ConsumeFIFO[T any](records []T, capacity decimal.Decimal, get func(T) CarryoverRecord, set func(T, CarryoverRecord) T) (decimal.Decimal, []T) {
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return get(out[i]).OriginYear < get(out[j]).OriginYear
	})

	consumed := decimal.Zero
	for i := range out {
		if capacity.LessThanOrEqual(decimal.Zero) {
			break
		}
		rec := get(out[i])
		avail := rec.Remaining()
		if avail.LessThanOrEqual(decimal.Zero) {
			continue
		}
		draw := decimal.Min(avail, capacity)
		rec.UsedAmount = rec.UsedAmount.Add(draw)
		out[i] = set(out[i], rec)
		consumed = consumed.Add(draw)
		capacity = capacity.Sub(draw)
	}
	return consumed, out
}
