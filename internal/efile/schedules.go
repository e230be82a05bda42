// Package efile exposes the structured payload a downstream MeF serializer
// consumes: which schedules a return requires and the finalized report
// content. It produces no XML itself.
package efile

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/calculation"
	"github.com/finhelm/taxengine/internal/domain"
)

// SchemaVersion tags the payload shape for downstream serializers.
const SchemaVersion = "2025v1.0"

// Schedule names follow the IRS attachment naming.
const (
	Schedule1  = "Schedule 1"
	Schedule2  = "Schedule 2"
	ScheduleA  = "Schedule A"
	ScheduleB  = "Schedule B"
	ScheduleC  = "Schedule C"
	ScheduleE  = "Schedule E"
	ScheduleSE = "Schedule SE"
)

// scheduleBInterestThreshold triggers Schedule B above $1,500 of interest or
// dividends.
var scheduleBInterestThreshold = decimal.NewFromInt(1500)

// Payload is the handoff to the e-file serializer.
type Payload struct {
	SchemaVersion string         `json:"schema_version"`
	TaxYear       int            `json:"tax_year"`
	Schedules     []string       `json:"schedules"`
	Content       map[string]any `json:"content"`
}

// RequiredSchedules applies the presence rules to a computed return.
func RequiredSchedules(tr *domain.TaxReturn, res *calculation.FederalTaxResult) []string {
	var schedules []string
	add := func(name string) { schedules = append(schedules, name) }

	hasSE := tr.Income.BusinessIncome.GreaterThan(decimal.Zero)
	if schedule1Needed(tr, res) {
		add(Schedule1)
	}
	if hasSE {
		add(Schedule2)
	}
	if tr.Deductions.Itemize {
		add(ScheduleA)
	}
	if tr.Income.Interest.GreaterThan(scheduleBInterestThreshold) ||
		tr.Income.Dividends.GreaterThan(scheduleBInterestThreshold) {
		add(ScheduleB)
	}
	if !tr.Income.BusinessIncome.IsZero() {
		add(ScheduleC)
	}
	if len(tr.Income.RentalProperties) > 0 || len(tr.Income.K1Forms) > 0 {
		add(ScheduleE)
	}
	if hasSE {
		add(ScheduleSE)
	}
	return schedules
}

// schedule1Needed fires when any Part I income or Part II adjustment line is
// non-zero.
func schedule1Needed(tr *domain.TaxReturn, res *calculation.FederalTaxResult) bool {
	if f := res.Forms.Schedule1; f != nil {
		return !f.AdditionalIncome.IsZero() || !f.Adjustments.IsZero()
	}
	inc := tr.Income
	return !inc.BusinessIncome.IsZero() ||
		!inc.UnemploymentComp.IsZero() ||
		!inc.OtherIncome.IsZero() ||
		len(inc.RentalProperties) > 0 ||
		len(inc.K1Forms) > 0
}

// BuildPayload assembles the serializer handoff from a finalized report's
// content.
func BuildPayload(tr *domain.TaxReturn, res *calculation.FederalTaxResult, content map[string]any) *Payload {
	return &Payload{
		SchemaVersion: SchemaVersion,
		TaxYear:       res.TaxYear,
		Schedules:     RequiredSchedules(tr, res),
		Content:       content,
	}
}
