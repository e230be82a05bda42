package forms

import (
	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/domain"
)

// Form8582Calculator applies the section 469 passive activity loss
// limitation: material participation classification, the rental real estate
// special allowance with MAGI phaseout, cross-basket netting, and
// per-activity suspension.
type Form8582Calculator struct {
	Config *domain.TaxYearConfig
}

// NewForm8582Calculator builds the calculator from a year table.
func NewForm8582Calculator(cfg *domain.TaxYearConfig) *Form8582Calculator {
	return &Form8582Calculator{Config: cfg}
}

// PALContext carries the whole-return figures the allowance phaseout needs.
type PALContext struct {
	FilingStatus   domain.FilingStatus
	MAGI           decimal.Decimal
	MFSLivingApart bool
	TaxYear        int
}

// ActivityClassification records the passive/nonpassive decision with the
// material participation test that decided it.
type ActivityClassification struct {
	Name                  string `json:"name"`
	Passive               bool   `json:"passive"`
	MaterialParticipation bool   `json:"material_participation"`
	TestID                string `json:"test_id"`
}

// ActivityResult is the per-activity loss disposition.
type ActivityResult struct {
	Name                  string              `json:"name"`
	Type                  domain.ActivityType `json:"type"`
	CurrentNet            decimal.Decimal     `json:"current_net"`
	PriorSuspended        decimal.Decimal     `json:"prior_suspended"`
	AllowedLoss           decimal.Decimal     `json:"allowed_loss"`
	SuspendedLoss         decimal.Decimal     `json:"suspended_loss"`
	ReleasedByDisposition bool                `json:"released_by_disposition"`
}

// PTPResult is the per-publicly-traded-partnership basket outcome. PTP
// losses offset only income from the same PTP.
type PTPResult struct {
	Name          string          `json:"name"`
	Income        decimal.Decimal `json:"income"`
	AllowedLoss   decimal.Decimal `json:"allowed_loss"`
	SuspendedLoss decimal.Decimal `json:"suspended_loss"`
}

// Form8582Result is the computed form.
type Form8582Result struct {
	Classifications    []ActivityClassification `json:"classifications"`
	RealEstatePro      bool                     `json:"real_estate_professional"`
	Activities         []ActivityResult         `json:"activities"`
	PTPs               []PTPResult              `json:"ptps"`
	PassiveIncome      decimal.Decimal          `json:"passive_income"`
	PassiveLoss        decimal.Decimal          `json:"passive_loss"`
	AllowanceAvailable decimal.Decimal          `json:"allowance_available"`
	AllowanceUsed      decimal.Decimal          `json:"allowance_used"`
	AllowedLoss        decimal.Decimal          `json:"allowed_loss"`
	NonPassiveNet      decimal.Decimal          `json:"non_passive_net"`
	SuspendedLosses    []domain.SuspendedLoss   `json:"suspended_losses"`
}

// NetAllowed returns passive income minus allowed passive losses plus
// nonpassive activity net: the amount that flows to the return.
func (r *Form8582Result) NetAllowed() decimal.Decimal {
	return r.PassiveIncome.Sub(r.AllowedLoss).Add(r.NonPassiveNet)
}

// Summary returns the compact line projection used in report content.
func (r *Form8582Result) Summary() map[string]any {
	return map[string]any{
		"passive_income":  emit(r.PassiveIncome),
		"passive_loss":    emit(r.PassiveLoss),
		"allowance_used":  emit(r.AllowanceUsed),
		"allowed_loss":    emit(r.AllowedLoss),
		"suspended_count": len(r.SuspendedLosses),
		"net_allowed":     emit(r.NetAllowed()),
	}
}

// Classify runs the material participation tests for one activity. The seven
// statutory tests collapse to a boolean with a witness id; tests 4 through 7
// arrive pre-evaluated on the input record.
func (c *Form8582Calculator) Classify(a domain.PassiveActivity, realEstatePro bool) ActivityClassification {
	cls := ActivityClassification{Name: a.Name}

	// Working interests in oil and gas are never passive.
	if a.Type == domain.ActivityOilGasWorking {
		cls.MaterialParticipation = true
		cls.TestID = "working_interest"
		return cls
	}

	combined := a.TaxpayerHours + a.SpouseHours
	switch {
	case combined >= 500:
		cls.MaterialParticipation = true
		cls.TestID = "test_1"
	case a.TotalParticipationHours > 0 && combined*10 >= a.TotalParticipationHours*9:
		// Substantially all participation in the activity.
		cls.MaterialParticipation = true
		cls.TestID = "test_2"
	case combined >= 100 && combined >= a.MaxOtherIndividualHours:
		cls.MaterialParticipation = true
		cls.TestID = "test_3"
	case a.MaterialParticipation:
		cls.MaterialParticipation = true
		cls.TestID = "tests_4_7"
	}

	// Rentals are per se passive unless held by a real estate professional
	// who materially participates.
	if a.Type == domain.ActivityRentalRealEstate {
		cls.Passive = !(realEstatePro && cls.MaterialParticipation)
		return cls
	}
	if a.Type == domain.ActivityPTP {
		cls.Passive = true
		return cls
	}
	cls.Passive = !cls.MaterialParticipation
	return cls
}

// realEstateProfessional tests the 750-hour and more-than-half-of-work-hours
// requirements.
func realEstateProfessional(input *domain.Form8582Input) bool {
	return input.RealPropertyHours >= 750 &&
		input.RealPropertyHours*2 > input.TotalWorkHours
}

// SpecialAllowance computes the rental real estate allowance available to
// active participants after the MAGI phaseout.
func (c *Form8582Calculator) SpecialAllowance(ctx PALContext) decimal.Decimal {
	pal := c.Config.PAL
	maxAllowance := pal.MaxAllowance
	start := pal.PhaseoutStart

	if ctx.FilingStatus.IsMFS() {
		if !ctx.MFSLivingApart {
			return decimal.Zero
		}
		maxAllowance = pal.MFSApartAllowance
		start = pal.MFSApartStart
	}

	excess := floorZero(ctx.MAGI.Sub(start))
	reduction := excess.Mul(decimal.NewFromFloat(0.5))
	return floorZero(maxAllowance.Sub(reduction))
}

// Calculate runs Parts I through III plus the PTP side baskets.
func (c *Form8582Calculator) Calculate(input *domain.Form8582Input, ctx PALContext) (*Form8582Result, error) {
	if input == nil {
		input = &domain.Form8582Input{}
	}
	res := &Form8582Result{RealEstatePro: realEstateProfessional(input)}

	type passiveEntry struct {
		activity domain.PassiveActivity
		loss     decimal.Decimal // positive magnitude of current+prior loss
		income   decimal.Decimal
		rental   bool
	}
	var entries []passiveEntry

	for _, a := range input.Activities {
		cls := c.Classify(a, res.RealEstatePro)
		res.Classifications = append(res.Classifications, cls)
		net := a.NetIncome()

		if a.Type == domain.ActivityPTP {
			res.PTPs = append(res.PTPs, c.ptpResult(a, net))
			continue
		}

		if !cls.Passive {
			// Nonpassive activity: current net passes straight through and
			// any prior suspended loss releases only on full disposition.
			res.NonPassiveNet = res.NonPassiveNet.Add(net)
			if a.DisposedCompletely && a.PriorYearUnallowedLoss.GreaterThan(decimal.Zero) {
				res.NonPassiveNet = res.NonPassiveNet.Sub(a.PriorYearUnallowedLoss)
			}
			continue
		}

		// Complete taxable disposition releases every suspended loss of the
		// activity in the year of disposition.
		if a.DisposedCompletely {
			totalLoss := a.PriorYearUnallowedLoss
			if net.IsNegative() {
				totalLoss = totalLoss.Add(net.Neg())
			} else {
				res.PassiveIncome = res.PassiveIncome.Add(net)
			}
			res.Activities = append(res.Activities, ActivityResult{
				Name:                  a.Name,
				Type:                  a.Type,
				CurrentNet:            net,
				PriorSuspended:        a.PriorYearUnallowedLoss,
				AllowedLoss:           totalLoss,
				ReleasedByDisposition: true,
			})
			res.PassiveLoss = res.PassiveLoss.Add(totalLoss)
			res.AllowedLoss = res.AllowedLoss.Add(totalLoss)
			continue
		}

		entry := passiveEntry{activity: a, rental: a.Type == domain.ActivityRentalRealEstate}
		if net.IsPositive() {
			entry.income = net
		} else {
			entry.loss = net.Neg()
		}
		entry.loss = entry.loss.Add(a.PriorYearUnallowedLoss)
		entries = append(entries, entry)
	}

	// Part I: basket sums.
	totalIncome := decimal.Zero
	totalLoss := decimal.Zero
	activeRentalLoss := decimal.Zero
	for _, e := range entries {
		totalIncome = totalIncome.Add(e.income)
		totalLoss = totalLoss.Add(e.loss)
		if e.rental && e.activity.ActiveParticipant {
			activeRentalLoss = activeRentalLoss.Add(e.loss)
		}
	}
	res.PassiveIncome = res.PassiveIncome.Add(totalIncome)
	res.PassiveLoss = res.PassiveLoss.Add(totalLoss)

	// Part III: passive income absorbs losses first.
	unabsorbed := floorZero(totalLoss.Sub(totalIncome))

	// Part II: the special allowance absorbs only eligible rental real
	// estate losses that remain.
	res.AllowanceAvailable = c.SpecialAllowance(ctx)
	eligible := decimal.Min(unabsorbed, activeRentalLoss)
	res.AllowanceUsed = decimal.Min(res.AllowanceAvailable, eligible)

	suspendedTotal := unabsorbed.Sub(res.AllowanceUsed)
	allowedFromEntries := totalLoss.Sub(suspendedTotal)
	res.AllowedLoss = res.AllowedLoss.Add(allowedFromEntries)

	// Suspend the unallowed remainder per activity, pro-rata by loss share.
	for _, e := range entries {
		ar := ActivityResult{
			Name:           e.activity.Name,
			Type:           e.activity.Type,
			CurrentNet:     e.activity.NetIncome(),
			PriorSuspended: e.activity.PriorYearUnallowedLoss,
		}
		if e.loss.GreaterThan(decimal.Zero) && totalLoss.GreaterThan(decimal.Zero) {
			share := e.loss.Div(totalLoss)
			ar.SuspendedLoss = suspendedTotal.Mul(share)
			ar.AllowedLoss = e.loss.Sub(ar.SuspendedLoss)
			if ar.SuspendedLoss.GreaterThan(decimal.Zero) {
				res.SuspendedLosses = append(res.SuspendedLosses, domain.SuspendedLoss{
					ActivityName: e.activity.Name,
					OriginYear:   ctx.TaxYear,
					Amount:       ar.SuspendedLoss,
				})
			}
		}
		res.Activities = append(res.Activities, ar)
	}

	for _, ptp := range res.PTPs {
		res.PassiveIncome = res.PassiveIncome.Add(ptp.Income)
		res.PassiveLoss = res.PassiveLoss.Add(ptp.AllowedLoss).Add(ptp.SuspendedLoss)
		res.AllowedLoss = res.AllowedLoss.Add(ptp.AllowedLoss)
		if ptp.SuspendedLoss.GreaterThan(decimal.Zero) {
			res.SuspendedLosses = append(res.SuspendedLosses, domain.SuspendedLoss{
				ActivityName: ptp.Name,
				OriginYear:   ctx.TaxYear,
				Amount:       ptp.SuspendedLoss,
			})
		}
	}

	return res, nil
}

// ptpResult nets one publicly traded partnership against itself only.
func (c *Form8582Calculator) ptpResult(a domain.PassiveActivity, net decimal.Decimal) PTPResult {
	r := PTPResult{Name: a.Name}
	loss := a.PriorYearUnallowedLoss
	if net.IsNegative() {
		loss = loss.Add(net.Neg())
	} else {
		r.Income = net
	}
	r.AllowedLoss = decimal.Min(loss, r.Income)
	r.SuspendedLoss = loss.Sub(r.AllowedLoss)
	return r
}
