package domain

import (
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Form 6251: Alternative Minimum Tax inputs
// ---------------------------------------------------------------------------

// ISOExercise is a single incentive stock option exercise. The AMT spread is
// shares * max(0, FMV - strike); a same-year sale (disqualifying disposition)
// contributes zero spread.
type ISOExercise struct {
	Shares        int64           `yaml:"shares" json:"shares"`
	ExercisePrice decimal.Decimal `yaml:"exercise_price" json:"exercise_price"`
	FMVAtExercise decimal.Decimal `yaml:"fmv_at_exercise" json:"fmv_at_exercise"`
	SoldSameYear  bool            `yaml:"sold_same_year,omitempty" json:"sold_same_year,omitempty"`
}

// Spread returns the per-exercise AMT preference amount.
func (e ISOExercise) Spread() decimal.Decimal {
	if e.SoldSameYear {
		return decimal.Zero
	}
	perShare := e.FMVAtExercise.Sub(e.ExercisePrice)
	if perShare.IsNegative() {
		return decimal.Zero
	}
	return perShare.Mul(decimal.NewFromInt(e.Shares))
}

// PrivateActivityBond carries tax-exempt interest that is an AMT preference
// only when the bond was issued after August 7, 1986.
type PrivateActivityBond struct {
	Interest       decimal.Decimal `yaml:"interest" json:"interest"`
	PostAugust1986 bool            `yaml:"post_august_1986" json:"post_august_1986"`
}

// DepreciationAdjustment is the MACRS-vs-ADS difference for one asset. The
// difference flips negative in later recovery years.
type DepreciationAdjustment struct {
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	MACRS       decimal.Decimal `yaml:"macrs" json:"macrs"`
	ADS         decimal.Decimal `yaml:"ads" json:"ads"`
}

// Difference returns MACRS - ADS, signed.
func (d DepreciationAdjustment) Difference() decimal.Decimal {
	return d.MACRS.Sub(d.ADS)
}

// AMTAdjustment is a free-form preference or adjustment line. Deferral items
// (timing differences) generate minimum tax credit; exclusion items do not.
type AMTAdjustment struct {
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
	IsDeferral  bool            `yaml:"is_deferral,omitempty" json:"is_deferral,omitempty"`
}

// Form6251Input carries the AMT preference sources attached to a return.
type Form6251Input struct {
	ISOExercises         []ISOExercise            `yaml:"iso_exercises,omitempty" json:"iso_exercises,omitempty"`
	PrivateActivityBonds []PrivateActivityBond    `yaml:"private_activity_bonds,omitempty" json:"private_activity_bonds,omitempty"`
	Depreciation         []DepreciationAdjustment `yaml:"depreciation,omitempty" json:"depreciation,omitempty"`
	TaxRefundIncluded    decimal.Decimal          `yaml:"tax_refund_included,omitempty" json:"tax_refund_included,omitempty"`
	AdjustedGainLoss     decimal.Decimal          `yaml:"adjusted_gain_loss,omitempty" json:"adjusted_gain_loss,omitempty"`
	OtherAdjustments     []AMTAdjustment          `yaml:"other_adjustments,omitempty" json:"other_adjustments,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 8582: Passive Activity Loss inputs
// ---------------------------------------------------------------------------

// ActivityType classifies a passive activity for basket assignment.
type ActivityType string

const (
	ActivityRentalRealEstate ActivityType = "rental_real_estate"
	ActivityTradeBusiness    ActivityType = "trade_business"
	ActivityPTP              ActivityType = "ptp"
	ActivityOilGasWorking    ActivityType = "oil_gas_working_interest"
)

// PassiveActivity is one activity tested under the section 469 material
// participation rules. Hour fields are the tested quantities; an activity is
// either passive or not at a point in time.
type PassiveActivity struct {
	Name                    string          `yaml:"name" json:"name"`
	Type                    ActivityType    `yaml:"type" json:"type"`
	GrossIncome             decimal.Decimal `yaml:"gross_income,omitempty" json:"gross_income,omitempty"`
	Deductions              decimal.Decimal `yaml:"deductions,omitempty" json:"deductions,omitempty"`
	PriorYearUnallowedLoss  decimal.Decimal `yaml:"prior_year_unallowed_loss,omitempty" json:"prior_year_unallowed_loss,omitempty"`
	TaxpayerHours           int             `yaml:"taxpayer_hours,omitempty" json:"taxpayer_hours,omitempty"`
	SpouseHours             int             `yaml:"spouse_hours,omitempty" json:"spouse_hours,omitempty"`
	TotalParticipationHours int             `yaml:"total_participation_hours,omitempty" json:"total_participation_hours,omitempty"`
	MaxOtherIndividualHours int             `yaml:"max_other_individual_hours,omitempty" json:"max_other_individual_hours,omitempty"`
	ActiveParticipant       bool            `yaml:"active_participant,omitempty" json:"active_participant,omitempty"`
	MaterialParticipation   bool            `yaml:"material_participation,omitempty" json:"material_participation,omitempty"`
	DisposedCompletely      bool            `yaml:"disposed_completely,omitempty" json:"disposed_completely,omitempty"`
}

// NetIncome returns gross - deductions for the current year, signed.
func (pa PassiveActivity) NetIncome() decimal.Decimal {
	return pa.GrossIncome.Sub(pa.Deductions)
}

// Form8582Input carries the activity list plus real-estate-professional
// signals.
type Form8582Input struct {
	Activities        []PassiveActivity `yaml:"activities,omitempty" json:"activities,omitempty"`
	RealPropertyHours int               `yaml:"real_property_hours,omitempty" json:"real_property_hours,omitempty"`
	TotalWorkHours    int               `yaml:"total_work_hours,omitempty" json:"total_work_hours,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 1116: Foreign Tax Credit inputs
// ---------------------------------------------------------------------------

// ForeignCountryTax is taxes paid or accrued to a single country within a
// basket.
type ForeignCountryTax struct {
	Country string          `yaml:"country" json:"country"`
	Amount  decimal.Decimal `yaml:"amount" json:"amount"`
}

// FTCBasketInput is one separate limitation category.
type FTCBasketInput struct {
	Category                    FTCCategory         `yaml:"category" json:"category"`
	GrossForeignIncome          decimal.Decimal     `yaml:"gross_foreign_income" json:"gross_foreign_income"`
	DefinitelyRelatedDeductions decimal.Decimal     `yaml:"definitely_related_deductions,omitempty" json:"definitely_related_deductions,omitempty"`
	AllocatedInterest           decimal.Decimal     `yaml:"allocated_interest,omitempty" json:"allocated_interest,omitempty"`
	AllocatedSALT               decimal.Decimal     `yaml:"allocated_salt,omitempty" json:"allocated_salt,omitempty"`
	OtherAllocatedDeductions    decimal.Decimal     `yaml:"other_allocated_deductions,omitempty" json:"other_allocated_deductions,omitempty"`
	LossesFromOtherCategories   decimal.Decimal     `yaml:"losses_from_other_categories,omitempty" json:"losses_from_other_categories,omitempty"`
	TaxesPaid                   []ForeignCountryTax `yaml:"taxes_paid,omitempty" json:"taxes_paid,omitempty"`
	Carryovers                  []FTCCarryover      `yaml:"carryovers,omitempty" json:"carryovers,omitempty"`
}

// TotalTaxesPaid sums across countries.
func (b FTCBasketInput) TotalTaxesPaid() decimal.Decimal {
	total := decimal.Zero
	for _, t := range b.TaxesPaid {
		total = total.Add(t.Amount)
	}
	return total
}

// Form1116Input carries every basket plus the whole-return figures the
// limitation ratio is built from.
type Form1116Input struct {
	Baskets []FTCBasketInput `yaml:"baskets,omitempty" json:"baskets,omitempty"`

	// AMTI is optional; when present the AMT FTC limitation uses it in place
	// of regular taxable income. When absent the regular-tax ratio is used
	// and the result is flagged as approximate.
	AMTI decimal.Decimal `yaml:"amti,omitempty" json:"amti,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 8606: IRA basis inputs
// ---------------------------------------------------------------------------

// Form8606Input covers the pro-rata basis computation (Parts I and II) and
// the Roth distribution ordering rules (Part III).
type Form8606Input struct {
	PriorBasis           decimal.Decimal `yaml:"prior_basis,omitempty" json:"prior_basis,omitempty"`
	CurrentNondeductible decimal.Decimal `yaml:"current_nondeductible,omitempty" json:"current_nondeductible,omitempty"`
	Distributions        decimal.Decimal `yaml:"distributions,omitempty" json:"distributions,omitempty"`
	Conversions          decimal.Decimal `yaml:"conversions,omitempty" json:"conversions,omitempty"`
	YearEndValue         decimal.Decimal `yaml:"year_end_value,omitempty" json:"year_end_value,omitempty"`

	// Part III.
	RothDistributions      decimal.Decimal `yaml:"roth_distributions,omitempty" json:"roth_distributions,omitempty"`
	RothContributionBasis  decimal.Decimal `yaml:"roth_contribution_basis,omitempty" json:"roth_contribution_basis,omitempty"`
	RothConversionBasis    decimal.Decimal `yaml:"roth_conversion_basis,omitempty" json:"roth_conversion_basis,omitempty"`
	FirstRothYear          int             `yaml:"first_roth_year,omitempty" json:"first_roth_year,omitempty"`
	ConversionWithin5Years bool            `yaml:"conversion_within_5_years,omitempty" json:"conversion_within_5_years,omitempty"`
	Age                    int             `yaml:"age,omitempty" json:"age,omitempty"`
	Disabled               bool            `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Inherited              bool            `yaml:"inherited,omitempty" json:"inherited,omitempty"`
	FirstHomeExpense       decimal.Decimal `yaml:"first_home_expense,omitempty" json:"first_home_expense,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 5329: additional taxes on qualified plans inputs
// ---------------------------------------------------------------------------

// EarlyDistribution is one Part I record. ExceptionAmount is zero when no
// exception code applies.
type EarlyDistribution struct {
	TaxableAmount   decimal.Decimal `yaml:"taxable_amount" json:"taxable_amount"`
	ExceptionCode   string          `yaml:"exception_code,omitempty" json:"exception_code,omitempty"`
	ExceptionAmount decimal.Decimal `yaml:"exception_amount,omitempty" json:"exception_amount,omitempty"`
}

// ExcessContribution drives one of the 6% excise parts (II through VII, IX).
type ExcessContribution struct {
	AccountType     string          `yaml:"account_type" json:"account_type"`
	PriorYearExcess decimal.Decimal `yaml:"prior_year_excess,omitempty" json:"prior_year_excess,omitempty"`
	Contributions   decimal.Decimal `yaml:"contributions,omitempty" json:"contributions,omitempty"`
	Limit           decimal.Decimal `yaml:"limit" json:"limit"`
	Withdrawn       decimal.Decimal `yaml:"withdrawn,omitempty" json:"withdrawn,omitempty"`
	Recharacterized decimal.Decimal `yaml:"recharacterized,omitempty" json:"recharacterized,omitempty"`
	AppliedToPrior  decimal.Decimal `yaml:"applied_to_prior,omitempty" json:"applied_to_prior,omitempty"`
	YearEndValue    decimal.Decimal `yaml:"year_end_value,omitempty" json:"year_end_value,omitempty"`
}

// RMDShortfall is the Part VIII input.
type RMDShortfall struct {
	RequiredAmount    decimal.Decimal `yaml:"required_amount" json:"required_amount"`
	DistributedAmount decimal.Decimal `yaml:"distributed_amount" json:"distributed_amount"`
	CorrectedInWindow bool            `yaml:"corrected_in_window,omitempty" json:"corrected_in_window,omitempty"`
	WaiverRequested   bool            `yaml:"waiver_requested,omitempty" json:"waiver_requested,omitempty"`
}

// Form5329Input aggregates the nine additive parts.
type Form5329Input struct {
	EarlyDistributions  []EarlyDistribution  `yaml:"early_distributions,omitempty" json:"early_distributions,omitempty"`
	ExcessContributions []ExcessContribution `yaml:"excess_contributions,omitempty" json:"excess_contributions,omitempty"`
	RMD                 *RMDShortfall        `yaml:"rmd,omitempty" json:"rmd,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 5471: CFC inputs
// ---------------------------------------------------------------------------

// ScheduleLine is a structured line item on an informational schedule whose
// totals are derived but not recomputed by the engine.
type ScheduleLine struct {
	Description string          `yaml:"description" json:"description"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
}

// Form5471Input carries shareholder/CFC status and the inclusion components.
// Ownership percentages carry 6 fractional digits.
type Form5471Input struct {
	IsCFC                 bool            `yaml:"is_cfc" json:"is_cfc"`
	DirectOwnership       decimal.Decimal `yaml:"direct_ownership,omitempty" json:"direct_ownership,omitempty"`
	IndirectOwnership     decimal.Decimal `yaml:"indirect_ownership,omitempty" json:"indirect_ownership,omitempty"`
	ConstructiveOwnership decimal.Decimal `yaml:"constructive_ownership,omitempty" json:"constructive_ownership,omitempty"`
	GrossSubpartF         decimal.Decimal `yaml:"gross_subpart_f,omitempty" json:"gross_subpart_f,omitempty"`
	HighTaxExclusion      decimal.Decimal `yaml:"high_tax_exclusion,omitempty" json:"high_tax_exclusion,omitempty"`
	DeMinimisExclusion    decimal.Decimal `yaml:"de_minimis_exclusion,omitempty" json:"de_minimis_exclusion,omitempty"`
	SameCountryExclusion  decimal.Decimal `yaml:"same_country_exclusion,omitempty" json:"same_country_exclusion,omitempty"`
	NetTestedIncome       decimal.Decimal `yaml:"net_tested_income,omitempty" json:"net_tested_income,omitempty"`
	QBAI                  decimal.Decimal `yaml:"qbai,omitempty" json:"qbai,omitempty"`

	ScheduleC  []ScheduleLine `yaml:"schedule_c,omitempty" json:"schedule_c,omitempty"`
	ScheduleE  []ScheduleLine `yaml:"schedule_e,omitempty" json:"schedule_e,omitempty"`
	ScheduleF  []ScheduleLine `yaml:"schedule_f,omitempty" json:"schedule_f,omitempty"`
	ScheduleH  []ScheduleLine `yaml:"schedule_h,omitempty" json:"schedule_h,omitempty"`
	ScheduleI1 []ScheduleLine `yaml:"schedule_i1,omitempty" json:"schedule_i1,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 8801: Minimum Tax Credit inputs
// ---------------------------------------------------------------------------

// ExclusionItems are the permanent-difference adjustments used to recompute
// the prior year's TMT on exclusion items only.
type ExclusionItems struct {
	SALT        decimal.Decimal `yaml:"salt,omitempty" json:"salt,omitempty"`
	PABInterest decimal.Decimal `yaml:"pab_interest,omitempty" json:"pab_interest,omitempty"`
	Depletion   decimal.Decimal `yaml:"depletion,omitempty" json:"depletion,omitempty"`
	Other       decimal.Decimal `yaml:"other,omitempty" json:"other,omitempty"`
}

// Form8801Input carries the prior-year AMT decomposition and current-year
// limitation figures.
type Form8801Input struct {
	PriorYear          PriorYearAMTDetail `yaml:"prior_year" json:"prior_year"`
	PriorTaxableIncome decimal.Decimal    `yaml:"prior_taxable_income,omitempty" json:"prior_taxable_income,omitempty"`
	Exclusions         ExclusionItems     `yaml:"exclusions,omitempty" json:"exclusions,omitempty"`
	Carryforwards      []MTCCarryforward  `yaml:"carryforwards,omitempty" json:"carryforwards,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 8814: parent's election inputs
// ---------------------------------------------------------------------------

// ChildInvestmentIncome is one child considered for the parent election.
type ChildInvestmentIncome struct {
	Name                     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Age                      int             `yaml:"age" json:"age"`
	FullTimeStudent          bool            `yaml:"full_time_student,omitempty" json:"full_time_student,omitempty"`
	Interest                 decimal.Decimal `yaml:"interest,omitempty" json:"interest,omitempty"`
	OrdinaryDividends        decimal.Decimal `yaml:"ordinary_dividends,omitempty" json:"ordinary_dividends,omitempty"`
	QualifiedDividends       decimal.Decimal `yaml:"qualified_dividends,omitempty" json:"qualified_dividends,omitempty"`
	CapitalGainDistributions decimal.Decimal `yaml:"capital_gain_distributions,omitempty" json:"capital_gain_distributions,omitempty"`
	AlaskaPFD                decimal.Decimal `yaml:"alaska_pfd,omitempty" json:"alaska_pfd,omitempty"`
	OtherIncome              decimal.Decimal `yaml:"other_income,omitempty" json:"other_income,omitempty"`
	FederalWithholding       decimal.Decimal `yaml:"federal_withholding,omitempty" json:"federal_withholding,omitempty"`
	EstimatedPayments        decimal.Decimal `yaml:"estimated_payments,omitempty" json:"estimated_payments,omitempty"`
}

// Form8814Input lists the children for which the election is requested.
type Form8814Input struct {
	Children []ChildInvestmentIncome `yaml:"children,omitempty" json:"children,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 8863: education credit inputs
// ---------------------------------------------------------------------------

// EducationStudent is one student's eligibility record.
type EducationStudent struct {
	Name                 string          `yaml:"name,omitempty" json:"name,omitempty"`
	QualifiedExpenses    decimal.Decimal `yaml:"qualified_expenses" json:"qualified_expenses"`
	HalfTime             bool            `yaml:"half_time,omitempty" json:"half_time,omitempty"`
	DegreeSeeking        bool            `yaml:"degree_seeking,omitempty" json:"degree_seeking,omitempty"`
	FirstFourYears       bool            `yaml:"first_four_years,omitempty" json:"first_four_years,omitempty"`
	PriorAOTCClaims      int             `yaml:"prior_aotc_claims,omitempty" json:"prior_aotc_claims,omitempty"`
	FelonyDrugConviction bool            `yaml:"felony_drug_conviction,omitempty" json:"felony_drug_conviction,omitempty"`
	Received1098T        bool            `yaml:"received_1098t,omitempty" json:"received_1098t,omitempty"`
	ClaimAOTC            bool            `yaml:"claim_aotc,omitempty" json:"claim_aotc,omitempty"`
}

// Form8863Input lists students considered for AOTC and LLC.
type Form8863Input struct {
	Students []EducationStudent `yaml:"students,omitempty" json:"students,omitempty"`
}

// ---------------------------------------------------------------------------
// Form 982: discharge of indebtedness inputs
// ---------------------------------------------------------------------------

// CODExclusionType selects the exclusion path for cancelled debt.
type CODExclusionType string

const (
	CODExclusionNone       CODExclusionType = "none"
	CODExclusionBankruptcy CODExclusionType = "bankruptcy"
	CODExclusionInsolvency CODExclusionType = "insolvency"
	CODExclusionFarm       CODExclusionType = "qualified_farm"
	CODExclusionQRPBI      CODExclusionType = "qualified_real_property"
	CODExclusionQPRI       CODExclusionType = "qualified_principal_residence"
	CODExclusionOther      CODExclusionType = "other"
)

// TaxAttributes are the balances reduced after a COD exclusion, in statutory
// order.
type TaxAttributes struct {
	NOL                   decimal.Decimal `yaml:"nol,omitempty" json:"nol,omitempty"`
	GeneralBusinessCredit decimal.Decimal `yaml:"general_business_credit,omitempty" json:"general_business_credit,omitempty"`
	NetCapitalLoss        decimal.Decimal `yaml:"net_capital_loss,omitempty" json:"net_capital_loss,omitempty"`
	PropertyBasis         decimal.Decimal `yaml:"property_basis,omitempty" json:"property_basis,omitempty"`
	PassiveLosses         decimal.Decimal `yaml:"passive_losses,omitempty" json:"passive_losses,omitempty"`
	PassiveCredits        decimal.Decimal `yaml:"passive_credits,omitempty" json:"passive_credits,omitempty"`
	FTCCarryover          decimal.Decimal `yaml:"ftc_carryover,omitempty" json:"ftc_carryover,omitempty"`
}

// Form982Input carries the discharge, the elected exclusion, and the
// attribute balances available for reduction.
type Form982Input struct {
	CODIncome               decimal.Decimal  `yaml:"cod_income" json:"cod_income"`
	ExclusionType           CODExclusionType `yaml:"exclusion_type" json:"exclusion_type"`
	Assets                  decimal.Decimal  `yaml:"assets,omitempty" json:"assets,omitempty"`
	Liabilities             decimal.Decimal  `yaml:"liabilities,omitempty" json:"liabilities,omitempty"`
	ResidenceBasis          decimal.Decimal  `yaml:"residence_basis,omitempty" json:"residence_basis,omitempty"`
	ResidenceSecuredDebt    decimal.Decimal  `yaml:"residence_secured_debt,omitempty" json:"residence_secured_debt,omitempty"`
	QualifyingPropertyBasis decimal.Decimal  `yaml:"qualifying_property_basis,omitempty" json:"qualifying_property_basis,omitempty"`
	Attributes              TaxAttributes    `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	// ReduceNonBasisUnderQPRI requests attribute reduction beyond residence
	// basis under the QPRI path. QPRI bypasses the ordering entirely, so a
	// true value is rejected as invalid input.
	ReduceNonBasisUnderQPRI bool `yaml:"reduce_non_basis_under_qpri,omitempty" json:"reduce_non_basis_under_qpri,omitempty"`
}
