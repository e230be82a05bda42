package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxBracket is one marginal rate band. Max of the top band is effectively
// unbounded.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Max  decimal.Decimal `yaml:"max" json:"max"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// AMTConfig holds the Form 6251 exemption, phaseout and rate schedule for a
// year. Exemption is reduced 25 cents per dollar of AMTI over the phaseout
// start, floored at zero.
type AMTConfig struct {
	Exemption            map[FilingStatus]decimal.Decimal `yaml:"exemption" json:"exemption"`
	PhaseoutStart        map[FilingStatus]decimal.Decimal `yaml:"phaseout_start" json:"phaseout_start"`
	PhaseoutRate         decimal.Decimal                  `yaml:"phaseout_rate" json:"phaseout_rate"`
	LowRate              decimal.Decimal                  `yaml:"low_rate" json:"low_rate"`
	HighRate             decimal.Decimal                  `yaml:"high_rate" json:"high_rate"`
	HighRateThreshold    decimal.Decimal                  `yaml:"high_rate_threshold" json:"high_rate_threshold"`
	HighRateThresholdMFS decimal.Decimal                  `yaml:"high_rate_threshold_mfs" json:"high_rate_threshold_mfs"`
}

// PhaseoutRange is a linear phaseout window: full benefit at or below Limit
// minus Range, zero benefit at or above Limit.
type PhaseoutRange struct {
	Limit decimal.Decimal `yaml:"limit" json:"limit"`
	Range decimal.Decimal `yaml:"range" json:"range"`
}

// Ratio returns clamp(0, 1, (Limit - magi) / Range). A zero Range means the
// status is disqualified outright.
func (p PhaseoutRange) Ratio(magi decimal.Decimal) decimal.Decimal {
	if p.Range.IsZero() {
		return decimal.Zero
	}
	ratio := p.Limit.Sub(magi).Div(p.Range)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	if ratio.IsNegative() {
		return decimal.Zero
	}
	return ratio
}

// PALConfig holds the Form 8582 rental real estate special allowance rules.
type PALConfig struct {
	MaxAllowance      decimal.Decimal `yaml:"max_allowance" json:"max_allowance"`
	PhaseoutStart     decimal.Decimal `yaml:"phaseout_start" json:"phaseout_start"`
	MFSApartAllowance decimal.Decimal `yaml:"mfs_apart_allowance" json:"mfs_apart_allowance"`
	MFSApartStart     decimal.Decimal `yaml:"mfs_apart_start" json:"mfs_apart_start"`
}

// KiddieTaxConfig holds the Form 8814 election constants.
type KiddieTaxConfig struct {
	Exclusion        decimal.Decimal `yaml:"exclusion" json:"exclusion"`
	ChildRateBand    decimal.Decimal `yaml:"child_rate_band" json:"child_rate_band"`
	ChildRate        decimal.Decimal `yaml:"child_rate" json:"child_rate"`
	GrossIncomeLimit decimal.Decimal `yaml:"gross_income_limit" json:"gross_income_limit"`
	AgeLimit         int             `yaml:"age_limit" json:"age_limit"`
	StudentAgeLimit  int             `yaml:"student_age_limit" json:"student_age_limit"`
}

// ChildCreditConfig holds the child tax credit amount and its high-income
// phaseout: the credit drops ReductionPerStep for each PhaseoutStep (or part
// of one) of AGI over the applicable start.
type ChildCreditConfig struct {
	PerChild           decimal.Decimal `yaml:"per_child" json:"per_child"`
	PhaseoutStart      decimal.Decimal `yaml:"phaseout_start" json:"phaseout_start"`
	PhaseoutStartJoint decimal.Decimal `yaml:"phaseout_start_joint" json:"phaseout_start_joint"`
	PhaseoutStep       decimal.Decimal `yaml:"phaseout_step" json:"phaseout_step"`
	ReductionPerStep   decimal.Decimal `yaml:"reduction_per_step" json:"reduction_per_step"`
}

// TaxYearConfig is the closed table of year-sensitive constants, addressed by
// (tax_year, filing_status). No form component inlines a year-specific number
// except through this table.
type TaxYearConfig struct {
	Year int `yaml:"year" json:"year"`

	StandardDeduction  map[FilingStatus]decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"`
	AdditionalStdDed65 decimal.Decimal                  `yaml:"additional_std_ded_65" json:"additional_std_ded_65"`
	Brackets           map[FilingStatus][]TaxBracket    `yaml:"brackets" json:"brackets"`
	CapGainsBrackets   map[FilingStatus][]TaxBracket    `yaml:"cap_gains_brackets" json:"cap_gains_brackets"`

	AMT AMTConfig `yaml:"amt" json:"amt"`

	SSWageBase      decimal.Decimal `yaml:"ss_wage_base" json:"ss_wage_base"`
	SETaxRate       decimal.Decimal `yaml:"se_tax_rate" json:"se_tax_rate"`
	SESSRate        decimal.Decimal `yaml:"se_ss_rate" json:"se_ss_rate"`
	SEMedicareRate  decimal.Decimal `yaml:"se_medicare_rate" json:"se_medicare_rate"`
	SENetEarnFactor decimal.Decimal `yaml:"se_net_earnings_factor" json:"se_net_earnings_factor"`

	SALTCap         decimal.Decimal `yaml:"salt_cap" json:"salt_cap"`
	SALTCapMFS      decimal.Decimal `yaml:"salt_cap_mfs" json:"salt_cap_mfs"`
	MedicalAGIFloor decimal.Decimal `yaml:"medical_agi_floor" json:"medical_agi_floor"`

	IRAContributionLimit decimal.Decimal                `yaml:"ira_contribution_limit" json:"ira_contribution_limit"`
	IRACatchUp           decimal.Decimal                `yaml:"ira_catch_up" json:"ira_catch_up"`
	RothPhaseout         map[FilingStatus]PhaseoutRange `yaml:"roth_phaseout" json:"roth_phaseout"`
	HSALimitSelf         decimal.Decimal                `yaml:"hsa_limit_self" json:"hsa_limit_self"`
	HSALimitFamily       decimal.Decimal                `yaml:"hsa_limit_family" json:"hsa_limit_family"`

	EducationPhaseout map[FilingStatus]PhaseoutRange `yaml:"education_phaseout" json:"education_phaseout"`

	PAL    PALConfig         `yaml:"pal" json:"pal"`
	Kiddie KiddieTaxConfig   `yaml:"kiddie" json:"kiddie"`
	CTC    ChildCreditConfig `yaml:"ctc" json:"ctc"`

	QPRIExclusionCap decimal.Decimal `yaml:"qpri_exclusion_cap" json:"qpri_exclusion_cap"`

	FTCSimplifiedLimitSingle decimal.Decimal `yaml:"ftc_simplified_limit_single" json:"ftc_simplified_limit_single"`
	FTCSimplifiedLimitJoint  decimal.Decimal `yaml:"ftc_simplified_limit_joint" json:"ftc_simplified_limit_joint"`

	QBIRate decimal.Decimal `yaml:"qbi_rate" json:"qbi_rate"`
}

// StandardDeductionFor returns the base standard deduction for a status.
func (c *TaxYearConfig) StandardDeductionFor(fs FilingStatus) decimal.Decimal {
	return c.StandardDeduction[fs]
}

// BracketsFor returns the ordinary bracket schedule for a status.
func (c *TaxYearConfig) BracketsFor(fs FilingStatus) []TaxBracket {
	return c.Brackets[fs]
}

// SALTCapFor applies the MFS half-cap rule.
func (c *TaxYearConfig) SALTCapFor(fs FilingStatus) decimal.Decimal {
	if fs.IsMFS() {
		return c.SALTCapMFS
	}
	return c.SALTCap
}

func d(v int64) decimal.Decimal    { return decimal.NewFromInt(v) }
func df(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
func bracketTop() decimal.Decimal  { return decimal.NewFromInt(999999999) }

func brackets(bounds []int64, rates []float64) []TaxBracket {
	bs := make([]TaxBracket, len(rates))
	lo := decimal.Zero
	for i, r := range rates {
		hi := bracketTop()
		if i < len(bounds) {
			hi = d(bounds[i])
		}
		bs[i] = TaxBracket{Min: lo, Max: hi, Rate: df(r)}
		lo = hi
	}
	return bs
}

var ordinaryRates = []float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37}
var capGainRates = []float64{0.00, 0.15, 0.20}

// NewTaxYear2025 builds the 2025 constant table.
func NewTaxYear2025() *TaxYearConfig {
	return &TaxYearConfig{
		Year: 2025,
		StandardDeduction: map[FilingStatus]decimal.Decimal{
			FilingSingle:          d(15000),
			FilingMarriedJoint:    d(30000),
			FilingMarriedSeparate: d(15000),
			FilingHeadOfHousehold: d(22500),
			FilingQualifyingWidow: d(30000),
		},
		AdditionalStdDed65: d(1550),
		Brackets: map[FilingStatus][]TaxBracket{
			FilingSingle:          brackets([]int64{11925, 48475, 103350, 197300, 250525, 626350}, ordinaryRates),
			FilingMarriedJoint:    brackets([]int64{23850, 96950, 206700, 394600, 501050, 751600}, ordinaryRates),
			FilingMarriedSeparate: brackets([]int64{11925, 48475, 103350, 197300, 250525, 375800}, ordinaryRates),
			FilingHeadOfHousehold: brackets([]int64{17000, 64850, 103350, 197300, 250500, 626350}, ordinaryRates),
			FilingQualifyingWidow: brackets([]int64{23850, 96950, 206700, 394600, 501050, 751600}, ordinaryRates),
		},
		CapGainsBrackets: map[FilingStatus][]TaxBracket{
			FilingSingle:          brackets([]int64{48350, 533400}, capGainRates),
			FilingMarriedJoint:    brackets([]int64{96700, 600050}, capGainRates),
			FilingMarriedSeparate: brackets([]int64{48350, 300000}, capGainRates),
			FilingHeadOfHousehold: brackets([]int64{64750, 566700}, capGainRates),
			FilingQualifyingWidow: brackets([]int64{96700, 600050}, capGainRates),
		},
		AMT: AMTConfig{
			Exemption: map[FilingStatus]decimal.Decimal{
				FilingSingle:          d(88100),
				FilingMarriedJoint:    d(137000),
				FilingMarriedSeparate: d(68500),
				FilingHeadOfHousehold: d(88100),
				FilingQualifyingWidow: d(137000),
			},
			PhaseoutStart: map[FilingStatus]decimal.Decimal{
				FilingSingle:          d(626350),
				FilingMarriedJoint:    d(1252700),
				FilingMarriedSeparate: d(626350),
				FilingHeadOfHousehold: d(626350),
				FilingQualifyingWidow: d(1252700),
			},
			PhaseoutRate:         df(0.25),
			LowRate:              df(0.26),
			HighRate:             df(0.28),
			HighRateThreshold:    d(232600),
			HighRateThresholdMFS: d(116300),
		},
		SSWageBase:           d(176100),
		SETaxRate:            df(0.153),
		SESSRate:             df(0.124),
		SEMedicareRate:       df(0.029),
		SENetEarnFactor:      df(0.9235),
		SALTCap:              d(10000),
		SALTCapMFS:           d(5000),
		MedicalAGIFloor:      df(0.075),
		IRAContributionLimit: d(7000),
		IRACatchUp:           d(1000),
		RothPhaseout: map[FilingStatus]PhaseoutRange{
			FilingSingle:          {Limit: d(165000), Range: d(15000)},
			FilingMarriedJoint:    {Limit: d(246000), Range: d(10000)},
			FilingMarriedSeparate: {Limit: d(10000), Range: d(10000)},
			FilingHeadOfHousehold: {Limit: d(165000), Range: d(15000)},
			FilingQualifyingWidow: {Limit: d(246000), Range: d(10000)},
		},
		HSALimitSelf:   d(4300),
		HSALimitFamily: d(8550),
		EducationPhaseout: map[FilingStatus]PhaseoutRange{
			FilingSingle:          {Limit: d(90000), Range: d(10000)},
			FilingMarriedJoint:    {Limit: d(180000), Range: d(20000)},
			FilingMarriedSeparate: {Limit: decimal.Zero, Range: decimal.Zero},
			FilingHeadOfHousehold: {Limit: d(90000), Range: d(10000)},
			FilingQualifyingWidow: {Limit: d(180000), Range: d(20000)},
		},
		PAL: PALConfig{
			MaxAllowance:      d(25000),
			PhaseoutStart:     d(100000),
			MFSApartAllowance: d(12500),
			MFSApartStart:     d(50000),
		},
		Kiddie: KiddieTaxConfig{
			Exclusion:        d(1300),
			ChildRateBand:    d(1300),
			ChildRate:        df(0.10),
			GrossIncomeLimit: d(12500),
			AgeLimit:         19,
			StudentAgeLimit:  24,
		},
		CTC: ChildCreditConfig{
			PerChild:           d(2000),
			PhaseoutStart:      d(200000),
			PhaseoutStartJoint: d(400000),
			PhaseoutStep:       d(1000),
			ReductionPerStep:   d(50),
		},
		QPRIExclusionCap:         d(750000),
		FTCSimplifiedLimitSingle: d(300),
		FTCSimplifiedLimitJoint:  d(600),
		QBIRate:                  df(0.20),
	}
}

// TaxYearFor dispatches on the tax year. Only 2025 is specified; other years
// are rejected rather than approximated.
func TaxYearFor(year int) (*TaxYearConfig, error) {
	if year == 2025 {
		return NewTaxYear2025(), nil
	}
	return nil, fmt.Errorf("unsupported tax year %d", year)
}
