package domain

// FilingStatus identifies the federal filing status of a return. Married
// filing separately is subject to half-exemption rules everywhere a joint
// threshold appears.
type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarriedJoint    FilingStatus = "married_joint"
	FilingMarriedSeparate FilingStatus = "married_separate"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
	FilingQualifyingWidow FilingStatus = "qualifying_widow"
)

// Valid reports whether fs is one of the five recognized statuses.
func (fs FilingStatus) Valid() bool {
	switch fs {
	case FilingSingle, FilingMarriedJoint, FilingMarriedSeparate,
		FilingHeadOfHousehold, FilingQualifyingWidow:
		return true
	}
	return false
}

// IsJoint reports whether fs shares the married-filing-jointly thresholds.
// Qualifying widow(er) uses MFJ tables for brackets, exemptions and phaseouts.
func (fs FilingStatus) IsJoint() bool {
	return fs == FilingMarriedJoint || fs == FilingQualifyingWidow
}

// IsMFS reports whether the reduced half-exemption rules apply.
func (fs FilingStatus) IsMFS() bool {
	return fs == FilingMarriedSeparate
}

// AllFilingStatuses lists every recognized status, in table order.
var AllFilingStatuses = []FilingStatus{
	FilingSingle,
	FilingMarriedJoint,
	FilingMarriedSeparate,
	FilingHeadOfHousehold,
	FilingQualifyingWidow,
}
