package model

// VisitType is the closed set of encounter categories the eligibility service
// understands.
type VisitType string

const (
	VisitTypeOutpatient VisitType = "OUTPATIENT"
	VisitTypeInpatient  VisitType = "INPATIENT"
	VisitTypeDental     VisitType = "DENTAL"
	VisitTypeOptical    VisitType = "OPTICAL"
	VisitTypeMaternity  VisitType = "MATERNITY"
	VisitTypePsychiatry VisitType = "PSYCHIATRY"
	VisitTypeWellness   VisitType = "WELLNESS"
	VisitTypeChronicOut VisitType = "CHRONIC_OUT"
	VisitTypeEmergency  VisitType = "EMERGENCY"
	VisitTypeLife       VisitType = "LIFE"
	VisitTypeTravel     VisitType = "TRAVEL_INSURANCE"
)

var validVisitTypes = map[VisitType]struct{}{
	VisitTypeOutpatient: {},
	VisitTypeInpatient:  {},
	VisitTypeDental:     {},
	VisitTypeOptical:    {},
	VisitTypeMaternity:  {},
	VisitTypePsychiatry: {},
	VisitTypeWellness:   {},
	VisitTypeChronicOut: {},
	VisitTypeEmergency:  {},
	VisitTypeLife:       {},
	VisitTypeTravel:     {},
}

func (v VisitType) Valid() bool {
	_, ok := validVisitTypes[v]
	return ok
}

// IDType classifies the identity document submitted with an eligibility check.
// The constants carry the wire values the eligibility service expects.
type IDType string

const (
	IDTypeMemberID    IDType = "CARDNUMBER"
	IDTypeNationalID  IDType = "EMIRATESID"
	IDTypeAltMemberID IDType = "DHAMEMBERID"
)

// Identity is a resolved identity document.
type Identity struct {
	Type  IDType
	Value string
}

// Classification is the full triple required for a downstream submission.
type Classification struct {
	PayerCode string
	VisitType VisitType
	Identity  Identity
}
