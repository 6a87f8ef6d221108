package resolver

import (
	"strings"

	"github.com/jwalitptl/eligibility-checker/internal/model"
)

// ResolveIdentity picks the identity document to submit with an eligibility
// check. Insurance policy fields are trusted first, then the appointment's
// national-id fields, then alternate member ids. Returns ok=false when every
// source is empty.
func ResolveIdentity(appt *model.Appointment, insurance *model.InsuranceData) (model.Identity, bool) {
	if insurance != nil {
		for _, value := range []string{
			insurance.TPAPolicyID,
			insurance.InsurancePolicyID,
			insurance.PolicyNumber,
			insurance.HolderID,
		} {
			if v := strings.TrimSpace(value); v != "" {
				return model.Identity{Type: model.IDTypeMemberID, Value: v}, true
			}
		}
	}

	if v := strings.TrimSpace(appt.NationalityID); v != "" {
		return model.Identity{Type: model.IDTypeNationalID, Value: v}, true
	}
	if v := strings.TrimSpace(appt.UIDValue); v != "" {
		return model.Identity{Type: model.IDTypeNationalID, Value: v}, true
	}

	if v := strings.TrimSpace(appt.MemberID); v != "" {
		return model.Identity{Type: model.IDTypeAltMemberID, Value: v}, true
	}

	return model.Identity{}, false
}
