package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/eligibility-checker/internal/model"
)

func TestResolveIdentityPrefersInsuranceData(t *testing.T) {
	appt := model.Appointment{NationalityID: "784-1234", MemberID: "DHA-5"}
	ins := model.InsuranceData{TPAPolicyID: "P-1", PolicyNumber: "N-2"}

	identity, ok := ResolveIdentity(&appt, &ins)
	assert.True(t, ok)
	assert.Equal(t, model.IDTypeMemberID, identity.Type)
	assert.Equal(t, "P-1", identity.Value)
}

func TestResolveIdentityInsurancePriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		ins  model.InsuranceData
		want string
	}{
		{"tpa policy id first", model.InsuranceData{TPAPolicyID: "A", InsurancePolicyID: "B", PolicyNumber: "C", HolderID: "D"}, "A"},
		{"insurance policy id second", model.InsuranceData{InsurancePolicyID: "B", PolicyNumber: "C"}, "B"},
		{"policy number third", model.InsuranceData{PolicyNumber: "C", HolderID: "D"}, "C"},
		{"holder id last", model.InsuranceData{HolderID: "D"}, "D"},
		{"whitespace skipped", model.InsuranceData{TPAPolicyID: "   ", PolicyNumber: "C"}, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, ok := ResolveIdentity(&model.Appointment{}, &tt.ins)
			assert.True(t, ok)
			assert.Equal(t, model.IDTypeMemberID, identity.Type)
			assert.Equal(t, tt.want, identity.Value)
		})
	}
}

func TestResolveIdentityFallsBackToNationalID(t *testing.T) {
	appt := model.Appointment{NationalityID: " 784-1234 ", UIDValue: "U-1", MemberID: "DHA-5"}

	identity, ok := ResolveIdentity(&appt, nil)
	assert.True(t, ok)
	assert.Equal(t, model.IDTypeNationalID, identity.Type)
	assert.Equal(t, "784-1234", identity.Value)

	appt.NationalityID = ""
	identity, ok = ResolveIdentity(&appt, nil)
	assert.True(t, ok)
	assert.Equal(t, model.IDTypeNationalID, identity.Type)
	assert.Equal(t, "U-1", identity.Value)
}

func TestResolveIdentityAltMemberID(t *testing.T) {
	appt := model.Appointment{MemberID: "DHA-5"}

	identity, ok := ResolveIdentity(&appt, &model.InsuranceData{})
	assert.True(t, ok)
	assert.Equal(t, model.IDTypeAltMemberID, identity.Type)
	assert.Equal(t, "DHA-5", identity.Value)
}

func TestResolveIdentityNothingFound(t *testing.T) {
	_, ok := ResolveIdentity(&model.Appointment{}, nil)
	assert.False(t, ok)

	_, ok = ResolveIdentity(&model.Appointment{NationalityID: "  "}, &model.InsuranceData{HolderID: " "})
	assert.False(t, ok)
}
