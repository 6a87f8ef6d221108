package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Appointment is the canonical view of a scheduling-API appointment record.
// The upstream API is loosely typed and mixes snake_case and camelCase key
// spellings for the same concept, so decoding coalesces every known variant
// into one field here. Resolvers only ever see the canonical names.
type Appointment struct {
	AppointmentID      string
	EncounterID        string
	PatientID          string
	MPI                string
	PatientName        string
	DOB                string
	ReceiverCode       string
	PayerCode          string
	ReceiverName       string
	PayerName          string
	SpecialisationName string
	VisitTypeID        string
	Emergency          bool
	NationalityID      string
	UIDValue           string
	MemberID           string
}

type appointmentAlias struct {
	AppointmentID  flexString `json:"appointment_id"`
	AppointmentID2 flexString `json:"appointmentId"`

	EncounterID  flexString `json:"encounter_id"`
	EncounterID2 flexString `json:"encounterId"`

	PatientID  flexString `json:"patient_id"`
	PatientID2 flexString `json:"patientId"`

	MPI flexString `json:"mpi"`

	FullName     flexString `json:"full_name"`
	FullName2    flexString `json:"fullName"`
	PatientName  flexString `json:"patient_name"`
	PatientName2 flexString `json:"patientName"`

	DOB  flexString `json:"dob"`
	DOB2 flexString `json:"dateOfBirth"`

	ReceiverCode  flexString `json:"receiver_code"`
	ReceiverCode2 flexString `json:"receiverCode"`
	PayerCode     flexString `json:"payer_code"`
	PayerCode2    flexString `json:"payerCode"`
	ReceiverName  flexString `json:"receiver_name"`
	ReceiverName2 flexString `json:"receiverName"`
	PayerName     flexString `json:"payer_name"`
	PayerName2    flexString `json:"payerName"`

	SpecialisationName  flexString `json:"specialisation_name"`
	SpecialisationName2 flexString `json:"specialisationName"`
	SpecializationName  flexString `json:"specialization_name"`
	SpecializationName2 flexString `json:"specializationName"`

	VisitTypeID  flexString `json:"visitTypeId"`
	VisitTypeID2 flexString `json:"visit_type_id"`

	IsEmergency  flexBool `json:"isEmergencyAppointment"`
	IsEmergency2 flexBool `json:"is_emergency_appointment"`
	IsEmergency3 flexBool `json:"emergency"`

	NationalityID  flexString `json:"nationality_id"`
	NationalityID2 flexString `json:"nationalityId"`
	UIDValue       flexString `json:"uid_value"`
	UIDValue2      flexString `json:"uidValue"`

	DHAMemberID  flexString `json:"dha_member_id"`
	DHAMemberID2 flexString `json:"dhaMemberId"`
	MemberID     flexString `json:"member_id"`
	MemberID2    flexString `json:"memberId"`
}

func (a *Appointment) UnmarshalJSON(data []byte) error {
	var alias appointmentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	a.AppointmentID = coalesce(alias.AppointmentID, alias.AppointmentID2)
	a.EncounterID = coalesce(alias.EncounterID, alias.EncounterID2)
	a.PatientID = coalesce(alias.PatientID, alias.PatientID2)
	a.MPI = string(alias.MPI)
	a.PatientName = coalesce(alias.FullName, alias.FullName2, alias.PatientName, alias.PatientName2)
	a.DOB = coalesce(alias.DOB, alias.DOB2)
	a.ReceiverCode = coalesce(alias.ReceiverCode, alias.ReceiverCode2)
	a.PayerCode = coalesce(alias.PayerCode, alias.PayerCode2)
	a.ReceiverName = coalesce(alias.ReceiverName, alias.ReceiverName2)
	a.PayerName = coalesce(alias.PayerName, alias.PayerName2)
	a.SpecialisationName = coalesce(alias.SpecialisationName, alias.SpecialisationName2,
		alias.SpecializationName, alias.SpecializationName2)
	a.VisitTypeID = coalesce(alias.VisitTypeID, alias.VisitTypeID2)
	a.Emergency = bool(alias.IsEmergency) || bool(alias.IsEmergency2) || bool(alias.IsEmergency3)
	a.NationalityID = coalesce(alias.NationalityID, alias.NationalityID2)
	a.UIDValue = coalesce(alias.UIDValue, alias.UIDValue2)
	a.MemberID = coalesce(alias.DHAMemberID, alias.DHAMemberID2, alias.MemberID, alias.MemberID2)

	return nil
}

// HasPayerInfo reports whether the appointment carries structured payer codes
// or free-text payer names.
func (a *Appointment) HasPayerInfo() bool {
	return a.ReceiverCode != "" || a.PayerCode != "" || a.ReceiverName != "" || a.PayerName != ""
}

// HasNationalID reports whether the appointment carries a national-id-type
// identity document.
func (a *Appointment) HasNationalID() bool {
	return strings.TrimSpace(a.NationalityID) != "" || strings.TrimSpace(a.UIDValue) != ""
}

// InsuranceData carries policy identifiers fetched alongside an appointment.
// It is optional; the identity resolver prefers it over appointment fields.
type InsuranceData struct {
	TPAPolicyID       string
	InsurancePolicyID string
	PolicyNumber      string
	HolderID          string
}

type insuranceAlias struct {
	TPAPolicyID        flexString `json:"tpa_policy_id"`
	TPAPolicyID2       flexString `json:"tpaPolicyId"`
	InsurancePolicyID  flexString `json:"insurance_policy_id"`
	InsurancePolicyID2 flexString `json:"insurancePolicyId"`
	PolicyNumber       flexString `json:"policy_number"`
	PolicyNumber2      flexString `json:"policyNumber"`
	HolderID           flexString `json:"ins_holderid"`
	HolderID2          flexString `json:"insHolderId"`
}

func (i *InsuranceData) UnmarshalJSON(data []byte) error {
	var alias insuranceAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	i.TPAPolicyID = coalesce(alias.TPAPolicyID, alias.TPAPolicyID2)
	i.InsurancePolicyID = coalesce(alias.InsurancePolicyID, alias.InsurancePolicyID2)
	i.PolicyNumber = coalesce(alias.PolicyNumber, alias.PolicyNumber2)
	i.HolderID = coalesce(alias.HolderID, alias.HolderID2)

	return nil
}

// flexString accepts JSON strings, numbers and null. The scheduling API is
// inconsistent about which one it sends for ids.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexBool accepts booleans and the string spellings the upstream system uses
// for truthy flags.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			*f = true
		default:
			*f = false
		}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = n.String() != "0"
	return nil
}

func coalesce(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}
