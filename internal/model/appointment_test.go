package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentUnmarshalSnakeCase(t *testing.T) {
	raw := `{
		"appointment_id": 101,
		"encounter_id": "555",
		"patient_id": 9001,
		"mpi": "MPI-1",
		"full_name": "Jane Doe",
		"dob": "1990-01-02",
		"receiver_code": "TPA007",
		"payer_name": "Neuron",
		"specialisation_name": "General Medicine",
		"nationality_id": "784-1234"
	}`

	var appt Appointment
	require.NoError(t, json.Unmarshal([]byte(raw), &appt))

	assert.Equal(t, "101", appt.AppointmentID)
	assert.Equal(t, "555", appt.EncounterID)
	assert.Equal(t, "9001", appt.PatientID)
	assert.Equal(t, "MPI-1", appt.MPI)
	assert.Equal(t, "Jane Doe", appt.PatientName)
	assert.Equal(t, "1990-01-02", appt.DOB)
	assert.Equal(t, "TPA007", appt.ReceiverCode)
	assert.Equal(t, "Neuron", appt.PayerName)
	assert.Equal(t, "General Medicine", appt.SpecialisationName)
	assert.Equal(t, "784-1234", appt.NationalityID)
}

func TestAppointmentUnmarshalCamelCase(t *testing.T) {
	raw := `{
		"appointmentId": "102",
		"patientId": "77",
		"patientName": "John Roe",
		"receiverCode": "INS012",
		"payerCode": "TPA001",
		"specializationName": "Dental Clinic",
		"nationalityId": "784-9999",
		"uidValue": "U-1",
		"dhaMemberId": "DHA-5"
	}`

	var appt Appointment
	require.NoError(t, json.Unmarshal([]byte(raw), &appt))

	assert.Equal(t, "102", appt.AppointmentID)
	assert.Equal(t, "77", appt.PatientID)
	assert.Equal(t, "John Roe", appt.PatientName)
	assert.Equal(t, "INS012", appt.ReceiverCode)
	assert.Equal(t, "TPA001", appt.PayerCode)
	assert.Equal(t, "Dental Clinic", appt.SpecialisationName)
	assert.Equal(t, "784-9999", appt.NationalityID)
	assert.Equal(t, "U-1", appt.UIDValue)
	assert.Equal(t, "DHA-5", appt.MemberID)
}

func TestAppointmentSnakeCaseWinsOverCamel(t *testing.T) {
	raw := `{"appointment_id": "1", "appointmentId": "2", "full_name": "A", "patientName": "B"}`

	var appt Appointment
	require.NoError(t, json.Unmarshal([]byte(raw), &appt))

	assert.Equal(t, "1", appt.AppointmentID)
	assert.Equal(t, "A", appt.PatientName)
}

func TestAppointmentEmergencyFlagVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"bool true", `{"isEmergencyAppointment": true}`, true},
		{"bool false", `{"isEmergencyAppointment": false}`, false},
		{"string true", `{"is_emergency_appointment": "true"}`, true},
		{"string yes", `{"emergency": "YES"}`, true},
		{"string one", `{"emergency": "1"}`, true},
		{"string no", `{"emergency": "no"}`, false},
		{"number one", `{"emergency": 1}`, true},
		{"number zero", `{"emergency": 0}`, false},
		{"null", `{"emergency": null}`, false},
		{"absent", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appt Appointment
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &appt))
			assert.Equal(t, tt.want, appt.Emergency)
		})
	}
}

func TestAppointmentHelpers(t *testing.T) {
	assert.False(t, (&Appointment{}).HasPayerInfo())
	assert.True(t, (&Appointment{PayerName: "Neuron"}).HasPayerInfo())
	assert.True(t, (&Appointment{ReceiverCode: "TPA001"}).HasPayerInfo())

	assert.False(t, (&Appointment{}).HasNationalID())
	assert.False(t, (&Appointment{NationalityID: "   "}).HasNationalID())
	assert.True(t, (&Appointment{UIDValue: "U-1"}).HasNationalID())
}

func TestInsuranceDataUnmarshal(t *testing.T) {
	raw := `{"tpaPolicyId": "P-1", "policy_number": 42, "insHolderId": "H-9"}`

	var ins InsuranceData
	require.NoError(t, json.Unmarshal([]byte(raw), &ins))

	assert.Equal(t, "P-1", ins.TPAPolicyID)
	assert.Equal(t, "42", ins.PolicyNumber)
	assert.Equal(t, "H-9", ins.HolderID)
	assert.Empty(t, ins.InsurancePolicyID)
}
