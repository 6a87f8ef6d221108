package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/pkg/circuitbreaker"
)

func newEligibilityClient(baseURL string) *EligibilityClient {
	return NewEligibilityClient(
		Options{BaseURL: baseURL},
		rate.NewLimiter(rate.Inf, 1),
		circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "test"}),
		testLogger(),
	)
}

func TestSubmitEligibilityCheck(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"task_id":"task-42"}`))
	}))
	defer server.Close()

	c := newEligibilityClient(server.URL)

	appt := model.Appointment{
		AppointmentID: "101",
		EncounterID:   "9",
		PatientID:     "77",
		PatientName:   "Jane Doe",
		MPI:           "MPI-1",
	}
	cls := model.Classification{
		PayerCode: "TPA007",
		VisitType: model.VisitTypeOutpatient,
		Identity:  model.Identity{Type: model.IDTypeNationalID, Value: "784-1234"},
	}

	taskID, err := c.Submit(context.Background(), &appt, cls)
	require.NoError(t, err)
	assert.Equal(t, "task-42", taskID)

	assert.Equal(t, "/api/mantys/eligibility-check", gotPath)
	assert.Equal(t, "784-1234", gotPayload["id_value"])
	assert.Equal(t, "EMIRATESID", gotPayload["id_type"])
	assert.Equal(t, "TPA007", gotPayload["tpa_name"])
	assert.Equal(t, "OUTPATIENT", gotPayload["visit_type"])
	assert.Equal(t, "MPI-1", gotPayload["mpi"])
	assert.Equal(t, "77", gotPayload["patientId"])
	assert.Equal(t, "Jane Doe", gotPayload["patientName"])
	assert.Equal(t, float64(101), gotPayload["appointmentId"])
	assert.Equal(t, float64(9), gotPayload["encounterId"])
}

func TestSubmitMissingTaskIDIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"accepted"}`))
	}))
	defer server.Close()

	c := newEligibilityClient(server.URL)
	_, err := c.Submit(context.Background(), &model.Appointment{AppointmentID: "101"}, model.Classification{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_id")
}

func TestSubmitHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c := newEligibilityClient(server.URL)
	_, err := c.Submit(context.Background(), &model.Appointment{AppointmentID: "101"}, model.Classification{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSubmitCircuitOpensAfterRepeatedFailures(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewEligibilityClient(
		Options{BaseURL: server.URL},
		rate.NewLimiter(rate.Inf, 1),
		circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "test", MaxFailures: 2}),
		testLogger(),
	)

	appt := model.Appointment{AppointmentID: "101"}
	for i := 0; i < 5; i++ {
		_, err := c.Submit(context.Background(), &appt, model.Classification{})
		require.Error(t, err)
	}

	// After the breaker opened, calls stop reaching the server.
	assert.Equal(t, 2, requests)
}
