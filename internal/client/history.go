package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

// HistoryClient records eligibility history entries so the frontend polling
// manager can find and track submitted checks.
type HistoryClient struct {
	baseURL    string
	apiKey     string
	clinicID   string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewHistoryClient(opts Options, clinicID string, logger *logger.Logger) *HistoryClient {
	return &HistoryClient{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		clinicID:   clinicID,
		httpClient: newHTTPClient(opts.Timeout),
		logger:     logger,
	}
}

type historyRequest struct {
	ClinicID        string `json:"clinicId"`
	PatientID       string `json:"patientId"`
	TaskID          string `json:"taskId"`
	Status          string `json:"status"`
	PollingAttempts int    `json:"pollingAttempts"`
	PatientName     string `json:"patientName,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	InsurancePayer  string `json:"insurancePayer,omitempty"`
	PatientMPI      string `json:"patientMPI,omitempty"`
	AppointmentID   int64  `json:"appointmentId,omitempty"`
	EncounterID     int64  `json:"encounterId,omitempty"`
}

type historyResponse struct {
	ID string `json:"id"`
}

// Create writes a pending history entry referencing the task. A patient
// identifier is required; the MPI stands in when the patient id is missing.
func (c *HistoryClient) Create(ctx context.Context, appt *model.Appointment, taskID, payerCode string) (string, error) {
	patientID := appt.PatientID
	if patientID == "" {
		patientID = appt.MPI
	}
	if patientID == "" {
		return "", fmt.Errorf("no patient_id or mpi for appointment %s", appt.AppointmentID)
	}

	payload := historyRequest{
		ClinicID:        c.clinicID,
		PatientID:       patientID,
		TaskID:          taskID,
		Status:          "pending",
		PollingAttempts: 0,
		PatientName:     appt.PatientName,
		DateOfBirth:     appt.DOB,
		InsurancePayer:  payerCode,
		PatientMPI:      appt.MPI,
		AppointmentID:   numericID(appt.AppointmentID),
		EncounterID:     numericID(appt.EncounterID),
	}

	c.logger.Info("creating eligibility history item",
		"appointment_id", appt.AppointmentID, "task_id", taskID, "patient_id", patientID)

	var parsed historyResponse
	url := c.baseURL + "/api/eligibility-history"
	if err := postJSON(ctx, c.httpClient, url, c.apiKey, payload, &parsed); err != nil {
		return "", fmt.Errorf("failed to create history item: %w", err)
	}

	if parsed.ID == "" {
		return "", fmt.Errorf("history response missing id")
	}

	c.logger.Info("created eligibility history item",
		"history_id", parsed.ID, "task_id", taskID)
	return parsed.ID, nil
}
