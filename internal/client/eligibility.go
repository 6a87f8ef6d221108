package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/pkg/circuitbreaker"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

// EligibilityClient submits verification tasks to the eligibility service.
// Submissions are rate limited and guarded by a circuit breaker so a
// struggling downstream degrades the batch instead of hammering it.
type EligibilityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *circuitbreaker.CircuitBreaker
	logger     *logger.Logger
}

func NewEligibilityClient(opts Options, limiter *rate.Limiter, cb *circuitbreaker.CircuitBreaker, logger *logger.Logger) *EligibilityClient {
	return &EligibilityClient{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: newHTTPClient(opts.Timeout),
		limiter:    limiter,
		cb:         cb,
		logger:     logger,
	}
}

type eligibilityCheckRequest struct {
	IDValue       string `json:"id_value"`
	IDType        string `json:"id_type"`
	TPAName       string `json:"tpa_name"`
	VisitType     string `json:"visit_type"`
	MPI           string `json:"mpi,omitempty"`
	PatientID     string `json:"patientId,omitempty"`
	PatientName   string `json:"patientName,omitempty"`
	AppointmentID int64  `json:"appointmentId,omitempty"`
	EncounterID   int64  `json:"encounterId,omitempty"`
}

type eligibilityCheckResponse struct {
	TaskID string `json:"task_id"`
}

// Submit creates an eligibility-check task and returns its task id. A
// response without a task id is a failure.
func (c *EligibilityClient) Submit(ctx context.Context, appt *model.Appointment, cls model.Classification) (string, error) {
	payload := eligibilityCheckRequest{
		IDValue:       cls.Identity.Value,
		IDType:        string(cls.Identity.Type),
		TPAName:       cls.PayerCode,
		VisitType:     string(cls.VisitType),
		MPI:           appt.MPI,
		PatientID:     appt.PatientID,
		PatientName:   appt.PatientName,
		AppointmentID: numericID(appt.AppointmentID),
		EncounterID:   numericID(appt.EncounterID),
	}

	c.logger.Info("creating eligibility check",
		"appointment_id", appt.AppointmentID,
		"payer_code", cls.PayerCode,
		"visit_type", string(cls.VisitType),
		"id_type", string(cls.Identity.Type))

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	var parsed eligibilityCheckResponse
	err := c.cb.Execute(func() error {
		url := c.baseURL + "/api/mantys/eligibility-check"
		return postJSON(ctx, c.httpClient, url, c.apiKey, payload, &parsed)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create eligibility check: %w", err)
	}

	if parsed.TaskID == "" {
		return "", fmt.Errorf("eligibility check response missing task_id")
	}

	c.logger.Info("created eligibility task",
		"appointment_id", appt.AppointmentID, "task_id", parsed.TaskID)
	return parsed.TaskID, nil
}

// numericID converts string-normalized ids back to the integers the
// eligibility service expects; non-numeric ids are omitted.
func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
