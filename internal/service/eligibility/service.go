package eligibility

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/internal/repository"
	"github.com/jwalitptl/eligibility-checker/internal/resolver"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
	"github.com/jwalitptl/eligibility-checker/pkg/metrics"
)

// Outcome is the per-appointment result of one pipeline run. Per-appointment
// failures are values, not errors; only batch-level failures propagate as
// errors from the runner.
type Outcome int

const (
	OutcomeProcessed Outcome = iota
	OutcomeSkippedAlreadyProcessed
	OutcomeSkippedDuplicateClaim
	OutcomeSkippedNoInsurance
	OutcomeSkippedNoTPA
	OutcomeSkippedNoID
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkippedAlreadyProcessed:
		return "skipped_already_processed"
	case OutcomeSkippedDuplicateClaim:
		return "skipped_duplicate_claim"
	case OutcomeSkippedNoInsurance:
		return "skipped_no_insurance"
	case OutcomeSkippedNoTPA:
		return "skipped_no_tpa"
	case OutcomeSkippedNoID:
		return "skipped_no_id"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

// PayerResolver resolves and validates payer codes.
type PayerResolver interface {
	Resolve(ctx context.Context, appt *model.Appointment) string
	Valid(code string) bool
}

// VisitTypeResolver classifies appointments into visit categories.
type VisitTypeResolver interface {
	Resolve(appt *model.Appointment) model.VisitType
}

// Submitter creates an eligibility-check task downstream.
type Submitter interface {
	Submit(ctx context.Context, appt *model.Appointment, cls model.Classification) (string, error)
}

// HistoryCreator records a history entry for a created task.
type HistoryCreator interface {
	Create(ctx context.Context, appt *model.Appointment, taskID, payerCode string) (string, error)
}

// Service drives one appointment through classification, deduplication and
// downstream submission.
type Service struct {
	tracker   repository.Tracker
	payer     PayerResolver
	visitType VisitTypeResolver
	submitter Submitter
	history   HistoryCreator
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(
	tracker repository.Tracker,
	payer PayerResolver,
	visitType VisitTypeResolver,
	submitter Submitter,
	history HistoryCreator,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		tracker:   tracker,
		payer:     payer,
		visitType: visitType,
		submitter: submitter,
		history:   history,
		metrics:   metrics,
		logger:    logger,
	}
}

// Process runs the pipeline for a single appointment. Any step failure
// terminates that appointment only; the batch continues.
func (s *Service) Process(ctx context.Context, appt *model.Appointment, insurance *model.InsuranceData) Outcome {
	id := appt.AppointmentID
	if id == "" {
		// Nothing to key a tracking record on.
		s.logger.Warn("appointment missing appointment_id, skipping")
		return OutcomeError
	}

	log := s.logger.WithFields(map[string]interface{}{"appointment_id": id})
	log.Info("processing appointment")

	if !s.tracker.ShouldProcess(ctx, id) {
		log.Debug("appointment already processed, skipping")
		return OutcomeSkippedAlreadyProcessed
	}

	// An appointment with neither payer info nor a national-id document is
	// left untracked so it gets re-evaluated next run if data arrives later.
	var override string
	if !appt.HasPayerInfo() {
		if !appt.HasNationalID() {
			log.Debug("appointment has no payer info and no national id, skipping")
			return OutcomeSkippedNoInsurance
		}
		log.Info("appointment has no payer info but has national id, searching all payers")
		override = resolver.PayerCodeBoth
	}

	claimed, err := s.tracker.MarkProcessing(ctx, id)
	if err != nil {
		// A failed write is not a lost race; count it as an error so the
		// skip counters stay honest during store instability. Nothing was
		// tracked, so the appointment retries next run.
		log.Error(err, "failed to claim appointment")
		return OutcomeError
	}
	if !claimed {
		log.Debug("appointment already claimed by another instance")
		return OutcomeSkippedDuplicateClaim
	}

	return s.classifyAndSubmit(ctx, log, appt, insurance, override)
}

func (s *Service) classifyAndSubmit(
	ctx context.Context,
	log *logger.Logger,
	appt *model.Appointment,
	insurance *model.InsuranceData,
	override string,
) (outcome Outcome) {
	id := appt.AppointmentID

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic processing appointment: %v", r)
			log.Error(err, "recovered from panic in pipeline")
			s.markError(ctx, log, id, err.Error())
			outcome = OutcomeError
		}
	}()

	payerCode := override
	if payerCode != "" {
		log.Info("using payer code override", "payer_code", payerCode)
	} else {
		payerCode = s.payer.Resolve(ctx, appt)
	}
	if payerCode == "" || !s.payer.Valid(payerCode) {
		log.Warn("appointment has no valid payer code", "payer_code", payerCode)
		s.markError(ctx, log, id, "no valid payer code found")
		return OutcomeSkippedNoTPA
	}

	visitType := s.visitType.Resolve(appt)

	identity, ok := resolver.ResolveIdentity(appt, insurance)
	if !ok {
		log.Warn("appointment has no identity document")
		s.markError(ctx, log, id, "no identity document found")
		return OutcomeSkippedNoID
	}

	cls := model.Classification{
		PayerCode: payerCode,
		VisitType: visitType,
		Identity:  identity,
	}

	timer := prometheus.NewTimer(s.metrics.SubmitLatency)
	taskID, err := s.submitter.Submit(ctx, appt, cls)
	timer.ObserveDuration()
	if err != nil {
		log.Error(err, "failed to create eligibility task")
		s.markError(ctx, log, id, err.Error())
		return OutcomeError
	}

	historyID, err := s.history.Create(ctx, appt, taskID, payerCode)
	if err != nil {
		// The task already exists downstream and must not be resubmitted, so
		// a history failure does not fail the appointment.
		log.Warn("failed to create history item, task was created successfully",
			"task_id", taskID, "error", err.Error())
		historyID = "N/A"
	}

	if err := s.tracker.MarkCompleted(ctx, id, taskID); err != nil {
		log.Error(err, "failed to mark appointment completed", "task_id", taskID)
	}

	log.Info("successfully processed appointment",
		"task_id", taskID, "history_id", historyID)
	return OutcomeProcessed
}

func (s *Service) markError(ctx context.Context, log *logger.Logger, id, message string) {
	if err := s.tracker.MarkError(ctx, id, message); err != nil {
		log.Error(err, "failed to record tracking error")
	}
}
