package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/internal/service/eligibility"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
	"github.com/jwalitptl/eligibility-checker/pkg/metrics"
)

// Fetcher supplies one batch of appointments, conceptually "today's".
type Fetcher interface {
	FetchToday(ctx context.Context) ([]model.Appointment, error)
}

// Processor runs the per-appointment pipeline.
type Processor interface {
	Process(ctx context.Context, appt *model.Appointment, insurance *model.InsuranceData) eligibility.Outcome
}

// Counters aggregates one batch's results.
type Counters struct {
	Fetched                 int
	Processed               int
	Created                 int
	Errors                  int
	SkippedAlreadyProcessed int
	SkippedDuplicateClaim   int
	SkippedNoInsurance      int
	SkippedNoTPA            int
	SkippedNoID             int
}

// Runner fetches appointment batches and feeds them through the pipeline on
// a fixed interval.
type Runner struct {
	fetcher   Fetcher
	processor Processor
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewRunner(fetcher Fetcher, processor Processor, interval time.Duration, m *metrics.Metrics, logger *logger.Logger) *Runner {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Runner{
		fetcher:   fetcher,
		processor: processor,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// RunOnce processes one batch. Only a fetch failure is fatal; per-appointment
// failures are contained and counted.
func (r *Runner) RunOnce(ctx context.Context) (Counters, error) {
	timer := prometheus.NewTimer(r.metrics.BatchDuration)
	defer timer.ObserveDuration()

	var counters Counters

	appointments, err := r.fetcher.FetchToday(ctx)
	if err != nil {
		return counters, err
	}

	counters.Fetched = len(appointments)
	r.metrics.AppointmentsFetched.Add(float64(len(appointments)))

	if len(appointments) == 0 {
		r.logger.Info("no appointments found for today")
		r.logSummary(counters)
		return counters, nil
	}

	r.logger.Info("processing appointment batch", "count", len(appointments))

	for i := range appointments {
		outcome := r.processor.Process(ctx, &appointments[i], nil)
		r.record(&counters, outcome)
	}

	r.logSummary(counters)
	return counters, nil
}

// Start loops until the context is cancelled. The stop signal is honored
// between iterations: the in-flight batch finishes on an uncancellable
// context so the current appointment always runs to completion.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("starting eligibility checker", "interval", r.interval.String())

	r.runIteration(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down eligibility checker")
			return
		case <-ticker.C:
			r.runIteration(ctx)
		}
	}
}

func (r *Runner) runIteration(ctx context.Context) {
	runID := uuid.New().String()
	log := r.logger.WithFields(map[string]interface{}{"run_id": runID})
	log.Info("starting iteration")

	batchCtx := context.WithoutCancel(ctx)
	if _, err := r.RunOnce(batchCtx); err != nil {
		log.Error(err, "batch failed")
	}
}

func (r *Runner) record(counters *Counters, outcome eligibility.Outcome) {
	switch outcome {
	case eligibility.OutcomeProcessed:
		counters.Processed++
		counters.Created++
		r.metrics.AppointmentsProcessed.Inc()
		r.metrics.ChecksCreated.Inc()
	case eligibility.OutcomeSkippedAlreadyProcessed:
		counters.SkippedAlreadyProcessed++
		r.metrics.AppointmentsSkipped.WithLabelValues(outcome.String()).Inc()
	case eligibility.OutcomeSkippedDuplicateClaim:
		counters.SkippedDuplicateClaim++
		r.metrics.AppointmentsSkipped.WithLabelValues(outcome.String()).Inc()
	case eligibility.OutcomeSkippedNoInsurance:
		counters.SkippedNoInsurance++
		r.metrics.AppointmentsSkipped.WithLabelValues(outcome.String()).Inc()
	case eligibility.OutcomeSkippedNoTPA:
		counters.SkippedNoTPA++
		r.metrics.AppointmentsSkipped.WithLabelValues(outcome.String()).Inc()
	case eligibility.OutcomeSkippedNoID:
		counters.SkippedNoID++
		r.metrics.AppointmentsSkipped.WithLabelValues(outcome.String()).Inc()
	default:
		counters.Errors++
		r.metrics.ProcessingErrors.Inc()
	}
}

func (r *Runner) logSummary(counters Counters) {
	r.logger.Info("batch summary",
		"fetched", counters.Fetched,
		"processed", counters.Processed,
		"created", counters.Created,
		"errors", counters.Errors,
		"skipped_already_processed", counters.SkippedAlreadyProcessed,
		"skipped_duplicate_claim", counters.SkippedDuplicateClaim,
		"skipped_no_insurance", counters.SkippedNoInsurance,
		"skipped_no_tpa", counters.SkippedNoTPA,
		"skipped_no_id", counters.SkippedNoID)
}
