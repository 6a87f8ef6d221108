package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all checker metrics.
type Metrics struct {
	AppointmentsFetched   prometheus.Counter
	AppointmentsProcessed prometheus.Counter
	ChecksCreated         prometheus.Counter
	ProcessingErrors      prometheus.Counter
	AppointmentsSkipped   *prometheus.CounterVec
	BatchDuration         prometheus.Histogram
	SubmitLatency         prometheus.Histogram
}

// NewMetrics creates and registers all checker metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AppointmentsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_fetched_total",
			Help:      "Total number of appointments fetched from the scheduling API",
		}),
		AppointmentsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_processed_total",
			Help:      "Total number of appointments processed to completion",
		}),
		ChecksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_checks_created_total",
			Help:      "Total number of eligibility-check tasks created downstream",
		}),
		ProcessingErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processing_errors_total",
			Help:      "Total number of per-appointment processing errors",
		}),
		AppointmentsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_skipped_total",
			Help:      "Total number of skipped appointments by reason",
		}, []string{"reason"}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent processing one batch of appointments",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Latency of downstream eligibility submissions",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// New creates checker metrics without registering them. Tests use this to
// avoid duplicate registration on the default registry.
func New(namespace string) *Metrics {
	return &Metrics{
		AppointmentsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_fetched_total",
			Help:      "Total number of appointments fetched from the scheduling API",
		}),
		AppointmentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_processed_total",
			Help:      "Total number of appointments processed to completion",
		}),
		ChecksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_checks_created_total",
			Help:      "Total number of eligibility-check tasks created downstream",
		}),
		ProcessingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processing_errors_total",
			Help:      "Total number of per-appointment processing errors",
		}),
		AppointmentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_skipped_total",
			Help:      "Total number of skipped appointments by reason",
		}, []string{"reason"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent processing one batch of appointments",
		}),
		SubmitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Latency of downstream eligibility submissions",
		}),
	}
}
