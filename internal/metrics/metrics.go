package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Consumption metrics
	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_triage_events_consumed_total",
			Help: "Total number of platform events consumed",
		},
		[]string{"subject"},
	)

	EventsCriticalTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_triage_events_critical_total",
			Help: "Total number of events classified as critical incidents",
		},
	)

	EventsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_triage_events_suppressed_total",
			Help: "Total number of critical events suppressed by the dedup window",
		},
	)

	// Dispatch metrics
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_triage_dispatches_total",
			Help: "Total number of triage dispatches by outcome status",
		},
		[]string{"status"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aegis_triage_dispatch_duration_seconds",
			Help:    "Duration of remote triage agent calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DLQ metrics
	DLQWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_triage_dlq_writes_total",
			Help: "Total number of failed dispatches written to the dead-letter queue",
		},
	)

	// Outcome persistence metrics
	OutcomeRecordErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_triage_outcome_record_errors_total",
			Help: "Total number of failures persisting triage outcomes",
		},
	)
)
