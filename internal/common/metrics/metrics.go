package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeOracleError = "oracle_error"
	OutcomeParseError  = "parse_error"
)

var (
	IntakeTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"outcome"}, // prompted, completed, offer_failed
	)

	ExtractionTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_extraction_tasks_total",
			Help: "Extraction task invocations by outcome",
		},
		[]string{"task", "outcome"},
	)

	OracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_oracle_duration_seconds",
			Help:    "Duration of extraction oracle calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"task"},
	)

	SchemaViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_schema_violations_total",
			Help: "Oracle responses that did not match the task output schema",
		},
		[]string{"task"},
	)

	OracleCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_oracle_cache_lookups_total",
			Help: "Oracle response cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	OffersIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_offers_issued_total",
			Help: "Loan offers issued to completed applications",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
