package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AnonymizedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_records_total",
			Help: "Total number of records processed by the anonymizer (count)",
		},
		[]string{"status"},
	)

	FieldDispositionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_field_dispositions_total",
			Help: "Total number of flattened fields by classification outcome (count)",
		},
		[]string{"disposition"},
	)

	AnonymizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "anonymizer_record_duration_ms",
			Help:    "Per-record anonymization duration in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
	)

	ReaderPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_reader_pages_total",
			Help: "Total number of pages fetched from the source store (count)",
		},
		[]string{"store"},
	)

	ReaderRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_reader_records_total",
			Help: "Total number of records read from the source store (count)",
		},
		[]string{"store"},
	)

	WriterBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_writer_batches_total",
			Help: "Total number of batches written to the destination store (count)",
		},
		[]string{"store", "status"},
	)

	WriterRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_writer_records_total",
			Help: "Total number of records written to the destination store (count)",
		},
		[]string{"store"},
	)

	RunLedgerSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "anonymizer_run_ledger_size",
			Help: "Approximate number of documents marked as written in the run ledger (count)",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_retry_attempts_total",
			Help: "Total number of retry attempts per operation (count)",
		},
		[]string{"operation"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_fallback_usage_total",
			Help: "Total number of times a fallback policy was applied (count)",
		},
		[]string{"component", "action", "reason"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "anonymizer_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breakers (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_circuit_breaker_failures_total",
			Help: "Total number of failed requests through circuit breakers (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_rate_limit_requests_total",
			Help: "Total number of HTTP requests seen by the rate limiter (count)",
		},
		[]string{"status"},
	)

	PreviewRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymizer_preview_requests_total",
			Help: "Total number of preview API requests (count)",
		},
		[]string{"status"},
	)
)

func RegisterAnonymizerMetrics() {
	prometheus.MustRegister(
		AnonymizedRecordsTotal,
		FieldDispositionsTotal,
		AnonymizeDuration,
	)
}

func RegisterStoreMetrics() {
	prometheus.MustRegister(
		ReaderPagesTotal,
		ReaderRecordsTotal,
		WriterBatchesTotal,
		WriterRecordsTotal,
		RetryAttemptsTotal,
	)
}

func RegisterRunLedgerMetrics() {
	prometheus.MustRegister(
		RunLedgerSize,
		FallbackUsageTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(
		RateLimitRequestsTotal,
		PreviewRequestsTotal,
	)
}

func ObserveAnonymizeDuration(d time.Duration) {
	AnonymizeDuration.Observe(float64(d.Microseconds()) / 1000.0)
}

func SetRunLedgerSize(size int) {
	RunLedgerSize.Set(float64(size))
}
