package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monext_api_requests_total",
			Help: "Total number of Monext API calls by operation and resolved status",
		},
		[]string{"operation", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monext_api_request_duration_seconds",
			Help:    "Duration of Monext API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	reconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reconciliations_total",
			Help: "Session reconciliation results by entry point and outcome",
		},
		[]string{"entry_point", "outcome"},
	)

	idempotencySkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_idempotency_skips_total",
			Help: "Mutating operations skipped because the Monext ledger already reflects them",
		},
		[]string{"operation"},
	)
)

// RecordGatewayRequest records one Monext API call. Status is the resolved
// status of the normalized result, not necessarily an HTTP status.
func RecordGatewayRequest(operation string, status int, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordReconciliation records a session reconciliation outcome for the given
// entry point (webhook or return).
func RecordReconciliation(entryPoint, outcome string) {
	reconciliationsTotal.WithLabelValues(entryPoint, outcome).Inc()
}

// RecordIdempotencySkip records a capture, cancel or refund short-circuited by
// the already-processed check.
func RecordIdempotencySkip(operation string) {
	idempotencySkipsTotal.WithLabelValues(operation).Inc()
}
