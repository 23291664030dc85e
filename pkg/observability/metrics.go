package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// gateway operation metrics
	gatewayOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_operations_total",
			Help: "Total number of gateway operations",
		},
		[]string{"gateway", "operation", "outcome"},
	)

	gatewayOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_operation_duration_seconds",
			Help:    "Duration of gateway operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway", "operation"},
	)
)

// RecordOperation records one normalized gateway operation. Outcome is
// "approved", "declined", or "error" (the call never reached a vendor
// decision).
func RecordOperation(gateway, operation, outcome string, elapsed time.Duration) {
	gatewayOperationsTotal.WithLabelValues(gateway, operation, outcome).Inc()
	gatewayOperationDuration.WithLabelValues(gateway, operation).Observe(elapsed.Seconds())
}

// Outcome maps a success flag and error to the outcome label
func Outcome(success bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case success:
		return "approved"
	default:
		return "declined"
	}
}
