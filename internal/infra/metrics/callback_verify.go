package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		CallbackRequests,
		CallbackDuration,
	)
}

var (
	// Count of callback deliveries grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): not_found|bad_signature|missing_status|conflict|internal|unknown
	CallbackRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callback_requests_total",
			Help: "Count of /payment/callback deliveries by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Latency of the callback handler grouped by result.
	CallbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_callback_duration_seconds",
			Help:    "Duration of /payment/callback handler in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)
)
