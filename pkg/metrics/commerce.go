package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics records outcomes of commerce-backend operations.
type CommerceMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	attempts *prometheus.HistogramVec
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commerce_op_duration_seconds",
		Help:    "Duration of commerce backend operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_op_success",
		Help: "Successful commerce backend operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_op_failure",
		Help: "Failed commerce backend operations.",
	}, []string{"operation"})
	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upload_poll_attempts",
		Help:    "Polling attempts consumed before an upload settled.",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}, []string{"outcome"})
	reg.MustRegister(duration, success, failure, attempts)
	return &CommerceMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		attempts: attempts,
	}
}

// ObserveDuration records the duration for the named operation.
func (c *CommerceMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (c *CommerceMetrics) IncSuccess(operation string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (c *CommerceMetrics) IncFailure(operation string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObservePollAttempts records how many polling attempts an upload consumed.
func (c *CommerceMetrics) ObservePollAttempts(outcome string, attempts int) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Observe(float64(attempts))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
