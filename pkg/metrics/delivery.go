package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics records assignment and delivery workflow outcomes.
type DeliveryMetrics struct {
	assignDuration *prometheus.HistogramVec
	assignOutcome  *prometheus.CounterVec
	otpFailures    prometheus.Counter
	delivered      prometheus.Counter
}

// NewDeliveryMetrics registers the delivery metrics on the provided registerer.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	assignDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_duration_seconds",
		Help:    "Duration of agent assignment attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	assignOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_total",
		Help: "Agent assignment attempts by outcome.",
	}, []string{"outcome"})
	otpFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_confirmation_failures_total",
		Help: "Rejected delivery confirmations (wrong or expired code).",
	})
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_delivered_total",
		Help: "Orders confirmed delivered.",
	})
	reg.MustRegister(assignDuration, assignOutcome, otpFailures, delivered)
	return &DeliveryMetrics{
		assignDuration: assignDuration,
		assignOutcome:  assignOutcome,
		otpFailures:    otpFailures,
		delivered:      delivered,
	}
}

// ObserveAssignment records one assignment attempt.
func (d *DeliveryMetrics) ObserveAssignment(outcome string, duration time.Duration) {
	if d == nil || d.assignDuration == nil {
		return
	}
	label := normalizeLabel(outcome)
	d.assignDuration.WithLabelValues(label).Observe(duration.Seconds())
	d.assignOutcome.WithLabelValues(label).Inc()
}

// IncOTPFailure increments the rejected confirmation counter.
func (d *DeliveryMetrics) IncOTPFailure() {
	if d == nil || d.otpFailures == nil {
		return
	}
	d.otpFailures.Inc()
}

// IncDelivered increments the delivered order counter.
func (d *DeliveryMetrics) IncDelivered() {
	if d == nil || d.delivered == nil {
		return
	}
	d.delivered.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
