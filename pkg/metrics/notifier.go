package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotifierMetrics records outbox publishing and email dispatch outcomes.
type NotifierMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewNotifierMetrics registers the notifier metrics on the provided registerer.
func NewNotifierMetrics(reg prometheus.Registerer) *NotifierMetrics {
	if reg == nil {
		return &NotifierMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notifier_dispatch_duration_seconds",
		Help:    "Duration of notification dispatch attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_dispatch_success_total",
		Help: "Successful notification dispatches.",
	}, []string{"event_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_dispatch_failure_total",
		Help: "Failed notification dispatches.",
	}, []string{"event_type"})
	reg.MustRegister(duration, success, failure)
	return &NotifierMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDispatch records the duration for the event type.
func (n *NotifierMetrics) ObserveDispatch(eventType string, duration time.Duration) {
	if n == nil || n.duration == nil {
		return
	}
	n.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the event type.
func (n *NotifierMetrics) IncSuccess(eventType string) {
	if n == nil || n.success == nil {
		return
	}
	n.success.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailure increments the failure counter for the event type.
func (n *NotifierMetrics) IncFailure(eventType string) {
	if n == nil || n.failure == nil {
		return
	}
	n.failure.WithLabelValues(normalizeLabel(eventType)).Inc()
}
