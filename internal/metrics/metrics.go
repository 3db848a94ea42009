// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskservice"

var (
	// AuthEvents counts signup, login and verify attempts by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Authentication events by kind and outcome.",
	}, []string{"event", "outcome"})

	// TaskOperations counts task store calls made through the gateway.
	TaskOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_operations_total",
		Help:      "Task operations by kind and outcome.",
	}, []string{"op", "outcome"})

	// HTTPDuration observes request latency per route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	// RemindersSent counts digest emails.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_sent_total",
		Help:      "Due-task digest emails by outcome.",
	}, []string{"outcome"})
)

// Outcome turns an error into a low-cardinality label
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
