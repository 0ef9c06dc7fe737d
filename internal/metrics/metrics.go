// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package metrics holds the Prometheus instrumentation for Sentinel:
// audit ingestion, alert creation, notification delivery, retention and
// the HTTP API. All collectors register with the default registry and are
// exposed by the API at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Audit Metrics
	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit entries recorded",
		},
		[]string{"action", "result"},
	)

	AuditWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_errors_total",
			Help: "Total number of audit entries the store failed to persist",
		},
	)

	AuditCallbackErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_callback_errors_total",
			Help: "Total number of alert callback failures (errors and recovered panics)",
		},
		[]string{"callback"},
	)

	AuditStoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_store_entries",
			Help: "Current number of entries held by the audit store",
		},
	)

	AuditCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_cleanup_deleted_total",
			Help: "Total number of audit entries removed by retention cleanup",
		},
	)

	// Alert Metrics
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "security_alerts_total",
			Help: "Total number of security alerts created",
		},
		[]string{"type", "severity"},
	)

	AlertsCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "security_alerts_cleanup_deleted_total",
			Help: "Total number of resolved alerts removed by retention cleanup",
		},
	)

	RuleEvaluationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_evaluation_errors_total",
			Help: "Total number of alert rule evaluations that returned an error",
		},
		[]string{"rule"},
	)

	// Notification Metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "security_alert_notifications_total",
			Help: "Total number of alert notification attempts by channel and outcome",
		},
		[]string{"channel", "outcome"}, // "success", "failure"
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "security_alert_notification_duration_seconds",
			Help:    "Duration of alert notification sends in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	EventBusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_messages_published_total",
			Help: "Total number of messages published to the event bus",
		},
		[]string{"topic"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordAuditEntry records a successfully stored audit entry.
func RecordAuditEntry(action, result string) {
	AuditEntriesTotal.WithLabelValues(action, result).Inc()
}

// RecordAuditWriteError records a failed audit store write.
func RecordAuditWriteError() {
	AuditWriteErrors.Inc()
}

// RecordCallbackError records a failing alert callback.
func RecordCallbackError(callback string) {
	AuditCallbackErrors.WithLabelValues(callback).Inc()
}

// RecordAlertCreated records a newly created security alert.
func RecordAlertCreated(alertType, severity string) {
	AlertsCreatedTotal.WithLabelValues(alertType, severity).Inc()
}

// RecordRuleError records a rule evaluation failure.
func RecordRuleError(rule string) {
	RuleEvaluationErrors.WithLabelValues(rule).Inc()
}

// RecordNotification records one channel delivery attempt.
func RecordNotification(channel string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	NotificationsTotal.WithLabelValues(channel, outcome).Inc()
	NotificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordCleanup records retention cleanup results.
func RecordCleanup(auditDeleted, alertsDeleted int64) {
	AuditCleanupDeleted.Add(float64(auditDeleted))
	AlertsCleanupDeleted.Add(float64(alertsDeleted))
}

// RecordEventBusPublish records a message published to topic.
func RecordEventBusPublish(topic string) {
	EventBusPublished.WithLabelValues(topic).Inc()
}

// RecordBreakerRequest records a request outcome through the named breaker.
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordBreakerTransition records a breaker state change. state is 0 for
// closed, 1 for half-open and 2 for open.
func RecordBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
