package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth outcomes reported to metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeRateLimited = "rate_limited"
	OutcomeBlocked     = "blocked"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	authAttempts    *prometheus.CounterVec
	archiveEvents   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	journalDropped  prometheus.Counter
}

// NewMetricsService registers the HTTP and domain collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	authAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Authentication attempts by flow and outcome",
	}, []string{"flow", "outcome"})

	archiveEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_transitions_total",
		Help: "Archive and restore transitions by entity kind",
	}, []string{"kind", "action"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Email notifications by template and delivery outcome",
	}, []string{"template", "outcome"})

	journalDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "journal_entries_dropped_total",
		Help: "Activity journal entries that could not be persisted",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, authAttempts, archiveEvents, notifications, journalDropped, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		authAttempts:    authAttempts,
		archiveEvents:   archiveEvents,
		notifications:   notifications,
		journalDropped:  journalDropped,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveAuthAttempt counts one login, OTP or bootstrap attempt.
func (m *MetricsService) ObserveAuthAttempt(flow, outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(flow, outcome).Inc()
}

// ObserveArchiveTransition counts one archive or restore flip.
func (m *MetricsService) ObserveArchiveTransition(kind, action string) {
	if m == nil {
		return
	}
	m.archiveEvents.WithLabelValues(kind, action).Inc()
}

// ObserveNotification counts one notification attempt.
func (m *MetricsService) ObserveNotification(template string, sent bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !sent {
		outcome = OutcomeFailure
	}
	m.notifications.WithLabelValues(template, outcome).Inc()
}

// ObserveJournalDropped counts a journal entry that was lost.
func (m *MetricsService) ObserveJournalDropped() {
	if m == nil {
		return
	}
	m.journalDropped.Inc()
}
