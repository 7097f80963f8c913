package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private prometheus registry with HTTP and complaint domain series.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	complaintsCreated   prometheus.Counter
	statusTransitions   *prometheus.CounterVec
	trackingCollisions  prometheus.Counter
	trackingExhausted   prometheus.Counter
	feedbackSubmissions *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by domain error code.",
		}, []string{"method", "path", "code"}),
		complaintsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Complaints submitted by citizens.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_status_transitions_total",
			Help: "Committed complaint status transitions.",
		}, []string{"from", "to"}),
		trackingCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_code_collisions_total",
			Help: "Generated tracking codes that already existed.",
		}),
		trackingExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_code_exhausted_total",
			Help: "Tracking code generations that ran out of attempts.",
		}),
		feedbackSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Feedback upserts by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.httpErrors,
		m.complaintsCreated,
		m.statusTransitions,
		m.trackingCollisions,
		m.trackingExhausted,
		m.feedbackSubmissions,
		m.cacheLookups,
	)
	return m
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(method, path, code).Inc()
}

func (m *Metrics) ComplaintCreated() {
	if m == nil {
		return
	}
	m.complaintsCreated.Inc()
}

func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) TrackingCodeCollision() {
	if m == nil {
		return
	}
	m.trackingCollisions.Inc()
}

func (m *Metrics) TrackingCodeExhausted() {
	if m == nil {
		return
	}
	m.trackingExhausted.Inc()
}

// FeedbackSubmitted records an upsert; created distinguishes inserts from overwrites.
func (m *Metrics) FeedbackSubmitted(created bool) {
	if m == nil {
		return
	}
	outcome := "updated"
	if created {
		outcome = "created"
	}
	m.feedbackSubmissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}
