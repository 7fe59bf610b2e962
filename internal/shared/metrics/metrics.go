package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the process metrics.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "route"})

	applicationEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "applications_events_total",
		Help: "Application lifecycle events.",
	}, []string{"event"})

	resumeEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resumes_events_total",
		Help: "Resume lifecycle events.",
	}, []string{"event"})

	adminLookups = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "permissions_admin_lookups_total",
		Help: "Backend round trips made to resolve admin status.",
	})

	liveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "live_sessions",
		Help: "Open live view sessions.",
	})

	authFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_failures_total",
		Help: "Failed authentication attempts by reason.",
	}, []string{"reason"})
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		applicationEvents,
		resumeEvents,
		adminLookups,
		liveSessions,
		authFailures,
		collectors.NewGoCollector(),
	)
}

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(float64(elapsed.Microseconds()) / 1000.0)
}

// IncApplication counts an application event (created, updated, deleted).
func IncApplication(event string) {
	applicationEvents.WithLabelValues(event).Inc()
}

// IncResume counts a resume event (uploaded, deleted, default_set).
func IncResume(event string) {
	resumeEvents.WithLabelValues(event).Inc()
}

// IncAdminLookup counts an admin-status round trip.
func IncAdminLookup() {
	adminLookups.Inc()
}

// LiveSessionOpened and LiveSessionClosed track open live views.
func LiveSessionOpened() { liveSessions.Inc() }

func LiveSessionClosed() { liveSessions.Dec() }

// IncAuthFailure counts a failed authentication by reason.
func IncAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
