package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the prometheus collectors used across the service.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	feedEventsTotal *prometheus.CounterVec
	wsConnections   prometheus.Gauge
}

// NewMetrics creates and registers collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_errors_total",
			Help: "Application errors by path, method and code.",
		}, []string{"path", "method", "code"}),
		feedEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_feed_events_total",
			Help: "Change feed events published, by channel kind and op.",
		}, []string{"kind", "op"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "helpdesk_ws_connections",
			Help: "Open websocket gateway connections.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.requestDuration, m.errorsTotal, m.feedEventsTotal, m.wsConnections)
	}
	return m
}

// RecordRequest observes a completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts an application error.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordFeedEvent counts a published change feed event.
func (m *Metrics) RecordFeedEvent(kind, op string) {
	if m == nil {
		return
	}
	m.feedEventsTotal.WithLabelValues(kind, op).Inc()
}

// WSConnOpened tracks a new gateway connection.
func (m *Metrics) WSConnOpened() {
	if m == nil {
		return
	}
	m.wsConnections.Inc()
}

// WSConnClosed tracks a closed gateway connection.
func (m *Metrics) WSConnClosed() {
	if m == nil {
		return
	}
	m.wsConnections.Dec()
}
