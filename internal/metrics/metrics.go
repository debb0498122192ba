package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderflow"

// Metrics owns a private registry so several instances can coexist in tests.
// All Record methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TransitionsTotal   *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	DeletionsTotal     *prometheus.CounterVec
	MediaDeleteErrors  prometheus.Counter
	AutoCompletedTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "transitions_total",
				Help:      "Order status transition attempts by outcome",
			},
			[]string{"from", "to", "result"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "dispatched_total",
				Help:      "Notification dispatch steps by outcome",
			},
			[]string{"stage", "result"},
		),
		DeletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "deletions_total",
				Help:      "Product deletions by scope and outcome",
			},
			[]string{"scope", "outcome"},
		),
		MediaDeleteErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "media_delete_errors_total",
				Help:      "Media objects that could not be deleted",
			},
		),
		AutoCompletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "auto_completed_total",
				Help:      "Orders visited by the auto-complete sweep by outcome",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransitionsTotal,
		m.NotificationsTotal,
		m.DeletionsTotal,
		m.MediaDeleteErrors,
		m.AutoCompletedTotal,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTransition uses result "ok" or the name of the error class.
func (m *Metrics) RecordTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(from, to, result).Inc()
}

func (m *Metrics) RecordNotification(stage, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) RecordDeletion(scope, outcome string) {
	if m == nil {
		return
	}
	m.DeletionsTotal.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) RecordMediaDeleteError() {
	if m == nil {
		return
	}
	m.MediaDeleteErrors.Inc()
}

func (m *Metrics) RecordAutoComplete(result string) {
	if m == nil {
		return
	}
	m.AutoCompletedTotal.WithLabelValues(result).Inc()
}
