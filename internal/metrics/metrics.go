package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notes"

// Metrics holds Prometheus metrics for the web frontend.
type Metrics struct {
	registry *prometheus.Registry

	APIRequests     *prometheus.CounterVec
	APIDuration     *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	LiveConnections prometheus.Gauge
}

// New creates a metrics set on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Outbound notes API requests by operation and result",
			},
			[]string{"operation", "status"},
		),
		APIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Outbound notes API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Inbound page requests by route and status code",
			},
			[]string{"route", "code"},
		),
		LiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "live",
				Name:      "connections",
				Help:      "Open live page connections",
			},
		),
	}
}

// ObserveAPI records one outbound call. A nil receiver is a no-op.
func (m *Metrics) ObserveAPI(operation, status string, started time.Time) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(operation, status).Inc()
	m.APIDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// LiveOpened and LiveClosed track websocket connections. Nil-safe.
func (m *Metrics) LiveOpened() {
	if m != nil {
		m.LiveConnections.Inc()
	}
}

func (m *Metrics) LiveClosed() {
	if m != nil {
		m.LiveConnections.Dec()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts inbound requests by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
