package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shiftslogger"

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide.
type Metrics struct {
	registry     *prometheus.Registry
	authEvents   *prometheus.CounterVec
	shiftEvents  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Account lifecycle events by type.",
		}, []string{"event"}),
		shiftEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shift_events_total",
			Help:      "Shift changes by type.",
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authEvents,
		m.shiftEvents,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Subscribe counts every domain event published on bus.
func (m *Metrics) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(m.countAuthEvent, events.AuthEventTypes...)
	bus.SubscribeAll(m.countShiftEvent, events.ShiftEventTypes...)
}

func (m *Metrics) countAuthEvent(_ context.Context, e events.Event) error {
	m.authEvents.WithLabelValues(e.EventType()).Inc()
	return nil
}

func (m *Metrics) countShiftEvent(_ context.Context, e events.Event) error {
	m.shiftEvents.WithLabelValues(e.EventType()).Inc()
	return nil
}

// Middleware records request count and latency. The route label is the
// chi pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
