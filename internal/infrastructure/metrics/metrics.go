package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/ports"
)

// Metrics holds the Prometheus collectors for the API and the document store
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	documentLoads   *prometheus.CounterVec
	documentRepairs *prometheus.CounterVec
}

var _ ports.StoreObserver = (*Metrics)(nil)

// New creates collectors registered on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		documentLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chordcraft_document_loads_total",
				Help: "Document loads by outcome",
			},
			[]string{"outcome"},
		),
		documentRepairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chordcraft_document_repairs_total",
				Help: "Repairs applied while normalizing the document",
			},
			[]string{"collection", "repair"},
		),
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.documentLoads, m.documentRepairs)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies by route
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				path,
			).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// DocumentLoaded counts a document load by outcome
func (m *Metrics) DocumentLoaded(outcome entities.LoadOutcome) {
	m.documentLoads.WithLabelValues(string(outcome)).Inc()
}

// DocumentRepaired counts each repair in report
func (m *Metrics) DocumentRepaired(report ports.NormalizeReport) {
	for _, kind := range report.CreatedCollections {
		m.documentRepairs.WithLabelValues(kind.Collection(), "collection_created").Inc()
	}
	for _, change := range report.ReassignedIDs {
		m.documentRepairs.WithLabelValues(change.Kind.Collection(), "id_reassigned").Inc()
	}
	for _, repair := range report.RepairedFields {
		m.documentRepairs.WithLabelValues(repair.Kind.Collection(), repair.Field+"_repaired").Inc()
	}
}
