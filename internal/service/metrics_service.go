package service

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the dual-path storage layer.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	storeQueryDuration *prometheus.HistogramVec
	storeQueryErrors   *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
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

	storeQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_query_duration_seconds",
		Help:    "Duration of storage backend operations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})

	storeQueryErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_query_errors_total",
		Help: "Total failed storage backend operations",
	}, []string{"backend", "op"})

	registry.MustRegister(requestDuration, requestTotal, storeQueryDuration, storeQueryErrors)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		storeQueryDuration: storeQueryDuration,
		storeQueryErrors:   storeQueryErrors,
	}
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveStoreQuery records one routed storage operation. Lookup misses
// count as successes; only transport-level failures increment the error
// counter.
func (s *MetricsService) ObserveStoreQuery(backend, op string, duration time.Duration, err error) {
	s.storeQueryDuration.With(prometheus.Labels{"backend": backend, "op": op}).Observe(duration.Seconds())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.storeQueryErrors.With(prometheus.Labels{"backend": backend, "op": op}).Inc()
	}
}

// Handler serves the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}
