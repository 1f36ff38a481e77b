// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exposes Prometheus collectors for HTTP traffic and backend calls.
//
// # Architecture
//
// A [Metrics] value owns its own registry so tests can build independent
// instances. It is constructed once in main and injected where needed.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gukkan"

// Outcome labels for backend calls.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "skipped"
)

// Metrics groups the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	sessions        *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),

		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Backend calls by operation and outcome.",
		}, []string{"operation", "outcome"}),

		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Duration of backend calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11),
		}, []string{"operation"}),

		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "resolutions_total",
			Help:      "Session resolutions by result.",
		}, []string{"result"}),
	}

	metrics.registry.MustRegister(
		metrics.httpInFlight,
		metrics.httpRequests,
		metrics.httpDuration,
		metrics.backendCalls,
		metrics.backendDuration,
		metrics.sessions,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return metrics
}

// Handler returns an HTTP handler exposing the registered collectors.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func (metrics *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/metrics" {
			next.ServeHTTP(writer, request)
			return
		}

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		start := time.Now()

		metrics.httpInFlight.Inc()
		defer metrics.httpInFlight.Dec()

		next.ServeHTTP(recorder, request)

		route := routePattern(request)
		method := strings.ToUpper(request.Method)

		metrics.httpRequests.WithLabelValues(method, route, strconv.Itoa(recorder.status)).Inc()
		metrics.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveBackend records one backend call.
func (metrics *Metrics) ObserveBackend(operation string, err error, duration time.Duration) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	metrics.backendCalls.WithLabelValues(operation, outcome).Inc()
	metrics.backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SkipBackend records a call that was short-circuited before reaching the backend.
func (metrics *Metrics) SkipBackend(operation string) {
	metrics.backendCalls.WithLabelValues(operation, OutcomeEmpty).Inc()
}

// ObserveSession records the result of one session resolution.
func (metrics *Metrics) ObserveSession(result string) {
	metrics.sessions.WithLabelValues(result).Inc()
}

// routePattern prefers the matched chi pattern so path parameters do not
// explode label cardinality.
func routePattern(request *http.Request) string {
	if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
		if pattern := routeContext.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}
