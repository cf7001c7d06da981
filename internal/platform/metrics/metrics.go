// Package metrics exposes Prometheus instruments for the matching core, the
// HTTP adapter and the background task pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lifeline"

// Registry owns a private Prometheus registry so tests and multiple
// instances never collide on the global one.
type Registry struct {
	reg *prometheus.Registry

	operations    *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	modelVersion  *prometheus.GaugeVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	tasks         *prometheus.CounterVec
	taskQueueSize prometheus.Gauge
}

// New creates a Registry with every instrument registered. Go runtime and
// process collectors are included.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Matching facade operations by outcome.",
		}, []string{"operation", "outcome"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Matching facade operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		modelVersion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_model_version",
			Help:      "Version of the published forecast model.",
		}, []string{"model"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Background tasks by type and final status.",
		}, []string{"type", "status"}),
		taskQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_queue_depth",
			Help:      "Tasks waiting in the in-memory queue.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.operations, r.opDuration, r.modelVersion,
		r.httpRequests, r.httpDuration,
		r.tasks, r.taskQueueSize,
	)
	return r
}

// ObserveOperation records one facade call.
func (r *Registry) ObserveOperation(op, outcome string, elapsed time.Duration) {
	r.operations.WithLabelValues(op, outcome).Inc()
	r.opDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetModelVersion publishes the version of the active forecast model.
func (r *Registry) SetModelVersion(name string, version int) {
	r.modelVersion.WithLabelValues(name).Set(float64(version))
}

// ObserveHTTP records one HTTP request. route should be the route pattern,
// not the raw path, to keep label cardinality bounded.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveTask records a background task reaching a final status.
func (r *Registry) ObserveTask(taskType, status string) {
	r.tasks.WithLabelValues(taskType, status).Inc()
}

// SetQueueDepth publishes the current task queue depth.
func (r *Registry) SetQueueDepth(n int) {
	r.taskQueueSize.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
