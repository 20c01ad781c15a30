// Package metrics exposes bucketgate request, fetch and listener metrics in
// the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagarc03/bucketgate"
)

const namespace = "bucketgate"

// Registry owns a private prometheus registry with the gateway metrics.
// It implements the http package's Observer interface.
type Registry struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetchOutcomes   *prometheus.CounterVec
	listenerState   *prometheus.GaugeVec
}

// NewRegistry creates a registry with the gateway metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"listener", "method", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"listener", "method"},
		),

		fetchOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "fetch_outcomes_total",
				Help:      "Object fetches by outcome (found, not_found, error)",
			},
			[]string{"listener", "outcome"},
		),

		listenerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "listener",
				Name:      "state",
				Help:      "Listener state (0=starting, 1=serving, 2=stopped, 3=failed)",
			},
			[]string{"listener"},
		),
	}

	r.registry.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.fetchOutcomes,
		r.listenerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveRequest records a finished HTTP request.
func (r *Registry) ObserveRequest(listener, method string, code int, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(listener, method, strconv.Itoa(code)).Inc()
	r.requestDuration.WithLabelValues(listener, method).Observe(elapsed.Seconds())
}

// ObserveFetch records the outcome of an object lookup.
func (r *Registry) ObserveFetch(listener string, kind bucketgate.OutcomeKind) {
	r.fetchOutcomes.WithLabelValues(listener, kind.String()).Inc()
}

// SetListenerState records the lifecycle state of a listener.
func (r *Registry) SetListenerState(listener string, state int) {
	r.listenerState.WithLabelValues(listener).Set(float64(state))
}
