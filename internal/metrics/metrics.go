// Package metrics exposes Prometheus collectors for HTTP traffic, exports
// and the temp-file sweeper.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	exportsTotal   *prometheus.CounterVec
	exportRows     prometheus.Histogram
	exportDuration prometheus.Histogram

	sweepRemoved prometheus.Counter
}

// NewCollector registers every metric under namespace. A nil registry gets
// a fresh one with the Go and process collectors attached.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if namespace == "" {
		namespace = "research"
	}

	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route pattern and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Spreadsheet exports by result (ok, no_definition, error)",
			},
			[]string{"result"},
		),
		exportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_rows",
			Help:      "Data rows per successful export",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16K
		}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time to query, flatten and write one export",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		sweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_sweep_removed_total",
			Help:      "Stale temporary export files removed by the sweeper",
		}),
	}

	registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.exportsTotal,
		c.exportRows,
		c.exportDuration,
		c.sweepRemoved,
	)
	return c
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveExport records one finished export.
func (c *Collector) ObserveExport(result string, rows int, elapsed time.Duration) {
	c.exportsTotal.WithLabelValues(result).Inc()
	c.exportDuration.Observe(elapsed.Seconds())
	if result != "error" {
		c.exportRows.Observe(float64(rows))
	}
}

// ObserveSweep records files removed by one sweep.
func (c *Collector) ObserveSweep(removed int) {
	c.sweepRemoved.Add(float64(removed))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
