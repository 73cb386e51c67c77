// Package metrics owns the Prometheus registry of the service.
//
// Infrastructure packages record HTTP, database, queue and cache timings;
// the inventory services record orders, reservations, payments, alerts and
// report latency.
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bodega"

// Registry carries the runtime and process collectors and every instrument
// declared in this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MustRegister adds collectors owned by other packages, such as the gRPC
// server counters.
func MustRegister(c ...prometheus.Collector) { Registry.MustRegister(c...) }

// Handler serves the exposition page.
func Handler() http.HandlerFunc {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true}).ServeHTTP
}

var (
	dbQueryDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "db", Name: "query_duration_seconds",
		Help:    "SQL statement latency by operation.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .5, 1},
	}, []string{"operation"})

	dbQueryErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "db", Name: "query_errors_total",
		Help: "SQL statements that failed, by operation.",
	}, []string{"operation"})

	queueJobs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "queue", Name: "jobs_processed_total",
		Help: "Background jobs handled, by job and outcome.",
	}, []string{"job_type", "status"})

	queueJobDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "queue", Name: "job_duration_seconds",
		Help: "Background job run time.",
	}, []string{"job_type"})

	// CacheHits and CacheMisses count report cache lookups by driver.
	CacheHits = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "hits_total",
		Help: "Report cache hits.",
	}, []string{"driver"})
	CacheMisses = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "misses_total",
		Help: "Report cache misses.",
	}, []string{"driver"})
)

// ObserveDBQuery records one statement; operation is select, insert,
// update, delete or other.
func ObserveDBQuery(operation string, elapsed time.Duration, err error) {
	dbQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordQueueJob records a job outcome, success or failed.
func RecordQueueJob(jobType, status string, start time.Time) {
	queueJobs.WithLabelValues(jobType, status).Inc()
	queueJobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}
