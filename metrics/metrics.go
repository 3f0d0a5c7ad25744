// Package metrics exports readiness and query-loop progress to Prometheus.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/dbwait/readiness"
)

// Collector implements readiness.Observer and poller.QueryObserver.
type Collector struct {
	attempts      *prometheus.CounterVec
	failures      *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	state         *prometheus.GaugeVec
	timeToReady   *prometheus.HistogramVec
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	requests      *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// NewCollector registers the collector's metrics on a fresh registry. The
// namespace is sanitized for Prometheus (hyphens become underscores).
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	c := newCollector(strings.ReplaceAll(namespace, "-", "_"))
	reg.MustRegister(
		c.attempts, c.failures, c.outcomes, c.state, c.timeToReady, c.queries, c.queryDuration, c.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.gatherer = reg
	return c
}

func newCollector(ns string) *Collector {
	return &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "readiness_attempts_total",
			Help:      "Connection attempts made while waiting for a dependency.",
		}, []string{"target"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "readiness_failures_total",
			Help:      "Connection attempts that failed.",
		}, []string{"target"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "readiness_outcomes_total",
			Help:      "Terminal outcomes of readiness waits.",
		}, []string{"target", "outcome"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "readiness_ready",
			Help:      "1 once the dependency became ready, 0 otherwise.",
		}, []string{"target"}),
		timeToReady: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "readiness_wait_seconds",
			Help:      "Time from the first attempt to the terminal outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 150, 300},
		}, []string{"target", "outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "poller_queries_total",
			Help:      "Queries run by the poller.",
		}, []string{"query", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "poller_query_duration_seconds",
			Help:      "Poller query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Requests served by the health endpoints.",
		}, []string{"code", "method"}),
	}
}

// Observe implements readiness.Observer.
func (c *Collector) Observe(e readiness.Event) {
	switch e.Kind {
	case readiness.EventAttempt:
		c.attempts.WithLabelValues(e.Target).Inc()
		c.state.WithLabelValues(e.Target).Set(0)
	case readiness.EventFailure:
		c.failures.WithLabelValues(e.Target).Inc()
	case readiness.EventReady, readiness.EventExhausted, readiness.EventCanceled:
		outcome := e.Kind.String()
		c.outcomes.WithLabelValues(e.Target, outcome).Inc()
		c.timeToReady.WithLabelValues(e.Target, outcome).Observe(e.Elapsed.Seconds())
		if e.Kind == readiness.EventReady {
			c.state.WithLabelValues(e.Target).Set(1)
		} else {
			c.state.WithLabelValues(e.Target).Set(0)
		}
	}
}

// ObserveQuery implements poller.QueryObserver.
func (c *Collector) ObserveQuery(name string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.queries.WithLabelValues(name, status).Inc()
	c.queryDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Instrument counts the requests served by next by status code and method.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(c.requests, next)
}
