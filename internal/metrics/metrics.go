// Package metrics holds the Prometheus counters of the balance jobs.
// The jobs are short-lived, so samples are pushed to a Pushgateway on exit instead of scraped.
package metrics

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "walletbalance"

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics is one job's set of collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	AddressesScanned prometheus.Counter
	BucketsVisited   prometheus.Counter
	BucketsWritten   prometheus.Counter
	JobRuns          *prometheus.CounterVec
	JobDuration      *prometheus.HistogramVec
	LastSuccess      *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		AddressesScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "addresses_scanned_total",
			Help:      "Derived addresses whose balance was queried",
		}),
		BucketsVisited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "buckets_visited_total",
			Help:      "Buckets examined by the aggregator",
		}),
		BucketsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "buckets_written_total",
			Help:      "Bucket totals inserted by the aggregator",
		}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Job runs by outcome",
		}, []string{"job", "status"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of one job run",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}, []string{"job"}),
		LastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}, []string{"job"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records the outcome and duration of a job run.
func (m *Metrics) ObserveRun(job string, seconds float64, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}

	m.JobRuns.WithLabelValues(job, status).Inc()
	m.JobDuration.WithLabelValues(job).Observe(seconds)
	if err == nil {
		m.LastSuccess.WithLabelValues(job).SetToCurrentTime()
	}
}

// Push sends every collected sample to the Pushgateway at url, grouped under job.
// An empty url disables pushing.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}

	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return errors.Wrapf(err, "push metrics to %s", url)
	}

	return nil
}
