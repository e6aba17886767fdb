// Package metrics exposes run counters for the sweeper. The sweeper is a
// batch job, so instead of serving a scrape endpoint the collected metrics
// are pushed to a Pushgateway at the end of the run when one is configured.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/catcord/sweeper/internal/sweep"
)

type Metrics struct {
	registry *prometheus.Registry

	evictedTotal     *prometheus.CounterVec
	freedBytesTotal  *prometheus.CounterVec
	failuresTotal    *prometheus.CounterVec
	roomsSyncedTotal *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
}

// New creates the sweeper's metric set on a private registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		evictedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evicted_total",
				Help:      "Total number of uploads evicted",
			},
			[]string{"trigger"},
		),
		freedBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "freed_bytes_total",
				Help:      "Total bytes reclaimed from the media store",
			},
			[]string{"trigger"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Recovered per-item failures by stage",
			},
			[]string{"stage"},
		),
		roomsSyncedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rooms_synced_total",
				Help:      "Rooms visited during ingest sync",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of a full run",
				Buckets:   prometheus.ExponentialBuckets(0.1, 3, 10),
			},
			[]string{"trigger"},
		),
	}

	registry.MustRegister(m.evictedTotal, m.freedBytesTotal, m.failuresTotal, m.roomsSyncedTotal, m.runDuration)
	return m
}

// RecordRun folds a finished run's totals into the counters.
func (m *Metrics) RecordRun(trigger sweep.Trigger, stats sweep.Stats, durationSeconds float64) {
	label := string(trigger)
	m.evictedTotal.WithLabelValues(label).Add(float64(stats.DeletedCount))
	m.freedBytesTotal.WithLabelValues(label).Add(float64(stats.FreedBytes))
	m.failuresTotal.WithLabelValues("redact").Add(float64(stats.SkippedCount))
	m.failuresTotal.WithLabelValues("file_delete").Add(float64(stats.FileFailures))
	m.roomsSyncedTotal.WithLabelValues("ok").Add(float64(stats.RoomsSynced))
	m.roomsSyncedTotal.WithLabelValues("failed").Add(float64(stats.RoomsFailed))
	m.runDuration.WithLabelValues(label).Observe(durationSeconds)
}

// Push delivers the collected metrics to a Pushgateway. The grouping key is
// the job name only; the sweeper is single-instance.
func (m *Metrics) Push(gatewayURL, jobName string) error {
	if err := push.New(gatewayURL, jobName).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
