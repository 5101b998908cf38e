package worker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"readlist-reconciler/internal/pkg/config"
)

// Metrics provides Prometheus metrics for the worker component.
// It embeds the shared ConfigMetrics for configuration monitoring and
// adds scheduler-level metrics for cron-triggered passes.
type Metrics struct {
	*config.ConfigMetrics

	// ScheduledRunsTotal counts cron-triggered pass runs by status
	// (success, failure, skipped).
	ScheduledRunsTotal *prometheus.CounterVec

	// ScheduledRunDurationSeconds measures scheduled pass duration.
	ScheduledRunDurationSeconds prometheus.Histogram

	// LastSuccessTimestamp is the Unix time of the last pass that
	// completed without a list-fetch failure.
	LastSuccessTimestamp prometheus.Gauge

	// ManualTriggersTotal counts POST /run requests by status
	// (accepted, conflict).
	ManualTriggersTotal *prometheus.CounterVec
}

var (
	workerMetricsOnce     sync.Once
	workerMetricsInstance *Metrics
)

// NewMetrics returns the worker metrics singleton. Metrics are
// registered with the default Prometheus registry on first call;
// later calls return the same instance so repeated construction in
// tests cannot trigger duplicate registration.
func NewMetrics() *Metrics {
	workerMetricsOnce.Do(func() {
		workerMetricsInstance = &Metrics{
			ConfigMetrics: config.NewConfigMetrics("worker"),

			ScheduledRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "worker_scheduled_runs_total",
				Help: "Total number of cron-triggered reconciliation runs by status",
			}, []string{"status"}),

			ScheduledRunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "worker_scheduled_run_duration_seconds",
				Help:    "Duration of cron-triggered reconciliation runs in seconds",
				Buckets: []float64{1, 5, 30, 60, 300, 900},
			}),

			LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "worker_last_success_timestamp",
				Help: "Unix timestamp of the last successful reconciliation run",
			}),

			ManualTriggersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "worker_manual_triggers_total",
				Help: "Total number of manual trigger requests by status",
			}, []string{"status"}),
		}
	})
	return workerMetricsInstance
}

// RecordScheduledRun increments the scheduled run counter.
// Status is "success", "failure" or "skipped".
func (m *Metrics) RecordScheduledRun(status string) {
	m.ScheduledRunsTotal.WithLabelValues(status).Inc()
}

// RecordScheduledRunDuration observes the duration of one run in seconds.
func (m *Metrics) RecordScheduledRunDuration(seconds float64) {
	m.ScheduledRunDurationSeconds.Observe(seconds)
}

// RecordLastSuccess records the current time as the last successful run.
func (m *Metrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}

// RecordManualTrigger increments the manual trigger counter.
// Status is "accepted" or "conflict".
func (m *Metrics) RecordManualTrigger(status string) {
	m.ManualTriggersTotal.WithLabelValues(status).Inc()
}
