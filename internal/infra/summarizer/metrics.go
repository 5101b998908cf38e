package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder abstracts metrics recording so backends can share
// one implementation and tests can inject a mock.
type SummaryMetricsRecorder interface {
	// RecordLength records the length of a generated summary in runes.
	RecordLength(length int)

	// RecordDuration records the time taken by one completion API call.
	RecordDuration(duration time.Duration)

	// RecordFailure increments the failed-call counter for a model.
	RecordFailure(model string)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder on the default
// Prometheus registry.
type PrometheusSummaryMetrics struct {
	lengthHistogram   prometheus.Histogram
	durationHistogram prometheus.Histogram
	failureCounter    *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

// NewPrometheusSummaryMetrics returns the process-wide metrics recorder.
// A singleton avoids duplicate registration when multiple backends are
// constructed (as happens across tests).
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "readlist_summary_length_runes",
				Help:    "Distribution of generated summary lengths in Unicode runes",
				Buckets: []float64{50, 100, 200, 300, 500, 800, 1200},
			}),
			durationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "readlist_summarization_duration_seconds",
				Help:    "Time taken for one completion API call",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
			failureCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "readlist_summarization_failures_total",
				Help: "Total failed completion API calls by model",
			}, []string{"model"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordDuration implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// RecordFailure implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordFailure(model string) {
	p.failureCounter.WithLabelValues(model).Inc()
}
