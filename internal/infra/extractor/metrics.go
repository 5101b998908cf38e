package extractor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExtractionMetricsRecorder abstracts metrics recording so tests can
// inject a mock.
type ExtractionMetricsRecorder interface {
	// RecordExtraction records one extraction call with its provider,
	// wall-clock duration and outcome.
	RecordExtraction(provider string, duration time.Duration, success bool)
}

// PrometheusExtractionMetrics implements ExtractionMetricsRecorder on
// the default Prometheus registry.
type PrometheusExtractionMetrics struct {
	attemptsCounter   *prometheus.CounterVec
	durationHistogram *prometheus.HistogramVec
}

var (
	extractionMetricsInstance *PrometheusExtractionMetrics
	extractionMetricsOnce     sync.Once
)

// NewPrometheusExtractionMetrics returns the process-wide metrics
// recorder. A singleton avoids duplicate registration when multiple
// adapters are constructed (as happens across tests).
func NewPrometheusExtractionMetrics() *PrometheusExtractionMetrics {
	extractionMetricsOnce.Do(func() {
		extractionMetricsInstance = &PrometheusExtractionMetrics{
			attemptsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "readlist_extraction_attempts_total",
				Help: "Total content-extraction attempts by provider and result",
			}, []string{"provider", "result"}),
			durationHistogram: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "readlist_extraction_duration_seconds",
				Help:    "Content-extraction call duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"}),
		}
	})
	return extractionMetricsInstance
}

// RecordExtraction implements ExtractionMetricsRecorder.
func (p *PrometheusExtractionMetrics) RecordExtraction(provider string, duration time.Duration, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	p.attemptsCounter.WithLabelValues(provider, result).Inc()
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}
