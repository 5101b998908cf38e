package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConfigMetrics tracks configuration state per component:
//   - {component}_config_load_timestamp: Unix timestamp of last load
//   - {component}_config_validation_errors_total: validation errors by field
//   - {component}_config_fallbacks_total: fallback operations by field
//   - {component}_config_fallback_active: per-field gauge, 1 while a
//     fallback value is in effect
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        *prometheus.GaugeVec
}

var (
	configMetricsMu       sync.Mutex
	configMetricsRegistry = map[string]*ConfigMetrics{}
)

// NewConfigMetrics registers the configuration metrics for a component on
// the default registry. Repeated calls for the same component return the
// already-registered set, so loaders can be constructed freely.
func NewConfigMetrics(componentName string) *ConfigMetrics {
	configMetricsMu.Lock()
	defer configMetricsMu.Unlock()

	if existing, ok := configMetricsRegistry[componentName]; ok {
		return existing
	}

	m := &ConfigMetrics{
		LoadTimestamp: getOrRegisterGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", componentName),
			Help: "Unix timestamp of the last configuration load",
		}),
		ValidationErrorsTotal: getOrRegisterCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", componentName),
			Help: "Total configuration validation errors by field",
		}, []string{"field"}),
		FallbacksTotal: getOrRegisterCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", componentName),
			Help: "Total configuration fallback operations by field",
		}, []string{"field", "fallback_type"}),
		FallbackActive: getOrRegisterGaugeVec(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", componentName),
			Help: "Whether a fallback value is currently in effect (1) per field",
		}, []string{"field"}),
	}
	configMetricsRegistry[componentName] = m
	return m
}

func getOrRegisterGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge)
		}
	}
	return g
}

func getOrRegisterGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labels)
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
	}
	return g
}

func getOrRegisterCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

// RecordLoadTimestamp marks the configuration as loaded now.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.Set(float64(time.Now().Unix()))
}

// RecordValidationError counts a validation failure for field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts a fallback application for field.
func (m *ConfigMetrics) RecordFallback(field, fallbackType string) {
	m.FallbacksTotal.WithLabelValues(field, fallbackType).Inc()
}

// SetFallbackActive flags whether field currently runs on its fallback.
func (m *ConfigMetrics) SetFallbackActive(field string, active bool) {
	if active {
		m.FallbackActive.WithLabelValues(field).Set(1)
	} else {
		m.FallbackActive.WithLabelValues(field).Set(0)
	}
}
