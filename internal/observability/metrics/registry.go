// Package metrics provides centralized Prometheus metrics for the reconciler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pass metrics track reconciliation pass activity.
var (
	// PassesTotal counts reconciliation passes by outcome
	// (completed, fetch_failed, skipped).
	PassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlist_passes_total",
			Help: "Total number of reconciliation passes by outcome",
		},
		[]string{"outcome"},
	)

	// PassDuration measures reconciliation pass duration in seconds
	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "readlist_pass_duration_seconds",
			Help:    "Reconciliation pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// EntriesTotal tracks the size of the reading list at pass start
	EntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "readlist_entries_total",
			Help: "Number of reading-list entries seen at the start of the last pass",
		},
	)
)

// Entry metrics track per-entry processing outcomes.
var (
	// EntriesMarkedReadTotal counts read transitions by result
	EntriesMarkedReadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlist_entries_marked_read_total",
			Help: "Total entries transitioned to read, by result",
		},
		[]string{"result"},
	)

	// EntriesDeletedTotal counts deletions by result
	EntriesDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlist_entries_deleted_total",
			Help: "Total entries deleted, by result",
		},
		[]string{"result"},
	)

	// NotificationsTotal counts webhook notifications by result
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlist_notifications_total",
			Help: "Total webhook notifications posted, by result",
		},
		[]string{"result"},
	)
)
