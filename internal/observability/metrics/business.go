package metrics

import (
	"readlist-reconciler/internal/usecase/reconcile"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Recorder adapts the package-level metrics to the reconcile service's
// MetricsRecorder interface.
type Recorder struct{}

// NewRecorder returns the pass-metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordPass records the stats of one completed reconciliation pass.
func (r *Recorder) RecordPass(stats *reconcile.PassStats) {
	outcome := "completed"
	if stats.FetchFailed {
		outcome = "fetch_failed"
	}
	PassesTotal.WithLabelValues(outcome).Inc()
	PassDuration.Observe(stats.Duration.Seconds())
	EntriesTotal.Set(float64(stats.TotalEntries))

	EntriesMarkedReadTotal.WithLabelValues(resultSuccess).Add(float64(stats.MarkedRead))
	EntriesMarkedReadTotal.WithLabelValues(resultFailure).Add(float64(stats.ReadFailures))
	EntriesDeletedTotal.WithLabelValues(resultSuccess).Add(float64(stats.Deleted))
	EntriesDeletedTotal.WithLabelValues(resultFailure).Add(float64(stats.DeleteFailures))
	NotificationsTotal.WithLabelValues(resultSuccess).Add(float64(stats.NotificationsSent))
	NotificationsTotal.WithLabelValues(resultFailure).Add(float64(stats.NotifyFailures))
}

// RecordSkippedPass counts a pass skipped by the overlap guard.
func RecordSkippedPass() {
	PassesTotal.WithLabelValues("skipped").Inc()
}
