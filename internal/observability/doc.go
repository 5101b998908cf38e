// Package observability provides the worker's observability
// infrastructure: structured logging and Prometheus metrics.
//
// Subpackages:
//   - logging: structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "readlist-reconciler/internal/observability/logging"
//	    "readlist-reconciler/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("worker started")
//
//	    recorder := metrics.NewRecorder()
//	    recorder.RecordPass(stats)
//	}
package observability
