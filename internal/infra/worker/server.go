package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"readlist-reconciler/internal/usecase/reconcile"
)

// PassRunner runs one reconciliation pass. A nil result means the
// pass was skipped because another pass was already in flight.
type PassRunner interface {
	RunPass(ctx context.Context) *reconcile.PassStats
}

// Server is the worker's HTTP surface: health probes and a manual
// trigger endpoint.
//
// Endpoints:
//   - GET  /health:       liveness probe (always 200 OK)
//   - GET  /health/ready: readiness probe (200 if ready, 503 if not)
//   - POST /run:          run a pass now; 202 with pass stats, or 409
//     when a pass is already in flight
//
// The server supports graceful shutdown via context cancellation.
type Server struct {
	addr        string
	logger      *slog.Logger
	runner      PassRunner
	metrics     *Metrics
	passTimeout time.Duration
	isReady     *atomic.Bool
	server      *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewServer creates the health/trigger server. The server is not
// started and reports not-ready until SetReady(true).
func NewServer(addr string, runner PassRunner, passTimeout time.Duration, metrics *Metrics, logger *slog.Logger) *Server {
	isReady := &atomic.Bool{}
	isReady.Store(false)

	return &Server{
		addr:        addr,
		logger:      logger,
		runner:      runner,
		metrics:     metrics,
		passTimeout: passTimeout,
		isReady:     isReady,
	}
}

// Start runs the HTTP server until the context is cancelled or the
// listener fails. Graceful shutdown waits up to 5 seconds.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/run", s.handleRun)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: s.passTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("worker http server starting", slog.String("addr", s.addr))
		if err := s.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("worker http server shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("worker http server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if err != http.ErrServerClosed {
			s.logger.Error("worker http server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady sets the readiness state reported by /health/ready.
func (s *Server) SetReady(ready bool) {
	s.isReady.Store(ready)
	s.logger.Info("worker readiness changed", slog.Bool("ready", ready))
}

// Handler returns the route table without starting a listener.
// Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/run", s.handleRun)
	return mux
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"}, s.logger)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.isReady.Load() {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"}, s.logger)
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"}, s.logger)
}

// handleRun runs a reconciliation pass synchronously and returns its
// stats. When another pass holds the run lock the request is rejected
// with 409 Conflict.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.passTimeout)
	defer cancel()

	s.logger.Info("manual reconciliation run requested")
	stats := s.runner.RunPass(ctx)
	if stats == nil {
		if s.metrics != nil {
			s.metrics.RecordManualTrigger("conflict")
		}
		writeJSON(w, http.StatusConflict, healthResponse{Status: "pass already in progress"}, s.logger)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordManualTrigger("accepted")
	}
	writeJSON(w, http.StatusAccepted, stats, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}
