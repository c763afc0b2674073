package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SnapshotProvider exposes the most recently loaded table.
type SnapshotProvider interface {
	ReadinessChecker
	Snapshot() *pipeline.Snapshot
}

// Server exposes the dashboard, its JSON and export endpoints, and the
// health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotProvider
	exports    *renderCache
	logger     *slog.Logger
}

// NewServer creates an HTTP server backed by the given snapshot provider.
func NewServer(addr string, snapshots SnapshotProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		exports:   newRenderCache(exportCacheEntries),
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/table", s.withSnapshot(s.handleTable))
	mux.HandleFunc("GET /api/wind", s.withSnapshot(s.handleWind))
	mux.HandleFunc("GET /api/issues", s.withSnapshot(s.handleIssues))
	mux.HandleFunc("GET /api/charts/wind", s.withSnapshot(s.handleWindChart))
	mux.HandleFunc("GET /api/charts/snow", s.withSnapshot(s.handleSnowChart))
	mux.HandleFunc("GET /export/table.csv", s.withSnapshot(s.handleExportTableCSV))
	mux.HandleFunc("GET /export/wind.csv", s.withSnapshot(s.handleExportWindCSV))
	mux.HandleFunc("GET /export/table.xlsx", s.withSnapshot(s.handleExportTableXLSX))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(snapshots))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot)

// withSnapshot answers 503 until the first load has succeeded.
func (s *Server) withSnapshot(h snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.snapshots.Snapshot()
		if snap == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "no snapshot loaded yet",
			})
			return
		}
		h(w, r, snap)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client disconnects are not actionable
}
