package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse is served at /health for the status CLI command to poll.
type HealthResponse struct {
	Status    string `json:"status"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
}

// Server exposes /metrics and /health over HTTP on the configured port.
type Server struct {
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer builds an HTTP server serving reg's metrics on addr. gatherer is
// typically the prometheus.Registerer passed to NewRegistry, re-used as a
// prometheus.Gatherer.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	startedAt := time.Now()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status:    "healthy",
			StartedAt: startedAt.Format(time.RFC3339),
			Uptime:    time.Since(startedAt).String(),
		})
	})
	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux},
		startedAt:  startedAt,
	}
}

// Serve runs the HTTP server until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
