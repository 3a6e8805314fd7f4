// Package httpserver exposes Prometheus metrics, health and crawl status over HTTP
// while a crawl runs.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
	"github.com/custodia-labs/reposcan/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server wires HTTP handlers to the metrics registry and the result query.
type Server struct {
	router chi.Router
	status driving.ResultQuery
	log    *zap.Logger
}

// New constructs a Server. status may be nil, in which case /status is not routed.
func New(status driving.ResultQuery, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	metrics.Init()

	s := &Server{status: status, log: log}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if status != nil {
		r.Get("/status", s.sourceStatus)
	}

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. ln is closed when Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("metrics server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		return err
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	SourceKey string `json:"source_key"`
	Cursor    *int64 `json:"cursor"`
	Results   int    `json:"results"`
}

func (s *Server) sourceStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.status.Status(r.Context())
	if err != nil {
		s.log.Error("status query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := statusResponse{SourceKey: st.SourceKey, Results: st.Results}
	if st.HasCursor {
		resp.Cursor = &st.Cursor
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
