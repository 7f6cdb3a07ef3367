package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/lowflow-etl/internal/domain"
	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

// maxRequestBytes bounds a POST /v1/q710 body.
const maxRequestBytes = 32 << 20

// Estimator computes the Q7,10 statistic for one request.
type Estimator interface {
	Estimate(ctx context.Context, req lowflow.Request) (lowflow.Result, error)
}

// Server exposes health, readiness, metrics, and synchronous computation.
type Server struct {
	httpServer *http.Server
	estimator  Estimator
	defaults   lowflow.Params
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /v1/q710 routes. defaults fill parameters a request leaves unset.
func NewServer(addr string, ready sharedobs.ReadinessChecker, estimator Estimator, defaults lowflow.Params, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		estimator: estimator,
		defaults:  defaults,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/q710", s.handleQ710)

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

// handleQ710 answers 200 with an ok result message, 422 with a failed one
// when the computation stops on a fatal condition, and 400 when the body is
// not a flow request.
func (s *Server) handleQ710(w http.ResponseWriter, r *http.Request) {
	var body domain.FlowRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.Join(domain.ErrMalformedRequest, err))
		return
	}
	req, err := body.ToRequest(s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.estimator.Estimate(r.Context(), req)
	if err != nil && r.Context().Err() != nil {
		return
	}
	msg := domain.NewResultMessage(req.StationID, res, err)
	if err != nil {
		s.logger.Warn("q710 request failed", "station_id", req.StationID, "reason", msg.Reason, "error", err)
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, msg)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
