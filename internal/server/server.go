// Package server exposes the extraction engine and the activity relay over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/medialoghq/medialog/internal/activity"
	"github.com/medialoghq/medialog/internal/unfurl"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxRequestBody    = 64 * 1024
)

// Engine is the extraction operation the server exposes.
type Engine interface {
	Extract(ctx context.Context, rawURL string) (*unfurl.Record, error)
}

// ActivityRelay forwards a validated activity record.
type ActivityRelay interface {
	Send(ctx context.Context, rec *activity.Record) error
}

type Server struct {
	engine Engine
	relay  ActivityRelay
	port   int
	logger *zerolog.Logger
}

func New(engine Engine, relay ActivityRelay, port int, logger *zerolog.Logger) *Server {
	return &Server{
		engine: engine,
		relay:  relay,
		port:   port,
		logger: logger,
	}
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Handler builds the route table; split out so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/unfurl", s.instrument("/v1/unfurl", s.handleUnfurl))
	mux.HandleFunc("POST /v1/activity", s.instrument("/v1/activity", s.handleActivity))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type unfurlRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleUnfurl(w http.ResponseWriter, r *http.Request) {
	var req unfurlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())

		return
	}

	if req.URL == "" {
		s.writeError(w, r, http.StatusBadRequest, "url is required")

		return
	}

	rec, err := s.engine.Extract(r.Context(), req.URL)

	var fetchErr *unfurl.FetchError

	switch {
	case errors.As(err, &fetchErr):
		s.writeError(w, r, http.StatusBadGateway, fetchErr.Error())
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, r, http.StatusOK, rec)
	}
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var rec activity.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())

		return
	}

	if err := activity.Validate(&rec); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())

		return
	}

	activity.Normalize(&rec, newRequestID)

	if err := s.relay.Send(r.Context(), &rec); err != nil {
		s.writeError(w, r, http.StatusBadGateway, "activity relay failed")

		return
	}

	s.writeJSON(w, r, http.StatusAccepted, map[string]string{"id": rec.ID})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	s.writeJSON(w, r, code, errorResponse{Error: msg})
}
