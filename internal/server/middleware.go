package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/medialoghq/medialog/internal/observability"
)

const requestIDHeader = "X-Request-Id"

func newRequestID() string {
	return uuid.NewString()
}

// statusRecorder captures the written status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument tags each request with an id, logs it and records metrics.
func (s *Server) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}

		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next(rec, r)

		elapsed := time.Since(start)

		observability.HTTPRequests.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())

		s.logger.Info().
			Str("request_id", requestID).
			Str("path", path).
			Int("status", rec.status).
			Dur("duration", elapsed).
			Msg("request handled")
	}
}
