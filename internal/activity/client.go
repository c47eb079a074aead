package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/medialoghq/medialog/internal/observability"
)

const (
	defaultRelayTimeout = 10 * time.Second

	statusOK    = "ok"
	statusError = "error"
)

// Relay forwards validated activity records to the remote activity
// service. One POST per record, no retries; a failed relay is reported
// once to the caller.
type Relay struct {
	client   *http.Client
	endpoint string
	token    string
	logger   *zerolog.Logger
}

func NewRelay(endpoint, token string, timeout time.Duration, logger *zerolog.Logger) *Relay {
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}

	return &Relay{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		token:    token,
		logger:   logger,
	}
}

// Send posts the record as JSON to the configured endpoint.
func (r *Relay) Send(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		observability.ActivityRelayed.WithLabelValues(statusError).Inc()
		r.logger.Warn().Err(err).Str("record_id", rec.ID).Msg("activity relay failed")

		return fmt.Errorf("relay: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		observability.ActivityRelayed.WithLabelValues(statusError).Inc()
		r.logger.Warn().Int("status", resp.StatusCode).Str("record_id", rec.ID).Msg("activity relay rejected")

		return fmt.Errorf("relay: HTTP %d", resp.StatusCode)
	}

	observability.ActivityRelayed.WithLabelValues(statusOK).Inc()

	return nil
}
