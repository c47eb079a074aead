// Package unfurl extracts normalized metadata records from arbitrary web
// URLs without API keys or authenticated endpoints. Recognized video
// platform links go through an authoritative lightweight lookup plus
// layered page fallbacks; everything else goes through a generic
// article-oriented strategy. Extraction is best-effort: deeper failures
// degrade to missing fields, never to errors.
package unfurl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medialoghq/medialog/internal/observability"
)

const (
	defaultOEmbedTimeout = 5 * time.Second
	defaultPageTimeout   = 20 * time.Second

	statusOK    = "ok"
	statusError = "error"
)

var errEmptyBody = errors.New("empty response body")

// Fetcher is the injected network-fetch capability: one URL in, raw
// response bytes out, bounded by the given timeout.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error)
}

// FetchError reports that the page retrieval obtained no content at all.
// It is the only error Extract returns; field-level misses are absorbed
// into partial records.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Engine dispatches URLs to the matching extraction strategy. It holds no
// state between calls beyond the injected fetcher, so concurrent
// extractions are safe by construction.
type Engine struct {
	fetcher        Fetcher
	logger         *zerolog.Logger
	oembedEndpoint string
	oembedTimeout  time.Duration
	pageTimeout    time.Duration
}

// Options tune the engine's two outbound reads. Zero values fall back to
// defaults.
type Options struct {
	// OEmbedEndpoint overrides the authoritative lookup endpoint; used by
	// tests to point at a stub server.
	OEmbedEndpoint string
	OEmbedTimeout  time.Duration
	PageTimeout    time.Duration
}

func New(fetcher Fetcher, opts Options, logger *zerolog.Logger) *Engine {
	if opts.OEmbedEndpoint == "" {
		opts.OEmbedEndpoint = defaultOEmbedEndpoint
	}

	if opts.OEmbedTimeout <= 0 {
		opts.OEmbedTimeout = defaultOEmbedTimeout
	}

	if opts.PageTimeout <= 0 {
		opts.PageTimeout = defaultPageTimeout
	}

	return &Engine{
		fetcher:        fetcher,
		logger:         logger,
		oembedEndpoint: opts.OEmbedEndpoint,
		oembedTimeout:  opts.OEmbedTimeout,
		pageTimeout:    opts.PageTimeout,
	}
}

// Extract classifies the URL, runs the matching strategy and returns a
// fresh record. It fails only with *FetchError, when the page retrieval
// yields no bytes; an empty or unparseable page still produces a (possibly
// sparse) record.
func (e *Engine) Extract(ctx context.Context, rawURL string) (*Record, error) {
	if videoID, ok := youtubeVideoID(rawURL); ok {
		return e.extractVideo(ctx, rawURL, videoID)
	}

	return e.extractArticle(ctx, rawURL)
}

func (e *Engine) extractVideo(ctx context.Context, rawURL, videoID string) (*Record, error) {
	rec := &Record{URL: rawURL, Kind: KindVideo, VideoID: videoID}

	e.seedFromOEmbed(ctx, rec)

	body, err := e.fetchPage(ctx, rawURL)
	if err != nil {
		observability.ExtractionsTotal.WithLabelValues(string(KindVideo), statusError).Inc()

		return nil, err
	}

	fillVideoFromPage(rec, body, e.logger)
	observability.ExtractionsTotal.WithLabelValues(string(KindVideo), statusOK).Inc()

	return rec, nil
}

func (e *Engine) extractArticle(ctx context.Context, rawURL string) (*Record, error) {
	body, err := e.fetchPage(ctx, rawURL)
	if err != nil {
		observability.ExtractionsTotal.WithLabelValues(string(KindArticle), statusError).Inc()

		return nil, err
	}

	rec := extractArticle(body, rawURL, e.logger)
	observability.ExtractionsTotal.WithLabelValues(string(KindArticle), statusOK).Inc()

	return rec, nil
}

// fetchPage performs the single full-page read. No bytes at all means no
// strategy can produce a record, so the failure is surfaced rather than
// swallowed.
func (e *Engine) fetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()

	body, err := e.fetcher.Fetch(ctx, rawURL, e.pageTimeout)

	observability.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	if len(body) == 0 {
		return nil, &FetchError{URL: rawURL, Err: errEmptyBody}
	}

	return body, nil
}
