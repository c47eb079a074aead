// Package fetch provides the network-fetch capability injected into the
// extraction engine: a rate-limited, size-capped HTTP GET that decodes the
// response to UTF-8.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	defaultMaxBodyBytes = 5 * 1024 * 1024
	defaultUserAgent    = "medialog/1.0 (+https://github.com/medialoghq/medialog)"
	maxRedirects        = 5
	globalBurst         = 5
	domainRPS           = 1
	domainBurst         = 2
)

var errTooManyRedirects = fmt.Errorf("too many redirects")

// Fetcher performs bounded HTTP GETs. A global limiter smooths overall
// outbound traffic and per-domain limiters keep any single site at one
// request per second.
type Fetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
	userAgent      string
	maxBodyBytes   int64
}

type Options struct {
	RPS          float64
	UserAgent    string
	MaxBodyBytes int64
}

func New(opts Options) *Fetcher {
	if opts.RPS <= 0 {
		opts.RPS = 2
	}

	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	return &Fetcher{
		client: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}

				return nil
			},
		},
		globalLimiter:  rate.NewLimiter(rate.Limit(opts.RPS), globalBurst),
		domainLimiters: make(map[string]*rate.Limiter),
		userAgent:      opts.UserAgent,
		maxBodyBytes:   opts.MaxBodyBytes,
	}
}

// Fetch retrieves rawURL within the given timeout and returns the response
// body decoded to UTF-8, truncated at the configured cap. An oversized
// response is an incomplete fetch, never an unbounded allocation. Non-2xx
// statuses are errors; interpreting the bytes is the caller's concern.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := f.globalLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	if err := f.domainLimiter(rawURL).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, f.maxBodyBytes)

	// Decode legacy charsets to UTF-8 so downstream string scanning sees
	// one encoding. Falls through untouched for UTF-8 and unknown types.
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = limited
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func (f *Fetcher) domainLimiter(rawURL string) *rate.Limiter {
	domain := ""
	if u, err := url.Parse(rawURL); err == nil {
		domain = strings.ToLower(u.Hostname())
	}

	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(domainRPS, domainBurst)
	f.domainLimiters[domain] = limiter

	return limiter
}
