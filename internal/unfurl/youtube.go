package unfurl

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medialoghq/medialog/internal/observability"
)

const (
	defaultOEmbedEndpoint = "https://www.youtube.com/oembed"
	youtubeTitleSuffix    = " - YouTube"
	youtubeWatchBase      = "https://www.youtube.com/watch?v="

	// clientStateScanWindow bounds the balanced-brace scan for the embedded
	// client-state block. The block sits near the top of the page, but the
	// exact offset varies; any bound that prevents an unbounded scan works.
	clientStateScanWindow = 2 << 20
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// youtubeVideoID classifies a URL as a YouTube video link and extracts the
// identifier. Canonical watch links, short links, shorts, embeds and live
// links all map to the same identifier space.
func youtubeVideoID(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		if parsed.Path == "/watch" {
			return validVideoID(parsed.Query().Get("v"))
		}

		for _, prefix := range []string{"/shorts/", "/embed/", "/live/", "/v/"} {
			if rest, ok := strings.CutPrefix(parsed.Path, prefix); ok {
				id, _, _ := strings.Cut(rest, "/")

				return validVideoID(id)
			}
		}
	case "youtu.be":
		id := strings.TrimPrefix(parsed.Path, "/")
		id, _, _ = strings.Cut(id, "/")

		return validVideoID(id)
	}

	return "", false
}

func validVideoID(id string) (string, bool) {
	if videoIDRe.MatchString(id) {
		return id, true
	}

	return "", false
}

// oembedResponse is the subset of the oEmbed document the lookup consumes.
type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// seedFromOEmbed runs the authoritative lightweight lookup and seeds the
// record from its response. Any failure (network, non-JSON, timeout) is
// treated as "no data from this source"; the page fallbacks cover the rest.
func (e *Engine) seedFromOEmbed(ctx context.Context, rec *Record) {
	lookupURL := e.oembedEndpoint + "?format=json&url=" + url.QueryEscape(youtubeWatchBase+rec.VideoID)

	body, err := e.fetcher.Fetch(ctx, lookupURL, e.oembedTimeout)
	if err != nil {
		observability.OEmbedLookups.WithLabelValues(statusError).Inc()
		e.logger.Debug().Err(err).Str("video_id", rec.VideoID).Msg("oEmbed lookup failed")

		return
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		observability.OEmbedLookups.WithLabelValues(statusError).Inc()
		e.logger.Debug().Err(err).Str("video_id", rec.VideoID).Msg("oEmbed response not JSON")

		return
	}

	observability.OEmbedLookups.WithLabelValues(statusOK).Inc()

	rec.Title = CleanText(resp.Title)
	rec.ChannelName = CleanText(resp.AuthorName)
	rec.ChannelURL = strings.TrimSpace(resp.AuthorURL)
	rec.ImageURL = strings.TrimSpace(resp.ThumbnailURL)
}

var viewCountKeyRe = regexp.MustCompile(`"viewCount"\s*:\s*"?(\d+)"?`)

// scanViewCountKey scans the whole body for viewCount keys and returns the
// first strictly-positive match; zero and malformed matches are skipped.
func scanViewCountKey(markup string) (int64, bool) {
	for _, m := range viewCountKeyRe.FindAllStringSubmatch(markup, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil && n > 0 {
			return n, true
		}
	}

	return 0, false
}

// clientStateMarkers locate the embedded client-state JSON block.
var clientStateMarkers = []string{
	"var ytInitialData = ",
	`window["ytInitialData"] = `,
}

// clientStateViewCountPaths are the two alternate nested paths to the view
// count inside the client-state block. Both values are textual
// ("1,234,567 views", "1.2M views").
var clientStateViewCountPaths = []string{
	"contents.twoColumnWatchNextResults.results.results.contents.#.videoPrimaryInfoRenderer.viewCount.videoViewCountRenderer.viewCount.simpleText",
	"contents.twoColumnWatchNextResults.results.results.contents.#.videoPrimaryInfoRenderer.viewCount.videoViewCountRenderer.shortViewCount.simpleText",
}

// clientStateViewCount reads the view count out of the embedded client-state
// block. A missing or malformed block yields (0, false) and never aborts the
// remaining fallbacks.
func clientStateViewCount(markup string) (int64, bool) {
	block, ok := clientStateBlock(markup)
	if !ok {
		return 0, false
	}

	for _, path := range clientStateViewCountPaths {
		for _, item := range gjsonPathStrings(block, path) {
			if n, parsed := ParseAbbreviatedCount(item); parsed && n > 0 {
				return n, true
			}
		}
	}

	return 0, false
}

func clientStateBlock(markup string) (string, bool) {
	for _, marker := range clientStateMarkers {
		idx := strings.Index(markup, marker)
		if idx == -1 {
			continue
		}

		if block, ok := balancedJSONObject(markup, idx+len(marker), clientStateScanWindow); ok {
			return block, true
		}
	}

	return "", false
}

var viewCountTextRe = regexp.MustCompile(`"viewCountText"\s*:\s*\{\s*"simpleText"\s*:\s*"([^"]+)"`)

// textualViewCount is the last fallback tier: interaction-count and
// view-count-text patterns anywhere in the body, normalized through
// ParseAbbreviatedCount.
func textualViewCount(markup string) (int64, bool) {
	if raw := metaContent(markup, "interactionCount"); raw != "" {
		if n, ok := ParseAbbreviatedCount(raw); ok && n > 0 {
			return n, true
		}
	}

	if m := viewCountTextRe.FindStringSubmatch(markup); m != nil {
		if n, ok := ParseAbbreviatedCount(m[1]); ok && n > 0 {
			return n, true
		}
	}

	return 0, false
}

// fillVideoFromPage runs the layered page fallbacks for every field the
// authoritative lookup left unset. Each tier is individually
// fault-tolerant; a parse failure in one never blocks the next.
func fillVideoFromPage(rec *Record, body []byte, logger *zerolog.Logger) {
	markup := string(body)

	videoObject, hasVideoObject := jsonLDVideoObject(markup)

	if rec.ViewCount == nil {
		type countSource struct {
			name string
			get  func() (int64, bool)
		}

		sources := []countSource{
			{"key-scan", func() (int64, bool) { return scanViewCountKey(markup) }},
			{"client-state", func() (int64, bool) { return clientStateViewCount(markup) }},
			{"json-ld", func() (int64, bool) {
				if hasVideoObject && videoObject.ViewCount != nil {
					return *videoObject.ViewCount, true
				}

				return 0, false
			}},
			{"text-pattern", func() (int64, bool) { return textualViewCount(markup) }},
		}

		for _, src := range sources {
			if n, ok := src.get(); ok {
				rec.ViewCount = &n

				observability.ViewCountResolved.WithLabelValues(src.name).Inc()
				logger.Debug().Str("source", src.name).Int64("view_count", n).Msg("view count resolved")

				break
			}
		}
	}

	if rec.Title == "" {
		rec.Title = resolve(logger, "title",
			fieldSource{"og:title", func() string { return metaContent(markup, "og:title") }},
			fieldSource{"json-ld", func() string { return CleanText(videoObject.Title) }},
			fieldSource{"title-tag", func() string {
				return strings.TrimSpace(strings.TrimSuffix(htmlTitle(markup), youtubeTitleSuffix))
			}},
		)
	}

	if rec.Description == "" {
		rec.Description = resolve(logger, "description",
			fieldSource{"json-ld", func() string { return CleanText(videoObject.Description) }},
			fieldSource{"og:description", func() string { return metaContent(markup, "og:description") }},
		)
	}

	if rec.ImageURL == "" {
		rec.ImageURL = resolve(logger, "imageUrl",
			fieldSource{"json-ld", func() string { return strings.TrimSpace(videoObject.Thumbnail) }},
			fieldSource{"og:image", func() string { return metaContent(markup, "og:image") }},
		)
	}

	if rec.ChannelName == "" {
		rec.ChannelName = resolve(logger, "channelName",
			fieldSource{"link-itemprop", func() string { return linkItemprop(markup, "name") }},
		)
	}

	if rec.PublishDate == "" {
		rec.PublishDate = resolve(logger, "publishDate",
			fieldSource{"json-ld", func() string { return strings.TrimSpace(videoObject.UploadDate) }},
			fieldSource{"itemprop-uploadDate", func() string { return metaContent(markup, "uploadDate") }},
		)
	}
}
