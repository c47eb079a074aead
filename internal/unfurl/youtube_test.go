package unfurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYoutubeVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		ok     bool
	}{
		{name: "canonical watch", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "short link with params", url: "https://youtu.be/dQw4w9WgXcQ?t=42", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "mobile host", url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "no www", url: "https://youtube.com/watch?v=dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "shorts", url: "https://www.youtube.com/shorts/dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "embed", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "live", url: "https://www.youtube.com/live/dQw4w9WgXcQ", wantID: "dQw4w9WgXcQ", ok: true},
		{name: "watch without id", url: "https://www.youtube.com/watch", ok: false},
		{name: "malformed id", url: "https://www.youtube.com/watch?v=tooshort", ok: false},
		{name: "other site", url: "https://example.com/watch?v=dQw4w9WgXcQ", ok: false},
		{name: "channel page", url: "https://www.youtube.com/@somechannel", ok: false},
		{name: "not a url", url: "://", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := youtubeVideoID(tt.url)
			if ok != tt.ok {
				t.Fatalf("youtubeVideoID(%q) ok = %v, want %v", tt.url, ok, tt.ok)
			}

			if ok && id != tt.wantID {
				t.Errorf("youtubeVideoID(%q) = %q, want %q", tt.url, id, tt.wantID)
			}
		})
	}
}

func TestYoutubeVideoIDShortAndCanonicalAgree(t *testing.T) {
	canonical, ok1 := youtubeVideoID("https://www.youtube.com/watch?v=abcDEF12345")
	short, ok2 := youtubeVideoID("https://youtu.be/abcDEF12345")

	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, canonical, short)
}

func TestScanViewCountKey(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   int64
		ok     bool
	}{
		{
			name:   "first positive wins",
			markup: `"viewCount":"12345" ... "viewCount":"99999"`,
			want:   12345,
			ok:     true,
		},
		{
			name:   "zero skipped",
			markup: `"viewCount":"0" ... "viewCount":"12345"`,
			want:   12345,
			ok:     true,
		},
		{
			name:   "trailing zero ignored",
			markup: `"viewCount":"12345" ... "viewCount":"0"`,
			want:   12345,
			ok:     true,
		},
		{
			name:   "unquoted value",
			markup: `"viewCount": 777`,
			want:   777,
			ok:     true,
		},
		{
			name:   "only zero",
			markup: `"viewCount":"0"`,
			ok:     false,
		},
		{
			name:   "absent",
			markup: `<html></html>`,
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanViewCountKey(tt.markup)
			if ok != tt.ok {
				t.Fatalf("scanViewCountKey() ok = %v, want %v", ok, tt.ok)
			}

			if ok && got != tt.want {
				t.Errorf("scanViewCountKey() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClientStateViewCount(t *testing.T) {
	markup := `<script>var ytInitialData = {"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[` +
		`{"videoSecondaryInfoRenderer":{}},` +
		`{"videoPrimaryInfoRenderer":{"viewCount":{"videoViewCountRenderer":{"viewCount":{"simpleText":"1,234,567 views"}}}}}` +
		`]}}}}};</script>`

	got, ok := clientStateViewCount(markup)
	require.True(t, ok)
	assert.Equal(t, int64(1_234_567), got)
}

func TestClientStateViewCountShortForm(t *testing.T) {
	markup := `var ytInitialData = {"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[` +
		`{"videoPrimaryInfoRenderer":{"viewCount":{"videoViewCountRenderer":{"shortViewCount":{"simpleText":"1.2M views"}}}}}` +
		`]}}}}};`

	got, ok := clientStateViewCount(markup)
	require.True(t, ok)
	assert.Equal(t, int64(1_200_000), got)
}

func TestClientStateViewCountMalformedBlock(t *testing.T) {
	// Unterminated block: the brace scan finds no balanced object, the
	// tier reports no data and the caller moves on.
	markup := `var ytInitialData = {"contents":{"broken":`

	_, ok := clientStateViewCount(markup)
	assert.False(t, ok)
}

func TestTextualViewCount(t *testing.T) {
	t.Run("interactionCount meta", func(t *testing.T) {
		markup := `<meta itemprop="interactionCount" content="54321">`

		got, ok := textualViewCount(markup)
		require.True(t, ok)
		assert.Equal(t, int64(54321), got)
	})

	t.Run("viewCountText pattern", func(t *testing.T) {
		markup := `..."viewCountText":{"simpleText":"2.5K views"}...`

		got, ok := textualViewCount(markup)
		require.True(t, ok)
		assert.Equal(t, int64(2500), got)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := textualViewCount("<html></html>")
		assert.False(t, ok)
	})
}

func TestFillVideoFromPageViewCountFirstWriterWins(t *testing.T) {
	// Both the direct key and the client-state block are present with
	// different values; the higher-priority key scan must win.
	markup := `"viewCount":"12345"` +
		` var ytInitialData = {"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[` +
		`{"videoPrimaryInfoRenderer":{"viewCount":{"videoViewCountRenderer":{"viewCount":{"simpleText":"99,999 views"}}}}}` +
		`]}}}}};`

	rec := &Record{URL: "https://youtu.be/abcDEF12345", Kind: KindVideo, VideoID: "abcDEF12345"}
	fillVideoFromPage(rec, []byte(markup), testLogger())

	require.NotNil(t, rec.ViewCount)
	assert.Equal(t, int64(12345), *rec.ViewCount)
}

func TestFillVideoFromPagePresetViewCountKept(t *testing.T) {
	preset := int64(777)
	rec := &Record{Kind: KindVideo, ViewCount: &preset}

	fillVideoFromPage(rec, []byte(`"viewCount":"12345"`), testLogger())

	assert.Equal(t, int64(777), *rec.ViewCount, "a field set by a higher-priority source must never be overwritten")
}

func TestFillVideoFromPageTitleFallbacks(t *testing.T) {
	t.Run("og title preferred", func(t *testing.T) {
		rec := &Record{Kind: KindVideo}
		fillVideoFromPage(rec, []byte(`<meta property="og:title" content="OG Video"><title>Tag Video - YouTube</title>`), testLogger())
		assert.Equal(t, "OG Video", rec.Title)
	})

	t.Run("title tag with platform suffix stripped", func(t *testing.T) {
		rec := &Record{Kind: KindVideo}
		fillVideoFromPage(rec, []byte(`<title>Tag Video - YouTube</title>`), testLogger())
		assert.Equal(t, "Tag Video", rec.Title)
	})

	t.Run("authoritative title kept", func(t *testing.T) {
		rec := &Record{Kind: KindVideo, Title: "From oEmbed"}
		fillVideoFromPage(rec, []byte(`<meta property="og:title" content="OG Video">`), testLogger())
		assert.Equal(t, "From oEmbed", rec.Title)
	})
}

func TestFillVideoFromPageSecondaryFields(t *testing.T) {
	markup := `<html><head>
<meta property="og:description" content="A video description">
<meta property="og:image" content="https://img.example/thumb.jpg">
<link itemprop="name" content="The Channel">
<meta itemprop="uploadDate" content="2024-05-05">
</head></html>`

	rec := &Record{Kind: KindVideo}
	fillVideoFromPage(rec, []byte(markup), testLogger())

	assert.Equal(t, "A video description", rec.Description)
	assert.Equal(t, "https://img.example/thumb.jpg", rec.ImageURL)
	assert.Equal(t, "The Channel", rec.ChannelName)
	assert.Equal(t, "2024-05-05", rec.PublishDate)
}

func TestFillVideoFromPageVideoObjectFallback(t *testing.T) {
	markup := `<script type="application/ld+json">{
		"@type": "VideoObject",
		"name": "LD Video",
		"description": "LD description",
		"uploadDate": "2024-07-07",
		"thumbnailUrl": "https://img.example/ld.jpg",
		"interactionCount": "4242"
	}</script>`

	rec := &Record{Kind: KindVideo}
	fillVideoFromPage(rec, []byte(markup), testLogger())

	assert.Equal(t, "LD Video", rec.Title)
	assert.Equal(t, "LD description", rec.Description)
	assert.Equal(t, "https://img.example/ld.jpg", rec.ImageURL)
	assert.Equal(t, "2024-07-07", rec.PublishDate)
	require.NotNil(t, rec.ViewCount)
	assert.Equal(t, int64(4242), *rec.ViewCount)
}
