package unfurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLDBlocks(t *testing.T) {
	markup := `
<script type="application/ld+json">{"@type":"Article","datePublished":"2024-01-15"}</script>
<script type="text/javascript">var x = 1;</script>
<script type="application/ld+json">{broken json</script>
<script type="APPLICATION/LD+JSON">{"@type":"NewsArticle"}</script>
`

	blocks := jsonLDBlocks(markup)
	require.Len(t, blocks, 2, "malformed and non-linked-data blocks must be dropped")
	assert.Contains(t, blocks[0], "Article")
	assert.Contains(t, blocks[1], "NewsArticle")
}

func TestJSONLDScalarShapes(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "direct object",
			markup: `<script type="application/ld+json">{"@type":"Article","datePublished":"2024-01-15"}</script>`,
			want:   "2024-01-15",
		},
		{
			name:   "graph container",
			markup: `<script type="application/ld+json">{"@graph":[{"@type":"WebSite"},{"@type":"Article","datePublished":"2024-02-20"}]}</script>`,
			want:   "2024-02-20",
		},
		{
			name:   "plain array",
			markup: `<script type="application/ld+json">[{"@type":"WebSite"},{"@type":"Article","datePublished":"2024-03-25"}]</script>`,
			want:   "2024-03-25",
		},
		{
			name:   "absent",
			markup: `<script type="application/ld+json">{"@type":"Article"}</script>`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonLDScalar(tt.markup, "datePublished"))
		})
	}
}

func TestJSONLDMalformedBlockIsolation(t *testing.T) {
	markup := `
<script type="application/ld+json">{"datePublished": broken</script>
<script type="application/ld+json">{"@type":"Article","datePublished":"2024-06-01"}</script>
`

	assert.Equal(t, "2024-06-01", jsonLDScalar(markup, "datePublished"),
		"a malformed block must not prevent extraction from a valid sibling")
}

func TestJSONLDAuthor(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "string author",
			markup: `<script type="application/ld+json">{"author":"Jane Doe"}</script>`,
			want:   "Jane Doe",
		},
		{
			name:   "object author",
			markup: `<script type="application/ld+json">{"author":{"@type":"Person","name":"Jane Doe"}}</script>`,
			want:   "Jane Doe",
		},
		{
			name:   "array of authors",
			markup: `<script type="application/ld+json">{"author":[{"name":"First Author"},{"name":"Second"}]}</script>`,
			want:   "First Author",
		},
		{
			name:   "author inside graph",
			markup: `<script type="application/ld+json">{"@graph":[{"@type":"Article","author":{"name":"Graph Author"}}]}</script>`,
			want:   "Graph Author",
		},
		{
			name:   "absent",
			markup: `<script type="application/ld+json">{"@type":"Article"}</script>`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonLDAuthor(tt.markup))
		})
	}
}

func TestJSONLDVideoObject(t *testing.T) {
	markup := `<script type="application/ld+json">{
		"@type": "VideoObject",
		"name": "My Video",
		"description": "A video.",
		"uploadDate": "2024-05-05",
		"thumbnailUrl": ["https://img.example/1.jpg", "https://img.example/2.jpg"],
		"interactionCount": "12345"
	}</script>`

	data, ok := jsonLDVideoObject(markup)
	require.True(t, ok)
	assert.Equal(t, "My Video", data.Title)
	assert.Equal(t, "A video.", data.Description)
	assert.Equal(t, "2024-05-05", data.UploadDate)
	assert.Equal(t, "https://img.example/1.jpg", data.Thumbnail)
	require.NotNil(t, data.ViewCount)
	assert.Equal(t, int64(12345), *data.ViewCount)
}

func TestJSONLDVideoObjectAggregateRating(t *testing.T) {
	markup := `<script type="application/ld+json">{
		"@type": "VideoObject",
		"headline": "Headline Title",
		"aggregateRating": {"ratingCount": "2.5K"}
	}</script>`

	data, ok := jsonLDVideoObject(markup)
	require.True(t, ok)
	assert.Equal(t, "Headline Title", data.Title, "headline is the name fallback")
	require.NotNil(t, data.ViewCount)
	assert.Equal(t, int64(2500), *data.ViewCount)
}

func TestJSONLDVideoObjectAbsent(t *testing.T) {
	markup := `<script type="application/ld+json">{"@type":"Article","name":"Not a video"}</script>`

	_, ok := jsonLDVideoObject(markup)
	assert.False(t, ok)
}
