package unfurl

// Kind tags which strategy produced a record and which optional
// fields are meaningful on it.
type Kind string

const (
	KindVideo   Kind = "video"
	KindArticle Kind = "article"
)

// Record is the normalized metadata extracted from a URL. Every field
// besides URL and Kind is best-effort: an empty string (or nil ViewCount)
// means no source yielded a value. A record is built once per extraction
// and never mutated after being returned.
type Record struct {
	URL  string `json:"url"`
	Kind Kind   `json:"recordKind"`

	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	Author          string `json:"author,omitempty"`
	SiteName        string `json:"siteName,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	CanonicalURL    string `json:"canonicalUrl,omitempty"`
	ContentTypeHint string `json:"contentTypeHint,omitempty"`

	// PublishDate is passed through verbatim; source formats vary too much
	// to reformat safely.
	PublishDate string `json:"publishDate,omitempty"`

	// Video-only fields.
	ViewCount   *int64 `json:"viewCount,omitempty"`
	ChannelName string `json:"channelName,omitempty"`
	ChannelURL  string `json:"channelUrl,omitempty"`
	VideoID     string `json:"videoId,omitempty"`
}
