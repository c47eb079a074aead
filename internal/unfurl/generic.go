package unfurl

import (
	"bytes"
	"net/url"
	"sync"

	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"
)

// fieldSource is one candidate source for a record field. Sources are tried
// in declaration order and the first non-empty value wins; later sources
// are never consulted (first-writer-wins).
type fieldSource struct {
	name string
	get  func() string
}

// resolve folds an ordered fallback chain into a single value. Extraction
// steps never fail loudly: a source that cannot produce a value simply
// returns "".
func resolve(logger *zerolog.Logger, field string, sources ...fieldSource) string {
	for _, src := range sources {
		if v := src.get(); v != "" {
			logger.Debug().Str("field", field).Str("source", src.name).Msg("field resolved")

			return v
		}
	}

	return ""
}

// lazyArticle parses the page with readability at most once, on first use.
// Readability is the lowest-priority source for a handful of fields; most
// pages resolve everything from attributes and never pay for the parse.
type lazyArticle struct {
	once    sync.Once
	body    []byte
	pageURL string
	article readability.Article
	ok      bool
}

func (l *lazyArticle) get() *readability.Article {
	l.once.Do(func() {
		parsed, err := url.Parse(l.pageURL)
		if err != nil {
			return
		}

		article, err := readability.FromReader(bytes.NewReader(l.body), parsed)
		if err != nil {
			return
		}

		l.article = article
		l.ok = true
	})

	if !l.ok {
		return nil
	}

	return &l.article
}

// publishDateMetaNames are the plain meta attributes tried between the
// social-preview published-time property and structured data.
var publishDateMetaNames = []string{"date", "pubdate", "publishdate", "dc.date", "article:published"}

// extractArticle produces an article-kind record from raw page markup.
// Every field is best-effort; an empty page yields a record with only the
// URL and kind populated.
func extractArticle(body []byte, pageURL string, logger *zerolog.Logger) *Record {
	markup := string(body)
	article := &lazyArticle{body: body, pageURL: pageURL}
	rec := &Record{URL: pageURL, Kind: KindArticle}

	rec.Title = resolve(logger, "title",
		fieldSource{"og:title", func() string { return metaContent(markup, "og:title") }},
		fieldSource{"title-tag", func() string { return StripSiteSuffix(htmlTitle(markup)) }},
		fieldSource{"readability", func() string {
			if a := article.get(); a != nil {
				return CleanText(a.Title)
			}

			return ""
		}},
	)

	rec.Description = resolve(logger, "description",
		fieldSource{"og:description", func() string { return metaContent(markup, "og:description") }},
		fieldSource{"meta-description", func() string { return metaContent(markup, "description") }},
		fieldSource{"readability", func() string {
			if a := article.get(); a != nil {
				return CleanText(a.Excerpt)
			}

			return ""
		}},
	)

	rec.PublishDate = resolve(logger, "publishDate",
		fieldSource{"article:published_time", func() string { return metaContent(markup, "article:published_time") }},
		fieldSource{"meta-date", func() string {
			for _, name := range publishDateMetaNames {
				if v := metaContent(markup, name); v != "" {
					return v
				}
			}

			return ""
		}},
		fieldSource{"json-ld", func() string { return jsonLDScalar(markup, "datePublished") }},
	)

	rec.Author = resolve(logger, "author",
		fieldSource{"article:author", func() string { return metaContent(markup, "article:author") }},
		fieldSource{"meta-author", func() string { return metaContent(markup, "author") }},
		fieldSource{"json-ld", func() string { return CleanText(jsonLDAuthor(markup)) }},
		fieldSource{"readability", func() string {
			if a := article.get(); a != nil {
				return CleanText(a.Byline)
			}

			return ""
		}},
	)

	// Single-source lookups; no fallback chain needed.
	rec.SiteName = metaContent(markup, "og:site_name")
	rec.ImageURL = metaContent(markup, "og:image")
	rec.ContentTypeHint = metaContent(markup, "og:type")
	rec.CanonicalURL = linkHref(markup, "canonical")

	return rec
}
