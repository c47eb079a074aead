package unfurl

import "strings"

// Attribute extractors scan raw markup for known tag/attribute patterns
// without building a document tree; uncontrolled pages are routinely not
// well-formed. Tags are located case-insensitively and attributes are read
// individually, so attribute order and casing never matter.

// tagSlice is one located tag, in both original and lowercased form.
// The two strings may differ in byte length after Unicode case conversion
// (Turkish İ, German ß), so all slicing validates bounds against the
// original.
type tagSlice struct {
	original string
	lower    string
}

// scanTags returns every "<name ...>" tag in the markup.
func scanTags(markup, name string) []tagSlice {
	var tags []tagSlice

	lowerMarkup := strings.ToLower(markup)
	open := "<" + name
	originalLen := len(markup)
	idx := 0

	for {
		start := strings.Index(lowerMarkup[idx:], open)
		if start == -1 {
			break
		}

		start += idx

		end := strings.Index(lowerMarkup[start:], ">")
		if end == -1 {
			break
		}

		end += start

		if end+1 > originalLen {
			break
		}

		tags = append(tags, tagSlice{
			original: markup[start : end+1],
			lower:    lowerMarkup[start : end+1],
		})

		idx = end + 1
	}

	return tags
}

// attr extracts an attribute value from a tag, matching the attribute name
// case-insensitively and accepting either quote style.
func (t tagSlice) attr(name string) string {
	patterns := []string{name + `="`, name + `='`}
	originalLen := len(t.original)

	for _, pattern := range patterns {
		offset := 0

		for {
			idx := strings.Index(t.lower[offset:], pattern)
			if idx == -1 {
				break
			}

			idx += offset
			offset = idx + 1

			// Reject substring hits like `name="` inside `data-name="`.
			if idx > 0 {
				prev := t.lower[idx-1]
				if prev != ' ' && prev != '\t' && prev != '\n' && prev != '\r' {
					continue
				}
			}

			start := idx + len(pattern)
			if start >= originalLen {
				break
			}

			quote := pattern[len(pattern)-1]

			end := strings.IndexByte(t.original[start:], quote)
			if end == -1 || start+end > originalLen {
				break
			}

			return t.original[start : start+end]
		}
	}

	return ""
}

// metaContent returns the cleaned content attribute of the first <meta>
// tag whose property, name or itemprop attribute equals key.
func metaContent(markup, key string) string {
	for _, tag := range scanTags(markup, "meta") {
		for _, attrName := range []string{"property", "name", "itemprop"} {
			if strings.EqualFold(tag.attr(attrName), key) {
				if content := CleanText(tag.attr("content")); content != "" {
					return content
				}
			}
		}
	}

	return ""
}

// linkHref returns the href of the first <link> tag with the given rel.
func linkHref(markup, rel string) string {
	for _, tag := range scanTags(markup, "link") {
		if strings.EqualFold(tag.attr("rel"), rel) {
			if href := strings.TrimSpace(tag.attr("href")); href != "" {
				return href
			}
		}
	}

	return ""
}

// linkItemprop returns the content of the first <link> tag carrying the
// given itemprop. YouTube publishes the channel name this way.
func linkItemprop(markup, prop string) string {
	for _, tag := range scanTags(markup, "link") {
		if strings.EqualFold(tag.attr("itemprop"), prop) {
			if content := CleanText(tag.attr("content")); content != "" {
				return content
			}
		}
	}

	return ""
}

// htmlTitle returns the cleaned text of the <title> element.
func htmlTitle(markup string) string {
	const (
		titleStart = "<title"
		titleEnd   = "</title>"
	)

	lowerMarkup := strings.ToLower(markup)

	start := strings.Index(lowerMarkup, titleStart)
	if start == -1 {
		return ""
	}

	// Skip past the opening tag, which may carry attributes.
	open := strings.Index(lowerMarkup[start:], ">")
	if open == -1 {
		return ""
	}

	start += open + 1
	if start >= len(markup) {
		return ""
	}

	end := strings.Index(lowerMarkup[start:], titleEnd)
	if end == -1 || start+end > len(markup) {
		return ""
	}

	return CleanText(markup[start : start+end])
}
