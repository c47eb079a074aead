package unfurl

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Structured-data readers over <script type="application/ld+json"> blocks.
// Each block is parsed independently; a malformed block is skipped silently
// and never prevents extraction from its siblings.

const jsonLDType = "application/ld+json"

// jsonLDBlocks returns the raw content of every linked-data script block in
// document order, dropping blocks that are not valid JSON.
func jsonLDBlocks(markup string) []string {
	var blocks []string

	// Indices come from the lowercased copy but slice the original, which
	// can differ in byte length after Unicode case conversion, so every
	// slice validates bounds first.
	lowerMarkup := strings.ToLower(markup)
	idx := 0

	for {
		start := strings.Index(lowerMarkup[idx:], "<script")
		if start == -1 {
			break
		}

		start += idx

		open := strings.Index(lowerMarkup[start:], ">")
		if open == -1 {
			break
		}

		if start+open+1 > len(markup) {
			break
		}

		tag := tagSlice{
			original: markup[start : start+open+1],
			lower:    lowerMarkup[start : start+open+1],
		}

		bodyStart := start + open + 1

		end := strings.Index(lowerMarkup[bodyStart:], "</script")
		if end == -1 || bodyStart+end > len(markup) {
			break
		}

		if strings.EqualFold(strings.TrimSpace(tag.attr("type")), jsonLDType) {
			body := strings.TrimSpace(markup[bodyStart : bodyStart+end])
			if body != "" && gjson.Valid(body) {
				blocks = append(blocks, body)
			}
		}

		idx = bodyStart + end + 1
	}

	return blocks
}

// jsonLDScalar resolves a field across every block, trying the three known
// document shapes in order: a tagged object, a @graph container, and a
// plain array of tagged objects. The first non-empty value wins.
func jsonLDScalar(markup, field string) string {
	for _, block := range jsonLDBlocks(markup) {
		root := gjson.Parse(block)

		if v := root.Get(field); v.Exists() && v.String() != "" {
			return v.String()
		}

		if v := firstInArray(root.Get(`\@graph`), field); v != "" {
			return v
		}

		if root.IsArray() {
			if v := firstInArray(root, field); v != "" {
				return v
			}
		}
	}

	return ""
}

// firstInArray returns the first non-empty value of field among the
// elements of arr.
func firstInArray(arr gjson.Result, field string) string {
	if !arr.IsArray() {
		return ""
	}

	for _, item := range arr.Array() {
		if v := item.Get(field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}

	return ""
}

// jsonLDAuthor resolves the author field, which may be a plain string or
// an object carrying a name property, across the same three shapes.
func jsonLDAuthor(markup string) string {
	for _, block := range jsonLDBlocks(markup) {
		root := gjson.Parse(block)

		candidates := []gjson.Result{root}
		candidates = append(candidates, root.Get(`\@graph`).Array()...)

		if root.IsArray() {
			candidates = append(candidates, root.Array()...)
		}

		for _, obj := range candidates {
			if name := authorName(obj.Get("author")); name != "" {
				return name
			}
		}
	}

	return ""
}

func authorName(author gjson.Result) string {
	switch {
	case author.Type == gjson.String:
		return author.String()
	case author.IsObject():
		return author.Get("name").String()
	case author.IsArray():
		for _, item := range author.Array() {
			if name := authorName(item); name != "" {
				return name
			}
		}
	}

	return ""
}

// videoObjectData is the subset of a VideoObject linked-data shape the
// video pipeline consumes.
type videoObjectData struct {
	Title       string
	Description string
	UploadDate  string
	Thumbnail   string
	ViewCount   *int64
}

// jsonLDVideoObject finds the first VideoObject-tagged shape across all
// blocks and extracts its fields. The boolean is false when no block
// carries one.
func jsonLDVideoObject(markup string) (videoObjectData, bool) {
	for _, block := range jsonLDBlocks(markup) {
		root := gjson.Parse(block)

		candidates := []gjson.Result{root}
		candidates = append(candidates, root.Get(`\@graph`).Array()...)

		if root.IsArray() {
			candidates = append(candidates, root.Array()...)
		}

		for _, obj := range candidates {
			if !hasType(obj, "VideoObject") {
				continue
			}

			data := videoObjectData{
				Title:       firstString(obj, "name", "headline"),
				Description: obj.Get("description").String(),
				UploadDate:  obj.Get("uploadDate").String(),
				Thumbnail:   thumbnailURL(obj),
			}

			for _, path := range []string{"interactionCount", "aggregateRating.ratingCount"} {
				if raw := obj.Get(path).String(); raw != "" {
					if n, ok := ParseAbbreviatedCount(raw); ok {
						data.ViewCount = &n

						break
					}
				}
			}

			return data, true
		}
	}

	return videoObjectData{}, false
}

func hasType(obj gjson.Result, typeName string) bool {
	t := obj.Get(`\@type`)

	if t.Type == gjson.String {
		return strings.EqualFold(t.String(), typeName)
	}

	if t.IsArray() {
		for _, item := range t.Array() {
			if strings.EqualFold(item.String(), typeName) {
				return true
			}
		}
	}

	return false
}

func firstString(obj gjson.Result, fields ...string) string {
	for _, f := range fields {
		if v := obj.Get(f).String(); v != "" {
			return v
		}
	}

	return ""
}

// gjsonPathStrings evaluates a gjson path and flattens the result into a
// list of strings, whether the path resolves to a scalar or an array.
func gjsonPathStrings(document, path string) []string {
	res := gjson.Get(document, path)
	if !res.Exists() {
		return nil
	}

	if res.IsArray() {
		var values []string

		for _, item := range res.Array() {
			if s := item.String(); s != "" {
				values = append(values, s)
			}
		}

		return values
	}

	if s := res.String(); s != "" {
		return []string{s}
	}

	return nil
}

// thumbnailURL handles the common thumbnailUrl encodings: a string, an
// array of strings, or a nested ImageObject.
func thumbnailURL(obj gjson.Result) string {
	t := obj.Get("thumbnailUrl")

	switch {
	case t.Type == gjson.String:
		return t.String()
	case t.IsArray():
		arr := t.Array()
		if len(arr) > 0 {
			return arr[0].String()
		}
	}

	return obj.Get("thumbnail.url").String()
}
