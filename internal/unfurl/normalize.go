package unfurl

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	thousand = 1_000
	million  = 1_000_000
	billion  = 1_000_000_000
)

// countRe matches a numeric portion (digits with optional thousands
// separators and decimal point) followed by an optional one-letter
// magnitude suffix, e.g. "1.2M", "500K", "1,234,567".
var countRe = regexp.MustCompile(`^([\d,]+(?:\.\d+)?)\s*([KkMmBb])?`)

// ParseAbbreviatedCount converts loosely formatted count text such as
// "500K", "1.2M" or "1,234,567 views" into an integer. The boolean is
// false when the input contains no parseable number.
func ParseAbbreviatedCount(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	m := countRe.FindStringSubmatch(text)
	if m == nil {
		// The number may be preceded by prose ("Views: 1.2M").
		start := strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
		if start == -1 {
			return 0, false
		}

		m = countRe.FindStringSubmatch(text[start:])
		if m == nil {
			return 0, false
		}
	}

	numeric := strings.ReplaceAll(m[1], ",", "")

	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	switch strings.ToUpper(m[2]) {
	case "K":
		value *= thousand
	case "M":
		value *= million
	case "B":
		value *= billion
	}

	return int64(math.Round(value)), true
}

// titleSuffixSeparators are the separator forms sites use to append their
// name to a page title ("Example Post | MySite").
var titleSuffixSeparators = []string{" | ", " - ", " – ", " — ", " · "}

// StripSiteSuffix removes a trailing separator-delimited site-name suffix
// from a raw <title> value. Used only for the generic <title> fallback;
// platform-authoritative titles are kept as-is.
func StripSiteSuffix(title string) string {
	title = strings.TrimSpace(title)

	for _, sep := range titleSuffixSeparators {
		idx := strings.LastIndex(title, sep)
		if idx <= 0 {
			continue
		}

		stripped := strings.TrimSpace(title[:idx])
		if stripped != "" {
			return stripped
		}
	}

	return title
}

// CleanText unescapes HTML entities, strips any embedded tags and collapses
// runs of whitespace. Attribute and title values from uncontrolled pages
// routinely carry all three problems at once.
func CleanText(s string) string {
	s = html.UnescapeString(s)

	if strings.ContainsRune(s, '<') {
		var sb strings.Builder

		inTag := false

		for _, r := range s {
			switch {
			case r == '<':
				inTag = true
			case r == '>':
				inTag = false

				sb.WriteRune(' ')
			case !inTag:
				sb.WriteRune(r)
			}
		}

		s = sb.String()
	}

	return collapseWhitespace(s)
}

// collapseWhitespace folds consecutive whitespace into single spaces and
// trims the ends.
func collapseWhitespace(s string) string {
	var sb strings.Builder

	prevSpace := true

	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			if !prevSpace {
				sb.WriteRune(' ')
			}

			prevSpace = true

			continue
		}

		sb.WriteRune(r)

		prevSpace = false
	}

	return strings.TrimSpace(sb.String())
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
