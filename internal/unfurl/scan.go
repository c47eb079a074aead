package unfurl

// balancedJSONObject extracts a complete JSON object from markup starting
// at the first '{' at or after from. The scan tracks brace depth and JSON
// string/escape state, and gives up after window bytes so an unterminated
// or adversarial blob can never trigger an unbounded scan.
func balancedJSONObject(markup string, from, window int) (string, bool) {
	if from < 0 || from >= len(markup) {
		return "", false
	}

	limit := from + window
	if limit > len(markup) {
		limit = len(markup)
	}

	start := -1

	for i := from; i < limit; i++ {
		if markup[i] == '{' {
			start = i

			break
		}

		// Only whitespace may precede the object within the window.
		if c := markup[i]; c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return "", false
		}
	}

	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < limit; i++ {
		c := markup[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return markup[start : i+1], true
			}
		}
	}

	return "", false
}
