package utils

import "strings"

const ellipsis = "..."

// Preview renders s as a single-line log excerpt of at most limit runes.
// Runs of whitespace, newlines included, collapse to one space so prompts and
// résumé text stay on one log line. Cuts land on rune boundaries and drop the
// trailing space before the ellipsis. A non-positive limit yields "".
func Preview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}

	return strings.TrimRight(string(runes[:limit]), " ") + ellipsis
}
