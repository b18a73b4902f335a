package ocr

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims the result. This is what captions look like in the emitted records.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeForComparison lowers and strips punctuation for similarity
// comparison, keeping letters of any script and digits. Results shorter than
// two characters normalize to empty: they carry no dedup signal.
func NormalizeForComparison(text string) string {
	if len(strings.TrimSpace(text)) < 2 {
		return ""
	}
	normalized := punctuation.ReplaceAllString(text, "")
	normalized = strings.ToLower(NormalizeWhitespace(normalized))
	if len([]rune(normalized)) < 2 {
		return ""
	}
	return normalized
}

// IsMeaningful reports whether a caption contains enough content to be worth
// keeping when the run is configured to trim textless records.
func IsMeaningful(text string) bool {
	return NormalizeForComparison(text) != ""
}
