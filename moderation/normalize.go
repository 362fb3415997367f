package moderation

import (
	"regexp"
	"strings"
)

var (
	symbolPattern     = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw message text for comparison: lower-cases,
// strips punctuation and symbols, collapses whitespace runs to a single
// space and trims the result. The function is pure and idempotent.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = symbolPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
