package model

import "regexp"

var (
	reHTMLTag         = regexp.MustCompile(`<[^>]+>`)
	reNonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// StripDescription removes HTML tags and then every non-alphanumeric character.
func StripDescription(s string) string {
	s = reHTMLTag.ReplaceAllString(s, "")
	return reNonAlphanumeric.ReplaceAllString(s, "")
}

// StrippedEqual compares two descriptions ignoring markup, whitespace and punctuation.
// It is case sensitive.
func StrippedEqual(a, b string) bool {
	return StripDescription(a) == StripDescription(b)
}
