package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicy = bluemonday.UGCPolicy()
	titlePolicy   = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks. Input the policy only
// re-escapes (plain text such as "a < b && c") is returned unchanged, so what
// a user types is what gets stored; anything the policy actually strips
// yields the cleaned markup instead.
func Sanitize(input string) string {
	cleaned := contentPolicy.Sanitize(input)
	if html.UnescapeString(cleaned) == html.UnescapeString(input) {
		return input
	}
	return cleaned
}

// SanitizeTitle reduces input to plain text: markup is dropped, entities are
// decoded and surrounding whitespace trimmed.
func SanitizeTitle(input string) string {
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(input)))
}
