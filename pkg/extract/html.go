package extract

import (
	"html"
	"regexp"
	"strings"
)

// htmlTagRegex matches HTML/XML tags including their attributes.
var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// whitespaceRegex collapses runs of whitespace left behind by tag removal.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// StripHTML removes markup from a listing description: tags are replaced with
// spaces, entities are decoded, and whitespace is collapsed. Descriptions are
// always stripped before any denylist or extractor sees them.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = htmlTagRegex.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
