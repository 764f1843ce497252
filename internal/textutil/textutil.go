// Package textutil holds small helpers for cleaning article text before analysis.
package textutil

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Sanitize normalizes text by removing URLs and collapsing whitespace.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	withoutURLs := urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(withoutURLs), " ")
}
