// Package sanitize cleans user-supplied event text before it is stored.
package sanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy keeps basic formatting (paragraphs, emphasis, links, lists).
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips every tag. The result is plain text, so entities produced by
// the policy are decoded again ("Rock & Roll" stays as typed).
func Text(input string) string {
	return html.UnescapeString(strictPolicy.Sanitize(input))
}

// HTML removes scripts, event handlers and other unsafe markup from event
// descriptions while keeping safe formatting.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}
