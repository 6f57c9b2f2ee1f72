// Package htmlsanitize cleans user-supplied institution text before it is
// stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	p.AllowAttrs("class").OnElements("table")
	return p
}

// Sanitize keeps safe formatting markup (paragraphs, lists, links, tables)
// and strips scripts, event handlers and unsafe URLs.
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return richPolicy.Sanitize(s)
}

// PlainText removes every tag and trims surrounding whitespace.
func PlainText(s string) string {
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}
