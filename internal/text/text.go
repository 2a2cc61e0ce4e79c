// Package text cleans spreadsheet cell values before they reach a card.
package text

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// htmlElement matches an opening, closing or self-closing tag of an element
// web forms actually export. Angle brackets in prose ("<enter>", "x<y") do not.
var htmlElement = regexp.MustCompile(`(?i)</?(?:a|abbr|b|blockquote|br|code|div|em|font|h[1-6]|hr|i|img|li|ol|p|pre|s|script|small|span|strong|style|sub|sup|table|tbody|td|th|thead|tr|u|ul)(?:\s[^<>]*)?/?>`)

// Cleaner normalizes cell text. It is safe for concurrent use.
type Cleaner struct {
	policy *bluemonday.Policy
}

// New returns a Cleaner. With stripHTML, markup pasted from web forms is
// removed and entities are decoded.
func New(stripHTML bool) *Cleaner {
	c := &Cleaner{}
	if stripHTML {
		c.policy = bluemonday.StrictPolicy()
	}
	return c
}

// Clean strips markup, applies NFC and collapses runs of whitespace into a
// single space. The result is empty when nothing visible remains. Text without
// HTML elements keeps every character; only its entities are decoded.
func (c *Cleaner) Clean(s string) string {
	if c.policy != nil {
		switch {
		case htmlElement.MatchString(s):
			s = html.UnescapeString(c.policy.Sanitize(s))
		case strings.Contains(s, "&"):
			s = html.UnescapeString(s)
		}
	}
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
