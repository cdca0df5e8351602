package render

import (
	"strings"

	"golang.org/x/net/html"
)

// hasOutput reports whether markup contains an element or non-blank text.
// Comments, doctype and whitespace alone count as no output.
func hasOutput(markup string) bool {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				return true
			}
		}
	}
}
