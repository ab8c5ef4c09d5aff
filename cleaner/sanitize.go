// Package cleaner reduces a rendered DOM snapshot to the smallest payload
// the extraction service still parses reliably. Extraction cost and the
// risk of a truncated response both scale with input size, so everything
// that carries no product information is stripped before the call.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// noiseSelector matches subtrees that never contain product data:
// scripts, styles, inline vector graphics, and head metadata.
var noiseSelector = cascadia.MustCompile("script, style, svg, noscript, iframe, head")

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize strips noise from a raw DOM dump and collapses whitespace.
//
// It is idempotent (Sanitize(Sanitize(x)) == Sanitize(x)) and total: it
// never returns an error, and an empty or unparseable input yields "".
func Sanitize(rawHTML string) string {
	trimmed := strings.TrimSpace(rawHTML)
	if trimmed == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		// net/html is error-tolerant and a strings.Reader cannot fail,
		// but sanitization must stay total either way.
		return collapseWhitespace(trimmed)
	}

	doc.FindMatcher(noiseSelector).Remove()
	for _, root := range doc.Nodes {
		stripComments(root)
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}
	return collapseWhitespace(body)
}

// stripComments removes every comment node under n.
func stripComments(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			n.RemoveChild(child)
		} else {
			stripComments(child)
		}
		child = next
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
