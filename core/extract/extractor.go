// Package extract implements the Extractor interface.
// It isolates the conversation from a full saved or shared chat page:
//  1. Removing page chrome (scripts, navigation, buttons, forms)
//  2. Keeping the best content container (<main>, else <body>)
//
// Math markup, tables and code blocks are left for the normalizer.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed before extraction.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio", "canvas",
	"form", "button", "input", "select", "textarea",
	`[role="navigation"]`, `[role="dialog"]`,
	".sr-only",
}

// HTMLExtractor strips page chrome and returns the conversation fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract takes a full page and returns an HTML fragment holding only
// the conversation. Every turn is kept; a page with several <article>
// turns yields all of them in order.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	var content *goquery.Selection
	for _, tag := range []string{"main", "body"} {
		if sel := doc.Find(tag); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	if turns := content.Find("article"); turns.Length() > 0 {
		var b strings.Builder
		for i := range turns.Nodes {
			frag, err := goquery.OuterHtml(turns.Eq(i))
			if err != nil {
				return "", fmt.Errorf("serializing turn %d: %w", i, err)
			}
			b.WriteString(frag)
		}
		return b.String(), nil
	}

	result, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}
