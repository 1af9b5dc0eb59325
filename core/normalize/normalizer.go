// Package normalize implements the Normalizer interface.
// It rewrites chat-export HTML into markup that the document converters
// render faithfully. The rewrite is a fixed sequence of steps over one
// parsed goquery document:
//  1. Strip vendor data attributes
//  2. Collapse decorative wrappers (early pass)
//  3. Rewrite KaTeX annotations into $...$ / \[...\] text
//  4. Rebuild tables without their wrapper containers
//  5. Flatten highlighted code blocks
//  6. Collapse decorative wrappers again
package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Step is one in-place rewrite of the document tree.
// Every step leaves the tree serializable.
type Step func(doc *goquery.Document)

// HTMLNormalizer runs the full rewrite pipeline.
type HTMLNormalizer struct {
	steps []Step
}

// New creates an HTMLNormalizer with the default pipeline.
func New() *HTMLNormalizer {
	return &HTMLNormalizer{steps: Pipeline()}
}

// Pipeline returns the rewrite steps in the order they must run.
func Pipeline() []Step {
	return []Step{
		StripVendorAttrs,
		CollapseWrappers,
		RewriteMath,
		RebuildTables,
		FlattenCodeBlocks,
		CollapseWrappers,
	}
}

// Normalize parses html, applies the pipeline and serializes the result.
func (n *HTMLNormalizer) Normalize(html string) (string, error) {
	return Apply(html, n.steps...)
}

// Clean runs only the attribute and wrapper passes. Math, tables and code
// blocks are left for a renderer that typesets raw markup itself.
func Clean(html string) (string, error) {
	return Apply(html, StripVendorAttrs, CollapseWrappers)
}

// Apply parses raw, runs steps in order and returns the serialized document.
func Apply(raw string, steps ...Step) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, step := range steps {
		step(doc)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serializing HTML: %w", err)
	}
	return out, nil
}
