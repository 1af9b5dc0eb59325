package normalize

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// runSteps applies steps to in and returns the inner HTML of <body>.
func runSteps(t *testing.T, in string, steps ...Step) string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, step := range steps {
		step(doc)
	}
	body, err := doc.Find("body").Html()
	if err != nil {
		t.Fatalf("render body: %v", err)
	}
	return body
}

func mustNormalize(t *testing.T, in string) string {
	t.Helper()
	out, err := New().Normalize(in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return out
}

func mustParse(t *testing.T, in string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// katex builds the markup KaTeX emits for expr with the given wrapper classes.
func katex(class, expr string) string {
	return `<span class="` + class + `"><span class="katex-mathml"><math xmlns="http://www.w3.org/1998/Math/MathML"><semantics><mrow><mi>x</mi></mrow>` +
		`<annotation encoding="application/x-tex">` + expr + `</annotation></semantics></math></span>` +
		`<span class="katex-html" aria-hidden="true"><span class="base"><span class="strut" style="height:1em;"></span><span class="mord mathnormal">x</span></span></span></span>`
}
