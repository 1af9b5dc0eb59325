package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html/atom"
)

var (
	texAnnotations = cascadia.MustCompile(`annotation[encoding="application/x-tex"]`)
	katexWrapper   = cascadia.MustCompile("span.katex")
)

// MathMode is how a formula is laid out relative to the surrounding text.
type MathMode int

const (
	MathInline MathMode = iota
	MathDisplay
)

// Delimit wraps expr in the delimiters pandoc's tex_math_dollars and
// tex_math_double_backslash extensions recognize.
func (m MathMode) Delimit(expr string) string {
	if m == MathInline {
		return "$" + expr + "$"
	}
	return `\[` + expr + `\]`
}

func (m MathMode) String() string {
	if m == MathInline {
		return "inline"
	}
	return "display"
}

// classifyMath decides the mode from the KaTeX wrapper and its parent.
func classifyMath(wrapper *goquery.Selection) MathMode {
	switch {
	case wrapper.Parent().HasClass("inline"),
		wrapper.HasClass("katex-inline"),
		wrapper.HasClass("katex") && !wrapper.HasClass("katex-display"):
		return MathInline
	default:
		return MathDisplay
	}
}

// RewriteMath replaces every rendered KaTeX formula with a plain <span>
// holding its TeX source between math delimiters. Annotations outside a
// span.katex wrapper are left alone.
func RewriteMath(doc *goquery.Document) {
	annotations := doc.FindMatcher(texAnnotations)
	if annotations.Length() == 0 {
		return
	}

	annotations.Each(func(_ int, ann *goquery.Selection) {
		wrapper := ann.ClosestMatcher(katexWrapper)
		if wrapper.Length() == 0 || !attached(wrapper.Get(0)) {
			return
		}

		expr := strings.TrimSpace(ann.Text())
		span := newElement(atom.Span)
		span.AppendChild(newText(classifyMath(wrapper).Delimit(expr)))
		replaceNode(wrapper.Get(0), span)
	})
}
