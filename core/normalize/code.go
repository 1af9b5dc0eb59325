package normalize

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html/atom"
)

var (
	preBlocks       = cascadia.MustCompile("pre")
	scrollContainer = cascadia.MustCompile("div.overflow-y-auto")
	codeElements    = cascadia.MustCompile("code")
)

// FlattenCodeBlocks rebuilds export code blocks (toolbar, copy button and
// highlighted spans around a scrollable <code>) as a bare <pre><code>.
// Blocks without the scroll container are not touched.
func FlattenCodeBlocks(doc *goquery.Document) {
	doc.FindMatcher(preBlocks).Each(func(_ int, pre *goquery.Selection) {
		if !attached(pre.Get(0)) {
			return
		}
		container := pre.FindMatcher(scrollContainer).First()
		if container.Length() == 0 {
			return
		}
		code := container.FindMatcher(codeElements).First()
		if code.Length() == 0 {
			return
		}

		block := newElement(atom.Pre)
		inner := newElement(atom.Code)
		inner.AppendChild(newText(code.Text()))
		block.AppendChild(inner)
		replaceNode(pre.Get(0), block)
	})
}
