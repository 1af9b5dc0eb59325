package normalize

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// wrapperCandidates are the container tags the export uses purely for layout.
var wrapperCandidates = cascadia.MustCompile("div, span")

// CollapseWrappers removes containers that carry nothing but a class:
// no other attribute, no element children and no visible text.
//
// Only div and span elements are candidates. The export emits its empty
// icon and spacer nodes as spans next to its layout divs. Every other
// element keeps its place even when it matches the shape above. An empty
// td still holds a table column, and an img or hr has no children by
// nature.
//
// Nodes are visited in reverse document order, so a container emptied by
// the removal of its children is collapsed in the same pass.
func CollapseWrappers(doc *goquery.Document) {
	nodes := doc.FindMatcher(wrapperCandidates).Nodes
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Parent == nil || !isDecorative(n) {
			continue
		}
		n.Parent.RemoveChild(n)
	}
}

func isDecorative(n *html.Node) bool {
	if len(n.Attr) != 1 {
		return false
	}
	if attr := n.Attr[0]; attr.Namespace != "" || attr.Key != "class" {
		return false
	}
	return !hasElementChild(n) && !hasOwnText(n)
}
