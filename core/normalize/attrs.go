package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// vendorAttrPrefix marks attributes the export tool adds for its own scripts.
const vendorAttrPrefix = "data-"

var everyElement = cascadia.MustCompile("*")

// StripVendorAttrs deletes every data-* attribute at any depth.
func StripVendorAttrs(doc *goquery.Document) {
	doc.FindMatcher(everyElement).Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			if strings.HasPrefix(attr.Key, vendorAttrPrefix) {
				continue
			}
			kept = append(kept, attr)
		}
		node.Attr = kept
	})
}
