package normalize

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	tableElements = cascadia.MustCompile("table")
	tableRows     = cascadia.MustCompile("tr")
	tableCells    = cascadia.MustCompile("th, td")
)

// Cell is one flattened table cell.
type Cell struct {
	Header bool
	Text   string
}

// ReadGrid returns the cells of table in row-major document order.
// Cell content is the text of the whole cell subtree.
func ReadGrid(table *goquery.Selection) [][]Cell {
	var grid [][]Cell
	table.FindMatcher(tableRows).Each(func(_ int, row *goquery.Selection) {
		cells := make([]Cell, 0, 4)
		row.FindMatcher(tableCells).Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, Cell{
				Header: goquery.NodeName(cell) == "th",
				Text:   cell.Text(),
			})
		})
		grid = append(grid, cells)
	})
	return grid
}

// RebuildTables swaps every table for a bare table/tr/td copy and drops
// the layout divs the export wraps around it.
func RebuildTables(doc *goquery.Document) {
	doc.FindMatcher(tableElements).Each(func(_ int, table *goquery.Selection) {
		node := table.Get(0)
		if !attached(node) {
			// Inside a table that was already rebuilt.
			return
		}
		replaceNode(tableTarget(node), buildTable(ReadGrid(table)))
	})
}

func buildTable(grid [][]Cell) *html.Node {
	table := newElement(atom.Table)
	for _, row := range grid {
		tr := newElement(atom.Tr)
		for _, c := range row {
			a := atom.Td
			if c.Header {
				a = atom.Th
			}
			cell := newElement(a)
			if c.Text != "" {
				cell.AppendChild(newText(c.Text))
			}
			tr.AppendChild(cell)
		}
		table.AppendChild(tr)
	}
	return table
}

// tableTarget climbs from a table through divs that contain nothing but it.
func tableTarget(n *html.Node) *html.Node {
	target := n
	for {
		p := target.Parent
		if p == nil || p.Type != html.ElementNode || p.DataAtom != atom.Div {
			return target
		}
		if !soleElementChild(p, target) || hasOwnText(p) {
			return target
		}
		target = p
	}
}

func soleElementChild(parent, child *html.Node) bool {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c != child {
			return false
		}
	}
	return true
}
