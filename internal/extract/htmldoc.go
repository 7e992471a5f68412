package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLDoc answers queries against serialized markup with goquery.
//
// Value anchors are text: the value is the first <strong> among the later
// siblings of the text node containing the anchor, so a label never reads
// past its own element. Values anchors are
// heading text; the list is the first <ul> sibling of the matching heading
// before the next heading.
// Rows anchors are CSS selectors for a table.
type HTMLDoc struct {
	doc *goquery.Document

	// Headings is the selector candidate headings are drawn from.
	Headings string
}

var _ Query = (*HTMLDoc)(nil)

func NewHTMLDoc(content []byte) (*HTMLDoc, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &HTMLDoc{doc: doc, Headings: "h3"}, nil
}

// Document exposes the underlying goquery document for site-specific lookups.
func (d *HTMLDoc) Document() *goquery.Document { return d.doc }

func (d *HTMLDoc) Value(anchor string) Field[string] {
	return d.After(anchor, "strong")
}

// After reads the first tag element after the text node containing anchor
// within the same parent element.
func (d *HTMLDoc) After(anchor, tag string) Field[string] {
	for _, root := range d.doc.Nodes {
		text := findText(root, Clean(anchor))
		if text == nil {
			continue
		}
		el := siblingElement(text, tag)
		if el == nil {
			return Missing[string]()
		}
		v := Clean(goquery.NewDocumentFromNode(el).Text())
		if v == "" {
			return Missing[string]()
		}
		return Found(v)
	}
	return Missing[string]()
}

// Heading returns the first heading whose text contains anchor.
func (d *HTMLDoc) Heading(anchor string) *goquery.Selection {
	anchor = Clean(anchor)
	return d.doc.Find(d.Headings).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(Clean(s.Text()), anchor)
	}).First()
}

// Section returns the first tag sibling of heading that comes before the
// next heading matching stop.
func Section(heading *goquery.Selection, stop, tag string) *goquery.Selection {
	return heading.NextUntil(stop).Filter(tag).First()
}

// Sibling reads the text of the first tag element in the section under the
// heading matching anchor.
func (d *HTMLDoc) Sibling(anchor, tag string) Field[string] {
	h := d.Heading(anchor)
	if h.Length() == 0 {
		return Missing[string]()
	}
	sib := Section(h, d.Headings, tag)
	if sib.Length() == 0 {
		return Missing[string]()
	}
	v := Clean(sib.Text())
	if v == "" {
		return Missing[string]()
	}
	return Found(v)
}

func (d *HTMLDoc) Values(anchor string) Field[[]string] {
	h := d.Heading(anchor)
	if h.Length() == 0 {
		return Missing[[]string]()
	}
	return ListItems(Section(h, d.Headings, "ul"))
}

func (d *HTMLDoc) Rows(selector string) Field[[][]string] {
	table := d.doc.Find(selector).First()
	if table.Length() == 0 {
		return Missing[[][]string]()
	}
	var rows [][]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, Clean(td.Text()))
		})
		rows = append(rows, cells)
	})
	return Found(rows)
}

// ListItems returns the cleaned text of the direct <li> children of ul.
func ListItems(ul *goquery.Selection) Field[[]string] {
	if ul.Length() == 0 {
		return Missing[[]string]()
	}
	var items []string
	ul.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		items = append(items, li.Text())
	})
	return Found(nonEmpty(items))
}

func findText(n *html.Node, anchor string) *html.Node {
	if n.Type == html.TextNode && strings.Contains(Clean(n.Data), anchor) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, anchor); found != nil {
			return found
		}
	}
	return nil
}

// siblingElement returns the first tag element among the later siblings of
// from, or nested in one of them.
func siblingElement(from *html.Node, tag string) *html.Node {
	for n := from.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if n.Data == tag {
			return n
		}
		if el := descendant(n, tag); el != nil {
			return el
		}
	}
	return nil
}

func descendant(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if el := descendant(c, tag); el != nil {
			return el
		}
	}
	return nil
}
