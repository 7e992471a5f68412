package extract

import (
	"bytes"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// XPathDoc answers queries with XPath expressions evaluated by htmlquery.
// Every anchor is an expression; text and element results are both accepted.
type XPathDoc struct {
	root *html.Node
}

var _ Query = (*XPathDoc)(nil)

func NewXPathDoc(content []byte) (*XPathDoc, error) {
	root, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &XPathDoc{root: root}, nil
}

// texts evaluates expr and reports whether it matched any node at all.
func (d *XPathDoc) texts(expr string) ([]string, bool) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	vals := make([]string, 0, len(nodes))
	for _, n := range nodes {
		vals = append(vals, htmlquery.InnerText(n))
	}
	return nonEmpty(vals), true
}

func (d *XPathDoc) Value(expr string) Field[string] {
	vals, ok := d.texts(expr)
	if !ok || len(vals) == 0 {
		return Missing[string]()
	}
	return Found(vals[0])
}

func (d *XPathDoc) Values(expr string) Field[[]string] {
	vals, ok := d.texts(expr)
	if !ok {
		return Missing[[]string]()
	}
	return Found(vals)
}

func (d *XPathDoc) Rows(expr string) Field[[][]string] {
	table, err := htmlquery.Query(d.root, expr)
	if err != nil || table == nil {
		return Missing[[][]string]()
	}
	trs, err := htmlquery.QueryAll(table, ".//tr")
	if err != nil {
		return Missing[[][]string]()
	}
	var rows [][]string
	for i, tr := range trs {
		if i == 0 {
			continue
		}
		var cells []string
		for _, td := range htmlquery.Find(tr, "./td") {
			cells = append(cells, Clean(htmlquery.InnerText(td)))
		}
		rows = append(rows, cells)
	}
	return Found(rows)
}
