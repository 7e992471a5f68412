// Package ns crawls and extracts the Nova Scotia lobbyist registry.
//
// The registry is an older table-laid-out site; every lookup is written as an
// XPath expression over sibling and ancestor rows. Search results are paged
// by index, each row linking to one registration page.
package ns

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/abraham-mv/huon-test/internal/extract"
	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/traverse"
)

const ID = "ns"

// Page labels.
const (
	LabelSearchResults = "search_results"
	LabelSecResults    = "sec_results"
	LabelReg           = "reg"
)

const (
	DefaultRootURL = "https://novascotia.ca/"
	DefaultMaxPage = 1900

	dateLayout = "2-January-2006"
)

var (
	resultsTableExpr = xpath.MustCompile(`//table[contains(@class, 'innertable')]`)
	resultRowsExpr   = xpath.MustCompile(`./tr | ./tbody/tr`)
	linkExpr         = xpath.MustCompile(`.//a[@href]`)
	lastChangeExpr   = xpath.MustCompile(`//td[normalize-space(.)='Last date of any changes']/ancestor::tr[1]/following-sibling::tr[1]/td[1]`)
)

type Site struct {
	opts traverse.Options
}

var _ traverse.Site = (*Site)(nil)

func New(opts traverse.Options) *Site {
	if opts.RootURL == "" {
		opts.RootURL = DefaultRootURL
	}
	if opts.MaxPage <= 0 {
		opts.MaxPage = DefaultMaxPage
	}
	return &Site{opts: opts}
}

func (s *Site) ID() string { return ID }

// PageSize is the number of rows a search listing holds.
func (s *Site) PageSize() int { return s.opts.PageSize }

// Seed walks the search listing by page index until MaxPage.
func (s *Site) Seed(st *traverse.State) (*models.Edge, error) {
	switch st.Runtime {
	case traverse.RuntimeHist, traverse.RuntimeIdx:
	default:
		return nil, traverse.UnsupportedRuntime(ID, st.Runtime)
	}
	if st.Indexer.Page >= s.opts.MaxPage {
		return nil, nil
	}
	req, err := s.opts.Template("search")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ID, err)
	}
	if req.Params == nil {
		req.Params = map[string]string{}
	}
	// the listing is 0-indexed
	req.Params["page"] = strconv.Itoa(st.Indexer.Page - 1)
	return &models.Edge{
		Label:       LabelSearchResults,
		Req:         req,
		ParentRDate: models.DateMin,
	}, nil
}

func (s *Site) Sections(page models.Page, st *traverse.State) ([]models.Page, error) {
	switch page.Label {
	case LabelReg:
		return []models.Page{page}, nil
	case LabelSearchResults:
	default:
		return nil, traverse.UnrecognizedLabel(ID, page.Label)
	}

	root, err := htmlquery.Parse(bytes.NewReader(page.Content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}
	table := htmlquery.QuerySelector(root, resultsTableExpr)
	if table == nil {
		return nil, nil
	}
	var out []models.Page
	for i, tr := range htmlquery.QuerySelectorAll(table, resultRowsExpr) {
		// header, then spacer rows without a registration link
		if i == 0 || htmlquery.QuerySelector(tr, linkExpr) == nil {
			continue
		}
		out = append(out, models.Page{
			Label:   LabelSecResults,
			Content: []byte("<table>" + htmlquery.OutputHTML(tr, true) + "</table>"),
			URL:     page.URL,
		})
	}
	return out, nil
}

func (s *Site) Parse(page models.Page, parentRID string, parentRDate time.Time) (string, time.Time, []models.Edge, error) {
	switch page.Label {
	case LabelSecResults:
		return s.parseResult(page, parentRID, parentRDate)
	case LabelReg:
		return parentRID, lastChanged(page, parentRDate), nil, nil
	default:
		return "", time.Time{}, nil, traverse.UnrecognizedLabel(ID, page.Label)
	}
}

// parseResult follows the registration link of one result row. The row's
// regid is the record identity when the link carries it; otherwise the
// parent's, or the registration URL when there is none.
func (s *Site) parseResult(page models.Page, parentRID string, parentRDate time.Time) (string, time.Time, []models.Edge, error) {
	root, err := htmlquery.Parse(bytes.NewReader(page.Content))
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}
	a := htmlquery.QuerySelector(root, linkExpr)
	if a == nil {
		return "", time.Time{}, nil, traverse.NoDetailLink(ID, page.Label)
	}
	href := htmlquery.SelectAttr(a, "href")
	target, err := traverse.Resolve(s.opts.RootURL, href)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: resolve %q: %w", ID, href, err)
	}
	rid := parentRID
	if id, ok := traverse.QueryParam(href, "regid"); ok {
		rid = id
	} else if rid == "" {
		rid = target
	}
	return rid, parentRDate, []models.Edge{{
		Label:       LabelReg,
		Req:         models.Request{Method: "GET", URL: target},
		ParentRID:   rid,
		ParentRDate: parentRDate,
	}}, nil
}

// lastChanged reads the "Last date of any changes" row of a registration.
func lastChanged(page models.Page, fallback time.Time) time.Time {
	root, err := htmlquery.Parse(bytes.NewReader(page.Content))
	if err != nil {
		return fallback
	}
	return extract.Date(dateLayout, nodeText(htmlquery.QuerySelector(root, lastChangeExpr))).Or(fallback)
}

func nodeText(n *html.Node) extract.Field[string] {
	if n == nil {
		return extract.Missing[string]()
	}
	return extract.Found(htmlquery.InnerText(n))
}
