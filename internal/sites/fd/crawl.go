// Package fd crawls and extracts the federal lobbyists registry.
//
// The registry serves two search interfaces: "Recent Registrations", searched
// by posting date window, and "Advanced Search". Both list one registration
// per list item linking to the registration page. Only the date window
// runtime is crawled; results within a window are paginated and the window
// caption reports the total.
package fd

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/traverse"
)

const ID = "fd"

// Page labels.
const (
	LabelSearchResults = "search_results"
	LabelResult        = "result"
	LabelMain          = "main"
	LabelRegPage       = "regpage"
)

const (
	DefaultRootURL  = "https://lobbycanada.gc.ca"
	DefaultPageSize = 50

	dateLayout = "2006-01-02"
)

// EarliestDate is the first posting date the registry serves.
var EarliestDate = time.Date(2008, time.July, 2, 0, 0, 0, 0, time.UTC)

// "1-50 of 1,234"
var captionRe = regexp.MustCompile(`(\d[\d,]*)\s*-\s*(\d[\d,]*)\s+of\s+(\d[\d,]*)`)

// outerHTML renders a result row; replaced in tests.
var outerHTML = goquery.OuterHtml

type Site struct {
	opts traverse.Options
}

var _ traverse.Site = (*Site)(nil)

func New(opts traverse.Options) *Site {
	if opts.RootURL == "" {
		opts.RootURL = DefaultRootURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Site{opts: opts}
}

func (s *Site) ID() string { return ID }

func (s *Site) PageSize() int { return s.opts.PageSize }

func (s *Site) Seed(st *traverse.State) (*models.Edge, error) {
	if st.Runtime != traverse.RuntimeDate {
		return nil, traverse.UnsupportedRuntime(ID, st.Runtime)
	}
	if st.Exhausted(s.opts.PageSize) {
		return nil, nil
	}
	req, err := s.opts.Template("search")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ID, err)
	}
	if req.Params == nil {
		req.Params = map[string]string{}
	}
	req.Params["fromDate"] = st.Calendar.From.Format(dateLayout)
	req.Params["toDate"] = st.Calendar.To.Format(dateLayout)
	req.Params["pg"] = strconv.Itoa(st.Indexer.Page)
	return &models.Edge{
		Label:       LabelSearchResults,
		Req:         req,
		ParentRDate: models.DateMin,
	}, nil
}

func (s *Site) Sections(page models.Page, st *traverse.State) ([]models.Page, error) {
	switch page.Label {
	case LabelMain, LabelRegPage:
		return []models.Page{page}, nil
	case LabelSearchResults:
	default:
		return nil, traverse.UnrecognizedLabel(ID, page.Label)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}

	rows := "li.list-group-item"
	if isAdvanced(doc) {
		rows = "li.list-group-item.mrgn-bttm-md"
	} else {
		total, err := windowTotal(doc)
		if err != nil {
			return nil, err
		}
		st.Total = total
	}

	var (
		out     []models.Page
		failure error
	)
	doc.Find(rows).EachWithBreak(func(i int, li *goquery.Selection) bool {
		markup, err := outerHTML(li)
		if err != nil {
			failure = fmt.Errorf("%s: %w: render row %d: %v", ID, traverse.ErrMalformedPage, i, err)
			return false
		}
		out = append(out, models.Page{Label: LabelResult, Content: []byte(markup), URL: page.URL})
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return out, nil
}

// isAdvanced tells Advanced Search listings apart from Recent Registrations.
func isAdvanced(doc *goquery.Document) bool {
	return doc.Find("a.nodecoration").Length() > 0
}

// windowTotal reads the results caption. A listing without one has no results.
func windowTotal(doc *goquery.Document) (int, error) {
	caption := doc.Find("header.panel-heading h2.panel-title").First()
	if caption.Length() == 0 {
		return 0, nil
	}
	total, ok := ParseTotal(caption.Text())
	if !ok {
		return 0, fmt.Errorf("%s: %w: results caption %q", ID, traverse.ErrMalformedPage, strings.TrimSpace(caption.Text()))
	}
	return total, nil
}

// ParseTotal reads the total from a caption of the form "<start>-<end> of <total>".
func ParseTotal(caption string) (int, bool) {
	m := captionRe.FindStringSubmatch(caption)
	if m == nil {
		return 0, false
	}
	total, err := strconv.Atoi(strings.ReplaceAll(strings.TrimRight(m[3], ","), ",", ""))
	if err != nil {
		return 0, false
	}
	return total, true
}

func (s *Site) Parse(page models.Page, parentRID string, parentRDate time.Time) (string, time.Time, []models.Edge, error) {
	switch page.Label {
	case LabelRegPage:
		return parentRID, parentRDate, nil, nil
	case LabelResult, LabelMain:
	default:
		return "", time.Time{}, nil, traverse.UnrecognizedLabel(ID, page.Label)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Content))
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}
	rid, err := recordID(doc)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%w: %w", traverse.NoDetailLink(ID, page.Label), err)
	}
	rdate := recordDate(doc, parentRDate)
	href, ok := detailHref(doc)
	if !ok {
		return "", time.Time{}, nil, traverse.NoDetailLink(ID, page.Label)
	}
	target, err := traverse.Resolve(s.opts.RootURL, href)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: resolve %q: %w", ID, href, err)
	}
	return rid, rdate, []models.Edge{{
		Label:       LabelRegPage,
		Req:         models.Request{Method: "GET", URL: target},
		ParentRID:   rid,
		ParentRDate: rdate,
	}}, nil
}

// recordID joins the client number and registration version id of the first
// registration link.
func recordID(doc *goquery.Document) (string, error) {
	href, ok := doc.Find(`a[href*="regId="]`).First().Attr("href")
	if !ok {
		return "", errors.New("no regId link")
	}
	regID, ok := traverse.QueryParam(href, "regId")
	if !ok {
		return "", fmt.Errorf("regId missing from %q", href)
	}
	cno, ok := traverse.QueryParam(href, "cno")
	if !ok {
		return "", fmt.Errorf("cno missing from %q", href)
	}
	return cno + "-" + regID, nil
}

// recordDate reads the posting date: the second <strong> of the listing's
// small print, or any date-shaped one if the layout shifted.
func recordDate(doc *goquery.Document, fallback time.Time) time.Time {
	strongs := doc.Find(`div[class*="small"] strong`)
	if t, err := time.Parse(dateLayout, strings.TrimSpace(strongs.Eq(1).Text())); err == nil {
		return t
	}
	for _, n := range strongs.Nodes {
		if t, err := time.Parse(dateLayout, strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())); err == nil {
			return t
		}
	}
	return fallback
}

// detailHref prefers the Advanced Search link and falls back to the client
// summary link used by Recent Registrations.
func detailHref(doc *goquery.Document) (string, bool) {
	for _, sel := range []string{`a[href*="vwRg"]`, `a[href*="clntSmmry"]`} {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && href != "" {
			return href, true
		}
	}
	return "", false
}
