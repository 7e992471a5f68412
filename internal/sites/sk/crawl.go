// Package sk crawls and extracts the Saskatchewan lobbyist registry.
//
// Searches go to a JSON endpoint that pages by record offset and reports the
// total. Each result names the detail page path of one registration, which
// lays its fields out as a <label> followed by <p> values.
package sk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abraham-mv/huon-test/internal/extract"
	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/traverse"
)

const ID = "sk"

// Page labels.
const (
	LabelSearchResults = "search_results"
	LabelResult        = "result"
	LabelMain          = "main"
)

const (
	DefaultRootURL  = "https://www.sasklobbyistregistry.ca/search-the-registry/"
	DefaultPageSize = 50

	dateLayout = "2006-01-02"
)

// EarliestDate is the first posting date the registry serves.
var EarliestDate = time.Date(2011, time.April, 1, 0, 0, 0, 0, time.UTC)

var epoch = time.Unix(0, 0).UTC()

// searchResponse is the search endpoint's envelope. Rows are kept raw and
// become result pages verbatim.
type searchResponse struct {
	RecordsTotal int               `json:"recordsTotal"`
	Data         []json.RawMessage `json:"data"`
}

type result struct {
	URL string `json:"Url"`
}

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
	switch st.Runtime {
	case traverse.RuntimeHist, traverse.RuntimeDate:
	default:
		return nil, traverse.UnsupportedRuntime(ID, st.Runtime)
	}
	if st.Exhausted(s.opts.PageSize) {
		return nil, nil
	}
	start := st.Offset(s.opts.PageSize)
	req, err := s.opts.Template("search")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ID, err)
	}
	if req.JSON == nil {
		req.JSON = map[string]any{}
	}
	req.JSON["start"] = start
	req.JSON["length"] = s.opts.PageSize
	if st.Runtime == traverse.RuntimeDate {
		req.JSON["PostedFromDate"] = st.Calendar.From.Format(dateLayout)
		req.JSON["PostedToDate"] = st.Calendar.To.Format(dateLayout)
	}
	return &models.Edge{
		Label:       LabelSearchResults,
		Req:         req,
		ParentRDate: models.DateMin,
	}, nil
}

func (s *Site) Sections(page models.Page, st *traverse.State) ([]models.Page, error) {
	switch page.Label {
	case LabelMain:
		return []models.Page{page}, nil
	case LabelSearchResults:
	default:
		return nil, traverse.UnrecognizedLabel(ID, page.Label)
	}

	var resp searchResponse
	if err := json.Unmarshal(page.Content, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}
	st.Total = resp.RecordsTotal
	out := make([]models.Page, 0, len(resp.Data))
	for _, row := range resp.Data {
		out = append(out, models.Page{Label: LabelResult, Content: bytes.Clone(row), URL: page.URL})
	}
	return out, nil
}

func (s *Site) Parse(page models.Page, parentRID string, parentRDate time.Time) (string, time.Time, []models.Edge, error) {
	switch page.Label {
	case LabelResult:
		return s.parseResult(page)
	case LabelMain:
		return s.parseMain(page, parentRID, parentRDate)
	default:
		return "", time.Time{}, nil, traverse.UnrecognizedLabel(ID, page.Label)
	}
}

// parseResult keys the record by its detail path until the detail page
// supplies the registration number.
func (s *Site) parseResult(page models.Page) (string, time.Time, []models.Edge, error) {
	var r result
	if err := json.Unmarshal(page.Content, &r); err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}
	rid := strings.TrimSpace(r.URL)
	if rid == "" {
		return "", time.Time{}, nil, traverse.NoDetailLink(ID, page.Label)
	}
	req, err := s.opts.Template("main")
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: %w", ID, err)
	}
	req.URL += rid
	return rid, epoch, []models.Edge{{
		Label:       LabelMain,
		Req:         req,
		ParentRID:   rid,
		ParentRDate: epoch,
	}}, nil
}

func (s *Site) parseMain(page models.Page, parentRID string, parentRDate time.Time) (string, time.Time, []models.Edge, error) {
	doc, err := extract.NewXPathDoc(page.Content)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%s: %w: %v", ID, traverse.ErrMalformedPage, err)
	}
	rid := doc.Value(labelled("Registration Number:")).Or(parentRID)
	rdate := extract.Date(dateLayout, doc.Value(labelled("Posted Date:"))).Or(parentRDate)
	return rid, rdate, nil, nil
}

// labelled selects the paragraph values following a field label.
func labelled(label string) string {
	return fmt.Sprintf(`//label[contains(text(), '%s')]/following-sibling::p`, label)
}
