package fd

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/traverse"
)

func testSite() *Site {
	return New(traverse.Options{
		Templates: map[string]models.Request{
			"search": {
				Method: "GET",
				URL:    "https://lobbycanada.gc.ca/app/secure/ocl/lrs/do/rcntRgstrtns",
				Params: map[string]string{"lang": "eng"},
			},
		},
	})
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func window() traverse.Calendar {
	return traverse.Calendar{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestSeedDateWindow(t *testing.T) {
	site := testSite()
	st := traverse.NewState(traverse.RuntimeDate, 1, window())

	edge, err := site.Seed(st)
	require.NoError(t, err)
	require.NotNil(t, edge)

	assert.Equal(t, LabelSearchResults, edge.Label)
	assert.Empty(t, edge.ParentRID)
	assert.Equal(t, "2024-01-01", edge.Req.Params["fromDate"])
	assert.Equal(t, "2024-01-31", edge.Req.Params["toDate"])
	assert.Equal(t, "1", edge.Req.Params["pg"])
	assert.Equal(t, "eng", edge.Req.Params["lang"])

	// the template itself must stay untouched
	tpl, err := site.opts.Template("search")
	require.NoError(t, err)
	assert.NotContains(t, tpl.Params, "fromDate")
}

func TestSeedStopsOnceTotalIsCovered(t *testing.T) {
	site := testSite()
	st := traverse.NewState(traverse.RuntimeDate, 1, window())

	seeds := 0
	for {
		edge, err := site.Seed(st)
		require.NoError(t, err)
		if edge == nil {
			break
		}
		seeds++
		require.LessOrEqual(t, seeds, 10, "seed never exhausted")
		assert.Equal(t, strconv.Itoa(seeds), edge.Req.Params["pg"])

		// what Sections records after fetching the listing
		st.Total = 120
		st.Advance(50)
	}
	assert.Equal(t, 3, seeds)
}

func TestSeedFromLaterPageStopsAtTotal(t *testing.T) {
	site := testSite()
	st := traverse.NewState(traverse.RuntimeDate, 3, window())

	edge, err := site.Seed(st)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "3", edge.Req.Params["pg"])
	st.Total = 120
	st.Advance(site.PageSize())

	edge, err = site.Seed(st)
	require.NoError(t, err)
	assert.Nil(t, edge, "page 4 would start past 120 records")
}

func TestSeedDoesNotStopBeforeFirstSeed(t *testing.T) {
	st := traverse.NewState(traverse.RuntimeDate, 1, window())
	edge, err := testSite().Seed(st)
	require.NoError(t, err)
	assert.NotNil(t, edge, "total is unknown until the first listing is sectioned")
}

func TestSeedRejectsUnsupportedRuntimes(t *testing.T) {
	for _, rt := range []traverse.Runtime{traverse.RuntimeHist, traverse.RuntimeIdx} {
		t.Run(string(rt), func(t *testing.T) {
			_, err := testSite().Seed(traverse.NewState(rt, 1, window()))
			assert.ErrorIs(t, err, traverse.ErrUnsupportedRuntime)
		})
	}
}

func TestSeedMissingTemplate(t *testing.T) {
	_, err := New(traverse.Options{}).Seed(traverse.NewState(traverse.RuntimeDate, 1, window()))
	assert.ErrorIs(t, err, traverse.ErrMissingTemplate)
}

func TestParseTotal(t *testing.T) {
	tests := []struct {
		caption string
		want    int
		ok      bool
	}{
		{"1-50 of 1,234", 1234, true},
		{"51-100 of 120", 120, true},
		{"Results 1,001-1,050 of 12,345,678", 12345678, true},
		{"1 - 7 of 7", 7, true},
		{"No results", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			got, ok := ParseTotal(tt.caption)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSectionsRecentResults(t *testing.T) {
	st := traverse.NewState(traverse.RuntimeDate, 1, window())
	page := models.Page{Label: LabelSearchResults, Content: fixture(t, "results_recent.html")}

	secs, err := testSite().Sections(page, st)
	require.NoError(t, err)

	assert.Equal(t, 1234, st.Total)
	require.Len(t, secs, 2)
	for _, s := range secs {
		assert.Equal(t, LabelResult, s.Label)
	}
	assert.Contains(t, secs[0].Text(), "regId=42")
	assert.Contains(t, secs[1].Text(), "regId=43")
}

func TestSectionsRowRenderFailure(t *testing.T) {
	orig := outerHTML
	t.Cleanup(func() { outerHTML = orig })
	outerHTML = func(*goquery.Selection) (string, error) { return "", errors.New("short write") }

	page := models.Page{Label: LabelSearchResults, Content: fixture(t, "results_recent.html")}
	secs, err := testSite().Sections(page, traverse.NewState(traverse.RuntimeDate, 1, window()))
	assert.ErrorIs(t, err, traverse.ErrMalformedPage)
	assert.ErrorContains(t, err, "short write")
	assert.Nil(t, secs)
}

func TestSectionsEmptyWindow(t *testing.T) {
	st := traverse.NewState(traverse.RuntimeDate, 1, window())
	st.Total = 99
	page := models.Page{Label: LabelSearchResults, Content: fixture(t, "results_empty.html")}

	secs, err := testSite().Sections(page, st)
	require.NoError(t, err)
	assert.Empty(t, secs)
	assert.Zero(t, st.Total)
}

func TestSectionsAdvancedResults(t *testing.T) {
	st := traverse.NewState(traverse.RuntimeDate, 1, window())
	page := models.Page{Label: LabelSearchResults, Content: fixture(t, "results_advanced.html")}

	secs, err := testSite().Sections(page, st)
	require.NoError(t, err)
	require.Len(t, secs, 1)
	assert.Contains(t, secs[0].Text(), "regId=501")
}

func TestSectionsPassThrough(t *testing.T) {
	for _, label := range []string{LabelMain, LabelRegPage} {
		page := models.Page{Label: label, Content: []byte("<p>x</p>")}
		secs, err := testSite().Sections(page, &traverse.State{})
		require.NoError(t, err)
		assert.Equal(t, []models.Page{page}, secs)
	}
}

func TestSectionsUnrecognizedLabel(t *testing.T) {
	_, err := testSite().Sections(models.Page{Label: "sec_results"}, &traverse.State{})
	assert.ErrorIs(t, err, traverse.ErrUnrecognizedLabel)
}

func TestParseLanding(t *testing.T) {
	page := models.Page{
		Label: LabelResult,
		Content: []byte(`<li class="list-group-item">
<a href="/app/secure/ocl/lrs/do/vwRg?regId=42&amp;cno=7">Acme</a>
<div class="small">Type: <strong>Consultant</strong> Posted: <strong>2024-01-15</strong></div>
</li>`),
	}

	rid, rdate, edges, err := testSite().Parse(page, "", models.DateMin)
	require.NoError(t, err)

	assert.Equal(t, "7-42", rid)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rdate)
	require.Len(t, edges, 1)
	assert.Equal(t, LabelRegPage, edges[0].Label)
	assert.Equal(t, "GET", edges[0].Req.Method)
	assert.Equal(t, "https://lobbycanada.gc.ca/app/secure/ocl/lrs/do/vwRg?regId=42&cno=7", edges[0].Req.URL)
	assert.Equal(t, "7-42", edges[0].ParentRID)
	assert.Equal(t, rdate, edges[0].ParentRDate)
}

func TestParseLandingClientSummaryLink(t *testing.T) {
	st := traverse.NewState(traverse.RuntimeDate, 1, window())
	secs, err := testSite().Sections(models.Page{Label: LabelSearchResults, Content: fixture(t, "results_recent.html")}, st)
	require.NoError(t, err)
	require.Len(t, secs, 2)

	rid, rdate, edges, err := testSite().Parse(secs[1], "", models.DateMin)
	require.NoError(t, err)
	assert.Equal(t, "8-43", rid)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), rdate)
	require.Len(t, edges, 1)
	assert.Contains(t, edges[0].Req.URL, "clntSmmry")
}

func TestParseLandingWithoutDetailLink(t *testing.T) {
	page := models.Page{
		Label:   LabelMain,
		Content: []byte(`<div><a href="/app/secure/ocl/lrs/do/other?regId=42&amp;cno=7">x</a></div>`),
	}
	_, _, _, err := testSite().Parse(page, "", models.DateMin)
	assert.ErrorIs(t, err, traverse.ErrNoDetailLink)
}

func TestParseLandingWithoutRegistrationLink(t *testing.T) {
	page := models.Page{Label: LabelResult, Content: []byte(`<div><a href="/vwRg">x</a></div>`)}
	_, _, _, err := testSite().Parse(page, "", models.DateMin)
	assert.ErrorIs(t, err, traverse.ErrNoDetailLink)
}

func TestParseLandingKeepsParentDateWhenAbsent(t *testing.T) {
	parent := time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC)
	page := models.Page{Label: LabelResult, Content: []byte(`<a href="vwRg?cno=1&amp;regId=2">x</a>`)}
	rid, rdate, _, err := testSite().Parse(page, "", parent)
	require.NoError(t, err)
	assert.Equal(t, "1-2", rid)
	assert.Equal(t, parent, rdate)
}

func TestParseRegistrationPageIsTerminal(t *testing.T) {
	parent := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	page := models.Page{Label: LabelRegPage, Content: fixture(t, "regpage.html")}

	rid, rdate, edges, err := testSite().Parse(page, "7-42", parent)
	require.NoError(t, err)
	assert.Equal(t, "7-42", rid)
	assert.Equal(t, parent, rdate)
	assert.Empty(t, edges)
}

func TestParseUnrecognizedLabel(t *testing.T) {
	_, _, _, err := testSite().Parse(models.Page{Label: "search_results"}, "", models.DateMin)
	assert.ErrorIs(t, err, traverse.ErrUnrecognizedLabel)
}
