package traverse

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abraham-mv/huon-test/internal/models"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestParseRuntime(t *testing.T) {
	for in, want := range map[string]Runtime{"hist": RuntimeHist, " IDX ": RuntimeIdx, "Date": RuntimeDate} {
		got, err := ParseRuntime(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseRuntime("weekly")
	assert.ErrorIs(t, err, ErrUnsupportedRuntime)
}

func TestStateExhaustion(t *testing.T) {
	st := NewState(RuntimeDate, 0, Calendar{})
	assert.Equal(t, 1, st.Indexer.Page)
	assert.False(t, st.Exhausted(50), "never exhausted before the first seed")

	seeds := 0
	for !st.Exhausted(50) {
		seeds++
		st.Total = 120
		st.Advance(50)
	}
	assert.Equal(t, 3, seeds)
	assert.Equal(t, 150, st.Indexer.MaxIdx)
	assert.Equal(t, 4, st.Indexer.Page)

	st.ResetWindow(Calendar{From: day(2024, 2, 1)})
	assert.Zero(t, st.Total)
	assert.Zero(t, st.Seeds)
	assert.Equal(t, Indexer{Page: 1}, st.Indexer)
	assert.False(t, st.Exhausted(50))
}

func TestStateExhaustionFromLaterPage(t *testing.T) {
	st := NewState(RuntimeDate, 3, Calendar{})
	assert.Equal(t, 100, st.Offset(50))
	assert.False(t, st.Exhausted(50))

	st.Total = 120
	st.Advance(50)
	assert.True(t, st.Exhausted(50), "page 4 starts past a total of 120")

	st = NewState(RuntimeDate, 3, Calendar{})
	st.Total = 101
	st.Advance(50)
	assert.True(t, st.Exhausted(50))
	st.Total = 151
	assert.False(t, st.Exhausted(50))
}

func TestWindows(t *testing.T) {
	got := Windows(day(2024, 1, 1), day(2024, 1, 10).Add(15*time.Hour), 4)
	assert.Equal(t, []Calendar{
		{From: day(2024, 1, 1), To: day(2024, 1, 4)},
		{From: day(2024, 1, 5), To: day(2024, 1, 8)},
		{From: day(2024, 1, 9), To: day(2024, 1, 10)},
	}, got)

	assert.Equal(t, []Calendar{{From: day(2024, 1, 1), To: day(2024, 3, 1)}}, Windows(day(2024, 1, 1), day(2024, 3, 1), 0))
	assert.Equal(t, []Calendar{{From: day(2024, 1, 1), To: day(2024, 1, 1)}}, Windows(day(2024, 1, 1), day(2024, 1, 1), 7))
	assert.Empty(t, Windows(day(2024, 2, 1), day(2024, 1, 1), 7))
}

func TestOptionsTemplate(t *testing.T) {
	opts := Options{Templates: map[string]models.Request{
		"search": {Method: "GET", URL: "https://example.test", Params: map[string]string{"a": "1"}},
	}}
	req, err := opts.Template("search")
	require.NoError(t, err)
	req.Params["a"] = "2"
	assert.Equal(t, "1", opts.Templates["search"].Params["a"], "templates are copied")

	_, err = opts.Template("main")
	var te *TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "main", te.Name)
	assert.ErrorIs(t, err, ErrMissingTemplate)
}
