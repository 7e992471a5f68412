package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abraham-mv/huon-test/internal/config"
	"github.com/abraham-mv/huon-test/internal/ioformats"
	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/runner"
	"github.com/abraham-mv/huon-test/internal/store"
	"github.com/abraham-mv/huon-test/pkg/logger"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	l := logger.NewNop()
	ts := httptest.NewServer(logRequest(l, newMux(runner.New(cfg, l, nil), nil, l)))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.ElementsMatch(t, []any{"fd", "ns", "sk"}, body["sites"])
	assert.ElementsMatch(t, []any{"fd", "ns", "sk"}, body["classifiable"])
	assert.Equal(t, false, body["store"])
}

func TestExtract(t *testing.T) {
	ts := testServer(t)
	markup, err := os.ReadFile("../../internal/sites/ns/testdata/reg.html")
	require.NoError(t, err)

	resp := post(t, ts.URL+"/extract", ioformats.BagLine{
		Site:  "ns",
		RID:   "1001",
		Pages: map[string]string{"reg": string(markup)},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec models.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "ns", rec.Site)
	assert.Equal(t, "1001", rec.RID)
	assert.Equal(t, "Bluenose Fisheries Ltd.", rec.Org.Name)
}

func TestExtractErrors(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/extract")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = post(t, ts.URL+"/extract", map[string]any{"site": "fd"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/extract", ioformats.BagLine{Site: "bc", RID: "1", Pages: map[string]string{"main": "<p/>"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/extract", ioformats.BagLine{RID: "1", Pages: map[string]string{"": "<p>plain</p>"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCrawlRejectsBadRequests(t *testing.T) {
	ts := testServer(t)

	tests := []struct {
		name string
		body crawlReq
	}{
		{"unknown site", crawlReq{Site: "bc", From: "2024-01-01", To: "2024-01-02"}},
		{"bad runtime", crawlReq{Site: "fd", Runtime: "weekly"}},
		{"bad date", crawlReq{Site: "fd", From: "01/01/2024", To: "2024-01-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/crawl", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCrawlReportsUnsupportedRuntime(t *testing.T) {
	ts := testServer(t)

	resp := post(t, ts.URL+"/crawl", crawlReq{Site: "fd", Runtime: "hist"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body crawlResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Error, "runtime")
	assert.Empty(t, body.Records)
}

func TestRecords(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	db, err := store.Open(filepath.Join(t.TempDir(), "crawl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SaveRecord(context.Background(), models.Record{Site: "sk", RID: "REG-1"}))
	require.NoError(t, db.SaveRecord(context.Background(), models.Record{Site: "fd", RID: "7-42"}))

	l := logger.NewNop()
	ts := httptest.NewServer(newMux(runner.New(cfg, l, db), db, l))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/records?site=sk")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recs []models.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "REG-1", recs[0].RID)

	bad, err := http.Get(ts.URL + "/records?site=bc")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestRecordsWithoutStore(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/records")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCrawlRequestDates(t *testing.T) {
	req, err := crawlReq{Site: "fd", To: "2024-01-31"}.request()
	require.NoError(t, err)
	assert.Equal(t, "2008-07-02", req.From.Format(time.DateOnly))

	req, err = crawlReq{Site: "sk", From: "2000-01-01", To: "2012-01-01"}.request()
	require.NoError(t, err)
	assert.Equal(t, "2011-04-01", req.From.Format(time.DateOnly))

	_, err = crawlReq{Site: "ns", Runtime: "date", To: "2024-01-31"}.request()
	assert.ErrorContains(t, err, "invalid from")
}
