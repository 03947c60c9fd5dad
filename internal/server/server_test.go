package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/runnerr0/lookback/internal/client"
	"github.com/runnerr0/lookback/internal/history"
	"github.com/runnerr0/lookback/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerTest starts an httptest server over a memory source seeded
// with recs and returns the test server plus the source.
func setupServerTest(t *testing.T, pageSize int, recs ...storage.Record) (*httptest.Server, *storage.MemorySource) {
	t.Helper()
	src := storage.NewMemorySource(recs...)
	srv := New("127.0.0.1", 0, src, pageSize)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, src
}

func getEntries(t *testing.T, url string) []history.Entry {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var entries []history.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	return entries
}

// --- /history/data ---

func TestServer_DataLatestPage(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "One", Time: 100},
		storage.Record{URL: "https://b.example/2", Title: "Two", Time: 300},
		storage.Record{URL: "https://c.example/3", Title: "Three", Time: 200},
	)

	entries := getEntries(t, ts.URL+"/history/data")

	require.Len(t, entries, 3)
	assert.Equal(t, "Two", entries[0].Title)
	assert.Equal(t, "Three", entries[1].Title)
	assert.Equal(t, "One", entries[2].Title)
}

func TestServer_DataStartTimeBound(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "Old", Time: 100},
		storage.Record{URL: "https://b.example/2", Title: "Mid", Time: 200},
		storage.Record{URL: "https://c.example/3", Title: "New", Time: 300},
	)

	entries := getEntries(t, ts.URL+"/history/data?start_time=200")

	require.Len(t, entries, 2)
	assert.Equal(t, "Mid", entries[0].Title)
	assert.Equal(t, "Old", entries[1].Title)
}

func TestServer_DataOffsetSkips(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "A", Time: 200},
		storage.Record{URL: "https://b.example/2", Title: "B", Time: 200},
		storage.Record{URL: "https://c.example/3", Title: "C", Time: 100},
	)

	entries := getEntries(t, ts.URL+"/history/data?start_time=200&offset=2")

	require.Len(t, entries, 1)
	assert.Equal(t, "C", entries[0].Title)
}

func TestServer_DataPageSizeLimits(t *testing.T) {
	recs := make([]storage.Record, 7)
	for i := range recs {
		recs[i] = storage.Record{URL: "https://example.com/p", Time: int64(1000 + i)}
	}
	ts, _ := setupServerTest(t, 3, recs...)

	entries := getEntries(t, ts.URL+"/history/data")
	assert.Len(t, entries, 3)
}

func TestServer_DataUntitledServedWithURL(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://untitled.example/page", Time: 100},
	)

	entries := getEntries(t, ts.URL+"/history/data")

	require.Len(t, entries, 1)
	assert.Equal(t, "https://untitled.example/page", entries[0].Title)
}

func TestServer_DataRedirectsHidden(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://short.example/x", Title: "Shortener", Time: 200, Redirect: true},
		storage.Record{URL: "https://target.example/", Title: "Target", Time: 200},
	)

	entries := getEntries(t, ts.URL+"/history/data")

	require.Len(t, entries, 1)
	assert.Equal(t, "Target", entries[0].Title)
}

func TestServer_DataEmptyArrayWhenExhausted(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "A", Time: 500},
	)

	resp, err := http.Get(ts.URL + "/history/data?start_time=100")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestServer_DataRejectsBadParams(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "A", Time: 100},
	)

	tests := []struct {
		name  string
		query string
	}{
		{"negative offset", "?offset=-1"},
		{"garbage offset", "?offset=abc"},
		{"fractional offset", "?offset=1.5"},
		{"garbage start_time", "?start_time=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/history/data" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_DataMethodNotAllowed(t *testing.T) {
	ts, _ := setupServerTest(t, 10)

	resp, err := http.Post(ts.URL+"/history/data", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))
}

// --- full pagination walk ---

// TestServer_ClientWalkSeesEveryEntryOnce drives the real client and
// cursor against the server until exhaustion. Timestamps collide a lot,
// so tie groups regularly straddle page boundaries; every stored visit
// must still come back exactly once.
func TestServer_ClientWalkSeesEveryEntryOnce(t *testing.T) {
	const total = 137
	recs := make([]storage.Record, total)
	for i := range recs {
		recs[i] = storage.Record{
			URL:  "https://example.com/page/" + string(rune('a'+i%26)) + "/" + strings.Repeat("x", i%5),
			Time: int64(1000 + (i*7)%40),
		}
	}
	ts, _ := setupServerTest(t, 10, recs...)

	c := client.New(ts.URL+"/history/data", 0, 0)
	cur := &history.Cursor{}
	ctx := context.Background()

	type key struct {
		url  string
		time int64
	}
	seen := map[key]int{}
	var got int

	for pages := 0; ; pages++ {
		require.Less(t, pages, total+2, "walk did not terminate")

		entries, err := c.FetchPage(ctx, cur.BuildRequest())
		require.NoError(t, err)
		if cur.ConsumePage(entries) {
			break
		}
		for _, e := range entries {
			seen[key{url: e.URL, time: e.Time}]++
			got++
		}
	}

	want := map[key]int{}
	for _, r := range recs {
		want[key{url: r.URL, time: r.Time}]++
	}

	assert.Equal(t, total, got, "every entry served exactly once")
	assert.Equal(t, want, seen)
}

// --- /health ---

func TestServer_Health(t *testing.T) {
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "A", Time: 100},
		storage.Record{URL: "https://b.example/2", Title: "B", Time: 200},
	)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
		Visits int64  `json:"visits"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, int64(2), health.Visits)
	assert.NotEmpty(t, health.Uptime)
}

// --- /metrics ---

func TestServer_MetricsExposed(t *testing.T) {
	initMetrics()
	ts, _ := setupServerTest(t, 10,
		storage.Record{URL: "https://a.example/1", Title: "A", Time: 100},
	)

	// Serve one page so the counters have something to show.
	_ = getEntries(t, ts.URL+"/history/data")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "lookback_http_requests_total")
	assert.Contains(t, string(body), "lookback_history_pages_served_total")
}
