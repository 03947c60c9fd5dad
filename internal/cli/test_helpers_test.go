package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/runnerr0/lookback/internal/history"
	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// disableColor makes renderer output plain for string assertions.
func disableColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

// pageFetcher simulates the data endpoint over a fixed newest-first
// entry list, honoring start_time and offset like the real one.
type pageFetcher struct {
	entries  []history.Entry
	pageSize int
	calls    int
}

func (f *pageFetcher) FetchPage(_ context.Context, req history.PageRequest) ([]history.Entry, error) {
	f.calls++

	matched := make([]history.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		if req.StartTime == nil || e.Time <= *req.StartTime {
			matched = append(matched, e)
		}
	}
	if req.Offset >= len(matched) {
		return []history.Entry{}, nil
	}
	matched = matched[req.Offset:]
	if len(matched) > f.pageSize {
		matched = matched[:f.pageSize]
	}
	return matched, nil
}

// viewFixture holds four visits: two sessions on Monday March 4 2024
// and one on Sunday March 3.
func viewFixture() []history.Entry {
	at := func(day, hour, min int) int64 {
		return time.Date(2024, 3, day, hour, min, 0, 0, time.UTC).Unix()
	}
	return []history.Entry{
		{URL: "https://one.example/a", Title: "Page One", Time: at(4, 15, 4)},
		{URL: "https://two.example/b", Title: "Page Two", Time: at(4, 15, 0)},
		{URL: "https://three.example/c", Title: "Page Three", Time: at(4, 9, 0)},
		{URL: "https://four.example/d", Title: "Page Four", Time: at(3, 23, 30)},
	}
}
