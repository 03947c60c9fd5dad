package render

import (
	"encoding/json"
	"io"

	"github.com/runnerr0/lookback/internal/history"
)

type jsonEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Time  int64  `json:"time"`
}

type jsonSession struct {
	Entries []jsonEntry `json:"entries"`
}

type jsonDay struct {
	Day      string        `json:"day"`
	Sessions []jsonSession `json:"sessions"`
}

// JSON renders the grouped history as machine-readable output: an array
// of days, each holding its sessions in order. Written on End, once the
// buckets are complete.
type JSON struct {
	w       io.Writer
	buckets []*history.DayBucket
}

// NewJSON returns a JSON sink writing to w on End.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// Append records newly opened buckets in arrival order.
func (j *JSON) Append(p history.Placement) error {
	if p.NewBucket {
		j.buckets = append(j.buckets, p.Bucket)
	}
	return nil
}

// End encodes the accumulated buckets.
func (j *JSON) End() error {
	return j.Flush()
}

// Flush encodes the buckets accumulated so far. Used directly when a
// load stops before end of history.
func (j *JSON) Flush() error {
	days := make([]jsonDay, 0, len(j.buckets))
	for _, b := range j.buckets {
		day := jsonDay{Day: b.Day.String(), Sessions: make([]jsonSession, 0, len(b.Sessions))}
		for _, s := range b.Sessions {
			sess := jsonSession{Entries: make([]jsonEntry, 0, len(s.Entries))}
			for _, e := range s.Entries {
				sess.Entries = append(sess.Entries, jsonEntry{URL: e.URL, Title: e.Title, Time: e.Time})
			}
			day.Sessions = append(day.Sessions, sess)
		}
		days = append(days, day)
	}

	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(days)
}
