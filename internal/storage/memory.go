package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/runnerr0/lookback/internal/history"
)

// MemorySource implements Source in memory. It keeps the same ordering
// contract as SQLiteSource: newest first, ties broken by insertion
// order with the latest insertion first. Safe for concurrent use.
type MemorySource struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemorySource returns a MemorySource seeded with recs.
func NewMemorySource(recs ...Record) *MemorySource {
	m := &MemorySource{}
	m.recs = append(m.recs, recs...)
	return m
}

// EntriesBefore returns one page of served history.
func (m *MemorySource) EntriesBefore(_ context.Context, startTime int64, offset, limit int) ([]history.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if offset < 0 {
		offset = 0
	}

	type indexed struct {
		rec Record
		seq int
	}
	var matched []indexed
	for i, r := range m.recs {
		if !r.Redirect && r.Time <= startTime {
			matched = append(matched, indexed{rec: r, seq: i})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].rec.Time != matched[j].rec.Time {
			return matched[i].rec.Time > matched[j].rec.Time
		}
		return matched[i].seq > matched[j].seq
	})

	if offset >= len(matched) {
		return []history.Entry{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	entries := make([]history.Entry, 0, len(matched))
	for _, it := range matched {
		entries = append(entries, history.Entry{URL: it.rec.URL, Title: it.rec.Title, Time: it.rec.Time})
	}
	return entries, nil
}

// Add stores one visit.
func (m *MemorySource) Add(_ context.Context, rec Record) error {
	if rec.URL == "" {
		return fmt.Errorf("add visit: url is required")
	}
	if rec.Time == 0 {
		rec.Time = time.Now().Unix()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

// AddBatch stores visits, skipping records without a URL.
func (m *MemorySource) AddBatch(_ context.Context, recs []Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, rec := range recs {
		if rec.URL == "" {
			continue
		}
		if rec.Time == 0 {
			rec.Time = time.Now().Unix()
		}
		m.recs = append(m.recs, rec)
		n++
	}
	return n, nil
}

// Stats returns aggregate statistics about the stored history.
func (m *MemorySource) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{TotalVisits: int64(len(m.recs))}
	for i, r := range m.recs {
		if r.Redirect {
			stats.Redirects++
		}
		if i == 0 || r.Time < stats.OldestVisit.Unix() {
			stats.OldestVisit = time.Unix(r.Time, 0)
		}
		if i == 0 || r.Time > stats.NewestVisit.Unix() {
			stats.NewestVisit = time.Unix(r.Time, 0)
		}
	}
	return stats, nil
}

// Close is a no-op.
func (m *MemorySource) Close() error {
	return nil
}
