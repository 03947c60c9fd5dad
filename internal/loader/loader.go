package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runnerr0/lookback/internal/history"
)

var (
	// ErrEndOfHistory reports that the stream is exhausted. It is a
	// normal terminal state, not a failure; callers stop triggering
	// further loads.
	ErrEndOfHistory = errors.New("loader: end of history")

	// ErrBusy reports that a page load is already in flight. The
	// triggering call is dropped, not queued.
	ErrBusy = errors.New("loader: page load already in flight")
)

// Fetcher delivers one page of history for a cursor-built request.
type Fetcher interface {
	FetchPage(ctx context.Context, req history.PageRequest) ([]history.Entry, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req history.PageRequest) ([]history.Entry, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, req history.PageRequest) ([]history.Entry, error) {
	return f(ctx, req)
}

// Sink consumes placements as pages arrive. End is called exactly
// once, when the stream reaches its end.
type Sink interface {
	Append(p history.Placement) error
	End() error
}

// Loader binds a cursor, a fetcher, a grouper and a sink into the
// request/response cycle. All cursor and grouper mutation happens
// inside LoadNext under a single lock, so responses are handled one
// at a time no matter how the trigger side is scheduled.
type Loader struct {
	mu      sync.Mutex
	fetcher Fetcher
	sink    Sink
	cursor  history.Cursor
	grouper *history.Grouper
	pages   int
	entries int
}

// New returns a loader that splits sessions at gap, bucketing days in
// loc (nil means local time).
func New(f Fetcher, s Sink, gap time.Duration, loc *time.Location) *Loader {
	return &Loader{
		fetcher: f,
		sink:    s,
		grouper: history.NewGrouper(gap, loc),
	}
}

// LoadNext runs one request/response cycle: build the next request,
// fetch the page, advance the cursor and stream the placements to the
// sink. At most one cycle runs at a time; a call arriving while one is
// in flight returns ErrBusy. Once the stream is exhausted no request
// is issued and every call returns ErrEndOfHistory, including the call
// that received the empty page (after it has told the sink via End).
//
// A fetch failure leaves the cursor untouched, so the next call
// re-requests the same page.
func (l *Loader) LoadNext(ctx context.Context) error {
	if !l.mu.TryLock() {
		return ErrBusy
	}
	defer l.mu.Unlock()

	if l.cursor.Exhausted() {
		return ErrEndOfHistory
	}

	req := l.cursor.BuildRequest()
	entries, err := l.fetcher.FetchPage(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}

	if l.cursor.ConsumePage(entries) {
		if err := l.sink.End(); err != nil {
			return fmt.Errorf("finish sink: %w", err)
		}
		return ErrEndOfHistory
	}

	for _, e := range entries {
		if err := l.sink.Append(l.grouper.Place(e)); err != nil {
			return fmt.Errorf("append placement: %w", err)
		}
	}
	l.pages++
	l.entries += len(entries)
	return nil
}

// Exhausted reports whether the stream has reached its end.
func (l *Loader) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor.Exhausted()
}

// Pages returns the number of non-empty pages loaded so far.
func (l *Loader) Pages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pages
}

// Entries returns the number of entries loaded so far.
func (l *Loader) Entries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries
}

// LoadAll drives LoadNext until the stream is exhausted. Fetch and
// sink errors abort the walk and surface unchanged.
func (l *Loader) LoadAll(ctx context.Context) error {
	for {
		err := l.LoadNext(ctx)
		if errors.Is(err, ErrEndOfHistory) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
