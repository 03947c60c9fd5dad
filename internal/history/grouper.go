package history

import "time"

// Day identifies a local calendar day, the key for grouping entries
// into buckets.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// DayOf returns the calendar day containing t.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Date: d}
}

// Time returns midnight at the start of the day in loc.
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, loc)
}

func (d Day) String() string {
	return d.Time(time.UTC).Format("2006-01-02")
}

// Session is a burst of visits within one day bucket, separated from
// its neighbors by idle gaps longer than the grouper's threshold.
type Session struct {
	Entries []Entry
}

// DayBucket owns the ordered sessions of one calendar day. Buckets are
// created lazily as entries for new days arrive and live until the
// grouper is discarded.
type DayBucket struct {
	Day      Day
	Sessions []*Session
}

// Placement records where one entry landed: its bucket, its session,
// and whether either was created by this entry. Renderers draw a day
// caption when NewBucket is set and a session separator when
// NewSession is set without NewBucket, so a separator never precedes a
// bucket's first session.
type Placement struct {
	Bucket     *DayBucket
	Session    *Session
	Entry      Entry
	NewBucket  bool
	NewSession bool
}

// Grouper partitions a reverse-chronological entry stream into day
// buckets and gap-separated sessions. The gap is measured against the
// previously placed entry regardless of which bucket it landed in, so
// an idle stretch spanning midnight still starts a new session; a
// session itself never spans two buckets because each bucket owns its
// own session list.
type Grouper struct {
	gap time.Duration
	loc *time.Location

	buckets map[Day]*DayBucket
	order   []*DayBucket

	current    *DayBucket
	lastPlaced int64
	placedAny  bool
}

// NewGrouper returns a grouper splitting sessions at gap. A gap <= 0
// disables splitting, leaving one session per bucket. Entries are
// assigned to days in loc; nil means the local time zone.
func NewGrouper(gap time.Duration, loc *time.Location) *Grouper {
	if loc == nil {
		loc = time.Local
	}
	return &Grouper{
		gap:     gap,
		loc:     loc,
		buckets: make(map[Day]*DayBucket),
	}
}

// Place assigns one entry to its bucket and session. Entries must be
// fed in page arrival order; the grouper tracks the previous entry's
// timestamp across pages, so placements stay consistent over the whole
// loading session.
func (g *Grouper) Place(e Entry) Placement {
	day := DayOf(time.Unix(e.Time, 0).In(g.loc))

	b, ok := g.buckets[day]
	if !ok {
		b = &DayBucket{Day: day}
		g.buckets[day] = b
		g.order = append(g.order, b)
	}
	newBucket := !ok

	// A new session starts on the first entry ever, on any bucket
	// change, or when the idle gap exceeds the threshold. The stream
	// is reverse-chronological, so the gap is previous minus current.
	newSession := !g.placedAny || b != g.current
	if !newSession && g.gap > 0 && g.lastPlaced-e.Time > int64(g.gap/time.Second) {
		newSession = true
	}

	var s *Session
	if newSession {
		s = &Session{}
		b.Sessions = append(b.Sessions, s)
	} else {
		s = b.Sessions[len(b.Sessions)-1]
	}
	s.Entries = append(s.Entries, e)

	g.current = b
	g.lastPlaced = e.Time
	g.placedAny = true

	return Placement{
		Bucket:     b,
		Session:    s,
		Entry:      e,
		NewBucket:  newBucket,
		NewSession: newSession,
	}
}

// Buckets returns the day buckets in creation order, which is newest
// day first for well-ordered input.
func (g *Grouper) Buckets() []*DayBucket {
	return g.order
}

// Placed reports whether any entry has been placed yet.
func (g *Grouper) Placed() bool {
	return g.placedAny
}
