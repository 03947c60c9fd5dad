package history

// PageRequest holds the query parameters for one page fetch against
// the history endpoint. A nil StartTime asks for the most recent page.
type PageRequest struct {
	Offset    int
	StartTime *int64
}

// Cursor tracks progress through the server-ordered history stream and
// computes the parameters of the next page request.
//
// The backend pages with `time <= start_time`, so every entry that
// shares the boundary timestamp of one page shows up again at the top
// of the next. The cursor therefore carries an offset alongside the
// time bound: after each page it counts the entries tied at the page's
// minimum timestamp, and the next request tells the backend to skip
// exactly that many. This assumes the backend orders tied entries
// stably across requests (see storage.Source).
//
// The zero value is a valid cursor positioned before the newest entry.
type Cursor struct {
	nextTime   int64
	haveTime   bool
	nextOffset int
	exhausted  bool
}

// BuildRequest returns the parameters for the next page request. It is
// a pure read of cursor state; StartTime is absent before the first
// page has been consumed.
func (c *Cursor) BuildRequest() PageRequest {
	req := PageRequest{Offset: c.nextOffset}
	if c.haveTime {
		t := c.nextTime
		req.StartTime = &t
	}
	return req
}

// ConsumePage advances the cursor over one received page and reports
// whether the stream is done. An empty page marks the cursor exhausted,
// permanently: the caller must stop issuing requests.
//
// For a non-empty page the new bound is the page's last timestamp (its
// minimum, given the ordering invariant) and the new offset is the
// count of entries in the page tied at that timestamp.
func (c *Cursor) ConsumePage(entries []Entry) bool {
	if c.exhausted {
		return true
	}
	if len(entries) == 0 {
		c.exhausted = true
		return true
	}

	min := entries[len(entries)-1].Time
	ties := 0
	for _, e := range entries {
		if e.Time == min {
			ties++
		}
	}

	c.nextTime = min
	c.haveTime = true
	c.nextOffset = ties
	return false
}

// Exhausted reports whether an empty page has been received. Once true
// it never resets.
func (c *Cursor) Exhausted() bool {
	return c.exhausted
}
