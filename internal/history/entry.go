package history

import "net/url"

// Entry is a single visit record as served by the history endpoint.
// Time is seconds since the Unix epoch. Within a page entries are
// ordered non-increasing by Time; entries sharing a timestamp keep the
// stable relative order chosen by the backend.
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Time  int64  `json:"time"`
}

// DisplayTitle returns the title, falling back to the URL for untitled
// visits.
func (e Entry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.URL
}

// Host returns the hostname part of the entry URL, or "" if the URL
// does not parse.
func (e Entry) Host() string {
	u, err := url.Parse(e.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
