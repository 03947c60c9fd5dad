package storage

import "time"

// Record is a stored visit. It is a superset of what the endpoint
// serves: redirect hops are kept in the database but never appear in
// served pages.
type Record struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Time     int64  `json:"time"`
	Redirect bool   `json:"redirect,omitempty"`
}

// Stats holds aggregate statistics about a history database.
type Stats struct {
	TotalVisits       int64
	Redirects         int64
	OldestVisit       time.Time
	NewestVisit       time.Time
	DatabaseSizeBytes int64
}
