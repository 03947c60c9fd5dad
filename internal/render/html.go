package render

import (
	"html/template"
	"io"
	"time"

	"github.com/runnerr0/lookback/internal/history"
)

var historyTmpl = template.Must(template.New("history").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Browsing history</title>
</head>
<body>
{{- range .Days}}
<table class="day">
<caption>{{.Caption}}</caption>
{{- range $i, $s := .Sessions}}
{{- if $i}}
<tr class="session-separator"><td colspan="3"></td></tr>
{{- end}}
{{- range $s.Entries}}
<tr class="entry">
<td class="time">{{.Clock}}</td>
<td class="title"><a href="{{.URL}}">{{.Title}}</a></td>
<td class="host">{{.Host}}</td>
</tr>
{{- end}}
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

type htmlData struct {
	Days []htmlDay
}

type htmlDay struct {
	Caption  string
	Sessions []htmlSession
}

type htmlSession struct {
	Entries []htmlEntry
}

type htmlEntry struct {
	URL   string
	Title string
	Host  string
	Clock string
}

// HTML renders the grouped history as a static page, one table per day
// with a separator row between sessions. Rendering happens in End, once
// the buckets have their full contents; Append only tracks which
// buckets exist.
type HTML struct {
	w       io.Writer
	loc     *time.Location
	buckets []*history.DayBucket
}

// NewHTML returns an HTML sink writing the page to w on End. Captions
// and clock times use loc; nil means local time.
func NewHTML(w io.Writer, loc *time.Location) *HTML {
	if loc == nil {
		loc = time.Local
	}
	return &HTML{w: w, loc: loc}
}

// Append records newly opened buckets in arrival order.
func (h *HTML) Append(p history.Placement) error {
	if p.NewBucket {
		h.buckets = append(h.buckets, p.Bucket)
	}
	return nil
}

// End renders the accumulated buckets and writes the page.
func (h *HTML) End() error {
	return h.Flush()
}

// Flush renders the buckets accumulated so far. Used directly when a
// load stops before end of history.
func (h *HTML) Flush() error {
	data := htmlData{Days: make([]htmlDay, 0, len(h.buckets))}
	for _, b := range h.buckets {
		day := htmlDay{
			Caption:  b.Day.Time(h.loc).Format(captionLayout),
			Sessions: make([]htmlSession, 0, len(b.Sessions)),
		}
		for _, s := range b.Sessions {
			sess := htmlSession{Entries: make([]htmlEntry, 0, len(s.Entries))}
			for _, e := range s.Entries {
				sess.Entries = append(sess.Entries, htmlEntry{
					URL:   e.URL,
					Title: e.DisplayTitle(),
					Host:  e.Host(),
					Clock: time.Unix(e.Time, 0).In(h.loc).Format(clockLayout),
				})
			}
			day.Sessions = append(day.Sessions, sess)
		}
		data.Days = append(data.Days, day)
	}
	return historyTmpl.Execute(h.w, data)
}
