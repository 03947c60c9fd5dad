package render

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/runnerr0/lookback/internal/history"
)

const (
	defaultWidth  = 100
	minFieldWidth = 8

	captionLayout = "Monday, January 2, 2006"
	clockLayout   = "15:04"
	ellipsis      = "…"

	sessionMark = "§"
	endMark     = "End of history"
)

// Text renders placements as a terminal listing: a caption per day, a
// separator between sessions of the same day, one row per visit. Color
// is dropped automatically on NO_COLOR or a non-terminal stdout via
// color.NoColor.
type Text struct {
	w     io.Writer
	width int
	loc   *time.Location
	rows  int

	caption *color.Color
	dim     *color.Color
}

// NewText returns a Text sink writing rows of at most width cells to w.
// Day captions and clock times use loc; nil means local time.
func NewText(w io.Writer, width int, loc *time.Location) *Text {
	if width <= 0 {
		width = defaultWidth
	}
	if loc == nil {
		loc = time.Local
	}
	return &Text{
		w:       w,
		width:   width,
		loc:     loc,
		caption: color.New(color.FgYellow, color.Bold),
		dim:     color.New(color.Faint),
	}
}

// Append writes one visit row, preceded by a day caption or a session
// separator when the placement opened one. The separator is only drawn
// between sessions, never under a fresh caption.
func (t *Text) Append(p history.Placement) error {
	if p.NewBucket {
		if t.rows > 0 {
			fmt.Fprintln(t.w)
		}
		if _, err := t.caption.Fprintln(t.w, p.Bucket.Day.Time(t.loc).Format(captionLayout)); err != nil {
			return err
		}
	} else if p.NewSession {
		if _, err := t.dim.Fprintln(t.w, " "+sessionMark); err != nil {
			return err
		}
	}

	when := time.Unix(p.Entry.Time, 0).In(t.loc).Format(clockLayout)
	host := p.Entry.Host()

	avail := t.width - len(clockLayout) - 2
	titleWidth := avail * 3 / 5
	if titleWidth < minFieldWidth {
		titleWidth = minFieldWidth
	}
	title := runewidth.FillRight(runewidth.Truncate(p.Entry.DisplayTitle(), titleWidth, ellipsis), titleWidth)

	urlWidth := avail - titleWidth - runewidth.StringWidth(host) - 4
	if urlWidth < minFieldWidth {
		urlWidth = minFieldWidth
	}
	link := runewidth.Truncate(p.Entry.URL, urlWidth, ellipsis)

	if _, err := fmt.Fprintf(t.w, "%s  %s  %s  %s\n", when, title, host, t.dim.Sprint(link)); err != nil {
		return err
	}
	t.rows++
	return nil
}

// End writes the terminal end-of-history line.
func (t *Text) End() error {
	if t.rows > 0 {
		fmt.Fprintln(t.w)
	}
	_, err := t.dim.Fprintln(t.w, endMark)
	return err
}
