package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/lookback/internal/client"
	"github.com/runnerr0/lookback/internal/loader"
	"github.com/runnerr0/lookback/internal/render"
)

// flusher is implemented by renderers that buffer output until the
// stream ends; a load that stops early flushes them explicitly.
type flusher interface {
	Flush() error
}

// Execute implements the go-flags Commander interface for ViewCommand.
func (c *ViewCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	gap := cfg.History.Gap()
	if c.Gap != "" {
		gap, err = parseDuration(c.Gap)
		if err != nil {
			return fmt.Errorf("invalid --gap: %w", err)
		}
	}

	width := cfg.Viewer.Width
	if c.Width > 0 {
		width = c.Width
	}

	endpoint := cfg.Endpoint.DataURL()
	if c.Endpoint != "" {
		endpoint = c.Endpoint
	}

	loc, err := cfg.Viewer.Location()
	if err != nil {
		return err
	}

	format := cfg.Viewer.Format
	if c.globals != nil && c.globals.JSON {
		format = "json"
	}

	fetcher := client.New(endpoint, cfg.Endpoint.Timeout(), cfg.Endpoint.MaxRetries)
	return c.run(fetcher, format, gap, width, loc)
}

// run drives the loader with resolved settings; split from Execute so
// tests can supply a stub fetcher.
func (c *ViewCommand) run(fetcher loader.Fetcher, format string, gap time.Duration, width int, loc *time.Location) error {
	out := c.stdout
	if out == nil {
		out = os.Stdout
	}
	stdin := c.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	var sink loader.Sink
	switch format {
	case "json":
		sink = render.NewJSON(out)
	case "", "text":
		sink = render.NewText(out, width, loc)
	default:
		return fmt.Errorf("unsupported viewer format: %q", format)
	}

	ld := loader.New(fetcher, sink, gap, loc)
	ctx := context.Background()

	// Interactive mode ignores the page cap; the prompt decides when
	// to stop.
	pages := c.Pages
	if c.Interactive {
		pages = 0
	}

	prompt := bufio.NewScanner(stdin)
	ended := false
	for n := 1; ; n++ {
		err := ld.LoadNext(ctx)
		if errors.Is(err, loader.ErrEndOfHistory) {
			ended = true
			break
		}
		if err != nil {
			return err
		}
		if pages > 0 && n >= pages {
			break
		}
		if c.Interactive && !promptMore(out, prompt) {
			break
		}
	}

	if c.globals != nil && c.globals.Verbose {
		log.Printf("loaded %d pages (%d entries)", ld.Pages(), ld.Entries())
	}
	if ended {
		return nil
	}

	// Stopped before end of history; renderers that buffer output
	// still need to emit what was loaded.
	if f, ok := sink.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// promptMore asks whether to load another page. Enter loads more, q (or
// closed input) stops.
func promptMore(out io.Writer, in *bufio.Scanner) bool {
	fmt.Fprint(out, "-- more? [Enter/q] ")
	if !in.Scan() {
		return false
	}
	answer := strings.TrimSpace(in.Text())
	return !strings.EqualFold(answer, "q")
}
