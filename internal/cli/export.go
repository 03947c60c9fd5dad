package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/runnerr0/lookback/internal/client"
	"github.com/runnerr0/lookback/internal/loader"
	"github.com/runnerr0/lookback/internal/render"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
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

	endpoint := cfg.Endpoint.DataURL()
	if c.Endpoint != "" {
		endpoint = c.Endpoint
	}

	loc, err := cfg.Viewer.Location()
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	fetcher := client.New(endpoint, cfg.Endpoint.Timeout(), cfg.Endpoint.MaxRetries)
	return c.run(fetcher, out, gap, loc)
}

// run drains the endpoint into the chosen renderer; split from Execute
// so tests can supply a stub fetcher.
func (c *ExportCommand) run(fetcher loader.Fetcher, out io.Writer, gap time.Duration, loc *time.Location) error {
	var sink loader.Sink
	if c.globals != nil && c.globals.JSON {
		sink = render.NewJSON(out)
	} else {
		sink = render.NewHTML(out, loc)
	}

	ld := loader.New(fetcher, sink, gap, loc)
	if err := ld.LoadAll(context.Background()); err != nil {
		return err
	}
	if c.globals != nil && c.globals.Verbose {
		log.Printf("exported %d pages (%d entries)", ld.Pages(), ld.Entries())
	}
	return nil
}
