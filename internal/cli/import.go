package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/lookback/internal/storage"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	dbPath, err := databasePath(c.DB, cfg)
	if err != nil {
		return err
	}

	src, db, err := openSource(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer src.Close()

	var in io.Reader = os.Stdin
	if c.File != "" && c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	return c.executeWithSource(src, in)
}

// executeWithSource reads JSONL records from r and stores them (used by
// tests).
func (c *ImportCommand) executeWithSource(src storage.Source, r io.Reader) error {
	var recs []storage.Record
	var skipped int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec storage.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if rec.URL == "" {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	n, err := src.AddBatch(context.Background(), recs)
	if err != nil {
		return fmt.Errorf("store records: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"imported": n,
			"skipped":  skipped,
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Printf("Imported %d visits", n)
	if skipped > 0 {
		fmt.Printf(" (%d without a URL skipped)", skipped)
	}
	fmt.Println()
	return nil
}
