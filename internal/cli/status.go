package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/lookback/internal/config"
	"github.com/runnerr0/lookback/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	TotalVisits       int64  `json:"total_visits"`
	Redirects         int64  `json:"redirects"`
	OldestVisit       string `json:"oldest_visit,omitempty"`
	NewestVisit       string `json:"newest_visit,omitempty"`
	PageSize          int    `json:"page_size"`
	GapMinutes        int    `json:"gap_minutes"`
	EndpointURL       string `json:"endpoint_url"`
	EndpointUp        bool   `json:"endpoint_up"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	dbPath, err := cfg.Storage.DatabasePath()
	if err != nil {
		return err
	}

	src, db, err := openSource(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer src.Close()

	healthURL := fmt.Sprintf("http://%s:%d/health", cfg.Endpoint.Host, cfg.Endpoint.Port)
	return c.executeWithSource(src, dbPath, healthURL, cfg)
}

// executeWithSource runs status against a provided source (for testing).
func (c *StatusCommand) executeWithSource(src storage.Source, dbPath, healthURL string, cfg *config.Config) error {
	stats, err := src.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	// Prefer the file size; in-memory databases fall back to the
	// page-count figure the source reports.
	dbSize := stats.DatabaseSizeBytes
	if info, err := os.Stat(dbPath); err == nil {
		dbSize = info.Size()
	}

	up := checkEndpoint(healthURL)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(stats, dbPath, dbSize, cfg, up)
	}
	return c.printStatusHuman(stats, dbPath, dbSize, cfg, up)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, dbPath string, dbSize int64, cfg *config.Config, up bool) error {
	fmt.Println("Lookback Status")
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", dbPath, formatBytes(dbSize))
	fmt.Printf("Visits:        %s\n", formatNumber(stats.TotalVisits))
	fmt.Printf("Redirects:     %s\n", formatNumber(stats.Redirects))

	if stats.TotalVisits > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestVisit.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestVisit.Local().Format("2006-01-02"))
	}

	fmt.Printf("Page size:     %d\n", cfg.History.PageSize)
	if cfg.History.GapMinutes > 0 {
		fmt.Printf("Session gap:   %s\n", formatDurationHuman(cfg.History.Gap()))
	} else {
		fmt.Println("Session gap:   disabled")
	}

	fmt.Println()
	if up {
		fmt.Printf("Endpoint:      %s (up)\n", cfg.Endpoint.DataURL())
	} else {
		fmt.Printf("Endpoint:      %s (not running)\n", cfg.Endpoint.DataURL())
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, dbPath string, dbSize int64, cfg *config.Config, up bool) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: dbSize,
		TotalVisits:       stats.TotalVisits,
		Redirects:         stats.Redirects,
		PageSize:          cfg.History.PageSize,
		GapMinutes:        cfg.History.GapMinutes,
		EndpointURL:       cfg.Endpoint.DataURL(),
		EndpointUp:        up,
	}

	if stats.TotalVisits > 0 {
		out.OldestVisit = stats.OldestVisit.UTC().Format(time.RFC3339)
		out.NewestVisit = stats.NewestVisit.UTC().Format(time.RFC3339)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// checkEndpoint attempts an HTTP GET against the health endpoint.
// Returns true if it answers OK within 1 second.
func checkEndpoint(url string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
