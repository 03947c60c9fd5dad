package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/lookback/config.yaml"

// Config holds all Lookback configuration.
type Config struct {
	History  HistoryConfig  `yaml:"history"`
	Endpoint EndpointConfig `yaml:"endpoint"`
	Storage  StorageConfig  `yaml:"storage"`
	Viewer   ViewerConfig   `yaml:"viewer"`
}

type HistoryConfig struct {
	// GapMinutes is the idle stretch that splits a day into sessions.
	// Zero or negative disables splitting.
	GapMinutes int `yaml:"gap_minutes"`
	PageSize   int `yaml:"page_size"`
}

type EndpointConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	MaxRetries            int    `yaml:"max_retries"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type ViewerConfig struct {
	Width  int    `yaml:"width"`
	Format string `yaml:"format"`
	// Timezone is an IANA zone name for day grouping and clock times.
	// Empty means the local zone.
	Timezone string `yaml:"timezone"`
}

// Gap returns the session gap as a duration.
func (h HistoryConfig) Gap() time.Duration {
	return time.Duration(h.GapMinutes) * time.Minute
}

// DataURL returns the full URL of the history data endpoint.
func (e EndpointConfig) DataURL() string {
	return fmt.Sprintf("http://%s:%d/history/data", e.Host, e.Port)
}

// Timeout returns the per-request timeout as a duration.
func (e EndpointConfig) Timeout() time.Duration {
	return time.Duration(e.RequestTimeoutSeconds) * time.Second
}

// DatabasePath returns the expanded filesystem path of the SQLite file.
func (s StorageConfig) DatabasePath() (string, error) {
	dir, err := expandPath(s.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.SQLiteFile), nil
}

// Location resolves the viewer timezone.
func (v ViewerConfig) Location() (*time.Location, error) {
	if v.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return nil, fmt.Errorf("resolving timezone: %w", err)
	}
	return loc, nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A page size below 1 would break the pagination protocol.
	if cfg.History.PageSize < 1 {
		cfg.History.PageSize = DefaultPageSize
	}
	if cfg.Viewer.Width < 1 {
		cfg.Viewer.Width = DefaultViewerWidth
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
