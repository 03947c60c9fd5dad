package config

const (
	// DefaultPageSize matches the page size the endpoint serves when a
	// request names none.
	DefaultPageSize = 300

	// DefaultGapMinutes is the idle stretch that starts a new session.
	DefaultGapMinutes = 30

	// DefaultViewerWidth is the row width of the text renderer.
	DefaultViewerWidth = 100
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			GapMinutes: DefaultGapMinutes,
			PageSize:   DefaultPageSize,
		},
		Endpoint: EndpointConfig{
			Host:                  "127.0.0.1",
			Port:                  8741,
			RequestTimeoutSeconds: 10,
			MaxRetries:            3,
		},
		Storage: StorageConfig{
			Path:       "~/.config/lookback",
			SQLiteFile: "history.db",
		},
		Viewer: ViewerConfig{
			Width:    DefaultViewerWidth,
			Format:   "text",
			Timezone: "",
		},
	}
}
