package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ServeCommand serves stored history over localhost HTTP.
type ServeCommand struct {
	Port     int    `long:"port" description:"Override endpoint port"`
	DB       string `long:"db" description:"Override SQLite database path"`
	PageSize int    `long:"page-size" description:"Override entries served per page"`

	globals *GlobalFlags
	version string
}

// ViewCommand loads pages from the endpoint and renders them.
type ViewCommand struct {
	Pages       int    `long:"pages" description:"Number of pages to load (0 = until end of history)" default:"1"`
	Interactive bool   `long:"interactive" short:"i" description:"Prompt between pages; ignores --pages"`
	Gap         string `long:"gap" description:"Session gap override (e.g. 45m, 2h; 0 disables splitting)"`
	Width       int    `long:"width" description:"Override row width"`
	Endpoint    string `long:"endpoint" description:"Override data endpoint URL"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // injectable for testing; nil means os.Stdin
	stdout  io.Writer // injectable for testing; nil means os.Stdout
}

// ExportCommand drains the endpoint into a static HTML page.
type ExportCommand struct {
	Out      string `long:"out" description:"Output file (default stdout)"`
	Gap      string `long:"gap" description:"Session gap override (e.g. 45m, 2h; 0 disables splitting)"`
	Endpoint string `long:"endpoint" description:"Override data endpoint URL"`

	globals *GlobalFlags
	version string
}

// ImportCommand bulk-loads JSONL visit records into the database.
type ImportCommand struct {
	File string `long:"file" description:"JSONL input file, one {url, title, time} object per line (- = stdin)" default:"-"`
	DB   string `long:"db" description:"Override SQLite database path"`

	globals *GlobalFlags
	version string
}

// StatusCommand reports endpoint health, database statistics, and
// the configured page and gap settings.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
