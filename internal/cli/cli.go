package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve  *ServeCommand
	View   *ViewCommand
	Export *ExportCommand
	Import *ImportCommand
	Status *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "lookback"
	parser.LongDescription = "Incremental browsing history viewer: serve visit history over localhost, load it page by page, and render it grouped by day and session."

	cmds := &commands{
		Serve:  &ServeCommand{globals: &globals, version: version},
		View:   &ViewCommand{globals: &globals, version: version},
		Export: &ExportCommand{globals: &globals, version: version},
		Import: &ImportCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("serve", "Serve history over localhost HTTP", "Open the history database and serve paginated history data on the configured port.", cmds.Serve)
	parser.AddCommand("view", "Load and render history", "Load pages from the history endpoint and render them grouped by day and session.", cmds.View)
	parser.AddCommand("export", "Export history as HTML", "Drain the endpoint to end of history and write a static HTML page.", cmds.Export)
	parser.AddCommand("import", "Import visit records", "Bulk-load JSONL visit records into the history database.", cmds.Import)
	parser.AddCommand("status", "Show endpoint health and statistics", "Show endpoint health, database statistics, and configuration summary.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the Lookback CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("lookback %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
