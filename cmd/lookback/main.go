package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/lookback/internal/cli"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "lookback: %v\n", err)
		os.Exit(1)
	}
}
