package main

import (
	"os"

	"github.com/thalesfsp/bayesx/cmd/bayesx/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the printer package before they get here.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
