package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bayesx",
	Short: "bayesx - interactive Bayesian optimization sessions",
	Long: `bayesx drives an interactive Bayesian optimization workflow.

Define tunable parameters and one metric, record experiment outcomes, and
ask the optimization service for the next point to try. The service's
posterior (Gaussian-process mean and uncertainty band) is shown alongside
the observed data.

Run "bayesx serve" to start the reference optimization service, and
"bayesx session" to open a session against it.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Unknown flags are an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. Called once by main.main().
func Execute() error {
	// Errors are printed by the printer package with colour
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
