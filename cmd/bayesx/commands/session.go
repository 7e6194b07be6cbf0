package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thalesfsp/bayesx"
	"github.com/thalesfsp/bayesx/internal/config"
	"github.com/thalesfsp/bayesx/internal/logger"
	"github.com/thalesfsp/bayesx/internal/printer"
)

var (
	sessionSeed   string
	sessionAPIURL string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Open an interactive optimization session",
	Long: `Open an interactive optimization session.

Define parameters and the metric, record experiments and ask the
optimization service for the next point to try. Nothing is saved: the
session lives until you quit.

A seed file can pre-fill the session:

  metric: yield
  parameters:
    - name: temp
      min: 0
      max: 100
  experiments:
    - values:
        temp: 50
        yield: 0.8

Configuration is read from the environment:
  BAYESX_API_URL          service base address (default http://localhost:8000)
  BAYESX_REQUEST_TIMEOUT  bound on one request (default 30s)
  BAYESX_METRIC_NAME      initial metric name (default Metric)

Examples:
  # Start empty
  bayesx session

  # Start from a seed file against another service
  bayesx session --seed runs.yaml --api-url http://optimizer:8000`,
	RunE: runSession,
}

func init() {
	sessionCmd.Flags().StringVar(&sessionSeed, "seed", "", "YAML file with parameters and experiments to start from")
	sessionCmd.Flags().StringVar(&sessionAPIURL, "api-url", "", "Service base address (overrides BAYESX_API_URL)")

	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	p := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if sessionAPIURL != "" {
		if err := os.Setenv("BAYESX_API_URL", sessionAPIURL); err != nil {
			return err
		}
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		return p.Error(
			"invalid session configuration",
			err.Error(),
			[]string{"Check the BAYESX_* environment variables", "Pass the service address with --api-url"},
		)
	}

	log := logger.ForFormat(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())

	client := bayesx.NewClient(cfg.APIURL,
		bayesx.WithTimeout(cfg.RequestTimeout),
		bayesx.WithClientLogger(log),
	)

	session := bayesx.NewSession(client,
		bayesx.WithMetricName(cfg.MetricName),
		bayesx.WithLogger(log),
	)

	if sessionSeed != "" {
		seed, err := config.LoadSeed(sessionSeed)
		if err != nil {
			return p.Error(
				"cannot load seed file",
				err.Error(),
				[]string{"Check the file path", "Check the file against the format in \"bayesx session --help\""},
			)
		}

		applySeed(session, seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p.Success("Session %s against %s\n", session.ID(), cfg.APIURL)
	p.Info("Type \"help\" for commands.\n\n")

	sh := newShell(session, p)
	sh.show()

	return sh.run(ctx, cmd.InOrStdin())
}
