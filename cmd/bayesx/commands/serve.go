package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thalesfsp/bayesx/internal/config"
	"github.com/thalesfsp/bayesx/internal/logger"
	"github.com/thalesfsp/bayesx/internal/printer"
	"github.com/thalesfsp/bayesx/internal/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference optimization service",
	Long: `Run the reference optimization service.

The service accepts a session's parameters, metric and experiments on
POST /process_experiments, fits a Gaussian process and answers with the next
point to try. For a single parameter it also returns the posterior on a grid
for plotting.

Configuration is read from the environment:
  BAYESX_SERVICE_ADDR     listen address (default :8000)
  BAYESX_ALLOWED_ORIGIN   CORS origin (default http://localhost:3000)
  BAYESX_ACQUISITION      ucb, pi, ei or thompson (default ucb)
  BAYESX_KAPPA            UCB exploration weight (default 2.5)
  BAYESX_GP_ALPHA         observation noise (default 0.001)
  BAYESX_GRID_POINTS      posterior grid size (default 1000)
  BAYESX_CANDIDATES       random candidates per suggestion (default 2000)
  BAYESX_RATE_LIMIT       requests per second, 0 disables (default 10)

Examples:
  # Listen on the default address
  bayesx serve

  # Listen elsewhere with debug logs
  BAYESX_LOG_LEVEL=debug bayesx serve --addr :9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides BAYESX_SERVICE_ADDR)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	p := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := config.LoadServiceConfig()
	if err != nil {
		return p.Error(
			"invalid service configuration",
			err.Error(),
			[]string{"Check the BAYESX_* environment variables"},
		)
	}

	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	log := logger.ForFormat(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.New(cfg, log)

	if err := service.Serve(ctx, cfg.Addr, svc.Handler(), log); err != nil {
		return p.Error(
			"optimization service stopped",
			err.Error(),
			[]string{"Check that " + cfg.Addr + " is free", "Pick another address with --addr"},
		)
	}

	return nil
}
