package cmd

import (
	"os/signal"
	"syscall"

	"github.com/deliverypulse/pulse/core"
	"github.com/deliverypulse/pulse/internal/api"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scoring, risks and briefs over HTTP.",
	Long: `Start an HTTP server exposing the scoring pipeline.

Endpoints:
  GET  /healthz
  POST /v1/score   {week_ending, rows, prior?}
  POST /v1/risks   {week_ending, rows, prior?}  (?limit=N)
  POST /v1/brief   {week_ending, rows, prior?}

Validation failures return 422 with the error text.

Examples:
  # Listen on the default address
  pulse serve

  # Listen on a custom port with request logging
  pulse serve --addr :9090 --verbose`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if !cfg.Verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := api.NewServer(core.OptionsFromConfig(cfg), contract.LoggerFromContext(rootCtx))
		return server.Run(ctx, cfg.ServeAddr)
	},
}
