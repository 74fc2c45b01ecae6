package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/filescope/filescope/internal/mcp"
	"github.com/filescope/filescope/internal/observability"
)

// sidecarShutdownTimeout bounds the metrics listener drain on exit.
const sidecarShutdownTimeout = 5 * time.Second

// MCPCommand holds the flags for the mcp command.
type MCPCommand struct {
	global *GlobalOptions
	debug  bool
}

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *GlobalOptions) *cobra.Command {
	cmd := &MCPCommand{global: global}

	cobraCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes filescope analysis capabilities as tools that AI agents
can discover and invoke:
  - analyze_file: Code metrics for a single file
  - analyze_directory: Directory scan with per-language and per-extension counts
  - search_files: Glob, filename regex, and content search
  - get_file_metadata: File metadata without content analysis`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.debug, "debug", false, "Enable debug logging to stderr")

	return cobraCmd
}

// Run executes the mcp command.
func (c *MCPCommand) Run(cobraCmd *cobra.Command, _ []string) error {
	if c.debug {
		c.global.Verbose = true
	}

	app, err := newApp(c.global, observability.ModeMCP)
	if err != nil {
		return err
	}

	defer shutdownApp(app)

	logger := app.Providers.Logger
	meter := app.Providers.Meter

	var sidecar *http.Server

	if app.Config.Observability.MetricsEnabled {
		promHandler, promErr := observability.NewPrometheusHandler()
		if promErr != nil {
			return promErr
		}

		defer func() {
			shutdownErr := promHandler.Shutdown(context.Background())
			if shutdownErr != nil {
				logger.Warn("prometheus shutdown failed", "error", shutdownErr)
			}
		}()

		meter = promHandler.Meter("filescope")
		sidecar = startSidecar(app, promHandler, logger)

		defer stopSidecar(sidecar, logger)
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Analyzer: app.Analyzer,
		Scanner:  app.Scanner,
		Search:   app.Search,
		Logger:   logger,
		Metrics:  red,
		Tracer:   app.Providers.Tracer,
	})

	logger.Info("mcp server starting", "tools", srv.ListToolNames())

	return srv.Run(cobraCmd.Context())
}

// startSidecar serves /metrics, /healthz, and /readyz on the configured
// address. Listener failures are logged, not fatal; the MCP server keeps
// serving stdio.
func startSidecar(app *App, promHandler *observability.PrometheusHandler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promHandler.Handler())
	mux.Handle("/healthz", observability.HealthHandler("filescope"))
	mux.Handle("/readyz", observability.ReadyHandler("filescope", map[string]observability.ReadyCheck{
		"config": func() error { return app.Config.Validate() },
	}))

	server := &http.Server{
		Addr:              app.Config.Observability.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: sidecarShutdownTimeout,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener failed", "addr", server.Addr, "error", err)
		}
	}()

	logger.Info("metrics listener started", "addr", server.Addr)

	return server
}

func stopSidecar(server *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), sidecarShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		logger.Warn("metrics listener shutdown failed", "error", err)
	}
}
