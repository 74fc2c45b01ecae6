// Package commands implements CLI command handlers for filescope.
package commands

import (
	"log/slog"
	"os"

	"github.com/filescope/filescope/internal/analyzer"
	"github.com/filescope/filescope/internal/config"
	"github.com/filescope/filescope/internal/dirscan"
	"github.com/filescope/filescope/internal/fsio"
	"github.com/filescope/filescope/internal/observability"
	"github.com/filescope/filescope/internal/search"
	"github.com/filescope/filescope/pkg/metrics"
	"github.com/filescope/filescope/pkg/version"
)

// GlobalOptions holds flags shared by all commands.
type GlobalOptions struct {
	Verbose    bool
	Quiet      bool
	ConfigPath string
}

// App holds the wired services behind every command.
type App struct {
	Config    *config.Config
	Providers observability.Providers
	Analyzer  *analyzer.Service
	Scanner   *dirscan.Scanner
	Search    *search.Engine
}

// newApp loads configuration, initializes observability for the given mode,
// and wires the service graph.
func newApp(opts *GlobalOptions, mode observability.AppMode) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(obsConfig(cfg, opts, mode))
	if err != nil {
		return nil, err
	}

	logger := providers.Logger

	fsm := fsio.NewManager(fsio.Options{
		MaxFileSize:     cfg.MaxFileSizeBytes(),
		AllowSymlinks:   cfg.Security.AllowSymlinks,
		RestrictedPaths: cfg.Security.RestrictedPaths,
	}, logger)

	registry := metrics.NewRegistry(logger)

	return &App{
		Config:    cfg,
		Providers: providers,
		Analyzer:  analyzer.NewService(fsm, registry, logger),
		Scanner:   dirscan.NewScanner(fsm, cfg.Security.MaxDirectoryDepth, logger),
		Search: search.NewEngine(fsm, search.Limits{
			ContextLines:   cfg.Analysis.MaxContextLines,
			MatchesPerFile: cfg.Analysis.MaxMatchesPerFile,
			TotalMatches:   cfg.Analysis.MaxTotalMatches,
		}, logger),
	}, nil
}

func obsConfig(cfg *config.Config, opts *GlobalOptions, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = logLevel(cfg, opts)
	obsCfg.LogJSON = mode == observability.ModeMCP || cfg.Logging.Format == "json"

	if cfg.Observability.TracingEnabled {
		obsCfg.OTLPEndpoint = cfg.Observability.TracingEndpoint
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		obsCfg.OTLPEndpoint = endpoint
	}

	obsCfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"

	if opts.Verbose {
		obsCfg.DebugTrace = true
	}

	return obsCfg
}

func logLevel(cfg *config.Config, opts *GlobalOptions) slog.Level {
	switch {
	case opts.Quiet:
		return slog.LevelError
	case opts.Verbose:
		return slog.LevelDebug
	}

	switch cfg.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
