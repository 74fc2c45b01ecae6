// Package config holds the filescope configuration model: analysis limits,
// filesystem safety rails, server identity, and logging.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Default analysis limits.
const (
	DefaultMaxFileSize     = "100MB"
	DefaultChunkSize       = 8192
	DefaultContextLines    = 3
	DefaultMatchesPerFile  = 100
	DefaultTotalMatches    = 1000
	DefaultComplexity      = true
	DefaultTodoDetection   = true
	DefaultAllowSymlinks   = false
	DefaultMaxDirDepth     = 50
	DefaultServerName      = "filescope"
	DefaultServerDebug     = false
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultMetricsAddr     = ":9090"
	DefaultMetricsEnabled  = false
	DefaultTracingEnabled  = false
	DefaultTracingEndpoint = "localhost:4317"
)

// Config is the top-level configuration struct for filescope.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Analysis      AnalysisConfig      `mapstructure:"analysis"      json:"analysis"`
	Security      SecurityConfig      `mapstructure:"security"      json:"security"`
	Server        ServerConfig        `mapstructure:"server"        json:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"       json:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability" json:"observability"`
}

// AnalysisConfig holds analysis and search limits.
type AnalysisConfig struct {
	MaxFileSize       string `mapstructure:"max_file_size"        json:"max_file_size"`
	ChunkSize         int    `mapstructure:"chunk_size"           json:"chunk_size"`
	MaxContextLines   int    `mapstructure:"max_context_lines"    json:"max_context_lines"`
	MaxMatchesPerFile int    `mapstructure:"max_matches_per_file" json:"max_matches_per_file"`
	MaxTotalMatches   int    `mapstructure:"max_total_matches"    json:"max_total_matches"`
	EnableComplexity  bool   `mapstructure:"enable_complexity"    json:"enable_complexity"`
	EnableTodoScan    bool   `mapstructure:"enable_todo_scan"     json:"enable_todo_scan"`
}

// SecurityConfig holds filesystem access restrictions.
type SecurityConfig struct {
	AllowSymlinks     bool     `mapstructure:"allow_symlinks"      json:"allow_symlinks"`
	RestrictedPaths   []string `mapstructure:"restricted_paths"    json:"restricted_paths"`
	MaxDirectoryDepth int      `mapstructure:"max_directory_depth" json:"max_directory_depth"`
}

// ServerConfig holds MCP server identity settings.
type ServerConfig struct {
	Name  string `mapstructure:"name"  json:"name"`
	Debug bool   `mapstructure:"debug" json:"debug"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// ObservabilityConfig holds metrics and tracing settings.
type ObservabilityConfig struct {
	MetricsEnabled  bool   `mapstructure:"metrics_enabled"  json:"metrics_enabled"`
	MetricsAddr     string `mapstructure:"metrics_addr"     json:"metrics_addr"`
	TracingEnabled  bool   `mapstructure:"tracing_enabled"  json:"tracing_enabled"`
	TracingEndpoint string `mapstructure:"tracing_endpoint" json:"tracing_endpoint"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMaxFileSize indicates the max file size cannot be parsed or is zero.
	ErrInvalidMaxFileSize = errors.New("analysis.max_file_size must be a positive byte size")
	// ErrInvalidChunkSize indicates the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("analysis.chunk_size must be positive")
	// ErrInvalidContextLines indicates the context line count is negative.
	ErrInvalidContextLines = errors.New("analysis.max_context_lines must be non-negative")
	// ErrInvalidMatchesPerFile indicates the per-file match cap is not positive.
	ErrInvalidMatchesPerFile = errors.New("analysis.max_matches_per_file must be positive")
	// ErrInvalidTotalMatches indicates the total match cap is not positive.
	ErrInvalidTotalMatches = errors.New("analysis.max_total_matches must be positive")
	// ErrInvalidDirectoryDepth indicates the directory depth bound is not positive.
	ErrInvalidDirectoryDepth = errors.New("security.max_directory_depth must be positive")
	// ErrInvalidLogLevel indicates an unknown logging level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of: debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unknown logging format.
	ErrInvalidLogFormat = errors.New("logging.format must be one of: text, json")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	analysisErr := c.validateAnalysis()
	if analysisErr != nil {
		return analysisErr
	}

	if c.Security.MaxDirectoryDepth <= 0 {
		return ErrInvalidDirectoryDepth
	}

	return c.validateLogging()
}

func (c *Config) validateAnalysis() error {
	size, err := humanize.ParseBytes(c.Analysis.MaxFileSize)
	if err != nil || size == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Analysis.MaxFileSize)
	}

	if c.Analysis.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	if c.Analysis.MaxContextLines < 0 {
		return ErrInvalidContextLines
	}

	if c.Analysis.MaxMatchesPerFile <= 0 {
		return ErrInvalidMatchesPerFile
	}

	if c.Analysis.MaxTotalMatches <= 0 {
		return ErrInvalidTotalMatches
	}

	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// MaxFileSizeBytes returns the parsed analysis.max_file_size limit.
// Validate must succeed before calling this.
func (c *Config) MaxFileSizeBytes() int64 {
	size, err := humanize.ParseBytes(c.Analysis.MaxFileSize)
	if err != nil {
		return 0
	}

	return int64(size)
}
