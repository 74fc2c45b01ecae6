package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

// configName is the config file name without extension.
const configName = ".filescope"

// configType is the default config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for filescope settings.
const envPrefix = "FILESCOPE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

//go:embed schema.json
var configSchema string

// ErrSchemaViolation indicates the config file failed JSON schema validation.
var ErrSchemaViolation = errors.New("config schema violation")

// Load loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path;
// explicit JSON files are additionally checked against the config schema.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		if strings.HasSuffix(configPath, ".json") {
			schemaErr := validateSchema(configPath)
			if schemaErr != nil {
				return nil, schemaErr
			}
		}

		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// validateSchema checks a JSON config file against the embedded schema.
func validateSchema(path string) error {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + path)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(details, "; "))
	}

	return nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("analysis.max_file_size", DefaultMaxFileSize)
	viperCfg.SetDefault("analysis.chunk_size", DefaultChunkSize)
	viperCfg.SetDefault("analysis.max_context_lines", DefaultContextLines)
	viperCfg.SetDefault("analysis.max_matches_per_file", DefaultMatchesPerFile)
	viperCfg.SetDefault("analysis.max_total_matches", DefaultTotalMatches)
	viperCfg.SetDefault("analysis.enable_complexity", DefaultComplexity)
	viperCfg.SetDefault("analysis.enable_todo_scan", DefaultTodoDetection)

	viperCfg.SetDefault("security.allow_symlinks", DefaultAllowSymlinks)
	viperCfg.SetDefault("security.restricted_paths", []string{})
	viperCfg.SetDefault("security.max_directory_depth", DefaultMaxDirDepth)

	viperCfg.SetDefault("server.name", DefaultServerName)
	viperCfg.SetDefault("server.debug", DefaultServerDebug)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("observability.metrics_enabled", DefaultMetricsEnabled)
	viperCfg.SetDefault("observability.metrics_addr", DefaultMetricsAddr)
	viperCfg.SetDefault("observability.tracing_enabled", DefaultTracingEnabled)
	viperCfg.SetDefault("observability.tracing_endpoint", DefaultTracingEndpoint)
}
