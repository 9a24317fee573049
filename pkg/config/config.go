// Package config loads gitpulse settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidDays      = errors.New("default days must not be negative")
	ErrInvalidMaxRepos  = errors.New("max repos must be positive")
	ErrInvalidWorkers   = errors.New("workers must not be negative")
	ErrInvalidLayout    = errors.New("feed limit and chart days must not be negative")
	ErrInvalidLogLevel  = errors.New("unknown log level")
	ErrInvalidLogFormat = errors.New("log format must be text or json")
)

// EnvPrefix prefixes environment overrides, e.g. GITPULSE_MAX_REPOS.
const EnvPrefix = "GITPULSE"

// Config holds all gitpulse settings.
type Config struct {
	ScanDirectories []string        `mapstructure:"scan_directories"`
	ExcludePatterns []string        `mapstructure:"exclude_patterns"`
	DefaultDays     int             `mapstructure:"default_days"`
	MaxRepos        int             `mapstructure:"max_repos"`
	Workers         int             `mapstructure:"workers"`
	FeedLimit       int             `mapstructure:"feed_limit"`
	ChartDays       int             `mapstructure:"chart_days"`
	Logging         LoggingConfig   `mapstructure:"logging"`
	Telemetry       TelemetryConfig `mapstructure:"telemetry"`

	// Source is the file the settings were read from, empty when only
	// defaults and environment were used.
	Source string `mapstructure:"-"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelWarn, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// JSON reports whether logs should be JSON formatted.
func (l LoggingConfig) JSON() bool {
	return strings.EqualFold(l.Format, "json")
}

// SearchPaths lists the files tried, in order, when no explicit path is
// given: ./config/settings.yaml, ~/.gitpulse.yaml and
// ~/.config/gitpulse/settings.yaml.
func SearchPaths() []string {
	paths := []string{filepath.Join("config", "settings.yaml")}

	home, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths,
			filepath.Join(home, ".gitpulse.yaml"),
			filepath.Join(home, ".config", "gitpulse", "settings.yaml"),
		)
	}

	return paths
}

// LoadConfig loads settings from configPath, or from the first existing
// SearchPaths entry when configPath is empty. A missing default file is not
// an error; a missing explicit file is.
func LoadConfig(configPath string) (*Config, error) {
	return Load(configPath, SearchPaths())
}

// Load is LoadConfig with an explicit search list.
func Load(configPath string, search []string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	source := configPath
	if source == "" {
		source = firstExisting(search)
	}

	if source != "" {
		viperCfg.SetConfigFile(source)
		viperCfg.SetConfigType("yaml")

		readErr := viperCfg.ReadInConfig()
		if readErr != nil {
			var notFoundErr viper.ConfigFileNotFoundError
			if !errors.As(readErr, &notFoundErr) {
				return nil, fmt.Errorf("failed to read config file: %w", readErr)
			}
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	config.Source = source

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	viperCfg.SetDefault("scan_directories", []string{cwd})
	viperCfg.SetDefault("exclude_patterns", DefaultExcludePatterns())
	viperCfg.SetDefault("default_days", DefaultDays)
	viperCfg.SetDefault("max_repos", DefaultMaxRepos)
	viperCfg.SetDefault("workers", DefaultWorkers)
	viperCfg.SetDefault("feed_limit", DefaultFeedLimit)
	viperCfg.SetDefault("chart_days", DefaultChartDays)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.DefaultDays < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDays, c.DefaultDays)
	}

	if c.MaxRepos <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxRepos, c.MaxRepos)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}

	if c.FeedLimit < 0 || c.ChartDays < 0 {
		return fmt.Errorf("%w: feed_limit=%d chart_days=%d", ErrInvalidLayout, c.FeedLimit, c.ChartDays)
	}

	_, err := c.Logging.SlogLevel()
	if err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}
