// Package config loads and validates the CLI configuration from defaults,
// an optional config file, environment variables, and flags, in that
// order of precedence (lowest to highest).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/csv-charset/pkg/scanner"
)

const (
	// EnvPrefix namespaces environment variables, e.g. CSVCHARSET_WORKERS.
	EnvPrefix = "CSVCHARSET"
	// DefaultConfigName is the config file base name searched in standard
	// locations when --config is not given.
	DefaultConfigName = "csv-charset"
)

// ReportFormat selects how the final report is written to stdout.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
	ReportTOML ReportFormat = "toml"
)

// CLIOptions are the presentation-layer settings that never reach the
// engine: they change rendering, not aggregation.
type CLIOptions struct {
	NoProgress   bool         `mapstructure:"noProgress"`
	SummaryOnly  bool         `mapstructure:"summaryOnly"`
	Details      bool         `mapstructure:"details"`
	ReportFormat ReportFormat `mapstructure:"reportFormat"`
	Verbose      bool         `mapstructure:"-"`
}

// LoadAndValidate merges all configuration sources into engine Options and
// CLI options, validates them before any I/O, and builds the logger.
// topDir comes from the positional argument ("." when absent).
func LoadAndValidate(cfgFile, topDir string, verbose bool, flags *pflag.FlagSet) (scanner.Options, CLIOptions, *slog.Logger, error) {
	var opts scanner.Options
	var cliOpts CLIOptions

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return opts, cliOpts, newLogger(verbose), fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults/env/flags apply.
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	if err := v.Unmarshal(&opts); err != nil {
		return opts, cliOpts, newLogger(verbose), fmt.Errorf("decoding configuration: %w", err)
	}
	if err := v.Unmarshal(&cliOpts); err != nil {
		return opts, cliOpts, newLogger(verbose), fmt.Errorf("decoding configuration: %w", err)
	}
	cliOpts.Verbose = verbose

	opts.TopDir = topDir
	if opts.TopDir == "" {
		opts.TopDir = "."
	}

	logger := newLogger(verbose)
	opts.Logger = logger.Handler()

	if err := opts.Validate(); err != nil {
		return opts, cliOpts, logger, err
	}
	switch cliOpts.ReportFormat {
	case "", ReportText, ReportJSON, ReportYAML, ReportTOML:
		if cliOpts.ReportFormat == "" {
			cliOpts.ReportFormat = ReportText
		}
	default:
		return opts, cliOpts, logger, fmt.Errorf("%w: unknown report format %q", scanner.ErrConfigValidation, cliOpts.ReportFormat)
	}
	return opts, cliOpts, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(scanner.DefaultMode))
	v.SetDefault("subdir", scanner.DefaultSubdirName)
	v.SetDefault("pattern", string(scanner.DefaultPattern))
	v.SetDefault("workers", scanner.DefaultWorkers)
	v.SetDefault("fast", false)
	v.SetDefault("sampleSize", scanner.DefaultSampleSize)
	v.SetDefault("nameDelims", scanner.DefaultNameDelims)
	v.SetDefault("noProgress", false)
	v.SetDefault("summaryOnly", false)
	v.SetDefault("details", false)
	v.SetDefault("reportFormat", string(ReportText))
}

// bindFlags maps flag names onto viper keys so explicitly set flags win
// over file and environment values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	bindings := map[string]string{
		"mode":         "csv-mode",
		"subdir":       "bak",
		"pattern":      "pattern",
		"workers":      "jobs",
		"fast":         "fast",
		"sampleSize":   "sample-size",
		"nameDelims":   "name-delims",
		"noProgress":   "no-progress",
		"summaryOnly":  "summary-only",
		"details":      "details",
		"reportFormat": "report-format",
	}
	for key, flagName := range bindings {
		if f := flags.Lookup(flagName); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
