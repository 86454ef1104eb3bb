// Package cmd implements the atmosense CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/atmosense/internal/app"
	"github.com/derickschaefer/atmosense/internal/config"
	"github.com/derickschaefer/atmosense/internal/model"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	APIKey  string
	Format  string
	Out     string
	Units   string
	Theme   string
	Timeout string
	Rate    float64
	Quiet   bool
	Verbose bool
	Debug   bool
}

// rootCmd is the base command. Running `atmosense` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "atmosense",
	Short: "atmosense: your intelligent weather companion",
	Long: `atmosense looks up current weather conditions from the OpenWeatherMap API,
either one-shot or on an interactive screen with recent searches, favorites,
unit and theme toggles.

Get a free API key at: https://home.openweathermap.org/api_keys

Quick start:
  atmosense config init          # create a config.json, then set api_key
  atmosense weather Paris        # current conditions for Paris
  atmosense interactive          # the full screen, geolocated at startup`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler on stderr.
// --debug shows request tracing; otherwise only warnings and errors.
func setupLogging() {
	level := slog.LevelWarn
	if globalFlags.Debug {
		level = slog.LevelDebug
	}
	if globalFlags.Quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves config and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalFlags.APIKey)
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.Units != "" {
		u, ok := model.ParseUnits(globalFlags.Units)
		if !ok {
			return nil, fmt.Errorf("invalid --units %q (want metric or imperial)", globalFlags.Units)
		}
		cfg.Units = u
	}
	if globalFlags.Theme != "" {
		th, ok := model.ParseTheme(globalFlags.Theme)
		if !ok {
			return nil, fmt.Errorf("invalid --theme %q (want light or dark)", globalFlags.Theme)
		}
		cfg.Theme = th
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	return cfg, nil
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateSettings(); err != nil {
		return nil, err
	}
	return app.New(cfg)
}

// buildQueryDeps is buildDeps for commands that call the weather API.
func buildQueryDeps() (*app.Deps, error) {
	deps, err := buildDeps()
	if err != nil {
		return nil, err
	}
	if err := deps.Config.Validate(); err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.APIKey, "api-key", "",
		"OpenWeatherMap API key (overrides env OPENWEATHER_API_KEY and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Units, "units", "",
		"unit system: metric|imperial (default: metric)")
	pf.StringVar(&globalFlags.Theme, "theme", "",
		"screen theme: light|dark (default: light)")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses (API key redacted)")
}
