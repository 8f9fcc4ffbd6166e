package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/database"
	"github.com/nao1215/warcsift/internal/log"
	"github.com/nao1215/warcsift/internal/report"
)

// envFile is loaded from the working directory when present.
const envFile = ".env"

// loadConfig builds the effective configuration of cmd.
// Precedence, lowest first: defaults, config file, environment, flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicit := cfg.ConfigFilePath != ""
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if explicit {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if _, err := config.LoadEnvFiles(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag the user set explicitly into cfg.
// Subcommands register only the flags they use; absent flags are skipped.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var errs []error
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	setInt := func(name string, dst *int) {
		if changed(name) {
			v, err := flags.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setInt64 := func(name string, dst *int64) {
		if changed(name) {
			v, err := flags.GetInt64(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64) {
		if changed(name) {
			v, err := flags.GetFloat64(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setString := func(name string, dst *string) {
		if changed(name) {
			v, err := flags.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	setString("db-dir", &cfg.DBDir)
	setInt("workers", &cfg.Workers)
	setInt("min-length", &cfg.MinTextLength)
	setFloat("language-threshold", &cfg.LanguageThreshold)
	setInt64("max-body-size", &cfg.MaxBodySize)
	setInt("keywords", &cfg.KeywordCount)
	setInt("summary-sentences", &cfg.SummarySentences)
	setFloat("similarity-floor", &cfg.SimilarityFloor)
	setInt("limit", &cfg.QueryLimit)
	setFloat("threshold", &cfg.QueryThreshold)
	setString("output", &cfg.ReportFile)
	setString("metrics-file", &cfg.MetricsFile)
	if changed("format") {
		v, err := flags.GetString("format")
		errs = append(errs, err)
		cfg.Report = config.ReportFormat(v)
	}
	if changed("stem") {
		v, err := flags.GetBool("stem")
		errs = append(errs, err)
		cfg.Stem = v
	}
	if changed("verbose") {
		v, err := flags.GetBool("verbose")
		errs = append(errs, err)
		cfg.Verbose = v
	}
	return errors.Join(errs...)
}

// addReportFlags registers the report format and destination flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", string(config.ReportText),
		"Report format: text, json or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file instead of stdout (creates directories if needed)")
}

// setupLogger creates the process logger. Logs go to stderr so that
// reports on stdout stay machine-readable.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	if f := cmd.Flags().Lookup("log-format"); f != nil && f.Value.String() == "json" {
		logger = log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// openReport returns the report writer selected by cfg and a function that
// closes the report file, if one was opened.
func openReport(cmd *cobra.Command, cfg *config.Config) (report.Writer, func() error, error) {
	var (
		out     io.Writer = cmd.OutOrStdout()
		closeFn           = func() error { return nil }
	)
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create report file: %w", err)
		}
		out, closeFn = f, f.Close
	}

	w, err := report.New(cfg.Report, out)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return w, closeFn, nil
}

// openExistingDB opens the store for read-only commands.
func openExistingDB(cfg *config.Config) (*database.WebpageDB, error) {
	return database.Open(cfg.DBDir, database.Options{EnableWAL: true})
}
