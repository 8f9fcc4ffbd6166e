package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nao1215/warcsift/internal/config"
)

// parsedCommand returns the subcommand of a fresh root with args parsed.
func parsedCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd, rest, err := NewRootCmd().Find(args)
	if err != nil {
		t.Fatalf("Find(%v): %v", args, err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("ParseFlags(%v): %v", rest, err)
	}
	return cmd
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".warcsift")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// Not parallel: uses t.Setenv.
func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfigFile(t, `
ingest:
  workers: 3
  languageThreshold: 0.7
similarity:
  stem: true
report:
  format: markdown
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Setenv(config.EnvWorkers, "")
		cfg, err := loadConfig(parsedCommand(t, "ingest", "--config", path))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Workers != 3 || cfg.LanguageThreshold != 0.7 || !cfg.Stem || cfg.Report != config.ReportMarkdown {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.KeywordCount != config.DefaultKeywordCount {
			t.Errorf("unset key changed default: %d", cfg.KeywordCount)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv(config.EnvWorkers, "5")
		cfg, err := loadConfig(parsedCommand(t, "ingest", "--config", path))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Workers != 5 {
			t.Errorf("expected 5 workers, got %d", cfg.Workers)
		}
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv(config.EnvWorkers, "5")
		dbDir := t.TempDir()
		cfg, err := loadConfig(parsedCommand(t, "ingest", "--config", path,
			"-w", "7", "--stem=false", "-f", "json", "--db-dir", dbDir, "-v"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Workers != 7 || cfg.Stem || cfg.Report != config.ReportJSON || cfg.DBDir != dbDir || !cfg.Verbose {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if cfg.LanguageThreshold != 0.7 {
			t.Errorf("unchanged flag default overrode the file: %v", cfg.LanguageThreshold)
		}
	})

	t.Run("query flags", func(t *testing.T) {
		cfg, err := loadConfig(parsedCommand(t, "similar", "--config", path, "-n", "9", "-t", "0.25"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.QueryLimit != 9 || cfg.QueryThreshold != 0.25 {
			t.Errorf("query flags not applied: %+v", cfg)
		}
	})

	t.Run("malformed environment is an error", func(t *testing.T) {
		t.Setenv(config.EnvWorkers, "many")
		if _, err := loadConfig(parsedCommand(t, "ingest", "--config", path)); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		_, err := loadConfig(parsedCommand(t, "ingest", "--config", missing))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestOpenReport(t *testing.T) {
	t.Parallel()

	t.Run("writes to a file and creates directories", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.json")
		cfg.Report = config.ReportJSON

		w, closeReport, err := openReport(&cobra.Command{}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.WriteRuns(nil); err != nil {
			t.Fatal(err)
		}
		if err := closeReport(); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil || string(data) != "[]\n" {
			t.Errorf("unexpected report %q (%v)", data, err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Report = "yaml"
		if _, _, err := openReport(&cobra.Command{}, cfg); err == nil {
			t.Error("expected an error")
		}
	})
}
