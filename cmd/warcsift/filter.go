package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/metrics"
	"github.com/nao1215/warcsift/internal/pipeline"
	"github.com/nao1215/warcsift/internal/quality"
)

// NewFilterCmd creates the filter command.
func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <input> <output>",
		Short: "Copy the English responses of an archive to a new archive",
		Long: `Filter writes every textual response of <input> that passes the language
detector and the quality heuristic to <output> as a gzip WARC. Records are
copied unchanged and in archive order. Nothing is stored in the database.

Examples:
  warcsift filter crawl.warc.gz crawl.en.warc.gz`,
		Args: cobra.ExactArgs(2),
		RunE: runFilterCmd,
	}

	addPipelineFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runFilterCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.ArchivePath = args[0]
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	ctx, stop := signalContext(cmd)
	defer stop()

	logger.Info("loading language models")
	return filter(ctx, cmd, cfg, quality.NewLinguaDetector(), args[1], logger)
}

// filter writes the kept records to a temporary file next to output and
// renames it into place once the run completed.
func filter(ctx context.Context, cmd *cobra.Command, cfg *config.Config, detector quality.Detector, output string, logger *slog.Logger) (err error) {
	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	collector := metrics.NewCollector()
	summary, runErr := pipeline.Filter(ctx, cfg, detector, tmp,
		pipeline.WithLogger(logger),
		pipeline.WithObserver(collector),
	)
	if runErr != nil {
		if summary != nil {
			return errors.Join(runErr, finishRun(cmd, cfg, summary, collector))
		}
		return runErr
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	logger.Info("filtered archive written", "path", output, "records", summary.PagesStored)

	return finishRun(cmd, cfg, summary, collector)
}
