package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/database"
	"github.com/nao1215/warcsift/internal/metrics"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/nlp"
	"github.com/nao1215/warcsift/internal/pipeline"
	"github.com/nao1215/warcsift/internal/quality"
)

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <archive>",
		Short: "Ingest a WARC archive into the database",
		Long: `Ingest reads every response record of a WARC archive (.warc.gz or .warc),
keeps English pages of reasonable quality, extracts their features and stores
them together with their pairwise similarity.

Re-ingesting a URL updates the stored page and keeps its ID.
Interrupting the run (Ctrl+C) stops it without storing partial batches.

Examples:
  # Ingest an archive into the default database
  warcsift ingest crawl.warc.gz

  # Use eight workers and a stricter language threshold
  warcsift ingest -w 8 --language-threshold 0.9 crawl.warc.gz

  # Write a Markdown report and a Prometheus textfile
  warcsift ingest -f markdown -o report.md --metrics-file /var/lib/node_exporter/warcsift.prom crawl.warc.gz`,
		Args: cobra.ExactArgs(1),
		RunE: runIngestCmd,
	}

	addPipelineFlags(cmd)
	cmd.Flags().Int("keywords", config.DefaultKeywordCount,
		"Number of keywords extracted per page")
	cmd.Flags().Int("summary-sentences", config.DefaultSummarySentences,
		"Number of sentences in a page summary")
	cmd.Flags().Float64("similarity-floor", config.DefaultSimilarityFloor,
		"Only similarities above this value are stored")
	cmd.Flags().Bool("stem", false,
		"Stem terms with the Snowball stemmer before computing similarity")
	addReportFlags(cmd)

	return cmd
}

// addPipelineFlags registers the flags shared by ingest and filter.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", 0,
		"Number of records processed concurrently (default: number of CPUs)")
	cmd.Flags().Int("min-length", config.DefaultMinTextLength,
		"Minimum extracted text length in characters")
	cmd.Flags().Float64("language-threshold", config.DefaultLanguageThreshold,
		"Minimum English confidence of the language detector")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum HTTP body bytes read per record")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics in the textfile format to this path")
}

func runIngestCmd(cmd *cobra.Command, args []string) error {
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
	analyzer, err := nlp.NewAnalyzer()
	if err != nil {
		return err
	}
	res := pipeline.Resources{
		Detector: quality.NewLinguaDetector(),
		Analyzer: analyzer,
	}
	return ingest(ctx, cmd, cfg, res, logger)
}

// ingest runs one ingestion with prepared resources and reports the result.
// A cancelled run still writes its report.
func ingest(ctx context.Context, cmd *cobra.Command, cfg *config.Config, res pipeline.Resources, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // closed on exit
	logger.Debug("database opened", "path", db.Path())

	collector := metrics.NewCollector()
	runner, err := pipeline.NewRunner(cfg, res, db,
		pipeline.WithLogger(logger),
		pipeline.WithObserver(collector),
	)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx)
	if summary == nil {
		return runErr
	}
	if err := finishRun(cmd, cfg, summary, collector); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// finishRun writes the run report and the metrics textfile.
func finishRun(cmd *cobra.Command, cfg *config.Config, summary *model.RunSummary, collector *metrics.Collector) error {
	collector.ObserveRun(summary)

	w, closeReport, err := openReport(cmd, cfg)
	if err != nil {
		return err
	}
	_, writeErr := w.WriteRun(summary)
	if err := errors.Join(writeErr, closeReport()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
