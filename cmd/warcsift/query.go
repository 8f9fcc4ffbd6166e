package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/warcsift/internal/config"
)

// ErrPageNotFound is returned when the requested page ID is not stored.
var ErrPageNotFound = errors.New("page not found")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid page id %q: must be a positive integer", arg)
	}
	return id, nil
}

// NewSimilarCmd creates the similar command.
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <id>",
		Short: "List the pages most similar to a stored page",
		Long: `Similar prints the stored neighbours of the page with the given ID,
most similar first. Only edges scoring at or above --threshold are listed.

Examples:
  warcsift similar 42
  warcsift similar -n 20 -t 0.3 -f json 42`,
		Args: cobra.ExactArgs(1),
		RunE: runSimilarCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultQueryLimit,
		"Maximum number of pages listed")
	cmd.Flags().Float64P("threshold", "t", config.DefaultQueryThreshold,
		"Minimum similarity score")
	addReportFlags(cmd)

	return cmd
}

func runSimilarCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateQuery(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cmd, cfg)

	db, err := openExistingDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // read-only

	ctx := cmd.Context()
	page, err := db.GetWebpageMetadata(ctx, id)
	if err != nil {
		return err
	}
	if page == nil {
		return fmt.Errorf("%w: %d", ErrPageNotFound, id)
	}
	similar, err := db.GetSimilarWebpages(ctx, id, cfg.QueryLimit, cfg.QueryThreshold)
	if err != nil {
		return err
	}

	w, closeReport, err := openReport(cmd, cfg)
	if err != nil {
		return err
	}
	_, writeErr := w.WriteSimilar(id, similar)
	return errors.Join(writeErr, closeReport())
}

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the stored metadata of a page",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateQuery(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cmd, cfg)

	db, err := openExistingDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // read-only

	page, err := db.GetWebpageMetadata(cmd.Context(), id)
	if err != nil {
		return err
	}
	if page == nil {
		return fmt.Errorf("%w: %d", ErrPageNotFound, id)
	}

	w, closeReport, err := openReport(cmd, cfg)
	if err != nil {
		return err
	}
	_, writeErr := w.WritePage(page)
	return errors.Join(writeErr, closeReport())
}

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past ingestion runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  runRunsCmd,
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs listed")
	addReportFlags(cmd)
	return cmd
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cmd, cfg)

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidQueryLimit)
	}

	db, err := openExistingDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // read-only

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w, closeReport, err := openReport(cmd, cfg)
	if err != nil {
		return err
	}
	_, writeErr := w.WriteRuns(runs)
	return errors.Join(writeErr, closeReport())
}
