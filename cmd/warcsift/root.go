package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for warcsift.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warcsift",
		Short: "Filter web archives and index page similarity",
		Long: `warcsift ingests WARC web archives into a local SQLite database.

Every HTTP response is decoded, its text extracted, and filtered for English
text of reasonable quality. Retained pages get keywords, a short summary and
named entities; pairs of pages with a TF-IDF cosine similarity above 0.2 are
stored as similarity edges that the similar command queries.

Settings are read from defaults, the .warcsift file, WARCSIFT_* environment
variables (a .env file in the current directory is loaded first) and flags,
each overriding the previous one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .warcsift in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.PersistentFlags().String("log-format", "text", "Log format on stderr: text or json")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewFilterCmd())
	cmd.AddCommand(NewSimilarCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
