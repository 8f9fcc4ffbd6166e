package config

import (
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/nao1215/warcsift/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "warcsift"

	// DefaultMinTextLength is the number of characters of extracted text below
	// which a record is treated as content-free.
	DefaultMinTextLength = 100

	// DefaultLanguageThreshold is the inclusive floor on the detector's
	// English confidence.
	DefaultLanguageThreshold = 0.8

	// DefaultKeywordCount is the number of keywords kept per page.
	DefaultKeywordCount = 10

	// DefaultSummarySentences is the number of leading sentences in a summary.
	DefaultSummarySentences = 3

	// DefaultSimilarityFloor is the exclusive floor for stored similarity scores.
	// The store rejects anything at or below model.SimilarityFloor, so the
	// configured floor may be raised but never lowered.
	DefaultSimilarityFloor = model.SimilarityFloor

	// DefaultQueryLimit is the number of neighbours returned by the similar command.
	DefaultQueryLimit = 5

	// DefaultQueryThreshold is the read-time similarity threshold.
	// It is stricter than the write-time floor.
	DefaultQueryThreshold = 0.5

	// DefaultMaxBodySize limits how much of an HTTP body is read per record.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// ReportFormat selects the end-of-run report rendering.
type ReportFormat string

const (
	// ReportText is the human-readable default.
	ReportText ReportFormat = "text"
	// ReportJSON is machine-readable output.
	ReportJSON ReportFormat = "json"
	// ReportMarkdown is GitHub flavoured Markdown.
	ReportMarkdown ReportFormat = "markdown"
)

// Config holds all configuration options for warcsift.
// It is populated from defaults, the config file, the environment and CLI
// flags (in increasing precedence) and passed down explicitly.
type Config struct {
	// ArchivePath is the WARC file to ingest.
	ArchivePath string

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// Workers is the number of records processed concurrently.
	Workers int

	// MinTextLength is the content-free threshold in characters.
	MinTextLength int

	// LanguageThreshold is the minimum English confidence, inclusive.
	LanguageThreshold float64

	// KeywordCount is the number of keywords extracted per page.
	KeywordCount int

	// SummarySentences is the number of sentences in a page summary.
	SummarySentences int

	// SimilarityFloor is the exclusive minimum similarity that gets stored.
	SimilarityFloor float64

	// Stem folds vocabulary terms with the Snowball stemmer before
	// vectorising. Off by default.
	Stem bool

	// QueryLimit is the default number of neighbours for similarity queries.
	QueryLimit int

	// QueryThreshold is the default read-time similarity threshold.
	QueryThreshold float64

	// MaxBodySize is the maximum number of HTTP body bytes read per record.
	MaxBodySize int64

	// Report selects the end-of-run report format.
	Report ReportFormat

	// ReportFile is the output path of the report. Empty means stdout.
	ReportFile string

	// MetricsFile is a Prometheus textfile written at the end of the run.
	// Empty disables the export.
	MetricsFile string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DBDir:             XDGDataDir(),
		Workers:           runtime.NumCPU(),
		MinTextLength:     DefaultMinTextLength,
		LanguageThreshold: DefaultLanguageThreshold,
		KeywordCount:      DefaultKeywordCount,
		SummarySentences:  DefaultSummarySentences,
		SimilarityFloor:   DefaultSimilarityFloor,
		QueryLimit:        DefaultQueryLimit,
		QueryThreshold:    DefaultQueryThreshold,
		MaxBodySize:       DefaultMaxBodySize,
		Report:            ReportText,
	}
}

// XDGDataDir returns the XDG data directory for warcsift.
// On Linux: ~/.local/share/warcsift
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for warcsift.
// On Linux: ~/.config/warcsift
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid for an ingestion run.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.ArchivePath == "" {
		return ErrNoArchive
	}
	if err := c.ValidateQuery(); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MinTextLength < 0 {
		return ErrInvalidMinTextLength
	}
	if c.LanguageThreshold < 0 || c.LanguageThreshold > 1 {
		return ErrInvalidLanguageThreshold
	}
	if c.KeywordCount <= 0 {
		return ErrInvalidKeywordCount
	}
	if c.SummarySentences <= 0 {
		return ErrInvalidSummarySentences
	}
	if c.SimilarityFloor < model.SimilarityFloor || c.SimilarityFloor >= 1 {
		return ErrInvalidSimilarityFloor
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	switch c.Report {
	case ReportText, ReportJSON, ReportMarkdown:
	default:
		return ErrInvalidReportFormat
	}
	return nil
}

// ValidateQuery checks only the settings used by read-only queries.
func (c *Config) ValidateQuery() error {
	if c.DBDir == "" {
		return ErrNoDBDir
	}
	if c.QueryLimit <= 0 {
		return ErrInvalidQueryLimit
	}
	if c.QueryThreshold < 0 || c.QueryThreshold > 1 {
		return ErrInvalidQueryThreshold
	}
	return nil
}
