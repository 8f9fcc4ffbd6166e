package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".warcsift"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .warcsift configuration file.
// Pointer fields distinguish "not set" from zero values so that only the
// keys present in the file override the defaults.
type File struct {
	Database   DatabaseSection   `yaml:"database,omitempty"`
	Ingest     IngestSection     `yaml:"ingest,omitempty"`
	Features   FeaturesSection   `yaml:"features,omitempty"`
	Similarity SimilaritySection `yaml:"similarity,omitempty"`
	Query      QuerySection      `yaml:"query,omitempty"`
	Report     ReportSection     `yaml:"report,omitempty"`
}

// DatabaseSection configures the store location.
type DatabaseSection struct {
	Dir string `yaml:"dir,omitempty"`
}

// IngestSection configures reading and gating.
type IngestSection struct {
	Workers           *int     `yaml:"workers,omitempty"`
	MinTextLength     *int     `yaml:"minTextLength,omitempty"`
	LanguageThreshold *float64 `yaml:"languageThreshold,omitempty"`
	MaxBodySize       *int64   `yaml:"maxBodySize,omitempty"`
}

// FeaturesSection configures feature extraction.
type FeaturesSection struct {
	Keywords         *int `yaml:"keywords,omitempty"`
	SummarySentences *int `yaml:"summarySentences,omitempty"`
}

// SimilaritySection configures the similarity engine.
type SimilaritySection struct {
	Floor *float64 `yaml:"floor,omitempty"`
	Stem  *bool    `yaml:"stem,omitempty"`
}

// QuerySection configures the defaults of read-only queries.
type QuerySection struct {
	Limit     *int     `yaml:"limit,omitempty"`
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// ReportSection configures run reports and metrics export.
type ReportSection struct {
	Format      string `yaml:"format,omitempty"`
	Output      string `yaml:"output,omitempty"`
	MetricsFile string `yaml:"metricsFile,omitempty"`
}

// LoadConfigFile loads configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .warcsift in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .warcsift in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Apply overrides cfg with every value present in the file.
func (cf *File) Apply(cfg *Config) {
	if cf.Database.Dir != "" {
		cfg.DBDir = cf.Database.Dir
	}
	if cf.Ingest.Workers != nil {
		cfg.Workers = *cf.Ingest.Workers
	}
	if cf.Ingest.MinTextLength != nil {
		cfg.MinTextLength = *cf.Ingest.MinTextLength
	}
	if cf.Ingest.LanguageThreshold != nil {
		cfg.LanguageThreshold = *cf.Ingest.LanguageThreshold
	}
	if cf.Ingest.MaxBodySize != nil {
		cfg.MaxBodySize = *cf.Ingest.MaxBodySize
	}
	if cf.Features.Keywords != nil {
		cfg.KeywordCount = *cf.Features.Keywords
	}
	if cf.Features.SummarySentences != nil {
		cfg.SummarySentences = *cf.Features.SummarySentences
	}
	if cf.Similarity.Floor != nil {
		cfg.SimilarityFloor = *cf.Similarity.Floor
	}
	if cf.Similarity.Stem != nil {
		cfg.Stem = *cf.Similarity.Stem
	}
	if cf.Query.Limit != nil {
		cfg.QueryLimit = *cf.Query.Limit
	}
	if cf.Query.Threshold != nil {
		cfg.QueryThreshold = *cf.Query.Threshold
	}
	if cf.Report.Format != "" {
		cfg.Report = ReportFormat(cf.Report.Format)
	}
	if cf.Report.Output != "" {
		cfg.ReportFile = cf.Report.Output
	}
	if cf.Report.MetricsFile != "" {
		cfg.MetricsFile = cf.Report.MetricsFile
	}
}
