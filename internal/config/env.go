package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names read by ApplyEnv.
const (
	EnvDBDir             = "WARCSIFT_DB_DIR"
	EnvWorkers           = "WARCSIFT_WORKERS"
	EnvLanguageThreshold = "WARCSIFT_LANGUAGE_THRESHOLD"
	EnvSimilarityFloor   = "WARCSIFT_SIMILARITY_FLOOR"
	EnvMetricsFile       = "WARCSIFT_METRICS_FILE"
)

// LoadEnvFiles loads variables from the given dotenv files into the process
// environment. Missing files are ignored and variables that are already set
// are left untouched. It returns the files that were loaded.
func LoadEnvFiles(files ...string) ([]string, error) {
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", file, err)
		}
		loaded = append(loaded, file)
	}
	return loaded, nil
}

// ApplyEnv overrides cfg with WARCSIFT_* environment variables.
// Malformed numeric values are reported rather than silently ignored.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDBDir); v != "" {
		cfg.DBDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv(EnvLanguageThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLanguageThreshold, err)
		}
		cfg.LanguageThreshold = f
	}
	if v := os.Getenv(EnvSimilarityFloor); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSimilarityFloor, err)
		}
		cfg.SimilarityFloor = f
	}
	if v := os.Getenv(EnvMetricsFile); v != "" {
		cfg.MetricsFile = v
	}
	return nil
}
