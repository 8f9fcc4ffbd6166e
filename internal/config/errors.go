package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoArchive is returned when no archive path is given to an ingestion run.
	ErrNoArchive = errors.New("no archive specified: provide a WARC file path")

	// ErrNoDBDir is returned when the database directory is empty.
	ErrNoDBDir = errors.New("no database directory specified")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMinTextLength is returned when the minimum text length is negative.
	ErrInvalidMinTextLength = errors.New("invalid minimum text length: must be non-negative")

	// ErrInvalidLanguageThreshold is returned when the language threshold is outside [0, 1].
	ErrInvalidLanguageThreshold = errors.New("invalid language threshold: must be within [0, 1]")

	// ErrInvalidKeywordCount is returned when the keyword count is not positive.
	ErrInvalidKeywordCount = errors.New("invalid keyword count: must be positive")

	// ErrInvalidSummarySentences is returned when the summary length is not positive.
	ErrInvalidSummarySentences = errors.New("invalid summary sentences: must be positive")

	// ErrInvalidSimilarityFloor is returned when the similarity floor is outside [0.2, 1).
	ErrInvalidSimilarityFloor = errors.New("invalid similarity floor: must be within [0.2, 1)")

	// ErrInvalidQueryLimit is returned when the query limit is not positive.
	ErrInvalidQueryLimit = errors.New("invalid query limit: must be positive")

	// ErrInvalidQueryThreshold is returned when the query threshold is outside [0, 1].
	ErrInvalidQueryThreshold = errors.New("invalid query threshold: must be within [0, 1]")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidReportFormat is returned for an unknown report format.
	ErrInvalidReportFormat = errors.New("invalid report format: must be text, json or markdown")
)
