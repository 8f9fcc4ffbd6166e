package model

import "time"

// RunSummary describes one ingestion run. It is printed at the end of the
// run and stored as JSON in the run history table.
type RunSummary struct {
	// ID is a random identifier of the run.
	ID string `json:"id"`

	// ArchivePath is the archive that was ingested.
	ArchivePath string `json:"archive_path"`

	// ArchiveDigest is the hex SHA3-256 of the archive file.
	ArchiveDigest string `json:"archive_digest,omitempty"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// RecordsRead counts every WARC record in the archive.
	RecordsRead int `json:"records_read"`

	// Responses counts the response records handed to the pipeline.
	Responses int `json:"responses"`

	// Retained counts pages that passed every gate.
	Retained int `json:"retained"`

	// Duplicates counts retained captures replaced by a later capture of the same URL.
	Duplicates int `json:"duplicates"`

	// Errors counts records that failed with an unexpected error.
	Errors int `json:"errors"`

	// Skipped counts filtered records per reason.
	Skipped map[SkipReason]int `json:"skipped"`

	// PagesStored and EdgesStored count rows written to the store.
	PagesStored int `json:"pages_stored"`
	EdgesStored int `json:"edges_stored"`

	// Cancelled is true when the run stopped before completion.
	Cancelled bool `json:"cancelled,omitempty"`
}

// NewRunSummary creates an empty summary for the given archive.
func NewRunSummary(id, archivePath string) *RunSummary {
	return &RunSummary{
		ID:          id,
		ArchivePath: archivePath,
		StartedAt:   time.Now(),
		Skipped:     make(map[SkipReason]int),
	}
}

// Record folds one outcome into the counters.
func (s *RunSummary) Record(o Outcome) {
	s.Responses++
	switch {
	case o.Failed():
		s.Errors++
	case o.Skip != SkipNone:
		s.Skipped[o.Skip]++
	case o.Page != nil:
		s.Retained++
	}
}

// TotalSkipped returns the number of records rejected by any gate.
func (s *RunSummary) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Processed returns the number of records that completed without error.
func (s *RunSummary) Processed() int {
	return s.Responses - s.Errors
}

// Elapsed returns the wall time of the run.
func (s *RunSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
