package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nao1215/warcsift/internal/model"
)

// timeLayout has a fixed width so that stored times sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveRun records a finished ingestion run. Saving the same run ID again
// replaces the earlier record.
func (w *WebpageDB) SaveRun(ctx context.Context, run *model.RunSummary) error {
	summaryJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	var finished sql.NullString
	if !run.FinishedAt.IsZero() {
		finished = sql.NullString{String: run.FinishedAt.UTC().Format(timeLayout), Valid: true}
	}

	query := `
	INSERT INTO ingest_runs (id, archive_path, archive_digest, started_at, finished_at, summary_json)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		archive_digest = excluded.archive_digest,
		finished_at = excluded.finished_at,
		summary_json = excluded.summary_json
	`
	return w.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			run.ID,
			run.ArchivePath,
			run.ArchiveDigest,
			run.StartedAt.UTC().Format(timeLayout),
			finished,
			string(summaryJSON),
		); err != nil {
			return fmt.Errorf("failed to save run %s: %w", run.ID, err)
		}
		return nil
	})
}

// ListRuns returns up to limit runs, most recent first.
func (w *WebpageDB) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := w.db.QueryContext(ctx,
		`SELECT summary_json FROM ingest_runs ORDER BY started_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only

	var runs []model.RunSummary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var run model.RunSummary
		if err := json.Unmarshal([]byte(summaryJSON), &run); err != nil {
			return nil, fmt.Errorf("failed to parse run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
