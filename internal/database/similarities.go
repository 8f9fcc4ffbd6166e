package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nao1215/warcsift/internal/model"
)

// validateEdge returns the canonical form of e or ErrInvalidSimilarity.
func validateEdge(e model.SimilarityEdge) (model.SimilarityEdge, error) {
	if e.IsSelf() {
		return e, fmt.Errorf("%w: self edge on webpage %d", ErrInvalidSimilarity, e.PageA)
	}
	if !(e.Score > model.SimilarityFloor && e.Score <= 1.0) {
		return e, fmt.Errorf("%w: score %f between %d and %d", ErrInvalidSimilarity, e.Score, e.PageA, e.PageB)
	}
	return e.Canonical(), nil
}

// AddSimilarities stores edges in a single transaction. Endpoints are put
// in ascending order and an existing edge for the same pair is overwritten.
// Invalid edges are rejected before anything is written.
func (w *WebpageDB) AddSimilarities(ctx context.Context, edges []model.SimilarityEdge) error {
	if len(edges) == 0 {
		return nil
	}

	canonical := make([]model.SimilarityEdge, len(edges))
	for i, e := range edges {
		c, err := validateEdge(e)
		if err != nil {
			return err
		}
		canonical[i] = c
	}

	query := `
	INSERT INTO webpage_similarities (webpage1_id, webpage2_id, similarity_score)
	VALUES (?, ?, ?)
	ON CONFLICT(webpage1_id, webpage2_id) DO UPDATE SET
		similarity_score = excluded.similarity_score
	`

	return w.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare similarity insert: %w", err)
		}
		defer stmt.Close() //nolint:errcheck // closed with the transaction

		for _, e := range canonical {
			if _, err := stmt.ExecContext(ctx, e.PageA, e.PageB, e.Score); err != nil {
				return fmt.Errorf("failed to store similarity %d-%d: %w", e.PageA, e.PageB, err)
			}
		}
		return nil
	})
}

// GetSimilarWebpages returns up to limit pages linked to id with a score of
// at least threshold, best first. Ties are ordered by page ID.
func (w *WebpageDB) GetSimilarWebpages(ctx context.Context, id int64, limit int, threshold float64) ([]model.SimilarPage, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	query := `
	SELECT ` + pageColumns + `, s.similarity_score
	FROM webpage_similarities s
	JOIN webpages w ON w.id = CASE WHEN s.webpage1_id = ? THEN s.webpage2_id ELSE s.webpage1_id END
	WHERE (s.webpage1_id = ? OR s.webpage2_id = ?)
		AND s.similarity_score >= ?
		AND w.id != ?
	ORDER BY s.similarity_score DESC, w.id ASC
	LIMIT ?
	`

	rows, err := w.db.QueryContext(ctx, query, id, id, id, threshold, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar webpages: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only

	results := make([]model.SimilarPage, 0, limit)
	for rows.Next() {
		var score float64
		page, err := scanPage(rows, &score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan similar webpage: %w", err)
		}
		results = append(results, model.SimilarPage{Page: *page, Similarity: score})
	}
	return results, rows.Err()
}

// CountSimilarities returns the number of stored edges.
func (w *WebpageDB) CountSimilarities(ctx context.Context) (int, error) {
	var n int
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM webpage_similarities").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count similarities: %w", err)
	}
	return n, nil
}
