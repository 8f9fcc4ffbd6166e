package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/warcsift/internal/archive"
	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/extract"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/quality"
)

// Filter copies the textual English responses of the archive at
// cfg.ArchivePath to out as a gzip WARC, in archive order. Kept records are
// written unchanged. No features are computed and nothing is stored.
func Filter(ctx context.Context, cfg *config.Config, detector quality.Detector, out io.Writer, opts ...Option) (*model.RunSummary, error) {
	if detector == nil {
		return nil, fmt.Errorf("%w: language detector", ErrMissingResource)
	}
	o := buildOptions(opts)
	summary := model.NewRunSummary(uuid.NewString(), cfg.ArchivePath)

	reader, err := archive.Open(cfg.ArchivePath, archive.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck // read-only

	p := New([]Step{
		ResponseStep{MaxBodySize: cfg.MaxBodySize},
		ExtractStep{Extractor: extract.NewExtractor()},
		LengthStep{MinTextLength: 1},
		GateStep{Gate: quality.NewGate(detector, cfg.LanguageThreshold)},
	}, WithLogger(o.logger))

	var (
		mu   sync.Mutex
		kept []*archive.Record
	)
	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers)

	var readErr error
	for {
		if err := ctx.Err(); err != nil {
			readErr = err
			break
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("failed to read archive: %w", err)
			break
		}
		g.Go(func() error {
			outcome := p.Process(ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			summary.Record(outcome)
			if outcome.Retained() {
				kept = append(kept, rec)
			}
			if o.observer != nil {
				o.observer.ObserveOutcome(outcome)
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers always return nil
	summary.RecordsRead = reader.RecordsRead()
	if readErr != nil {
		summary.FinishedAt = time.Now()
		summary.Cancelled = errors.Is(readErr, context.Canceled)
		return summary, readErr
	}
	if digest, err := reader.Digest(); err == nil {
		summary.ArchiveDigest = digest
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Ordinal < kept[j].Ordinal })
	w := archive.NewWriter(out)
	for _, rec := range kept {
		if err := w.WriteRecord(rec); err != nil {
			return summary, fmt.Errorf("failed to write %s: %w", rec.TargetURI(), err)
		}
	}
	if err := w.Close(); err != nil {
		return summary, err
	}
	summary.PagesStored = len(kept)
	summary.FinishedAt = time.Now()

	o.logger.Info("filter complete",
		"archive", cfg.ArchivePath,
		"responses", summary.Responses,
		"kept", len(kept),
		"skipped", summary.TotalSkipped(),
		"errors", summary.Errors,
	)
	return summary, nil
}
