package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/warcsift/internal/archive"
	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/extract"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/quality"
	"github.com/nao1215/warcsift/internal/similarity"
)

// Store is the persistence the Runner writes to.
// *database.WebpageDB implements it.
type Store interface {
	AddWebpage(ctx context.Context, page *model.Page) (int64, error)
	AddSimilarities(ctx context.Context, edges []model.SimilarityEdge) error
	SaveRun(ctx context.Context, run *model.RunSummary) error
}

// Observer receives every record outcome as it completes.
// It is called from worker goroutines and must be safe for concurrent use.
type Observer interface {
	ObserveOutcome(o model.Outcome)
}

// Runner performs ingestion runs.
//
// A run has two phases. The first reads the archive and processes records
// concurrently; retained pages are collected in an Arena, which keeps
// archive order and drops earlier captures of the same URL. The second phase
// starts once every record is done and writes the batch to the Store.
//
// Design decision: Similarity is computed over the whole batch, not per
// record. TF-IDF weights depend on every document of the corpus, so no edge
// can be scored before the last page has been extracted.
type Runner struct {
	cfg      *config.Config
	store    Store
	pipeline *Pipeline
	engine   *similarity.Engine
	logger   *slog.Logger
	observer Observer
}

// NewRunner builds the per-record pipeline from cfg and res.
func NewRunner(cfg *config.Config, res Resources, store Store, opts ...Option) (*Runner, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if cfg.SimilarityFloor < model.SimilarityFloor || cfg.SimilarityFloor >= 1 {
		return nil, fmt.Errorf("%w: got %v", config.ErrInvalidSimilarityFloor, cfg.SimilarityFloor)
	}
	o := buildOptions(opts)

	steps := []Step{
		ResponseStep{MaxBodySize: cfg.MaxBodySize},
		ExtractStep{Extractor: extract.NewExtractor()},
		LengthStep{MinTextLength: cfg.MinTextLength},
		GateStep{Gate: quality.NewGate(res.Detector, cfg.LanguageThreshold)},
		FeatureStep{
			Analyzer:         res.Analyzer,
			KeywordCount:     cfg.KeywordCount,
			SummarySentences: cfg.SummarySentences,
		},
	}

	return &Runner{
		cfg:      cfg,
		store:    store,
		pipeline: New(steps, WithLogger(o.logger)),
		engine: similarity.NewEngine(
			similarity.WithFloor(cfg.SimilarityFloor),
			similarity.WithStemming(cfg.Stem),
			similarity.WithWorkers(cfg.Workers),
			similarity.WithLogger(o.logger),
		),
		logger:   o.logger,
		observer: o.observer,
	}, nil
}

// Run ingests the archive at cfg.ArchivePath. The returned summary is
// non-nil whenever the archive could be opened, also on error.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	summary := model.NewRunSummary(uuid.NewString(), r.cfg.ArchivePath)

	reader, err := archive.Open(r.cfg.ArchivePath, archive.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck // read-only

	r.logger.Info("ingestion started",
		"run", summary.ID,
		"archive", r.cfg.ArchivePath,
		"workers", r.cfg.Workers,
	)

	arena := NewArena()
	if err := r.process(ctx, reader, arena, summary); err != nil {
		return r.abort(summary, err)
	}
	summary.RecordsRead = reader.RecordsRead()
	summary.Duplicates = arena.Duplicates()
	if digest, err := reader.Digest(); err == nil {
		summary.ArchiveDigest = digest
	}

	pages := arena.Pages()
	if err := r.persist(ctx, pages, summary); err != nil {
		return r.abort(summary, err)
	}

	summary.FinishedAt = time.Now()
	if err := r.store.SaveRun(ctx, summary); err != nil {
		return summary, fmt.Errorf("failed to save run: %w", err)
	}

	r.logger.Info("ingestion complete",
		"run", summary.ID,
		"processed", summary.Processed(),
		"errors", summary.Errors,
		"retained", summary.Retained,
		"skipped", summary.TotalSkipped(),
		"pages_stored", summary.PagesStored,
		"edges_stored", summary.EdgesStored,
		"elapsed", summary.Elapsed(),
	)
	return summary, nil
}

func (r *Runner) abort(summary *model.RunSummary, err error) (*model.RunSummary, error) {
	summary.FinishedAt = time.Now()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		summary.Cancelled = true
		r.logger.Warn("ingestion cancelled", "run", summary.ID, "reason", err)
	}
	return summary, err
}

// process reads records on the calling goroutine and fans them out to a
// bounded pool. Archive framing errors stop the run.
func (r *Runner) process(ctx context.Context, reader *archive.Reader, arena *Arena, summary *model.RunSummary) error {
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)

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
			out := r.pipeline.Process(ctx, rec)
			if out.Retained() {
				arena.Add(out.Ordinal, out.Page)
			}
			mu.Lock()
			summary.Record(out)
			mu.Unlock()
			if r.observer != nil {
				r.observer.ObserveOutcome(out)
			}
			return nil
		})
	}
	// Record errors are outcomes; the group never fails.
	_ = g.Wait() //nolint:errcheck // workers always return nil
	return readErr
}

// persist writes pages, computes similarity over them, then writes edges.
//
// Pages go first because edges reference row IDs, which exist only after the
// upsert. Each page is its own transaction; all edges of the batch share one,
// so an interrupted run leaves committed pages and no partial graph. The
// context is checked between page writes and again before the edge write.
func (r *Runner) persist(ctx context.Context, pages []*model.Page, summary *model.RunSummary) error {
	ids := make([]int64, len(pages))
	docs := make([]string, len(pages))
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := r.store.AddWebpage(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", p.URL, err)
		}
		p.ID = id
		ids[i] = id
		docs[i] = p.CleanedText
		summary.PagesStored++
	}

	pairs, err := r.engine.Compute(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to compute similarity: %w", err)
	}

	edges := make([]model.SimilarityEdge, 0, len(pairs))
	for _, pair := range pairs {
		edge := model.SimilarityEdge{PageA: ids[pair.I], PageB: ids[pair.J], Score: pair.Score}
		if edge.IsSelf() {
			continue
		}
		edges = append(edges, edge.Canonical())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.store.AddSimilarities(ctx, edges); err != nil {
		return fmt.Errorf("failed to store similarities: %w", err)
	}
	summary.EdgesStored = len(edges)

	r.logger.Debug("batch persisted", "pages", len(pages), "edges", len(edges))
	return nil
}
