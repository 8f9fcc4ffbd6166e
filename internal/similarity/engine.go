package similarity

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/warcsift/internal/model"
)

// Engine computes pairwise similarity over a batch of documents.
type Engine struct {
	floor   float64
	stem    bool
	workers int
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithFloor sets the exclusive minimum score of reported pairs.
func WithFloor(floor float64) Option {
	return func(e *Engine) { e.floor = floor }
}

// WithStemming folds terms with the English Snowball stemmer.
func WithStemming(enabled bool) Option {
	return func(e *Engine) { e.stem = enabled }
}

// WithWorkers bounds the number of rows scored concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine returns an Engine with the model.SimilarityFloor floor.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		floor:   model.SimilarityFloor,
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type posting struct {
	doc    int
	weight float64
}

// Compute returns every pair (I, J) with I < J whose cosine similarity is
// above the floor, ordered by (I, J). Scores are clamped to 1.0. The result
// does not depend on the number of workers.
func (e *Engine) Compute(ctx context.Context, docs []string) ([]model.Pair, error) {
	if len(docs) < 2 {
		return []model.Pair{}, nil
	}

	rows, vocabSize := vectorizer{stem: e.stem}.fit(docs)

	// Postings are appended in document order, so each list is sorted by doc.
	index := make([][]posting, vocabSize)
	for i, row := range rows {
		for _, t := range row {
			index[t.id] = append(index[t.id], posting{doc: i, weight: t.weight})
		}
	}

	results := make([][]model.Pair, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range rows {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.row(i, rows[i], index)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	pairs := make([]model.Pair, 0, total)
	for _, r := range results {
		pairs = append(pairs, r...)
	}

	e.logger.Debug("similarity computed",
		"documents", len(docs),
		"vocabulary", vocabSize,
		"pairs", len(pairs),
	)
	return pairs, nil
}

// row scores document i against every later document sharing a term.
func (e *Engine) row(i int, row vector, index [][]posting) []model.Pair {
	acc := make(map[int]float64)
	for _, t := range row {
		list := index[t.id]
		start := sort.Search(len(list), func(k int) bool { return list[k].doc > i })
		for _, p := range list[start:] {
			acc[p.doc] += t.weight * p.weight
		}
	}

	var out []model.Pair
	for j, score := range acc {
		if score > 1 {
			score = 1
		}
		if score > e.floor {
			out = append(out, model.Pair{I: i, J: j, Score: score})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].J < out[b].J })
	return out
}
