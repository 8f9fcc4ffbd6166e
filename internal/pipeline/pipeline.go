package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/warcsift/internal/archive"
	"github.com/nao1215/warcsift/internal/extract"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/quality"
)

// Work is the state of one record as it moves through the steps.
type Work struct {
	Record   *archive.Record
	Response *archive.Response
	Extract  extract.Result
	Verdict  quality.Verdict
	Page     *model.Page

	skip   model.SkipReason
	detail string
}

// URL returns the record's target URI.
func (w *Work) URL() string { return w.Record.TargetURI() }

// Skip marks the record as filtered out. Later steps are not run.
func (w *Work) Skip(reason model.SkipReason, detail string) {
	w.skip = reason
	w.detail = detail
}

// Skipped reports whether a step filtered the record out.
func (w *Work) Skipped() bool { return w.skip != model.SkipNone }

// Step is one stage of per-record processing.
// A step filters a record out with Work.Skip; an error is reserved for
// unexpected failures.
type Step interface {
	Do(ctx context.Context, w *Work) error
	Name() string
}

// Pipeline runs steps over single records.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline or a Runner.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver registers an observer of per-record outcomes.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// New creates a Pipeline over steps.
func New(steps []Step, opts ...Option) *Pipeline {
	o := buildOptions(opts)
	return &Pipeline{steps: steps, logger: o.logger}
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// ErrPanic wraps a panic recovered while processing a record.
var ErrPanic = errors.New("panic while processing record")

// Process runs every step over rec and returns its outcome. It never panics.
func (p *Pipeline) Process(ctx context.Context, rec *archive.Record) (out model.Outcome) {
	w := &Work{Record: rec}
	out = model.Outcome{Ordinal: rec.Ordinal, URL: w.URL()}

	defer func() {
		if r := recover(); r != nil {
			out.Page = nil
			out.Skip = model.SkipNone
			out.Err = fmt.Errorf("%s: %w: %v", out.URL, ErrPanic, r)
			p.logger.Error("record failed", "url", out.URL, "error", out.Err)
		}
	}()

	for _, step := range p.steps {
		if err := step.Do(ctx, w); err != nil {
			out.Err = fmt.Errorf("%s: %s: %w", out.URL, step.Name(), err)
			p.logger.Error("record failed",
				"url", out.URL,
				"step", step.Name(),
				"error", err,
			)
			return out
		}
		if w.Skipped() {
			out.Skip = w.skip
			out.Detail = w.detail
			p.logger.Debug("record skipped",
				"url", out.URL,
				"step", step.Name(),
				"reason", w.skip.String(),
				"detail", w.detail,
			)
			return out
		}
	}

	out.Page = w.Page
	if out.Page == nil {
		// A chain without a feature step keeps records without building pages.
		out.Page = &model.Page{URL: out.URL, ContentType: w.Extract.Type, LanguageScore: w.Verdict.LanguageScore}
	}
	return out
}
