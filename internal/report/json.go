package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/warcsift/internal/model"
)

// JSONWriter outputs results as JSON documents, one per call.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// runJSON adds derived totals to the stored summary fields.
type runJSON struct {
	*model.RunSummary
	TotalSkipped   int     `json:"total_skipped"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

func newRunJSON(run *model.RunSummary) runJSON {
	return runJSON{
		RunSummary:     run,
		TotalSkipped:   run.TotalSkipped(),
		ElapsedSeconds: run.Elapsed().Seconds(),
	}
}

// WriteRun implements Writer.
func (w *JSONWriter) WriteRun(run *model.RunSummary) (int, error) {
	return w.writeJSON(newRunJSON(run))
}

// WriteRuns implements Writer.
func (w *JSONWriter) WriteRuns(runs []model.RunSummary) (int, error) {
	out := make([]runJSON, len(runs))
	for i := range runs {
		out[i] = newRunJSON(&runs[i])
	}
	return w.writeJSON(out)
}

// WritePage implements Writer.
func (w *JSONWriter) WritePage(page *model.Page) (int, error) {
	return w.writeJSON(page)
}

// WriteSimilar implements Writer.
func (w *JSONWriter) WriteSimilar(id int64, pages []model.SimilarPage) (int, error) {
	if pages == nil {
		pages = []model.SimilarPage{}
	}
	return w.writeJSON(struct {
		ID      int64               `json:"id"`
		Similar []model.SimilarPage `json:"similar"`
	}{ID: id, Similar: pages})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
