package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/warcsift/internal/config"
	"github.com/nao1215/warcsift/internal/model"
)

// ErrUnknownFormat is returned by New for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer renders warcsift results.
// Every method returns the number of bytes written.
type Writer interface {
	// WriteRun outputs the summary of one ingestion or filter run.
	WriteRun(run *model.RunSummary) (int, error)

	// WriteRuns outputs the run history, newest first.
	WriteRuns(runs []model.RunSummary) (int, error)

	// WritePage outputs the metadata of one stored page.
	WritePage(page *model.Page) (int, error)

	// WriteSimilar outputs the neighbours of the page with the given ID.
	WriteSimilar(id int64, pages []model.SimilarPage) (int, error)
}

// New returns the Writer for format.
func New(format config.ReportFormat, output io.Writer) (Writer, error) {
	switch format {
	case config.ReportText, "":
		return NewSimpleWriter(output), nil
	case config.ReportJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case config.ReportMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers in order and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRun implements Writer.
func (m *MultiWriter) WriteRun(run *model.RunSummary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRun(run) })
}

// WriteRuns implements Writer.
func (m *MultiWriter) WriteRuns(runs []model.RunSummary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRuns(runs) })
}

// WritePage implements Writer.
func (m *MultiWriter) WritePage(page *model.Page) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WritePage(page) })
}

// WriteSimilar implements Writer.
func (m *MultiWriter) WriteSimilar(id int64, pages []model.SimilarPage) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSimilar(id, pages) })
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

const timeFormat = "2006-01-02 15:04:05 MST"

// truncateString shortens s to at most maxLen runes, ending in "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
