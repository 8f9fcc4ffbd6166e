package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/warcsift/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints skip reasons with a zero count.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list zero counts.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := max((ruleWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func runStatus(run *model.RunSummary) string {
	if run.Cancelled {
		return "CANCELLED (nothing after the interruption was stored)"
	}
	return "Complete"
}

// WriteRun implements Writer.
func (w *SimpleWriter) WriteRun(run *model.RunSummary) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "WARCSIFT RUN SUMMARY")
	fmt.Fprintf(&sb, "Run:            %s\n", run.ID)
	fmt.Fprintf(&sb, "Archive:        %s\n", run.ArchivePath)
	if run.ArchiveDigest != "" {
		fmt.Fprintf(&sb, "SHA3-256:       %s\n", run.ArchiveDigest)
	}
	fmt.Fprintf(&sb, "Started:        %s\n", run.StartedAt.Format(timeFormat))
	fmt.Fprintf(&sb, "Elapsed:        %s\n", run.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(&sb, "Status:         %s\n\n", runStatus(run))

	sb.WriteString("RECORDS\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Read:         %d\n", run.RecordsRead)
	fmt.Fprintf(&sb, "  Responses:    %d\n", run.Responses)
	fmt.Fprintf(&sb, "  Processed:    %d\n", run.Processed())
	fmt.Fprintf(&sb, "  Errors:       %d\n", run.Errors)
	fmt.Fprintf(&sb, "  Retained:     %d\n", run.Retained)
	if run.Duplicates > 0 {
		fmt.Fprintf(&sb, "  Duplicates:   %d\n", run.Duplicates)
	}
	sb.WriteString("\n")

	sb.WriteString("SKIPPED\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")
	for _, reason := range model.SkipReasons() {
		n := run.Skipped[reason]
		if n == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(&sb, "  %-13s %d\n", reason.String()+":", n)
	}
	fmt.Fprintf(&sb, "  %-13s %d\n\n", "total:", run.TotalSkipped())

	sb.WriteString("STORED\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Pages:        %d\n", run.PagesStored)
	fmt.Fprintf(&sb, "  Edges:        %d\n", run.EdgesStored)

	return w.output.Write([]byte(sb.String()))
}

// WriteRuns implements Writer.
func (w *SimpleWriter) WriteRuns(runs []model.RunSummary) (int, error) {
	var sb strings.Builder
	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}
	fmt.Fprintf(&sb, "%-36s  %-23s  %8s  %8s  %8s  %s\n", "RUN", "STARTED", "RETAINED", "PAGES", "EDGES", "ARCHIVE")
	for _, r := range runs {
		fmt.Fprintf(&sb, "%-36s  %-23s  %8d  %8d  %8d  %s\n",
			r.ID, r.StartedAt.Format(timeFormat), r.Retained, r.PagesStored, r.EdgesStored, r.ArchivePath)
	}
	return w.output.Write([]byte(sb.String()))
}

// WritePage implements Writer.
func (w *SimpleWriter) WritePage(page *model.Page) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ID:             %d\n", page.ID)
	fmt.Fprintf(&sb, "URL:            %s\n", page.URL)
	fmt.Fprintf(&sb, "Title:          %s\n", page.Title)
	fmt.Fprintf(&sb, "Content type:   %s\n", page.ContentType)
	fmt.Fprintf(&sb, "English score:  %.3f\n", page.LanguageScore)
	fmt.Fprintf(&sb, "Keywords:       %s\n", strings.Join(page.Keywords, ", "))
	fmt.Fprintf(&sb, "Summary:        %s\n", page.Summary)
	if len(page.NamedEntities) > 0 {
		sb.WriteString("Entities:\n")
		for _, g := range page.NamedEntities {
			fmt.Fprintf(&sb, "  %-12s %s\n", g.Label+":", strings.Join(g.Texts, ", "))
		}
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteSimilar implements Writer.
func (w *SimpleWriter) WriteSimilar(id int64, pages []model.SimilarPage) (int, error) {
	var sb strings.Builder
	if len(pages) == 0 {
		fmt.Fprintf(&sb, "No similar pages for %d.\n", id)
		return w.output.Write([]byte(sb.String()))
	}
	fmt.Fprintf(&sb, "Pages similar to %d:\n", id)
	for _, p := range pages {
		fmt.Fprintf(&sb, "  %.4f  %6d  %s  %s\n", p.Similarity, p.ID, truncateString(p.Title, 40), p.URL)
	}
	return w.output.Write([]byte(sb.String()))
}
