package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/warcsift/internal/model"
)

// MarkdownWriter outputs GitHub flavoured Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

func build(md *markdown.Markdown) (int, error) {
	return len(md.String()), md.Build()
}

// WriteRun implements Writer.
func (w *MarkdownWriter) WriteRun(run *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("warcsift run " + run.ID)
	md.PlainText("")
	rows := [][]string{
		{"Archive", "`" + run.ArchivePath + "`"},
		{"Started", run.StartedAt.Format(timeFormat)},
		{"Elapsed", run.Elapsed().Round(time.Millisecond).String()},
		{"Status", runStatus(run)},
	}
	if run.ArchiveDigest != "" {
		rows = append(rows, []string{"SHA3-256", "`" + run.ArchiveDigest + "`"})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	md.H2("Records")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Read", strconv.Itoa(run.RecordsRead)},
			{"Responses", strconv.Itoa(run.Responses)},
			{"Errors", strconv.Itoa(run.Errors)},
			{"Retained", strconv.Itoa(run.Retained)},
			{"Duplicates", strconv.Itoa(run.Duplicates)},
			{"Pages stored", strconv.Itoa(run.PagesStored)},
			{"Edges stored", strconv.Itoa(run.EdgesStored)},
		},
	})
	md.PlainText("")

	w.writeSkips(md, run)

	switch {
	case run.Cancelled:
		md.Warningf("The run was cancelled. %d page(s) were stored before the interruption.", run.PagesStored)
	case run.Errors > 0:
		md.Importantf("%d record(s) failed. Run with --verbose for details.", run.Errors)
	case run.Retained == 0:
		md.Note("No page passed the filters.")
	default:
		md.Tip("Run completed without record errors.")
	}
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by warcsift*")

	return build(md)
}

func (w *MarkdownWriter) writeSkips(md *markdown.Markdown, run *model.RunSummary) {
	md.H2("Skipped records")
	md.PlainText("")
	if run.TotalSkipped() == 0 {
		md.PlainText("No record was skipped.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(model.SkipReasons()))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Skip reasons"),
		piechart.WithShowData(true),
	)
	for _, reason := range model.SkipReasons() {
		n := run.Skipped[reason]
		rows = append(rows, []string{"`" + reason.String() + "`", strconv.Itoa(n)})
		if n > 0 {
			chart.LabelAndIntValue(reason.String(), uint64(n))
		}
	}
	md.Table(markdown.TableSet{Header: []string{"Reason", "Count"}, Rows: rows})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteRuns implements Writer.
func (w *MarkdownWriter) WriteRuns(runs []model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("warcsift runs")
	md.PlainText("")
	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return build(md)
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			"`" + r.ID + "`",
			r.StartedAt.Format(timeFormat),
			strconv.Itoa(r.Retained),
			strconv.Itoa(r.PagesStored),
			strconv.Itoa(r.EdgesStored),
			"`" + r.ArchivePath + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Retained", "Pages", "Edges", "Archive"},
		Rows:   rows,
	})
	return build(md)
}

// WritePage implements Writer.
func (w *MarkdownWriter) WritePage(page *model.Page) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1(page.Title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", strconv.FormatInt(page.ID, 10)},
			{"URL", page.URL},
			{"Content type", string(page.ContentType)},
			{"English score", strconv.FormatFloat(page.LanguageScore, 'f', 3, 64)},
			{"Keywords", strings.Join(page.Keywords, ", ")},
		},
	})
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainText(page.Summary)
	md.PlainText("")
	if len(page.NamedEntities) > 0 {
		md.H2("Named entities")
		md.PlainText("")
		items := make([]string, len(page.NamedEntities))
		for i, g := range page.NamedEntities {
			items[i] = g.Label + ": " + strings.Join(g.Texts, ", ")
		}
		md.BulletList(items...)
	}
	return build(md)
}

// WriteSimilar implements Writer.
func (w *MarkdownWriter) WriteSimilar(id int64, pages []model.SimilarPage) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Pages similar to " + strconv.FormatInt(id, 10))
	md.PlainText("")
	if len(pages) == 0 {
		md.PlainText("No similar pages.")
		return build(md)
	}
	rows := make([][]string, len(pages))
	for i, p := range pages {
		rows[i] = []string{
			strconv.FormatFloat(p.Similarity, 'f', 4, 64),
			strconv.FormatInt(p.ID, 10),
			truncateString(p.Title, 50),
			p.URL,
		}
	}
	md.Table(markdown.TableSet{Header: []string{"Score", "ID", "Title", "URL"}, Rows: rows})
	return build(md)
}
