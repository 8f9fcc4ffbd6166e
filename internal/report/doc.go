// Package report renders run summaries and stored pages.
//
// Writers exist for three formats:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: JSON for scripts
//   - MarkdownWriter: GitHub flavoured Markdown with a skip-reason chart
//
// All of them implement Writer and can be combined with MultiWriter.
package report
