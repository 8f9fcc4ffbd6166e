package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/warcsift/internal/extract"
	"github.com/nao1215/warcsift/internal/model"
	"github.com/nao1215/warcsift/internal/quality"
)

// ResponseStep parses the HTTP message of the record and filters out
// non-textual content types.
type ResponseStep struct {
	MaxBodySize int64
}

// Name implements Step.
func (ResponseStep) Name() string { return "response" }

// Do implements Step.
func (s ResponseStep) Do(_ context.Context, w *Work) error {
	resp, err := w.Record.HTTPResponse(s.MaxBodySize)
	if err != nil {
		return err
	}
	w.Response = resp
	if ct := resp.ContentType(); !extract.IsTextual(ct) {
		w.Skip(model.SkipNonText, ct)
	}
	return nil
}

// ExtractStep turns the body into text and a title.
type ExtractStep struct {
	Extractor *extract.Extractor
}

// Name implements Step.
func (ExtractStep) Name() string { return "extract" }

// Do implements Step.
func (s ExtractStep) Do(_ context.Context, w *Work) error {
	w.Extract = s.Extractor.Extract(w.Response.Body, w.Response.ContentType())
	return nil
}

// LengthStep filters out records with too little text.
type LengthStep struct {
	MinTextLength int
}

// Name implements Step.
func (LengthStep) Name() string { return "length" }

// Do implements Step.
func (s LengthStep) Do(_ context.Context, w *Work) error {
	n := utf8.RuneCountInString(strings.TrimSpace(w.Extract.Text))
	if n < s.MinTextLength || w.Extract.Type == model.ContentTypeUnknown {
		w.Skip(model.SkipTooShort, fmt.Sprintf("%d characters", n))
	}
	return nil
}

// GateStep applies the language filter and the heuristic.
type GateStep struct {
	Gate *quality.Gate
}

// Name implements Step.
func (GateStep) Name() string { return "gate" }

// Do implements Step.
func (s GateStep) Do(_ context.Context, w *Work) error {
	w.Verdict = s.Gate.Evaluate(w.Extract.Text)
	if !w.Verdict.Passed {
		detail := fmt.Sprintf("english=%.3f", w.Verdict.LanguageScore)
		switch {
		case w.Verdict.Reason == model.SkipLowQuality:
			detail = string(w.Verdict.Rule)
		case w.Verdict.Rule != quality.RuleNone:
			detail += " rule=" + string(w.Verdict.Rule)
		}
		w.Skip(w.Verdict.Reason, detail)
	}
	return nil
}

// FeatureStep builds the page.
type FeatureStep struct {
	Analyzer         FeatureAnalyzer
	KeywordCount     int
	SummarySentences int
}

// Name implements Step.
func (FeatureStep) Name() string { return "features" }

// Do implements Step.
func (s FeatureStep) Do(_ context.Context, w *Work) error {
	f, err := s.Analyzer.Features(w.Extract.Text, s.KeywordCount, s.SummarySentences)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(w.Extract.Title)
	if title == "" {
		title = w.URL()
	}
	w.Page = &model.Page{
		URL:           w.URL(),
		Title:         title,
		ContentType:   w.Extract.Type,
		LanguageScore: w.Verdict.LanguageScore,
		CleanedText:   f.CleanedText,
		Summary:       f.Summary,
		Keywords:      f.Keywords,
		NamedEntities: f.Entities,
	}
	return nil
}
