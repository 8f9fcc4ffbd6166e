package nlp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/nao1215/warcsift/internal/model"
)

// Analyzer segments sentences and recognises named entities. The tagging
// and entity models are loaded once by NewAnalyzer and shared read-only.
type Analyzer struct {
	model *prose.Model
}

// NewAnalyzer loads the English models.
func NewAnalyzer() (*Analyzer, error) {
	doc, err := prose.NewDocument("warcsift", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to load language models: %w", err)
	}
	if doc.Model == nil {
		return nil, errors.New("failed to load language models: no model")
	}
	return &Analyzer{model: doc.Model}, nil
}

func (a *Analyzer) document(text string, opts ...prose.DocOpt) (*prose.Document, error) {
	opts = append(opts, prose.UsingModel(a.model))
	return prose.NewDocument(text, opts...)
}

// CreateSummary returns the first maxSentences sentences of text joined by
// single spaces.
func (a *Analyzer) CreateSummary(text string, maxSentences int) (string, error) {
	doc, err := a.document(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return "", err
	}
	return summarize(doc, maxSentences), nil
}

// ExtractEntities groups recognised entities by label in first-seen order,
// dropping exact duplicates within a label.
func (a *Analyzer) ExtractEntities(text string) (model.Entities, error) {
	doc, err := a.document(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	return entities(doc), nil
}

func summarize(doc *prose.Document, maxSentences int) string {
	sentences := doc.Sentences()
	if maxSentences < len(sentences) {
		sentences = sentences[:max(maxSentences, 0)]
	}
	parts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func entities(doc *prose.Document) model.Entities {
	out := model.Entities{}
	for _, ent := range doc.Entities() {
		out.Add(ent.Label, ent.Text)
	}
	return out
}

// Features holds everything derived from one page's text.
type Features struct {
	CleanedText string
	Keywords    []string
	Summary     string
	Entities    model.Entities
}

// Features derives all features of text in a single pass over the models.
func (a *Analyzer) Features(text string, topK, maxSentences int) (Features, error) {
	doc, err := a.document(text)
	if err != nil {
		return Features{}, fmt.Errorf("failed to analyze text: %w", err)
	}
	cleaned := CleanText(text)
	return Features{
		CleanedText: cleaned,
		Keywords:    ExtractKeywords(cleaned, topK),
		Summary:     summarize(doc, maxSentences),
		Entities:    entities(doc),
	}, nil
}
