package extract

import (
	"strings"

	"github.com/nao1215/warcsift/internal/model"
)

// MinTextLength is the default number of characters below which extracted
// text is considered content-free.
const MinTextLength = 100

// Result is the outcome of extraction.
type Result struct {
	Text  string
	Title string
	Type  model.ContentType
}

// Strategy is one step of the extraction chain. It reports false when it
// could not make sense of the document, letting the next strategy try.
type Strategy interface {
	Name() string
	Extract(doc string) (Result, bool)
}

// Extractor runs strategies in order.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor returns an Extractor over strategies. The terminal Unknown
// strategy is appended so that Extract always returns a defined result.
func NewExtractor(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = []Strategy{XMLStrategy{}, HTMLStrategy{}}
	}
	chain := make([]Strategy, 0, len(strategies)+1)
	chain = append(chain, strategies...)
	chain = append(chain, UnknownStrategy{})
	return &Extractor{strategies: chain}
}

// Extract decodes raw according to declaredContentType and runs the chain.
func (e *Extractor) Extract(raw []byte, declaredContentType string) Result {
	doc := Decode(raw, declaredContentType)
	for _, s := range e.strategies {
		if res, ok := s.Extract(doc); ok {
			return res
		}
	}
	return Result{Type: model.ContentTypeUnknown}
}

// Strategies returns the names of the chain, in order.
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

var defaultExtractor = NewExtractor()

// Extract runs the default chain: XML, then HTML, then unknown.
func Extract(raw []byte, declaredContentType string) Result {
	return defaultExtractor.Extract(raw, declaredContentType)
}

// UnknownStrategy always succeeds with an empty result.
type UnknownStrategy struct{}

// Name implements Strategy.
func (UnknownStrategy) Name() string { return string(model.ContentTypeUnknown) }

// Extract implements Strategy.
func (UnknownStrategy) Extract(string) (Result, bool) {
	return Result{Type: model.ContentTypeUnknown}, true
}

// joinText appends a trimmed fragment to b, separated by one space.
func joinText(b *strings.Builder, fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(fragment)
}
