package pipeline

import (
	"errors"
	"fmt"

	"github.com/nao1215/warcsift/internal/nlp"
	"github.com/nao1215/warcsift/internal/quality"
)

// ErrMissingResource is returned when Resources lacks a required model.
var ErrMissingResource = errors.New("pipeline resource is missing")

// FeatureAnalyzer derives page features. *nlp.Analyzer implements it.
type FeatureAnalyzer interface {
	Features(text string, topK, maxSentences int) (nlp.Features, error)
}

// Resources are the models loaded once at startup and shared read-only by
// every worker.
type Resources struct {
	Detector quality.Detector
	Analyzer FeatureAnalyzer
}

// Validate reports a missing model.
func (r Resources) Validate() error {
	if r.Detector == nil {
		return fmt.Errorf("%w: language detector", ErrMissingResource)
	}
	if r.Analyzer == nil {
		return fmt.Errorf("%w: feature analyzer", ErrMissingResource)
	}
	return nil
}
