package quality

import (
	"errors"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// English is the language name a Detector reports for English text.
const English = "English"

// ErrEmptyText is returned by detectors asked to classify blank text.
var ErrEmptyText = errors.New("no text to classify")

// Confidence is the probability a Detector assigns to one language.
type Confidence struct {
	Language string
	Value    float64
}

// Detector ranks candidate languages for a text. Results are sorted by
// descending Value.
type Detector interface {
	Confidences(text string) ([]Confidence, error)
}

// DefaultLanguages is the candidate set of the production detector.
// English competes against the languages most often found in web crawls.
var DefaultLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Swedish,
	lingua.Polish,
	lingua.Turkish,
	lingua.Russian,
	lingua.Indonesian,
	lingua.Arabic,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
}

// LinguaDetector is a Detector backed by lingua-go. It is safe for
// concurrent use and expensive to build; build it once per process.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector loads the language models for languages, or for
// DefaultLanguages when none are given.
func NewLinguaDetector(languages ...lingua.Language) *LinguaDetector {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithPreloadedLanguageModels().
		Build()
	return &LinguaDetector{detector: d}
}

// Confidences implements Detector.
func (d *LinguaDetector) Confidences(text string) ([]Confidence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	values := d.detector.ComputeLanguageConfidenceValues(text)
	out := make([]Confidence, 0, len(values))
	for _, v := range values {
		out = append(out, Confidence{Language: v.Language().String(), Value: v.Value()})
	}
	return out, nil
}
