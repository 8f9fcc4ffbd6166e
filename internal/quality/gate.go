package quality

import "github.com/nao1215/warcsift/internal/model"

// Verdict is the combined decision of the gate.
type Verdict struct {
	Passed        bool
	LanguageScore float64
	// Reason is SkipNotEnglish or SkipLowQuality when Passed is false.
	Reason model.SkipReason
	// Rule is the failed heuristic rule, if any.
	Rule Rule
}

// Gate combines the language filter and the heuristic.
type Gate struct {
	language  *LanguageFilter
	heuristic Heuristic
}

// NewGate returns a Gate accepting English text at or above threshold.
func NewGate(detector Detector, threshold float64) *Gate {
	return &Gate{language: NewLanguageFilter(detector, threshold)}
}

// Evaluate runs both predicates. The language verdict takes precedence in
// Reason when both fail.
func (g *Gate) Evaluate(text string) Verdict {
	score, english := g.language.Check(text)
	rule := g.heuristic.Check(text)

	v := Verdict{LanguageScore: score, Rule: rule}
	switch {
	case !english:
		v.Reason = model.SkipNotEnglish
	case rule != RuleNone:
		v.Reason = model.SkipLowQuality
	default:
		v.Passed = true
	}
	return v
}
