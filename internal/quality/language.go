package quality

// DefaultLanguageThreshold is the inclusive minimum English confidence.
const DefaultLanguageThreshold = 0.8

// LanguageFilter accepts text whose top-ranked language is English with
// enough confidence.
type LanguageFilter struct {
	detector  Detector
	threshold float64
}

// NewLanguageFilter returns a LanguageFilter over detector.
func NewLanguageFilter(detector Detector, threshold float64) *LanguageFilter {
	return &LanguageFilter{detector: detector, threshold: threshold}
}

// Check returns the English confidence and whether the text is accepted.
// Detector failures and empty rankings count as "not English".
func (f *LanguageFilter) Check(text string) (float64, bool) {
	ranked, err := f.detector.Confidences(text)
	if err != nil || len(ranked) == 0 {
		return 0, false
	}

	var english float64
	for _, c := range ranked {
		if c.Language == English {
			english = c.Value
			break
		}
	}
	if ranked[0].Language != English {
		return english, false
	}
	return english, english >= f.threshold
}
