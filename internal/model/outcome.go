package model

// SkipReason explains why a record was filtered out. Skips are normal
// outcomes of the gates, not failures.
type SkipReason string

const (
	// SkipNone means the record was not skipped.
	SkipNone SkipReason = ""

	// SkipNonText marks records whose declared content type is not textual.
	SkipNonText SkipReason = "non_text"

	// SkipTooShort marks records with too little extracted text.
	SkipTooShort SkipReason = "too_short"

	// SkipNotEnglish marks records rejected by the language detector.
	SkipNotEnglish SkipReason = "not_english"

	// SkipLowQuality marks records rejected by the heuristic text filter.
	SkipLowQuality SkipReason = "low_quality"
)

// SkipReasons lists every reason in reporting order.
func SkipReasons() []SkipReason {
	return []SkipReason{SkipNonText, SkipTooShort, SkipNotEnglish, SkipLowQuality}
}

// String returns the reason label.
func (r SkipReason) String() string {
	if r == SkipNone {
		return "none"
	}
	return string(r)
}

// Outcome is the result of processing a single archive record.
// Exactly one of Page, Skip or Err is meaningful.
type Outcome struct {
	// Ordinal is the archive position of the record.
	Ordinal int

	// URL is the record's target URI, kept for error context.
	URL string

	// Page is set when the record was retained.
	Page *Page

	// Skip is set when a gate rejected the record.
	Skip SkipReason

	// Detail is an optional human-readable refinement of Skip
	// (for example the heuristic rule that failed).
	Detail string

	// Err is set when processing failed unexpectedly.
	Err error
}

// Retained reports whether the outcome carries a page.
func (o Outcome) Retained() bool {
	return o.Err == nil && o.Skip == SkipNone && o.Page != nil
}

// Failed reports whether the outcome is a processing error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
