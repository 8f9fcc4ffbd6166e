package model

import (
	"errors"
	"testing"
	"time"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	page := &Page{URL: "http://a/"}
	tests := []struct {
		name     string
		outcome  Outcome
		retained bool
		failed   bool
	}{
		{"retained", Outcome{Page: page}, true, false},
		{"skipped", Outcome{Skip: SkipTooShort}, false, false},
		{"skipped with page", Outcome{Skip: SkipNotEnglish, Page: page}, false, false},
		{"failed", Outcome{Err: errors.New("boom"), Page: page}, false, true},
		{"empty", Outcome{}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.outcome.Retained(); got != tt.retained {
				t.Errorf("Retained() = %v", got)
			}
			if got := tt.outcome.Failed(); got != tt.failed {
				t.Errorf("Failed() = %v", got)
			}
		})
	}
}

func TestSkipReason(t *testing.T) {
	t.Parallel()

	if SkipNone.String() != "none" || SkipLowQuality.String() != "low_quality" {
		t.Errorf("unexpected labels %q %q", SkipNone, SkipLowQuality)
	}
	if n := len(SkipReasons()); n != 4 {
		t.Errorf("expected 4 reasons, got %d", n)
	}
}

func TestRunSummary(t *testing.T) {
	t.Parallel()

	s := NewRunSummary("id", "a.warc.gz")
	s.Record(Outcome{Page: &Page{}})
	s.Record(Outcome{Page: &Page{}})
	s.Record(Outcome{Skip: SkipNonText})
	s.Record(Outcome{Skip: SkipNotEnglish})
	s.Record(Outcome{Skip: SkipNotEnglish})
	s.Record(Outcome{Err: errors.New("boom")})

	if s.Responses != 6 || s.Retained != 2 || s.Errors != 1 {
		t.Errorf("unexpected counters %+v", s)
	}
	if s.TotalSkipped() != 3 || s.Skipped[SkipNotEnglish] != 2 {
		t.Errorf("unexpected skips %v", s.Skipped)
	}
	if s.Processed() != 5 {
		t.Errorf("Processed() = %d", s.Processed())
	}

	s.FinishedAt = s.StartedAt.Add(2 * time.Second)
	if s.Elapsed() != 2*time.Second {
		t.Errorf("Elapsed() = %s", s.Elapsed())
	}
}

func TestSimilarityEdge(t *testing.T) {
	t.Parallel()

	e := SimilarityEdge{PageA: 9, PageB: 4, Score: 0.5}.Canonical()
	if e.PageA != 4 || e.PageB != 9 || e.Score != 0.5 {
		t.Errorf("Canonical() = %+v", e)
	}
	if e.IsSelf() {
		t.Error("distinct endpoints reported as self edge")
	}
	if !(SimilarityEdge{PageA: 3, PageB: 3}).IsSelf() {
		t.Error("self edge not detected")
	}
}
