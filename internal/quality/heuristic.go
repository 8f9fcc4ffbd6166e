package quality

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule names one heuristic check. The zero value means every check passed.
type Rule string

// Heuristic rules, in evaluation order.
const (
	RuleNone           Rule = ""
	RuleMinLength      Rule = "min_length"
	RuleASCIIRatio     Rule = "ascii_ratio"
	RuleVowelRatio     Rule = "vowel_ratio"
	RuleLetterDensity  Rule = "letter_density"
	RuleNonPrintable   Rule = "non_printable"
	RuleTokenCount     Rule = "token_count"
	RuleAvgTokenLength Rule = "avg_token_length"
	RuleStopwordRatio  Rule = "stopword_ratio"
)

// Thresholds of the heuristic.
const (
	MinNormalizedLength  = 30
	MinASCIILetterRatio  = 0.85
	MinVowelRatio        = 0.25
	MinLetterDensity     = 0.20
	MaxNonPrintableRatio = 0.15
	MinTokens            = 10
	MinAvgTokenLength    = 3.0
	MaxAvgTokenLength    = 12.0
	MinStopwordRatio     = 0.01
)

var (
	// whitespaceRun matches Unicode whitespace, &nbsp; included.
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{1c}-\x{1f}\x{85}]+`)
	asciiWord     = regexp.MustCompile(`[A-Za-z]+`)
)

// commonStopwords is a short list of very frequent English function words.
var commonStopwords = map[string]bool{
	"the": true, "and": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "to": true, "of": true, "in": true,
	"for": true, "on": true, "with": true, "as": true, "at": true, "by": true,
	"from": true, "that": true, "this": true, "it": true, "an": true, "a": true,
	"or": true, "if": true, "not": true, "can": true, "will": true, "would": true,
	"should": true, "could": true, "about": true, "into": true, "over": true,
	"after": true, "before": true, "between": true, "during": true, "than": true,
	"then": true, "so": true, "but": true, "because": true, "such": true,
	"these": true, "those": true, "we": true, "you": true, "they": true,
	"he": true, "she": true, "his": true, "her": true, "our": true, "your": true,
	"their": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "all": true, "any": true, "some": true,
	"no": true, "more": true, "most": true, "other": true, "one": true,
	"also": true, "may": true, "there": true, "here": true, "when": true,
	"where": true, "which": true, "who": true, "whom": true, "what": true,
	"how": true, "why": true,
}

// Heuristic rejects text that does not look like meaningful English.
type Heuristic struct{}

// Check returns the first rule the text fails, or RuleNone.
func (Heuristic) Check(text string) Rule {
	norm := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	runes := []rune(norm)
	total := len(runes)
	if total < MinNormalizedLength {
		return RuleMinLength
	}

	var letters, asciiLetters, vowels, nonPrintable int
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
		}
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			asciiLetters++
		}
		switch unicode.ToLower(r) {
		case 'a', 'e', 'i', 'o', 'u':
			vowels++
		}
		if !printable(r) {
			nonPrintable++
		}
	}

	if letters == 0 || float64(asciiLetters)/float64(letters) < MinASCIILetterRatio {
		return RuleASCIIRatio
	}
	if float64(vowels)/float64(letters) < MinVowelRatio {
		return RuleVowelRatio
	}
	if float64(letters)/float64(total) < MinLetterDensity {
		return RuleLetterDensity
	}
	if float64(nonPrintable)/float64(total) > MaxNonPrintableRatio {
		return RuleNonPrintable
	}

	words := asciiWord.FindAllString(norm, -1)
	if len(words) < MinTokens {
		return RuleTokenCount
	}
	var length, hits int
	for _, w := range words {
		length += len(w)
		if commonStopwords[strings.ToLower(w)] {
			hits++
		}
	}
	avg := float64(length) / float64(len(words))
	if avg < MinAvgTokenLength || avg > MaxAvgTokenLength {
		return RuleAvgTokenLength
	}
	if float64(hits)/float64(len(words)) < MinStopwordRatio {
		return RuleStopwordRatio
	}
	return RuleNone
}

// printable mirrors the ASCII printable set: letters, digits, punctuation,
// and the six whitespace characters.
func printable(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x7e:
		return true
	case r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
		return true
	}
	return false
}
