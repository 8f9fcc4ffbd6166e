package nlp

import (
	"sort"
	"strings"
	"unicode"
)

// ExtractKeywords returns at most topK distinct tokens of text that are made
// only of letters and digits and are not stopwords, most frequent first.
// Ties keep the order of first occurrence.
func ExtractKeywords(text string, topK int) []string {
	if topK <= 0 {
		return []string{}
	}

	type entry struct {
		word  string
		count int
	}
	index := make(map[string]int)
	var entries []entry
	for _, tok := range strings.Fields(text) {
		if !alphanumeric(tok) || IsStopword(tok) {
			continue
		}
		if i, ok := index[tok]; ok {
			entries[i].count++
			continue
		}
		index[tok] = len(entries)
		entries = append(entries, entry{word: tok, count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	n := min(topK, len(entries))
	out := make([]string, n)
	for i := range n {
		out[i] = entries[i].word
	}
	return out
}

func alphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}
