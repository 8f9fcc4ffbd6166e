package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
)

// token matches runs of two or more word characters.
var token = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// term is one non-zero component of a sparse vector.
type term struct {
	id     int
	weight float64
}

// vector is a sparse row sorted by term id.
type vector []term

// vectorizer builds L2-normalised TF-IDF rows for a fixed corpus.
type vectorizer struct {
	stem bool
}

// terms returns the vocabulary terms of doc, stopwords removed and,
// when enabled, stemmed.
func (v vectorizer) terms(doc string) []string {
	raw := token.FindAllString(strings.ToLower(doc), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		if v.stem {
			if s, err := snowball.Stem(t, "english", true); err == nil && s != "" {
				t = s
			}
		}
		out = append(out, t)
	}
	return out
}

// fit vectorises docs. Row i corresponds to docs[i]; documents without a
// single vocabulary term get an empty row.
func (v vectorizer) fit(docs []string) ([]vector, int) {
	vocab := make(map[string]int)
	counts := make([]map[int]int, len(docs))
	var df []int

	for i, doc := range docs {
		tf := make(map[int]int)
		for _, t := range v.terms(doc) {
			id, ok := vocab[t]
			if !ok {
				id = len(vocab)
				vocab[t] = id
				df = append(df, 0)
			}
			if tf[id] == 0 {
				df[id]++
			}
			tf[id]++
		}
		counts[i] = tf
	}

	n := float64(len(docs))
	idf := make([]float64, len(df))
	for id, d := range df {
		idf[id] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([]vector, len(docs))
	for i, tf := range counts {
		row := make(vector, 0, len(tf))
		var norm float64
		for id, c := range tf {
			w := float64(c) * idf[id]
			row = append(row, term{id: id, weight: w})
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range row {
				row[k].weight /= norm
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].id < row[b].id })
		rows[i] = row
	}
	return rows, len(vocab)
}
