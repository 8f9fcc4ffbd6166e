package model

// SimilarityFloor is the significance floor for stored similarity scores.
// Only pairs scoring strictly above it are ever written.
const SimilarityFloor = 0.2

// Pair is a similarity result between two pages of one batch, addressed by
// their batch-local indices. I is always smaller than J.
type Pair struct {
	I     int     `json:"i"`
	J     int     `json:"j"`
	Score float64 `json:"score"`
}

// SimilarityEdge is a similarity relation between two stored pages.
// The store keeps edges canonicalised so that PageA < PageB.
type SimilarityEdge struct {
	PageA int64   `json:"webpage1_id"`
	PageB int64   `json:"webpage2_id"`
	Score float64 `json:"similarity_score"`
}

// Canonical returns the edge with its endpoints in ascending order.
func (e SimilarityEdge) Canonical() SimilarityEdge {
	if e.PageA > e.PageB {
		e.PageA, e.PageB = e.PageB, e.PageA
	}
	return e
}

// IsSelf reports whether both endpoints are the same page.
func (e SimilarityEdge) IsSelf() bool {
	return e.PageA == e.PageB
}

// SimilarPage is a page returned by a nearest-neighbour query together with
// its similarity to the queried page.
type SimilarPage struct {
	Page
	Similarity float64 `json:"similarity"`
}
