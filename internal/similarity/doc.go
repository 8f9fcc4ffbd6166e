// Package similarity scores every pair of documents in a batch by the cosine
// of their TF-IDF vectors and keeps the pairs above a floor.
//
// Weights follow the common smoothed formulation: raw term counts,
// idf = ln((1+n)/(1+df)) + 1, and L2-normalised rows, so the cosine of two
// rows is their dot product. Dot products are accumulated through an
// inverted index, so pairs that share no term are never visited.
package similarity
