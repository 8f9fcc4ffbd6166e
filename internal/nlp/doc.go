// Package nlp derives the per-page features stored alongside a page:
// cleaned text, keywords, a short summary and named entities.
//
// Keywords come from the cleaned text. The summary and the entities come
// from the text as extracted, since sentence boundaries and capitalisation
// are gone after cleaning.
package nlp
