// Package model defines the core data structures used throughout warcsift.
//
// This package contains the following main types:
//   - Page: One retained archived document with its derived features
//   - SimilarityEdge and Pair: Pairwise content similarity relations
//   - Outcome: The explicit result of processing a single archive record
//   - RunSummary: Counters and metadata describing one ingestion run
//
// Models live in their own package so that the pipeline, the store and the
// report writers can share them without import cycles. All types serialize
// to JSON for report output and database storage.
package model
