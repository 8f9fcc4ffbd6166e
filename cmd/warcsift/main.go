// Package main provides the entry point for the warcsift CLI.
//
// warcsift reads a WARC web archive, keeps the English pages of reasonable
// quality, extracts keywords, summaries and named entities, and stores the
// pages together with their pairwise TF-IDF similarity in SQLite.
//
// Usage:
//
//	warcsift ingest crawl.warc.gz
//	warcsift similar 42
//
// See --help for all available options.
package main

func main() {
	Execute()
}
