// Package pipeline drives an ingestion run.
//
// Every response record of the archive goes through a Pipeline of steps
// (parse HTTP, extract text, length gate, quality gate, features) and ends
// as a model.Outcome: a retained page, a skip reason, or an error carrying
// the record's URL. Records are processed concurrently by a bounded
// errgroup; retained pages land in an Arena. When every record is done the
// Runner computes similarity once over the arena, then persists pages and
// edges.
//
// Cancellation is honoured between records and between page writes, never
// inside a record. A panic inside a record becomes an error outcome.
package pipeline
