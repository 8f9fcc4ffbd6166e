// Package archive reads and writes WARC files.
//
// A Reader walks a WARC (gzip-compressed, one member per record, or plain)
// and surfaces only response records, in archive order. Every byte of the
// archive file is hashed with SHA3-256 while reading so that the run can be
// tied to the exact archive it consumed.
//
// A Writer emits records as individual gzip members, which is what most WARC
// tooling expects from a .warc.gz file.
package archive
