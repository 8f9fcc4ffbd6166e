// Package extract turns a captured HTTP body into plain text and a title.
//
// Extraction runs an ordered chain of strategies and takes the first that
// succeeds: strict XML first, lenient HTML second, and a terminal strategy
// that always yields an empty result of type unknown. Bodies are decoded to
// UTF-8 beforehand, falling back through the declared charset, UTF-8, a
// sniffed <meta charset>, and finally ISO-8859-1, which never fails.
package extract
