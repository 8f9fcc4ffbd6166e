package archive

import "errors"

var (
	// ErrMalformedRecord is returned when the WARC framing cannot be parsed.
	// The reader cannot resynchronise after it.
	ErrMalformedRecord = errors.New("malformed WARC record")

	// ErrHTTPMessage is returned when a response record does not hold a
	// parseable HTTP response.
	ErrHTTPMessage = errors.New("unparseable HTTP message")

	// ErrWriterClosed is returned by WriteRecord after Close.
	ErrWriterClosed = errors.New("archive writer is closed")

	// ErrDigestUnavailable is returned by Digest before the archive was read to the end.
	ErrDigestUnavailable = errors.New("archive digest is available only after the last record")
)
