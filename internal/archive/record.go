package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// WARC header names used by this package.
const (
	HeaderType          = "WARC-Type"
	HeaderRecordID      = "WARC-Record-ID"
	HeaderDate          = "WARC-Date"
	HeaderTargetURI     = "WARC-Target-URI"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
)

// TypeResponse is the WARC-Type of records holding a full HTTP response.
const TypeResponse = "response"

// Record is a single WARC record.
type Record struct {
	// Header holds the WARC header fields.
	Header http.Header
	// Block is the record content; for response records a raw HTTP message.
	Block []byte
	// Ordinal is the position of the record among the responses surfaced by
	// a Reader, starting at zero.
	Ordinal int
}

// NewResponseRecord builds a response record for targetURI around a raw
// HTTP response message.
func NewResponseRecord(targetURI string, httpMessage []byte, date time.Time) *Record {
	h := make(http.Header)
	h.Set(HeaderType, TypeResponse)
	h.Set(HeaderRecordID, "<urn:uuid:"+uuid.NewString()+">")
	h.Set(HeaderDate, date.UTC().Format(time.RFC3339))
	h.Set(HeaderTargetURI, targetURI)
	h.Set(HeaderContentType, "application/http; msgtype=response")
	return &Record{Header: h, Block: httpMessage}
}

// Type returns the WARC-Type of the record.
func (r *Record) Type() string { return r.Header.Get(HeaderType) }

// TargetURI returns the captured URL.
func (r *Record) TargetURI() string { return r.Header.Get(HeaderTargetURI) }

// Response is the parsed HTTP message of a response record.
type Response struct {
	StatusCode int
	Header     http.Header
	// Body is the payload after Content-Encoding was undone.
	Body []byte
	// RawBody is the payload as transmitted.
	RawBody []byte
}

// ContentType returns the declared Content-Type, possibly empty.
func (r *Response) ContentType() string { return r.Header.Get("Content-Type") }

// HTTPResponse parses the record block as an HTTP response. At most maxBody
// bytes of the body are read; maxBody <= 0 means no limit. Chunked transfer
// coding is removed. A truncated body keeps whatever could be read.
func (r *Record) HTTPResponse(maxBody int64) (*Response, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(r.Block)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPMessage, err)
	}
	defer resp.Body.Close() //nolint:errcheck // in-memory body

	var body io.Reader = resp.Body
	if maxBody > 0 {
		body = io.LimitReader(resp.Body, maxBody)
	}
	// Truncated captures are common; keep the bytes read before the error.
	raw, _ := io.ReadAll(body) //nolint:errcheck // partial bodies are accepted

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       DecodeBody(raw, resp.Header.Get("Content-Encoding")),
		RawBody:    raw,
	}, nil
}
