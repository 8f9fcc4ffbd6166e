package archive

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// leadingHeaders are written first, in this order and with this casing.
var leadingHeaders = []string{
	HeaderType,
	HeaderRecordID,
	HeaderDate,
	HeaderTargetURI,
	HeaderContentType,
}

// Writer writes WARC records, one gzip member per record.
type Writer struct {
	w      io.Writer
	gz     *gzip.Writer
	closed bool
}

// NewWriter returns a Writer emitting to w. The caller owns w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord appends rec. Content-Length is always recomputed from the block.
func (w *Writer) WriteRecord(rec *Record) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.gz == nil {
		w.gz = gzip.NewWriter(w.w)
	} else {
		w.gz.Reset(w.w)
	}

	bw := bufio.NewWriter(w.gz)
	if err := writeRecord(bw, rec); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip member: %w", err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, rec *Record) error {
	if _, err := w.WriteString("WARC/1.0\r\n"); err != nil {
		return err
	}

	written := map[string]bool{http.CanonicalHeaderKey(HeaderContentLength): true}
	for _, name := range leadingHeaders {
		key := http.CanonicalHeaderKey(name)
		for _, v := range rec.Header.Values(key) {
			if _, err := fmt.Fprintf(w, "%s: %s\r\n", name, v); err != nil {
				return err
			}
		}
		written[key] = true
	}

	rest := make([]string, 0, len(rec.Header))
	for key := range rec.Header {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		for _, v := range rec.Header[key] {
			if _, err := fmt.Fprintf(w, "%s: %s\r\n", key, v); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "%s: %s\r\n\r\n", HeaderContentLength, strconv.Itoa(len(rec.Block))); err != nil {
		return err
	}
	if _, err := w.Write(rec.Block); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n\r\n")
	return err
}

// Close marks the writer closed. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.closed = true
	return nil
}
