package archive

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/crypto/sha3"
)

// DefaultMaxRecordSize bounds the block size a Reader buffers in memory.
// Larger records are discarded and counted as skipped.
const DefaultMaxRecordSize = 64 * 1024 * 1024

// Reader iterates over the response records of a WARC file.
// It is not safe for concurrent use.
type Reader struct {
	file   *os.File
	hasher hash.Hash
	gz     *gzip.Reader
	br     *bufio.Reader

	maxRecordSize int64
	logger        *slog.Logger

	read    int
	skipped int
	ordinal int
	digest  string
	done    bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxRecordSize overrides DefaultMaxRecordSize.
func WithMaxRecordSize(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxRecordSize = n
		}
	}
}

// Open opens the WARC file at path. Gzip compression is detected from the
// magic bytes; concatenated gzip members are read as one stream.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // archive path is user input by design
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	r := &Reader{
		file:          f,
		hasher:        sha3.New256(),
		maxRecordSize: DefaultMaxRecordSize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	raw := bufio.NewReader(io.TeeReader(f, r.hasher))
	magic, err := raw.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(raw)
		if err != nil {
			_ = f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		r.gz = gz
		r.br = bufio.NewReaderSize(gz, 64*1024)
	} else {
		r.br = raw
	}
	return r, nil
}

// Next returns the next response record, or io.EOF after the last one.
// Records of any other WARC-Type are skipped and counted.
func (r *Reader) Next() (*Record, error) {
	if r.done {
		return nil, io.EOF
	}
	for {
		version, err := r.versionLine()
		if errors.Is(err, io.EOF) {
			return nil, r.finish()
		}
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(version, "WARC/") {
			return nil, fmt.Errorf("%w: unexpected version line %q", ErrMalformedRecord, version)
		}

		mime, err := textproto.NewReader(r.br).ReadMIMEHeader()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		header := http.Header(mime)
		length, err := strconv.ParseInt(strings.TrimSpace(header.Get(HeaderContentLength)), 10, 64)
		if err != nil || length < 0 {
			return nil, fmt.Errorf("%w: bad Content-Length %q", ErrMalformedRecord, header.Get(HeaderContentLength))
		}
		r.read++

		typ := header.Get(HeaderType)
		if typ != TypeResponse || length > r.maxRecordSize {
			if _, err := io.CopyN(io.Discard, r.br, length); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
			}
			r.skipped++
			r.logger.Debug("skipped WARC record",
				"type", typ,
				"uri", header.Get(HeaderTargetURI),
				"length", length,
			)
			continue
		}

		block := make([]byte, length)
		if _, err := io.ReadFull(r.br, block); err != nil {
			return nil, fmt.Errorf("%w: truncated block: %w", ErrMalformedRecord, err)
		}
		rec := &Record{Header: header, Block: block, Ordinal: r.ordinal}
		r.ordinal++
		return rec, nil
	}
}

// versionLine returns the next non-blank line. The blank lines are the CRLF
// pairs that terminate the previous record.
func (r *Reader) versionLine() (string, error) {
	for {
		line, err := r.br.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed != "" {
			return trimmed, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// finish drains the file into the hasher and fixes the digest.
func (r *Reader) finish() error {
	r.done = true
	if _, err := io.Copy(r.hasher, r.file); err != nil {
		return fmt.Errorf("failed to hash archive: %w", err)
	}
	r.digest = hex.EncodeToString(r.hasher.Sum(nil))
	return io.EOF
}

// RecordsRead returns the number of WARC records seen, of any type.
func (r *Reader) RecordsRead() int { return r.read }

// Skipped returns the number of records that were not surfaced.
func (r *Reader) Skipped() int { return r.skipped }

// Digest returns the hex SHA3-256 of the archive file. It is available once
// Next has returned io.EOF.
func (r *Reader) Digest() (string, error) {
	if !r.done {
		return "", ErrDigestUnavailable
	}
	return r.digest, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.gz != nil {
		_ = r.gz.Close() //nolint:errcheck // the file close below reports real failures
	}
	return r.file.Close()
}
