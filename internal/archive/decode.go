package archive

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// DecodeBody undoes an HTTP Content-Encoding. The encoding is matched by
// substring on its lowercase form: gzip, then deflate (raw first, zlib
// wrapped second). Unknown encodings such as br, and any decompression
// failure, return body unchanged.
func DecodeBody(body []byte, contentEncoding string) []byte {
	enc := strings.ToLower(contentEncoding)
	switch {
	case enc == "":
		return body
	case strings.Contains(enc, "gzip"):
		if out, err := gunzip(body); err == nil {
			return out
		}
	case strings.Contains(enc, "deflate"):
		if out, err := inflateRaw(body); err == nil {
			return out
		}
		if out, err := inflateZlib(body); err == nil {
			return out
		}
	}
	return body
}

func gunzip(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close() //nolint:errcheck // read-only
	return io.ReadAll(zr)
}

func inflateRaw(b []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(b))
	defer fr.Close() //nolint:errcheck // read-only
	return io.ReadAll(fr)
}

func inflateZlib(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close() //nolint:errcheck // read-only
	return io.ReadAll(zr)
}
