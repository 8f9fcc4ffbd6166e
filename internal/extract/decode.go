package extract

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw to a UTF-8 string. A declared non-UTF-8 charset wins;
// otherwise valid UTF-8 is returned as-is; otherwise a charset declared in
// the document is used; otherwise the bytes are read as ISO-8859-1.
func Decode(raw []byte, declaredContentType string) string {
	if label := declaredCharset(declaredContentType); label != "" {
		if enc, name := charset.Lookup(label); enc != nil && name != "utf-8" {
			if out, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(out)
			}
		}
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	// DetermineEncoding answers windows-1252 when it found nothing.
	if enc, name, certain := charset.DetermineEncoding(raw, ""); name != "utf-8" && (certain || name != "windows-1252") {
		if out, err := enc.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	}

	// Every byte maps to a code point in ISO-8859-1.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw) //nolint:errcheck // cannot fail
	return string(out)
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

// IsTextual reports whether a record with the given Content-Type can carry
// extractable text: any text/* type, or any type mentioning html or xml.
// An empty content type is given the benefit of the doubt.
func IsTextual(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text") || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}
