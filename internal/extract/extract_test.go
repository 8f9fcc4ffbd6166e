package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/warcsift/internal/model"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("unclosed html falls through to the html strategy", func(t *testing.T) {
		t.Parallel()
		raw := []byte("<html><title>T</title><body><p>The cat sat on the mat.")
		got := Extract(raw, "text/html")
		if got.Type != model.ContentTypeHTML {
			t.Errorf("expected html, got %s", got.Type)
		}
		if got.Title != "T" {
			t.Errorf("expected title T, got %q", got.Title)
		}
		if got.Text != "The cat sat on the mat." {
			t.Errorf("unexpected text %q", got.Text)
		}
	})

	t.Run("well-formed xml is xml", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`<?xml version="1.0"?><feed><title>News</title><entry>  First  </entry><entry>Second</entry></feed>`)
		got := Extract(raw, "application/atom+xml")
		if got.Type != model.ContentTypeXML {
			t.Fatalf("expected xml, got %s", got.Type)
		}
		if got.Title != "News" {
			t.Errorf("expected title News, got %q", got.Title)
		}
		if got.Text != "News First Second" {
			t.Errorf("unexpected text %q", got.Text)
		}
	})

	t.Run("html drops non-content and prefers article", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`<!DOCTYPE html><html><head><title>Page</title><style>p{}</style></head>
<body><header>Site header</header><nav>Menu</nav>
<article><p>Body text &amp; more.</p><script>var x = 1;</script></article>
<aside>Related</aside><footer>Copyright<br></footer></body></html>`)
		got := Extract(raw, "text/html")
		if got.Type != model.ContentTypeHTML {
			t.Fatalf("expected html, got %s", got.Type)
		}
		if got.Text != "Body text & more." {
			t.Errorf("unexpected text %q", got.Text)
		}
	})

	t.Run("main is used when there is no article", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`<html><body><div>Outside</div><main>Inside main</main><br></body></html>`)
		if got := Extract(raw, ""); got.Text != "Inside main" {
			t.Errorf("unexpected text %q", got.Text)
		}
	})

	t.Run("plain text without elements is html body text", func(t *testing.T) {
		t.Parallel()
		got := Extract([]byte("just some words"), "text/plain")
		if got.Type != model.ContentTypeHTML || got.Text != "just some words" {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("empty body is unknown", func(t *testing.T) {
		t.Parallel()
		got := Extract([]byte("   "), "text/html")
		if got.Type != model.ContentTypeUnknown || got.Text != "" || got.Title != "" {
			t.Errorf("unexpected result %+v", got)
		}
	})
}

type declining struct{}

func (declining) Name() string                   { return "declining" }
func (declining) Extract(string) (Result, bool) { return Result{}, false }

func TestExtractorChain(t *testing.T) {
	t.Parallel()

	e := NewExtractor(declining{})
	if got := e.Strategies(); !reflect.DeepEqual(got, []string{"declining", "unknown"}) {
		t.Errorf("unexpected chain %v", got)
	}
	if got := e.Extract([]byte("<p>x</p>"), ""); got.Type != model.ContentTypeUnknown {
		t.Errorf("expected unknown, got %s", got.Type)
	}
	if got := NewExtractor().Strategies(); !reflect.DeepEqual(got, []string{"xml", "html", "unknown"}) {
		t.Errorf("unexpected default chain %v", got)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	latin1 := []byte{'c', 'a', 'f', 0xe9} // "café" in ISO-8859-1

	tests := []struct {
		name        string
		raw         []byte
		contentType string
		want        string
	}{
		{"utf-8 passes through", []byte("café"), "text/html", "café"},
		{"declared latin-1", latin1, "text/html; charset=ISO-8859-1", "café"},
		{"declared windows-1252", []byte{0x93, 'q', 0x94}, "text/html; charset=windows-1252", "“q”"},
		{"undeclared invalid utf-8 falls back to latin-1", latin1, "text/html", "café"},
		{"meta charset is sniffed", append([]byte(`<meta charset="iso-8859-2"><p>`), 0xb1), "", "<meta charset=\"iso-8859-2\"><p>ą"},
		{"bad declared label is ignored", []byte("plain"), "text/html; charset=bogus", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Decode(tt.raw, tt.contentType); got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("arbitrary bytes always decode", func(t *testing.T) {
		t.Parallel()
		raw := make([]byte, 256)
		for i := range raw {
			raw[i] = byte(i)
		}
		if got := Decode(raw, ""); len([]rune(got)) != 256 {
			t.Errorf("expected 256 runes, got %d", len([]rune(got)))
		}
	})
}

func TestIsTextual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html; charset=utf-8", true},
		{"text/plain", true},
		{"application/xhtml+xml", true},
		{"APPLICATION/RSS+XML", true},
		{"image/png", false},
		{"application/pdf", false},
		{"application/json", false},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.contentType, "/", "_"), func(t *testing.T) {
			t.Parallel()
			if got := IsTextual(tt.contentType); got != tt.want {
				t.Errorf("IsTextual(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}
