package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ContentType is the markup flavour an extractor resolved for a document.
type ContentType string

const (
	// ContentTypeXML is set when strict XML parsing produced at least one element.
	ContentTypeXML ContentType = "xml"

	// ContentTypeHTML is set when the lenient HTML parser produced the text.
	ContentTypeHTML ContentType = "html"

	// ContentTypeUnknown is the terminal fallback of the extractor chain.
	// Pages of this type never reach the store.
	ContentTypeUnknown ContentType = "unknown"
)

// Valid reports whether c is one of the known content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeXML, ContentTypeHTML, ContentTypeUnknown:
		return true
	default:
		return false
	}
}

// Page represents one retained archived document.
//
// URL is the natural key. ID is zero until the store assigns one; re-ingesting
// the same URL updates the stored row and keeps its ID.
type Page struct {
	// ID is the store identity. Zero for pages not yet persisted.
	ID int64 `json:"id,omitempty"`

	// URL is the WARC target URI of the capture.
	URL string `json:"url"`

	// Title is the document title, or the URL when the document has none.
	Title string `json:"title"`

	// ContentType is the resolved markup type.
	ContentType ContentType `json:"content_type"`

	// LanguageScore is the detector's confidence that the text is English.
	LanguageScore float64 `json:"language_score"`

	// CleanedText is the lowercased, URL-free, punctuation-free text.
	CleanedText string `json:"cleaned_text,omitempty"`

	// Summary is the first few sentences of the original text.
	Summary string `json:"summary"`

	// Keywords are the most frequent non-stopword tokens, most frequent first.
	Keywords []string `json:"keywords"`

	// NamedEntities groups recognized entity surface forms by label.
	NamedEntities Entities `json:"named_entities"`
}

// ErrEmptyURL is returned by Page.Validate when the URL is missing.
var ErrEmptyURL = errors.New("page url is empty")

// Validate checks the invariants a page must satisfy before it is stored.
func (p *Page) Validate() error {
	if p.URL == "" {
		return ErrEmptyURL
	}
	if !p.ContentType.Valid() || p.ContentType == ContentTypeUnknown {
		return fmt.Errorf("page %s: content type %q cannot be stored", p.URL, p.ContentType)
	}
	if p.LanguageScore < 0 || p.LanguageScore > 1 {
		return fmt.Errorf("page %s: language score %f out of range", p.URL, p.LanguageScore)
	}
	return nil
}

// EntityGroup holds the unique surface forms recognized for one label.
type EntityGroup struct {
	Label string
	Texts []string
}

// Entities is an insertion-ordered mapping from entity label to unique
// surface forms. It serializes as a JSON object whose keys keep that order.
type Entities []EntityGroup

// Add records text under label unless it is already present there.
func (e *Entities) Add(label, text string) {
	for i := range *e {
		g := &(*e)[i]
		if g.Label != label {
			continue
		}
		for _, existing := range g.Texts {
			if existing == text {
				return
			}
		}
		g.Texts = append(g.Texts, text)
		return
	}
	*e = append(*e, EntityGroup{Label: label, Texts: []string{text}})
}

// Get returns the surface forms recorded for label.
func (e Entities) Get(label string) []string {
	for _, g := range e {
		if g.Label == label {
			return g.Texts
		}
	}
	return nil
}

// Labels returns the labels in insertion order.
func (e Entities) Labels() []string {
	labels := make([]string, len(e))
	for i, g := range e {
		labels[i] = g.Label
	}
	return labels
}

// MarshalJSON writes the groups as a JSON object, preserving label order.
func (e Entities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Label)
		if err != nil {
			return nil, err
		}
		texts := g.Texts
		if texts == nil {
			texts = []string{}
		}
		val, err := json.Marshal(texts)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string arrays, keeping key order.
func (e *Entities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*e = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("named entities: expected object, got %v", tok)
	}

	groups := make(Entities, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("named entities: expected string key, got %v", keyTok)
		}
		var texts []string
		if err := dec.Decode(&texts); err != nil {
			return fmt.Errorf("named entities: label %q: %w", label, err)
		}
		groups = append(groups, EntityGroup{Label: label, Texts: texts})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*e = groups
	return nil
}
