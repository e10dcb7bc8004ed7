package model

import "time"

// Paragraph is one flattened unit of an ingested manuscript. Markup is the
// rendered HTML for the paragraph; Text is its tag-stripped plain text.
// Paragraphs are immutable once the document is loaded.
type Paragraph struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Markup string `json:"markup"`
}

// MarkupLength returns the length of the rendered markup in bytes. Problem
// offsets are measured against this string.
func (p Paragraph) MarkupLength() int {
	return len(p.Markup)
}

// Document is the flattened, paragraph-indexed representation of an
// uploaded manuscript. Read-only after ingestion.
type Document struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	Paragraphs []Paragraph `json:"paragraphs"`

	// ReferencesStart is the index of the paragraph holding the
	// "References" heading, or -1 when the document has no bibliography
	// section.
	ReferencesStart int `json:"references_start"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// Body returns the paragraphs before the references section. When no
// references section was detected the whole document is the body.
func (d *Document) Body() []Paragraph {
	if d.ReferencesStart < 0 || d.ReferencesStart > len(d.Paragraphs) {
		return d.Paragraphs
	}
	return d.Paragraphs[:d.ReferencesStart]
}

// References returns the paragraphs of the references section, excluding
// the heading itself. Empty when no section was detected.
func (d *Document) References() []Paragraph {
	if d.ReferencesStart < 0 || d.ReferencesStart+1 >= len(d.Paragraphs) {
		return nil
	}
	return d.Paragraphs[d.ReferencesStart+1:]
}

// ParagraphAt returns the paragraph with the given index, or false when the
// index is out of range.
func (d *Document) ParagraphAt(index int) (Paragraph, bool) {
	if index < 0 || index >= len(d.Paragraphs) {
		return Paragraph{}, false
	}
	return d.Paragraphs[index], true
}
