// Package ingest flattens an uploaded manuscript into the paragraph
// sequence the tracking and annotation engine operates on. Each paragraph
// carries its rendered HTML markup and a tag-stripped plain text view.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/papercheck/papercheck/internal/model"
)

// blockTags are the HTML elements treated as paragraph boundaries.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "li": true,
	"td": true, "th": true, "blockquote": true, "pre": true,
}

// Parse flattens manuscript content into a Document. HTML files are split
// on block elements; anything else is treated as plain text split on blank
// lines. The document is immutable once returned.
func Parse(filename string, content []byte) (*model.Document, error) {
	var paragraphs []model.Paragraph
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		paragraphs, err = parseHTML(string(content))
	default:
		paragraphs = parsePlainText(string(content))
	}
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("document %q has no readable paragraphs", filename)
	}

	return &model.Document{
		ID:              uuid.NewString(),
		Filename:        filepath.Base(filename),
		Paragraphs:      paragraphs,
		ReferencesStart: findReferencesStart(paragraphs),
		UploadedAt:      time.Now().UTC(),
	}, nil
}

// parseHTML walks the HTML tree and emits one paragraph per block element.
// The paragraph markup is the element's inner HTML, so inline formatting
// survives into the preview.
func parseHTML(content string) ([]model.Paragraph, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var paragraphs []model.Paragraph

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
			if blockTags[n.Data] && !containsBlock(n) {
				markup := innerHTML(n)
				text := nodeText(n)
				if strings.TrimSpace(text) != "" {
					paragraphs = append(paragraphs, model.Paragraph{
						Index:  len(paragraphs),
						Text:   text,
						Markup: markup,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return paragraphs, nil
}

// containsBlock reports whether a block element nests another block
// element (e.g. a list item holding a sub-list); such containers are
// descended into instead of flattened whole.
func containsBlock(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			return true
		}
		if containsBlock(c) {
			return true
		}
	}
	return false
}

// innerHTML serializes the children of a node back to markup.
func innerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Render only fails on unwritable writers; strings.Builder never is.
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// nodeText extracts the concatenated text nodes beneath a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// parsePlainText splits text on blank lines. Each paragraph's markup is
// the escaped text, so offsets into markup and text coincide except where
// escaping expanded a character.
func parsePlainText(content string) []model.Paragraph {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var paragraphs []model.Paragraph
	for _, chunk := range strings.Split(content, "\n\n") {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		text = strings.ReplaceAll(text, "\n", " ")
		paragraphs = append(paragraphs, model.Paragraph{
			Index:  len(paragraphs),
			Text:   text,
			Markup: html.EscapeString(text),
		})
	}
	return paragraphs
}

// findReferencesStart locates the bibliography heading: a short paragraph
// whose text is "References" or "Bibliography". Returns -1 when absent.
func findReferencesStart(paragraphs []model.Paragraph) int {
	for _, p := range paragraphs {
		t := strings.ToLower(strings.TrimSpace(p.Text))
		t = strings.TrimSuffix(t, ":")
		if t == "references" || t == "bibliography" || t == "works cited" {
			return p.Index
		}
	}
	return -1
}
