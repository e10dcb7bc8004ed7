package task

import (
	"fmt"

	"github.com/papercheck/papercheck/internal/model"
)

// Preview returns the document's paragraph markup with problem markers and
// the current selection emphasis applied. Before any completed analysis it
// returns the unannotated markup.
func (m *Manager) Preview(docID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[docID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", docID, ErrNotFound)
	}

	a := m.analyses[docID]
	if a == nil {
		out := make([]string, len(doc.Paragraphs))
		for i, para := range doc.Paragraphs {
			out[i] = para.Markup
		}
		return out, nil
	}

	out := make([]string, len(a.preview))
	for i, markup := range a.preview {
		out[i] = a.selection.ApplyTo(markup)
	}
	return out, nil
}

// Report returns the annotated analysis report with selection emphasis.
func (m *Manager) Report(docID string) (string, error) {
	a, err := m.analysisFor(docID)
	if err != nil {
		return "", err
	}
	return a.selection.ApplyTo(a.report), nil
}

// Problems returns the document's tracked problems, optionally filtered by
// type, plus per-type counts.
func (m *Manager) Problems(docID string, filter model.ProblemType) ([]model.Problem, map[model.ProblemType]int, error) {
	a, err := m.analysisFor(docID)
	if err != nil {
		return nil, nil, err
	}

	counts := a.registry.Counts()
	if filter == "" {
		return a.registry.All(), counts, nil
	}
	return a.registry.ByType(filter), counts, nil
}

// Select marks one problem as the current selection.
func (m *Manager) Select(docID string, problemID int) error {
	a, err := m.analysisFor(docID)
	if err != nil {
		return err
	}
	if _, ok := a.registry.Get(problemID); !ok {
		return fmt.Errorf("problem %d: %w", problemID, ErrNotFound)
	}
	a.selection.Select(problemID)
	return nil
}

// ClearSelection removes the current selection.
func (m *Manager) ClearSelection(docID string) error {
	a, err := m.analysisFor(docID)
	if err != nil {
		return err
	}
	a.selection.Clear()
	return nil
}

// Selection returns the selected problem id, if any.
func (m *Manager) Selection(docID string) (int, bool, error) {
	a, err := m.analysisFor(docID)
	if err != nil {
		return 0, false, err
	}
	id, ok := a.selection.Selected()
	return id, ok, nil
}

func (m *Manager) analysisFor(docID string) (*analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[docID]; !ok {
		return nil, fmt.Errorf("document %s: %w", docID, ErrNotFound)
	}
	a := m.analyses[docID]
	if a == nil {
		return nil, fmt.Errorf("document %s has no completed analysis: %w", docID, ErrNotReady)
	}
	return a, nil
}
