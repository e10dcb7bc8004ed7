// Package session holds the per-document selection state and pushes it
// into rendered views. The problem id is the only join key between the
// preview and the report: each view looks the id's markers up in its own
// markup, and either view may legitimately find none.
package session

import (
	"strings"
	"sync"

	"github.com/papercheck/papercheck/internal/annotate"
)

// Synchronizer is the single writer of the selected-problem state. One
// exists per open document session; it resets when a new document loads or
// a new analysis starts.
type Synchronizer struct {
	mu       sync.Mutex
	selected *int
}

// New creates a Synchronizer with nothing selected.
func New() *Synchronizer {
	return &Synchronizer{}
}

// Select sets the selected problem id. Selecting the same id twice is a
// no-op beyond the first call.
func (s *Synchronizer) Select(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &id
}

// Clear removes the selection.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selected returns the current selection, if any.
func (s *Synchronizer) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

// ApplyTo returns the view markup with the current selection emphasized.
// Emphasis is transient: it is computed from the clean view every time and
// never written back, so clearing the selection restores the prior state
// exactly.
func (s *Synchronizer) ApplyTo(view string) string {
	id, ok := s.Selected()
	if !ok {
		return ClearEmphasis(view)
	}
	return Emphasize(view, id)
}

// Emphasize returns the view with the markers for one problem id carrying
// the selection class and all other emphasis removed. Finding no marker is
// a valid outcome; the view comes back unchanged apart from the reset.
func Emphasize(view string, id int) string {
	base := ClearEmphasis(view)
	pat := annotate.MarkerIDPattern(id)
	return pat.ReplaceAllStringFunc(base, func(open string) string {
		return strings.Replace(open,
			`class="`+annotate.MarkerClass+`"`,
			`class="`+annotate.MarkerClass+` `+annotate.SelectedClass+`"`, 1)
	})
}

// ClearEmphasis removes the selection class from every marker in the view.
func ClearEmphasis(view string) string {
	return strings.ReplaceAll(view,
		`class="`+annotate.MarkerClass+` `+annotate.SelectedClass+`"`,
		`class="`+annotate.MarkerClass+`"`)
}
