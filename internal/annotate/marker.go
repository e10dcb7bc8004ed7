// Package annotate injects visual problem markers into rendered markup.
// Two renderers exist: an offset-based one for the document preview, which
// splices at exact tracked offsets, and a token-based one for the report,
// which matches citation tokens by text search. Both emit the same marker
// element, addressable by problem id, so the two views stay joinable.
package annotate

import (
	"fmt"
	"regexp"

	"github.com/papercheck/papercheck/internal/model"
)

// MarkerClass is the CSS class carried by every inserted marker element.
const MarkerClass = "problem-marker"

// SelectedClass is the additional class a view applies for transient
// selection emphasis. It is never part of persisted markup.
const SelectedClass = "problem-marker--selected"

// markerRe matches any marker element this package emits, including ones
// carrying the transient selection class. The marker body is a fixed glyph
// so the pattern cannot over-match document content.
var markerRe = regexp.MustCompile(
	`<span class="` + MarkerClass + `(?: ` + SelectedClass + `)?" data-problem-id="\d+" data-problem-type="[a-z_]+" style="background-color:#[0-9a-f]{6}">&#9888;</span>`)

// Marker renders the inline marker element for a problem.
func Marker(p model.Problem) string {
	return fmt.Sprintf(
		`<span class="%s" data-problem-id="%d" data-problem-type="%s" style="background-color:%s">&#9888;</span>`,
		MarkerClass, p.ID, p.Type, p.Color)
}

// Strip removes every marker element, reproducing the pre-annotation
// markup byte for byte.
func Strip(markupStr string) string {
	return markerRe.ReplaceAllString(markupStr, "")
}

// MarkerIDPattern returns a regexp matching the opening of markers for one
// problem id, used by views to apply and reverse selection emphasis.
func MarkerIDPattern(id int) *regexp.Regexp {
	return regexp.MustCompile(
		`<span class="` + MarkerClass + `" data-problem-id="` + fmt.Sprint(id) + `" `)
}
