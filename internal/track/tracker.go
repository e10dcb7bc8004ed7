// Package track maps raw analysis findings back to precise coordinates
// inside a document: a paragraph index and byte offsets into that
// paragraph's rendered markup. Locatability failures are per-finding and
// never abort a run; an unlocatable finding still becomes a problem, just
// without an anchor.
package track

import (
	"log/slog"
	"strings"

	"github.com/papercheck/papercheck/internal/markup"
	"github.com/papercheck/papercheck/internal/model"
)

// contextWindow is the number of stripped-text bytes taken on each side of
// an occurrence when scoring it against a finding's surrounding text.
const contextWindow = 100

// Tracker locates findings inside a document.
type Tracker struct {
	logger *slog.Logger
}

// New creates a Tracker. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{logger: logger}
}

// placement is a candidate location for a finding.
type placement struct {
	paragraph int
	start     int // markup offsets
	end       int
	score     int
}

// Locate turns findings into problems, resolving each one's position where
// possible. Problems come back in input order with IDs and colors unset;
// the registry assigns those. Malformed findings are skipped.
func (t *Tracker) Locate(doc *model.Document, findings []model.Finding) []model.Problem {
	problems := make([]model.Problem, 0, len(findings))

	for _, f := range findings {
		if err := f.Validate(); err != nil {
			t.logger.Warn("skipping malformed finding", "error", err)
			continue
		}

		p := model.Problem{
			Type:          f.Type,
			Severity:      f.Severity,
			CitationToken: f.CitationToken,
			Description:   f.Explanation,
		}

		var loc *placement
		if f.CitationToken == "" {
			loc = t.locateReference(doc, f)
		} else {
			loc = t.locateToken(doc, f)
		}

		if loc == nil {
			t.logger.Info("finding could not be located",
				"type", f.Type, "token", f.CitationToken)
		} else {
			p.ParagraphIndex = intPtr(loc.paragraph)
			p.StartOffset = intPtr(loc.start)
			p.EndOffset = intPtr(loc.end)
		}

		problems = append(problems, p)
	}

	return problems
}

// locateToken finds the best occurrence of a citation token. Body
// paragraphs are preferred; the references section is searched only when
// the body has no occurrence, matching where a reader would look first.
func (t *Tracker) locateToken(doc *model.Document, f model.Finding) *placement {
	if best := bestOccurrence(doc.Body(), f); best != nil {
		return best
	}
	if doc.ReferencesStart >= 0 {
		if best := bestOccurrence(doc.Paragraphs[doc.ReferencesStart:], f); best != nil {
			return best
		}
	}
	return nil
}

// bestOccurrence scans paragraphs for token occurrences in the
// tag-stripped view and keeps the one whose local context scores highest
// against the finding's surrounding text. Ties go to the earliest
// paragraph, then the earliest offset, which the scan order guarantees.
func bestOccurrence(paragraphs []model.Paragraph, f model.Finding) *placement {
	var best *placement

	for _, para := range paragraphs {
		st := markup.Strip(para.Markup)

		from := 0
		for {
			i := strings.Index(st.Text[from:], f.CitationToken)
			if i < 0 {
				break
			}
			i += from
			from = i + 1

			start, end, ok := st.SpanToSource(i, i+len(f.CitationToken))
			if !ok {
				continue
			}

			score := contextScore(contextAround(st.Text, i, i+len(f.CitationToken)), f.Surrounding)
			if best == nil || score > best.score {
				best = &placement{paragraph: para.Index, start: start, end: end, score: score}
			}
		}
	}

	return best
}

// locateReference anchors an unused-reference finding at its entry in the
// references section: the whole entry paragraph is the span. Falls back to
// scanning every paragraph when no references section was detected.
func (t *Tracker) locateReference(doc *model.Document, f model.Finding) *placement {
	want := normalize(f.Surrounding)
	if want == "" {
		return nil
	}

	scan := doc.References()
	if len(scan) == 0 {
		scan = doc.Paragraphs
	}

	for _, para := range scan {
		have := normalize(para.Text)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return &placement{paragraph: para.Index, start: 0, end: len(para.Markup)}
		}
	}
	return nil
}

// contextAround returns the stripped text surrounding a [start, end) span.
func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// contextScore measures how closely an occurrence's local context matches
// the finding's surrounding text. The policy is the length of the longest
// common substring of the two normalized strings: containment (the minimum
// criterion) scores maximally, partial overlaps still rank occurrences
// sensibly, and a missing surrounding text scores everything equally so
// the earliest occurrence wins.
func contextScore(window, surrounding string) int {
	a := normalize(window)
	b := normalize(surrounding)
	if a == "" || b == "" {
		return 0
	}
	return longestCommonSubstring(a, b)
}

// longestCommonSubstring computes the LCS length with a rolling row; the
// inputs are bounded by the context window so the quadratic cost is small.
func longestCommonSubstring(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}

// normalize lowercases and collapses whitespace for fuzzy comparison.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func intPtr(v int) *int { return &v }
