package annotate

import (
	"strings"
	"testing"

	"github.com/papercheck/papercheck/internal/model"
)

func intPtr(v int) *int { return &v }

func locatedProblem(id, para, start, end int) model.Problem {
	return model.Problem{
		ID:             id,
		Type:           model.ProblemMissingCitation,
		Severity:       model.SeverityError,
		CitationToken:  "[7]",
		Color:          model.ColorFor(model.ProblemMissingCitation),
		ParagraphIndex: intPtr(para),
		StartOffset:    intPtr(start),
		EndOffset:      intPtr(end),
	}
}

func TestMarkerStripRoundTrip(t *testing.T) {
	p := model.Paragraph{Index: 0, Text: "see [7] and more text", Markup: "see [7] and more text"}
	prob := locatedProblem(1, 0, 4, 7)

	annotated := NewOffsetAnnotator(nil).Annotate(p, []model.Problem{prob})
	if annotated == p.Markup {
		t.Fatal("annotation inserted nothing")
	}
	if got := Strip(annotated); got != p.Markup {
		t.Errorf("Strip(annotated) = %q, want original %q", got, p.Markup)
	}
}

func TestOffsetAnnotateInsertsAfterSpan(t *testing.T) {
	p := model.Paragraph{Index: 0, Markup: "see [7] and more"}
	prob := locatedProblem(1, 0, 4, 7)

	got := NewOffsetAnnotator(nil).Annotate(p, []model.Problem{prob})
	want := "see [7]" + Marker(prob) + " and more"
	if got != want {
		t.Errorf("annotated = %q, want %q", got, want)
	}
}

func TestOffsetAnnotateEmptyProblemSetIsIdentity(t *testing.T) {
	p := model.Paragraph{Index: 0, Markup: "<p>untouched</p>"}
	if got := NewOffsetAnnotator(nil).Annotate(p, nil); got != p.Markup {
		t.Errorf("annotate with no problems changed markup: %q", got)
	}
}

func TestOffsetAnnotateTwoProblemsOrderIndependent(t *testing.T) {
	p := model.Paragraph{Index: 0, Markup: "see [5] and also see [23]"}
	a := locatedProblem(1, 0, 4, 7)
	b := locatedProblem(2, 0, 21, 25)

	ann := NewOffsetAnnotator(nil)
	forward := ann.Annotate(p, []model.Problem{a, b})
	backward := ann.Annotate(p, []model.Problem{b, a})
	if forward != backward {
		t.Errorf("input order changed output:\n%q\n%q", forward, backward)
	}

	// Both markers present, each directly after its span.
	wantPrefix := "see [5]" + Marker(a)
	if !strings.HasPrefix(forward, wantPrefix) {
		t.Errorf("annotated = %q, want prefix %q", forward, wantPrefix)
	}
	if !strings.HasSuffix(forward, "[23]"+Marker(b)) {
		t.Errorf("annotated = %q, want suffix after [23]", forward)
	}
}

func TestOffsetAnnotateSkipsStaleSpan(t *testing.T) {
	p := model.Paragraph{Index: 0, Markup: "short"}
	stale := locatedProblem(1, 0, 2, 99)
	fine := locatedProblem(2, 0, 0, 5)

	got := NewOffsetAnnotator(nil).Annotate(p, []model.Problem{stale, fine})
	if strings.Contains(got, `data-problem-id="1"`) {
		t.Error("stale-span problem was annotated")
	}
	if !strings.Contains(got, `data-problem-id="2"`) {
		t.Error("valid problem was not annotated")
	}
}

func TestOffsetAnnotateIgnoresOtherParagraphs(t *testing.T) {
	p := model.Paragraph{Index: 3, Markup: "see [7] here"}
	other := locatedProblem(1, 4, 4, 7)

	if got := NewOffsetAnnotator(nil).Annotate(p, []model.Problem{other}); got != p.Markup {
		t.Errorf("problem from another paragraph was annotated: %q", got)
	}
}

func TestTokenAnnotateMarksEveryOccurrence(t *testing.T) {
	report := "<h2>Problems</h2><ul><li><strong>[7]</strong> text with [7] twice</li></ul>"
	prob := locatedProblem(1, 0, 0, 3)

	got := NewTokenAnnotator(nil).Annotate(report, []model.Problem{prob})
	if n := strings.Count(got, Marker(prob)); n != 2 {
		t.Errorf("marker count = %d, want 2", n)
	}
	if Strip(got) != report {
		t.Error("stripping markers does not restore the report")
	}
}

func TestTokenAnnotateAbsentTokenLeavesReportUnchanged(t *testing.T) {
	report := "<p>no citations here</p>"
	prob := locatedProblem(1, 0, 0, 3)

	if got := NewTokenAnnotator(nil).Annotate(report, []model.Problem{prob}); got != report {
		t.Errorf("report changed: %q", got)
	}
}

func TestTokenAnnotateSkipsTokenlessProblems(t *testing.T) {
	report := "<p>[2] Jones, never cited</p>"
	unused := model.Problem{
		ID: 1, Type: model.ProblemUnusedReference, Severity: model.SeverityWarning,
		Color: model.ColorFor(model.ProblemUnusedReference),
	}

	if got := NewTokenAnnotator(nil).Annotate(report, []model.Problem{unused}); got != report {
		t.Errorf("tokenless problem produced markers: %q", got)
	}
}

func TestExpandToken(t *testing.T) {
	tests := []struct {
		token string
		want  []string
	}{
		{"[7]", []string{"[7]"}},
		{"[3-5]", []string{"[3-5]", "[3]", "[4]", "[5]"}},
		{"[9-2]", []string{"[9-2]"}},
		{"not a token", []string{"not a token"}},
	}
	for _, tt := range tests {
		got := ExpandToken(tt.token)
		if len(got) != len(tt.want) {
			t.Errorf("ExpandToken(%q) = %v, want %v", tt.token, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ExpandToken(%q)[%d] = %q, want %q", tt.token, i, got[i], tt.want[i])
			}
		}
	}
}

func TestMarkerIDPatternMatchesOnlyItsID(t *testing.T) {
	p1 := locatedProblem(1, 0, 0, 3)
	p12 := locatedProblem(12, 0, 0, 3)
	view := Marker(p1) + Marker(p12)

	if got := len(MarkerIDPattern(1).FindAllString(view, -1)); got != 1 {
		t.Errorf("pattern for id 1 matched %d times, want 1", got)
	}
}
