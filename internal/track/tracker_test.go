package track

import (
	"testing"

	"github.com/papercheck/papercheck/internal/model"
)

func plainDoc(texts ...string) *model.Document {
	doc := &model.Document{ID: "doc", Filename: "test.txt", ReferencesStart: -1}
	for i, text := range texts {
		doc.Paragraphs = append(doc.Paragraphs, model.Paragraph{
			Index: i, Text: text, Markup: text,
		})
	}
	return doc
}

func missingFinding(token, surrounding string) model.Finding {
	return model.Finding{
		Type:          model.ProblemMissingCitation,
		Severity:      model.SeverityError,
		CitationToken: token,
		Surrounding:   surrounding,
		Explanation:   "no entry",
	}
}

func TestLocateTokenExactSpan(t *testing.T) {
	doc := plainDoc(
		"Introduction paragraph.",
		"Background material.",
		"see ref [7] and [8]",
	)

	problems := New(nil).Locate(doc, []model.Finding{
		missingFinding("[7]", "see ref [7] and [8]"),
	})
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(problems))
	}

	p := problems[0]
	if !p.Located() {
		t.Fatal("problem not located")
	}
	if *p.ParagraphIndex != 2 {
		t.Errorf("paragraph = %d, want 2", *p.ParagraphIndex)
	}
	if *p.StartOffset != 8 || *p.EndOffset != 11 {
		t.Errorf("span = [%d, %d), want [8, 11)", *p.StartOffset, *p.EndOffset)
	}
}

func TestLocateTokenSplitByTags(t *testing.T) {
	doc := &model.Document{
		ID: "doc", ReferencesStart: -1,
		Paragraphs: []model.Paragraph{
			{Index: 0, Text: "see [7] here", Markup: "see [<em>7</em>] here"},
		},
	}

	problems := New(nil).Locate(doc, []model.Finding{
		missingFinding("[7]", "see [7] here"),
	})
	p := problems[0]
	if !p.Located() {
		t.Fatal("problem not located")
	}
	got := doc.Paragraphs[0].Markup[*p.StartOffset:*p.EndOffset]
	if got != "[<em>7</em>]" {
		t.Errorf("span covers %q, want %q", got, "[<em>7</em>]")
	}
}

func TestLocateTokenPrefersMatchingContext(t *testing.T) {
	doc := plainDoc(
		"Early result [3] in a different context about chemistry.",
		"Later discussion of protein folding with [3] as evidence.",
	)

	problems := New(nil).Locate(doc, []model.Finding{
		missingFinding("[3]", "Later discussion of protein folding with [3] as evidence."),
	})
	p := problems[0]
	if !p.Located() || *p.ParagraphIndex != 1 {
		t.Fatalf("located at %v, want paragraph 1", p.ParagraphIndex)
	}
}

func TestLocateTokenTieGoesToEarliest(t *testing.T) {
	doc := plainDoc(
		"identical text [5]",
		"identical text [5]",
	)

	problems := New(nil).Locate(doc, []model.Finding{
		missingFinding("[5]", "identical text [5]"),
	})
	p := problems[0]
	if !p.Located() || *p.ParagraphIndex != 0 {
		t.Fatalf("located at %v, want paragraph 0", p.ParagraphIndex)
	}
}

func TestLocateTokenAbsent(t *testing.T) {
	doc := plainDoc("nothing to cite here")

	problems := New(nil).Locate(doc, []model.Finding{
		missingFinding("[99]", "whatever"),
	})
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(problems))
	}
	p := problems[0]
	if p.Located() {
		t.Error("problem should be unlocated")
	}
	if p.ParagraphIndex != nil || p.StartOffset != nil || p.EndOffset != nil {
		t.Error("unlocated problem must carry nil position fields")
	}
	if p.CitationToken != "[99]" {
		t.Errorf("token = %q, want [99]", p.CitationToken)
	}
}

func TestLocateUnusedReference(t *testing.T) {
	doc := plainDoc(
		"Body with a citation [1].",
		"References",
		"[1] Smith, A. Useful paper. 2020.",
		"[2] Jones, B. Never cited. 2021.",
	)
	doc.ReferencesStart = 1

	problems := New(nil).Locate(doc, []model.Finding{
		{
			Type:        model.ProblemUnusedReference,
			Severity:    model.SeverityWarning,
			Surrounding: "[2] Jones, B. Never cited. 2021.",
			Explanation: "never cited",
		},
	})
	p := problems[0]
	if !p.Located() {
		t.Fatal("reference problem not located")
	}
	if *p.ParagraphIndex != 3 {
		t.Errorf("paragraph = %d, want 3", *p.ParagraphIndex)
	}
	// The whole entry paragraph is the span.
	if *p.StartOffset != 0 || *p.EndOffset != len(doc.Paragraphs[3].Markup) {
		t.Errorf("span = [%d, %d), want whole paragraph", *p.StartOffset, *p.EndOffset)
	}
}

func TestLocateSkipsMalformedFindings(t *testing.T) {
	doc := plainDoc("see [1]")

	problems := New(nil).Locate(doc, []model.Finding{
		{Type: "bogus_type", Severity: model.SeverityError, CitationToken: "[1]"},
		{Type: model.ProblemMissingCitation, Severity: model.SeverityError}, // no token
		missingFinding("[1]", "see [1]"),
	})
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1 (malformed skipped)", len(problems))
	}
}

func TestContextScore(t *testing.T) {
	full := contextScore("the quick brown fox", "the quick brown fox")
	partial := contextScore("the quick brown fox", "a quick brown dog")
	none := contextScore("the quick brown fox", "")

	if full <= partial {
		t.Errorf("full match score %d should exceed partial %d", full, partial)
	}
	if none != 0 {
		t.Errorf("empty surrounding score = %d, want 0", none)
	}
}
