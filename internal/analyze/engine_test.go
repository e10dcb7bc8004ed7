package analyze

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/papercheck/papercheck/internal/llm"
	"github.com/papercheck/papercheck/internal/model"
)

// fakeProvider flags configured tokens as not relevant.
type fakeProvider struct {
	mu       sync.Mutex
	flag     map[string]bool
	failFor  map[string]bool
	requests []llm.ReviewRequest
}

func (p *fakeProvider) Name() string                           { return "fake" }
func (p *fakeProvider) IsAvailable(ctx context.Context) bool   { return true }
func (p *fakeProvider) Review(ctx context.Context, req llm.ReviewRequest) (*llm.ReviewResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.failFor[req.CitationToken] {
		return nil, errors.New("provider unavailable")
	}
	verdict := llm.VerdictRelevant
	if p.flag[req.CitationToken] {
		verdict = llm.VerdictNotRelevant
	}
	return &llm.ReviewResponse{Verdict: verdict, Reason: "test reason", Model: "fake"}, nil
}

func engineDoc() *model.Document {
	texts := []string{
		"Claim one cites [1]. Claim two cites [2]. Broken cite [9].",
		"References",
		"[1] Smith, A. Relevant paper. 2020.",
		"[2] Jones, B. Unrelated paper. 2021.",
		"[3] Lee, C. Never cited. 2022.",
	}
	doc := &model.Document{ID: "d", Filename: "t.txt", ReferencesStart: 1}
	for i, text := range texts {
		doc.Paragraphs = append(doc.Paragraphs, model.Paragraph{Index: i, Text: text, Markup: text})
	}
	return doc
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	engine := NewEngine(nil, nil, 2, discard())

	var last [2]int
	findings, report, err := engine.Analyze(context.Background(), engineDoc(), model.ModeQuick, func(p, total int) {
		last = [2]int{p, total}
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	types := map[model.ProblemType]int{}
	for _, f := range findings {
		types[f.Type]++
	}
	if types[model.ProblemMissingCitation] != 1 {
		t.Errorf("missing_citation findings = %d, want 1", types[model.ProblemMissingCitation])
	}
	if types[model.ProblemUnusedReference] != 1 {
		t.Errorf("unused_reference findings = %d, want 1", types[model.ProblemUnusedReference])
	}
	if types[model.ProblemIrrelevantCitation] != 0 {
		t.Errorf("irrelevant findings without provider = %d", types[model.ProblemIrrelevantCitation])
	}

	if last != [2]int{1, 1} {
		t.Errorf("final progress = %v, want [1 1]", last)
	}
	if !strings.Contains(report, "<h1>Citation Analysis Report</h1>") {
		t.Errorf("report missing heading: %q", report)
	}
	if !strings.Contains(report, "[9]") {
		t.Error("report does not mention the broken citation token")
	}
}

func TestAnalyzeFlagsIrrelevantCitations(t *testing.T) {
	provider := &fakeProvider{flag: map[string]bool{"[2]": true}}
	engine := NewEngine(provider, nil, 2, discard())

	findings, _, err := engine.Analyze(context.Background(), engineDoc(), model.ModeSubjective, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var irrelevant []model.Finding
	for _, f := range findings {
		if f.Type == model.ProblemIrrelevantCitation {
			irrelevant = append(irrelevant, f)
		}
	}
	if len(irrelevant) != 1 {
		t.Fatalf("irrelevant findings = %d, want 1", len(irrelevant))
	}
	f := irrelevant[0]
	if f.CitationToken != "[2]" || f.Explanation != "test reason" {
		t.Errorf("finding = %+v", f)
	}

	// Reviews run only for resolvable single-number tokens: [1] and [2],
	// not the broken [9].
	if len(provider.requests) != 2 {
		t.Errorf("provider saw %d requests, want 2", len(provider.requests))
	}
	for _, req := range provider.requests {
		if req.CitationToken == "[9]" {
			t.Error("unresolvable token was reviewed")
		}
		if req.Reference == "" || req.Claim == "" {
			t.Errorf("review request missing material: %+v", req)
		}
	}
}

func TestAnalyzeReviewFailureIsPerItem(t *testing.T) {
	provider := &fakeProvider{
		flag:    map[string]bool{"[2]": true},
		failFor: map[string]bool{"[1]": true},
	}
	engine := NewEngine(provider, nil, 2, discard())

	findings, _, err := engine.Analyze(context.Background(), engineDoc(), model.ModeSubjective, nil)
	if err != nil {
		t.Fatalf("a single review failure must not fail the run: %v", err)
	}

	found := false
	for _, f := range findings {
		if f.Type == model.ProblemIrrelevantCitation && f.CitationToken == "[2]" {
			found = true
		}
	}
	if !found {
		t.Error("surviving review result was dropped")
	}
}

func TestAnalyzeProgressMonotonic(t *testing.T) {
	provider := &fakeProvider{}
	engine := NewEngine(provider, nil, 4, discard())

	var mu sync.Mutex
	var seen [][2]int
	_, _, err := engine.Analyze(context.Background(), engineDoc(), model.ModeSubjective, func(p, total int) {
		mu.Lock()
		seen = append(seen, [2]int{p, total})
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	prev := -1
	for _, s := range seen {
		if s[0] < prev {
			t.Errorf("processed went backwards: %v", seen)
			break
		}
		prev = s[0]
	}
	if len(seen) == 0 || seen[len(seen)-1][0] != seen[len(seen)-1][1] {
		t.Errorf("final progress incomplete: %v", seen)
	}
}

func TestAnalyzeRejectsUnknownMode(t *testing.T) {
	engine := NewEngine(nil, nil, 1, discard())
	if _, _, err := engine.Analyze(context.Background(), engineDoc(), "bogus", nil); err == nil {
		t.Error("unknown mode accepted")
	}
}
