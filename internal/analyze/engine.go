package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/papercheck/papercheck/internal/llm"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/scholar"
	"github.com/papercheck/papercheck/internal/worker"
)

// pdfExcerptLimit bounds how much extracted full text reaches the prompt.
const pdfExcerptLimit = 6000

// ProgressFunc receives monotonic progress updates during a run.
type ProgressFunc func(processed, total int)

// Engine runs the citation checks over a parsed document and produces raw
// findings plus the HTML analysis report.
type Engine struct {
	provider llm.Provider
	scholar  *scholar.Client
	workers  int
	logger   *slog.Logger
}

// NewEngine creates an engine. provider may be nil (no relevance review);
// lookup may be nil (no reference metadata).
func NewEngine(provider llm.Provider, lookup *scholar.Client, workers int, logger *slog.Logger) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		provider: provider,
		scholar:  lookup,
		workers:  workers,
		logger:   logger,
	}
}

// Analyze runs the checks selected by mode and returns findings in
// discovery order together with the report markup.
func (e *Engine) Analyze(ctx context.Context, doc *model.Document, mode model.AnalysisMode, progress ProgressFunc) ([]model.Finding, string, error) {
	if !mode.Valid() {
		return nil, "", fmt.Errorf("unknown analysis mode %q", mode)
	}
	if progress == nil {
		progress = func(int, int) {}
	}

	citations := ExtractCitations(doc)
	refs := ParseReferences(doc)

	findings := MissingCitations(citations, refs)
	findings = append(findings, UnusedReferences(citations, refs)...)

	reviewed, err := e.reviewRelevance(ctx, citations, refs, mode, progress)
	if err != nil {
		return nil, "", err
	}
	findings = append(findings, reviewed...)

	return findings, BuildReport(doc, findings, mode), nil
}

// reviewJob judges one distinct citation token against its reference.
type reviewJob struct {
	engine   *Engine
	citation Citation
	ref      Reference
	mode     model.AnalysisMode
	done     func()
}

// reviewResult carries the verdict back through the pool.
type reviewResult struct {
	citation Citation
	refNum   int
	verdict  llm.Verdict
	reason   string
	err      error
}

func (r reviewResult) GetError() error { return r.err }

func (j reviewJob) Execute(ctx context.Context) worker.Result {
	defer j.done()

	req := llm.ReviewRequest{
		CitationToken: j.citation.Token,
		Claim:         j.citation.Surrounding,
		Reference:     fmt.Sprintf("[%d] %s", j.ref.Number, j.ref.Text),
	}

	if j.mode != model.ModeSubjective && j.engine.scholar != nil {
		req.Abstract = j.engine.lookupContext(ctx, j.ref, j.mode)
	}

	resp, err := j.engine.provider.Review(ctx, req)
	if err != nil {
		return reviewResult{citation: j.citation, refNum: j.ref.Number, err: err}
	}
	return reviewResult{
		citation: j.citation,
		refNum:   j.ref.Number,
		verdict:  resp.Verdict,
		reason:   resp.Reason,
	}
}

// lookupContext fetches whatever external context the mode allows. Lookup
// failures degrade to an empty context instead of failing the review.
func (e *Engine) lookupContext(ctx context.Context, ref Reference, mode model.AnalysisMode) string {
	paper, err := e.scholar.Lookup(ctx, ref.DOI, ref.Text)
	if err != nil {
		e.logger.Warn("reference lookup failed", "ref", ref.Number, "error", err)
		return ""
	}
	if paper == nil {
		return ""
	}

	context := paper.Abstract
	if mode == model.ModeFull {
		text, err := e.scholar.FetchPDFText(ctx, paper)
		if err != nil {
			e.logger.Warn("pdf fetch failed", "ref", ref.Number, "error", err)
		} else if text != "" {
			if len(text) > pdfExcerptLimit {
				text = text[:pdfExcerptLimit]
			}
			context = strings.TrimSpace(context + "\n\nExcerpt from the paper:\n" + text)
		}
	}
	return context
}

func (e *Engine) reviewRelevance(ctx context.Context, citations []Citation, refs map[int]Reference, mode model.AnalysisMode, progress ProgressFunc) ([]model.Finding, error) {
	if e.provider == nil {
		progress(1, 1)
		return nil, nil
	}

	// One review per distinct single-number token with a resolvable entry.
	type unit struct {
		citation Citation
		ref      Reference
	}
	seen := make(map[string]bool)
	var units []unit
	for _, c := range citations {
		if seen[c.Token] {
			continue
		}
		seen[c.Token] = true

		numbers := ExpandNumbers(c.Token)
		if len(numbers) != 1 {
			continue
		}
		ref, ok := refs[numbers[0]]
		if !ok {
			continue
		}
		units = append(units, unit{citation: c, ref: ref})
	}

	total := len(units)
	if total == 0 {
		progress(1, 1)
		return nil, nil
	}
	progress(0, total)

	var mu sync.Mutex
	processed := 0
	// The callback runs under the lock so updates arrive in order.
	tick := func() {
		mu.Lock()
		processed++
		progress(processed, total)
		mu.Unlock()
	}

	pool := worker.NewPool(e.workers)
	pool.Start()
	for _, u := range units {
		pool.Submit(reviewJob{
			engine:   e,
			citation: u.citation,
			ref:      u.ref,
			mode:     mode,
			done:     tick,
		})
	}
	results := pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var flagged []reviewResult
	for _, r := range results {
		res, ok := r.(reviewResult)
		if !ok {
			continue
		}
		if res.err != nil {
			e.logger.Warn("relevance review failed", "token", res.citation.Token, "error", res.err)
			continue
		}
		if res.verdict == llm.VerdictNotRelevant {
			flagged = append(flagged, res)
		}
	}

	// Pool results arrive in completion order; sort for stable problem ids.
	sort.Slice(flagged, func(i, j int) bool { return flagged[i].refNum < flagged[j].refNum })

	findings := make([]model.Finding, 0, len(flagged))
	for _, res := range flagged {
		explanation := res.reason
		if explanation == "" {
			explanation = fmt.Sprintf("The source cited as %s does not appear to support the claim it is attached to.", res.citation.Token)
		}
		findings = append(findings, model.Finding{
			Type:          model.ProblemIrrelevantCitation,
			Severity:      model.SeverityWarning,
			CitationToken: res.citation.Token,
			Surrounding:   res.citation.Surrounding,
			Explanation:   explanation,
		})
	}
	return findings, nil
}
