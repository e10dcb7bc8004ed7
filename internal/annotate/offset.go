package annotate

import (
	"log/slog"
	"sort"

	"github.com/papercheck/papercheck/internal/model"
)

// OffsetAnnotator splices markers into a paragraph's markup at the exact
// offsets the tracker resolved. Used for the primary document preview.
type OffsetAnnotator struct {
	logger *slog.Logger
}

// NewOffsetAnnotator creates an offset annotator. A nil logger falls back
// to slog.Default.
func NewOffsetAnnotator(logger *slog.Logger) *OffsetAnnotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OffsetAnnotator{logger: logger}
}

// Annotate returns the paragraph markup with one marker inserted after
// each problem's span. Insertions run in descending start-offset order so
// earlier offsets stay valid while later ones are spliced. The matched
// span itself is never altered. A problem whose span no longer fits the
// markup is skipped; the rest of the paragraph still annotates.
func (a *OffsetAnnotator) Annotate(p model.Paragraph, problems []model.Problem) string {
	out := p.Markup
	if len(problems) == 0 {
		return out
	}

	ordered := make([]model.Problem, 0, len(problems))
	for _, prob := range problems {
		if prob.Located() && *prob.ParagraphIndex == p.Index {
			ordered = append(ordered, prob)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if *ordered[i].StartOffset != *ordered[j].StartOffset {
			return *ordered[i].StartOffset > *ordered[j].StartOffset
		}
		return *ordered[i].EndOffset > *ordered[j].EndOffset
	})

	for _, prob := range ordered {
		start, end := *prob.StartOffset, *prob.EndOffset
		if start < 0 || end < start || end > len(out) || end > len(p.Markup) {
			a.logger.Warn("skipping annotation with stale span",
				"problem_id", prob.ID, "paragraph", p.Index,
				"start", start, "end", end, "markup_len", len(p.Markup))
			continue
		}
		out = out[:end] + Marker(prob) + out[end:]
	}

	return out
}
