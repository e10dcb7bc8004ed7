// Package registry holds the tracked problems of one analysis run. Each
// problem gets a stable integer id in discovery order and a display color
// derived from its type. A registry is immutable once built; re-analysis
// replaces it wholesale.
package registry

import (
	"sort"

	"github.com/papercheck/papercheck/internal/model"
)

// Registry is the append-free, ordered view over a run's problems.
type Registry struct {
	problems []model.Problem
	byID     map[int]model.Problem
}

// Build assigns ids (1-based, discovery order) and colors to tracked
// problems and freezes them into a registry.
func Build(tracked []model.Problem) *Registry {
	problems := make([]model.Problem, len(tracked))
	byID := make(map[int]model.Problem, len(tracked))

	for i, p := range tracked {
		p.ID = i + 1
		p.Color = model.ColorFor(p.Type)
		problems[i] = p
		byID[p.ID] = p
	}

	return &Registry{problems: problems, byID: byID}
}

// All returns every problem in document order: located problems sorted by
// (paragraph, start offset), then unlocated ones by id.
func (r *Registry) All() []model.Problem {
	out := make([]model.Problem, len(r.problems))
	copy(out, r.problems)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Located() && b.Located():
			if *a.ParagraphIndex != *b.ParagraphIndex {
				return *a.ParagraphIndex < *b.ParagraphIndex
			}
			if *a.StartOffset != *b.StartOffset {
				return *a.StartOffset < *b.StartOffset
			}
			return a.ID < b.ID
		case a.Located():
			return true
		case b.Located():
			return false
		default:
			return a.ID < b.ID
		}
	})

	return out
}

// ByType returns the problems of one type, in the same order as All.
func (r *Registry) ByType(t model.ProblemType) []model.Problem {
	var out []model.Problem
	for _, p := range r.All() {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// InParagraph returns the located problems anchored in one paragraph,
// sorted by start offset. This is the offset annotator's input.
func (r *Registry) InParagraph(index int) []model.Problem {
	var out []model.Problem
	for _, p := range r.problems {
		if p.Located() && *p.ParagraphIndex == index {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].StartOffset < *out[j].StartOffset
	})
	return out
}

// Get looks a problem up by id.
func (r *Registry) Get(id int) (model.Problem, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Len returns the number of problems.
func (r *Registry) Len() int {
	return len(r.problems)
}

// Counts returns the number of problems per type.
func (r *Registry) Counts() map[model.ProblemType]int {
	counts := make(map[model.ProblemType]int)
	for _, p := range r.problems {
		counts[p.Type]++
	}
	return counts
}
