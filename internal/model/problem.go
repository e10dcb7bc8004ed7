package model

// Display colors per problem type. These match the palette the web UI
// expects for marker backgrounds.
const (
	colorMissing    = "#ff4d4f" // red
	colorUnused     = "#faad14" // yellow
	colorIrrelevant = "#fa8c16" // orange
	colorDefault    = "#8c8c8c" // grey, unknown type
)

// ColorFor returns the deterministic display color for a problem type.
func ColorFor(t ProblemType) string {
	switch t {
	case ProblemMissingCitation:
		return colorMissing
	case ProblemUnusedReference:
		return colorUnused
	case ProblemIrrelevantCitation:
		return colorIrrelevant
	default:
		return colorDefault
	}
}

// Problem is a Finding enriched with a stable id and, when locatable, a
// position inside the document. Offsets are byte offsets into the owning
// paragraph's rendered markup. Problems are immutable once created; a
// re-analysis replaces the whole set.
type Problem struct {
	ID            int         `json:"id"`
	Type          ProblemType `json:"type"`
	Severity      Severity    `json:"severity"`
	CitationToken string      `json:"citation_token,omitempty"`
	Description   string      `json:"description"`

	// Location. Nil pointers mean the problem could not be mapped back
	// into the document; such problems stay listed but carry no anchor.
	ParagraphIndex *int `json:"paragraph_index,omitempty"`
	StartOffset    *int `json:"start_offset,omitempty"`
	EndOffset      *int `json:"end_offset,omitempty"`

	Color string `json:"color"`
}

// Located reports whether the problem carries a full document position.
func (p Problem) Located() bool {
	return p.ParagraphIndex != nil && p.StartOffset != nil && p.EndOffset != nil
}
