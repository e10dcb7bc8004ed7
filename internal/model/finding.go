package model

import "fmt"

// ProblemType classifies a citation-compliance problem.
type ProblemType string

const (
	ProblemMissingCitation    ProblemType = "missing_citation"    // cited in the body, absent from references
	ProblemUnusedReference    ProblemType = "unused_reference"    // listed reference never cited
	ProblemIrrelevantCitation ProblemType = "irrelevant_citation" // cited source judged unrelated to its context
)

// Severity indicates how serious a problem is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single raw problem reported by the analysis engine before
// location tracking. CitationToken is the literal bracketed marker as it
// appears in the text ("[12]" or a range "[3-5]"); unused-reference
// findings have none. Surrounding is the text around the token (or the
// reference entry text) used to disambiguate repeated occurrences.
type Finding struct {
	Type          ProblemType `json:"type"`
	Severity      Severity    `json:"severity"`
	CitationToken string      `json:"citation_token,omitempty"`
	Surrounding   string      `json:"surrounding_text,omitempty"`
	Explanation   string      `json:"explanation"`
}

// Validate rejects findings outside the closed classification set and
// findings missing required fields. Malformed findings are skipped at the
// tracker boundary rather than propagated.
func (f Finding) Validate() error {
	switch f.Type {
	case ProblemMissingCitation, ProblemIrrelevantCitation:
		if f.CitationToken == "" {
			return fmt.Errorf("%s finding without citation token", f.Type)
		}
	case ProblemUnusedReference:
		if f.Surrounding == "" {
			return fmt.Errorf("unused_reference finding without reference text")
		}
	default:
		return fmt.Errorf("unknown finding type %q", f.Type)
	}

	switch f.Severity {
	case SeverityError, SeverityWarning:
	default:
		return fmt.Errorf("unknown severity %q", f.Severity)
	}

	return nil
}
