package analyze

import (
	"fmt"
	"sort"

	"github.com/papercheck/papercheck/internal/model"
)

// MissingCitations reports citation tokens pointing at reference numbers
// that have no bibliography entry. One finding per distinct token.
func MissingCitations(citations []Citation, refs map[int]Reference) []model.Finding {
	seen := make(map[string]bool)
	var findings []model.Finding

	for _, c := range citations {
		if seen[c.Token] {
			continue
		}
		seen[c.Token] = true

		var missing []int
		for _, n := range ExpandNumbers(c.Token) {
			if _, ok := refs[n]; !ok {
				missing = append(missing, n)
			}
		}
		if len(missing) == 0 {
			continue
		}

		findings = append(findings, model.Finding{
			Type:          model.ProblemMissingCitation,
			Severity:      model.SeverityError,
			CitationToken: c.Token,
			Surrounding:   c.Surrounding,
			Explanation:   missingExplanation(c.Token, missing),
		})
	}
	return findings
}

func missingExplanation(token string, missing []int) string {
	if len(missing) == 1 {
		return fmt.Sprintf("Citation %s has no matching entry [%d] in the references section.", token, missing[0])
	}
	return fmt.Sprintf("Citation %s covers %d reference numbers with no matching entries.", token, len(missing))
}

// UnusedReferences reports bibliography entries never cited in the body.
func UnusedReferences(citations []Citation, refs map[int]Reference) []model.Finding {
	cited := make(map[int]bool)
	for _, c := range citations {
		for _, n := range ExpandNumbers(c.Token) {
			cited[n] = true
		}
	}

	numbers := make([]int, 0, len(refs))
	for n := range refs {
		if !cited[n] {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)

	findings := make([]model.Finding, 0, len(numbers))
	for _, n := range numbers {
		ref := refs[n]
		findings = append(findings, model.Finding{
			Type:        model.ProblemUnusedReference,
			Severity:    model.SeverityWarning,
			Surrounding: fmt.Sprintf("[%d] %s", ref.Number, ref.Text),
			Explanation: fmt.Sprintf("Reference [%d] is listed in the bibliography but never cited in the text.", n),
		})
	}
	return findings
}
