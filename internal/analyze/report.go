package analyze

import (
	"fmt"
	"html"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

var sectionTitles = map[model.ProblemType]string{
	model.ProblemMissingCitation:    "Missing citations",
	model.ProblemUnusedReference:    "Unused references",
	model.ProblemIrrelevantCitation: "Possibly irrelevant citations",
}

var sectionOrder = []model.ProblemType{
	model.ProblemMissingCitation,
	model.ProblemUnusedReference,
	model.ProblemIrrelevantCitation,
}

// BuildReport renders the findings as an HTML fragment. Citation tokens
// appear verbatim in the text so they can be located and marked afterwards.
func BuildReport(doc *model.Document, findings []model.Finding, mode model.AnalysisMode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h1>Citation Analysis Report</h1>\n")
	fmt.Fprintf(&b, "<p>Document: %s. Analysis mode: %s. Problems found: %d.</p>\n",
		html.EscapeString(doc.Filename), html.EscapeString(string(mode)), len(findings))

	if len(findings) == 0 {
		b.WriteString("<p>No citation problems were found.</p>\n")
		return b.String()
	}

	grouped := make(map[model.ProblemType][]model.Finding)
	for _, f := range findings {
		grouped[f.Type] = append(grouped[f.Type], f)
	}

	for _, t := range sectionOrder {
		section := grouped[t]
		if len(section) == 0 {
			continue
		}

		fmt.Fprintf(&b, "<h2>%s (%d)</h2>\n<ul>\n", sectionTitles[t], len(section))
		for _, f := range section {
			b.WriteString("<li>")
			if f.CitationToken != "" {
				fmt.Fprintf(&b, "<strong>%s</strong> ", html.EscapeString(f.CitationToken))
			}
			fmt.Fprintf(&b, "<div class=\"analysis\">%s</div>", html.EscapeString(f.Explanation))
			if f.Surrounding != "" {
				fmt.Fprintf(&b, "\n<div class=\"context\">%s</div>", html.EscapeString(clip(f.Surrounding, 300)))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}

func clip(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary.
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…"
}
