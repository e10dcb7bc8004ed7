package annotate

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/papercheck/papercheck/internal/markup"
	"github.com/papercheck/papercheck/internal/model"
)

// rangeTokenRe matches a range citation token like "[3-5]".
var rangeTokenRe = regexp.MustCompile(`^\[(\d+)-(\d+)\]$`)

// TokenAnnotator inserts markers by searching the rendered report for
// literal citation-token occurrences. It does not need tracked offsets, so
// it works on markup the tracker never saw. Range tokens additionally
// match every numeric citation inside the range.
type TokenAnnotator struct {
	logger *slog.Logger
}

// NewTokenAnnotator creates a token annotator. A nil logger falls back to
// slog.Default.
func NewTokenAnnotator(logger *slog.Logger) *TokenAnnotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenAnnotator{logger: logger}
}

// insertion is a pending marker splice at a markup position.
type insertion struct {
	pos    int
	marker string
}

// Annotate returns the report markup with a marker after every occurrence
// of every problem's citation token. Problems without a token (unused
// references) contribute no markers here; they remain in the problem list.
func (a *TokenAnnotator) Annotate(reportMarkup string, problems []model.Problem) string {
	st := markup.Strip(reportMarkup)

	var insertions []insertion
	for _, p := range problems {
		if p.CitationToken == "" {
			continue
		}
		found := false
		for _, token := range ExpandToken(p.CitationToken) {
			for _, pos := range occurrences(st, token) {
				insertions = append(insertions, insertion{pos: pos, marker: Marker(p)})
				found = true
			}
		}
		if !found {
			a.logger.Info("token not present in report markup",
				"problem_id", p.ID, "token", p.CitationToken)
		}
	}

	if len(insertions) == 0 {
		return reportMarkup
	}

	// Splice from the back so pending positions stay valid.
	sort.SliceStable(insertions, func(i, j int) bool {
		return insertions[i].pos > insertions[j].pos
	})

	out := reportMarkup
	for _, ins := range insertions {
		out = out[:ins.pos] + ins.marker + out[ins.pos:]
	}
	return out
}

// occurrences returns the markup positions directly after each occurrence
// of token in the stripped view.
func occurrences(st markup.Stripped, token string) []int {
	var out []int
	from := 0
	for {
		i := strings.Index(st.Text[from:], token)
		if i < 0 {
			return out
		}
		i += from
		from = i + 1

		if _, end, ok := st.SpanToSource(i, i+len(token)); ok {
			out = append(out, end)
		}
	}
}

// ExpandToken lists the literal tokens a citation token should match. A
// single token matches itself; a range token "[a-b]" matches itself plus
// "[n]" for every a ≤ n ≤ b.
func ExpandToken(token string) []string {
	m := rangeTokenRe.FindStringSubmatch(token)
	if m == nil {
		return []string{token}
	}

	lo, _ := strconv.Atoi(m[1])
	hi, _ := strconv.Atoi(m[2])
	if hi < lo || hi-lo > 200 {
		// Nonsensical or absurd range: match only the literal token.
		return []string{token}
	}

	out := []string{token}
	for n := lo; n <= hi; n++ {
		out = append(out, fmt.Sprintf("[%d]", n))
	}
	return out
}
