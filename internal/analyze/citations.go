package analyze

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

var (
	citationRe       = regexp.MustCompile(`\[\d+(?:-\d+)?\]`)
	rangeRe          = regexp.MustCompile(`^\[(\d+)-(\d+)\]$`)
	numberRe         = regexp.MustCompile(`^\[(\d+)\]$`)
	referenceEntryRe = regexp.MustCompile(`^\[(\d+)\]\s*(.+)$`)
	doiRe            = regexp.MustCompile(`\b10\.\d{4,9}/[^\s"<>,;]+`)
)

// maxRangeWidth caps expansion of range tokens so a typo like [1-9999]
// cannot blow up the number set.
const maxRangeWidth = 200

// Citation is one citation token occurrence in the document body.
type Citation struct {
	Token          string
	ParagraphIndex int
	Surrounding    string
}

// ExtractCitations collects citation tokens from the document body in
// reading order. Surrounding text spans the neighboring paragraphs so the
// tracker and the reviewer both see the claim in context.
func ExtractCitations(doc *model.Document) []Citation {
	body := doc.Body()
	var citations []Citation

	for i, para := range body {
		tokens := citationRe.FindAllString(para.Text, -1)
		if len(tokens) == 0 {
			continue
		}
		surrounding := surroundingText(body, i)
		for _, token := range tokens {
			citations = append(citations, Citation{
				Token:          token,
				ParagraphIndex: para.Index,
				Surrounding:    surrounding,
			})
		}
	}
	return citations
}

func surroundingText(paras []model.Paragraph, i int) string {
	var parts []string
	if i > 0 {
		parts = append(parts, paras[i-1].Text)
	}
	parts = append(parts, paras[i].Text)
	if i+1 < len(paras) {
		parts = append(parts, paras[i+1].Text)
	}
	return strings.Join(parts, "\n")
}

// ExpandNumbers returns the reference numbers a token covers. [7] yields
// {7}; [3-5] yields {3,4,5}. Malformed or oversized ranges yield nil.
func ExpandNumbers(token string) []int {
	if m := numberRe.FindStringSubmatch(token); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		return []int{n}
	}

	m := rangeRe.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	lo, err1 := strconv.Atoi(m[1])
	hi, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || hi < lo || hi-lo > maxRangeWidth {
		return nil
	}

	numbers := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		numbers = append(numbers, n)
	}
	return numbers
}

// Reference is one parsed bibliography entry.
type Reference struct {
	Number int
	Text   string
	DOI    string
}

// ParseReferences parses numbered bibliography entries from the document's
// references section. Entries keyed by number; later duplicates win.
func ParseReferences(doc *model.Document) map[int]Reference {
	refs := make(map[int]Reference)

	for _, para := range doc.References() {
		for _, line := range strings.Split(para.Text, "\n") {
			m := referenceEntryRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			number, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			text := strings.TrimSpace(m[2])
			refs[number] = Reference{
				Number: number,
				Text:   text,
				DOI:    doiRe.FindString(text),
			}
		}
	}
	return refs
}
