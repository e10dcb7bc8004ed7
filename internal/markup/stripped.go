// Package markup provides a tag-stripped view of rendered HTML with a
// byte-offset map back into the original string. Token search runs against
// the stripped view so citation tokens interrupted by inline tags (for
// example a bracket split across an emphasis boundary) still match, and
// matched spans translate back to markup offsets for splicing.
package markup

import "strings"

// Stripped is a tag-free projection of a markup string. Offsets[i] is the
// byte offset in the original markup of Text's i-th byte.
type Stripped struct {
	Text    string
	Offsets []int
}

// Strip removes HTML tags from markup, keeping text content (entities are
// left encoded so offsets stay byte-exact).
func Strip(s string) Stripped {
	text := make([]byte, 0, len(s))
	offsets := make([]int, 0, len(s))

	inTag := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inTag:
			if c == '>' {
				inTag = false
			}
		case c == '<' && strings.HasPrefix(s[i:], "<!--"):
			// Comments may contain '>' so scan for the full terminator.
			end := strings.Index(s[i+4:], "-->")
			if end < 0 {
				i = len(s)
				break
			}
			i += 4 + end + 2
		case c == '<' && startsTag(s, i):
			inTag = true
		default:
			text = append(text, c)
			offsets = append(offsets, i)
		}
	}

	return Stripped{Text: string(text), Offsets: offsets}
}

// startsTag reports whether the '<' at position i opens a tag rather than
// being a literal less-than. Rendered markup encodes literal '<' as &lt;,
// so any '<' followed by a name, slash, or declaration is a tag.
func startsTag(s string, i int) bool {
	if i+1 >= len(s) {
		return false
	}
	c := s[i+1]
	return c == '/' || c == '!' || c == '?' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// SpanToSource translates a half-open byte span [start, end) in the
// stripped text back to a half-open span in the original markup. The
// source span covers any tags interleaved inside it. Returns false for an
// out-of-range span.
func (st Stripped) SpanToSource(start, end int) (int, int, bool) {
	if start < 0 || end <= start || end > len(st.Offsets) {
		return 0, 0, false
	}
	return st.Offsets[start], st.Offsets[end-1] + 1, true
}
