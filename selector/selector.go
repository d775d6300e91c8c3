// Package selector implements the selector algebra: parsing a selector list
// from raw text, zipping a parent selector with a child selector across a
// nesting level, and serializing the result.
package selector

import "strings"

// Selector is a list of complex selectors, each kept as a single
// normalized string — the internal combinator structure is irrelevant to
// zipping, which operates at whole-complex-selector granularity.
type Selector struct {
	Parts []string
}

// Empty is the selector with no members — distinct from a selector
// containing a single "&" member.
var Empty = Selector{}

// ParseText splits raw selector text (already collected up to the opening
// `{` by the statement evaluator's token scan) into its comma-separated
// complex selectors, trimming and collapsing internal whitespace runs so
// that "a   >  b" and "a > b" compare equal.
func ParseText(s string) Selector {
	parts := splitTopLevel(s, ',')
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = collapseSpace(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return Selector{Parts: out}
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ContainsParent reports whether a complex selector string contains a `&`
// parent-selector placeholder.
func ContainsParent(complex string) bool {
	return strings.Contains(complex, "&")
}

// Zip composes a parent selector with a child selector across one level of
// nesting: every `&` in a child member is replaced by each parent member in
// turn; a child member with no `&` is instead prefixed with each parent
// member and a descendant combinator. An empty parent is identity.
func Zip(parent, child Selector) Selector {
	parentParts := parent.Parts
	if len(parentParts) == 0 {
		parentParts = []string{""}
	}

	out := make([]string, 0, len(child.Parts)*len(parentParts))
	for _, c := range child.Parts {
		if ContainsParent(c) {
			for _, p := range parentParts {
				out = append(out, strings.TrimSpace(strings.ReplaceAll(c, "&", p)))
			}
			continue
		}
		for _, p := range parentParts {
			if p == "" {
				out = append(out, c)
			} else {
				out = append(out, p+" "+c)
			}
		}
	}
	return Selector{Parts: out}
}

// String joins the complex selectors with ", " (Expanded-mode convention;
// the serializer rejoins with "," for Compressed mode itself).
func (s Selector) String() string {
	return strings.Join(s.Parts, ", ")
}

// IsEmpty reports whether the selector has zero members.
func (s Selector) IsEmpty() bool { return len(s.Parts) == 0 }
