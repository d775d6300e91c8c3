// Package render serializes an evaluated output tree (eval.Out) to plain
// CSS text. The evaluator hands it fully resolved declarations,
// selectors, and at-rule parameters; this package's job is purely
// textual — indentation, selector joining, and the Expanded/Compressed
// trailing-semicolon rule.
//
// A ruleset's nested rulesets are floated out to sibling blocks here,
// not by eval: eval only zips selectors and threads the body through,
// leaving the tree-to-flat-CSS transform to the serializer.
package render

import (
	"strings"

	"github.com/styc-lang/styc/eval"
)

// Options configures serialization. Compressed strips all insignificant
// whitespace: no indentation, no blank lines between rules, selectors
// joined with "," instead of ", ", and the final declaration in each
// block omits its trailing ";".
type Options struct {
	Compressed bool
}

// Render serializes a complete evaluated output tree to CSS text.
func Render(nodes []eval.Out, opts Options) string {
	blocks := topLevelBlocks(nodes, 0, opts)
	if opts.Compressed {
		return strings.Join(blocks, "")
	}
	return strings.Join(blocks, "\n")
}

// topLevelBlocks walks a body at at-rule nesting depth, returning the
// floated block strings it produces in source order: one block per
// ruleset (with its own nested rulesets further floated alongside it, all
// at the same depth), one block per at-rule, and one per retained block
// comment. Declarations found directly in a body passed to this function
// have no enclosing selector — the evaluator rejects those before they
// reach this package, so this only defends against a malformed tree
// rather than a reachable case.
func topLevelBlocks(nodes []eval.Out, depth int, opts Options) []string {
	var out []string
	for _, n := range nodes {
		switch v := n.(type) {
		case *eval.OutRuleSet:
			out = append(out, ruleSetBlocks(v, depth, opts)...)
		case *eval.OutAtRule:
			out = append(out, atRuleBlock(v, depth, opts))
		case *eval.OutComment:
			out = append(out, commentBlock(v, depth, opts))
		case *eval.OutDecl:
			out = append(out, declLine(v, depth, opts)+newline(opts))
		}
	}
	return out
}

// ruleSetBlocks renders one ruleset's own declaration block (if it has
// any direct content) followed by every nested ruleset floated out as a
// sibling block at the same depth. Nested at-rules stay nested inside
// this ruleset's braces instead of floating, matching how eval threads
// the same parent selector through an at-rule body unchanged.
func ruleSetBlocks(rs *eval.OutRuleSet, depth int, opts Options) []string {
	var lines []string
	var floated []string
	for _, n := range rs.Body {
		switch v := n.(type) {
		case *eval.OutDecl:
			lines = append(lines, declLine(v, depth+1, opts))
		case *eval.OutComment:
			lines = append(lines, commentLines(v, depth+1, opts)...)
		case *eval.OutAtRule:
			lines = append(lines, strings.Split(strings.TrimRight(atRuleBlock(v, depth+1, opts), "\n"), "\n")...)
		case *eval.OutRuleSet:
			floated = append(floated, ruleSetBlocks(v, depth, opts)...)
		}
	}
	var out []string
	if len(lines) > 0 {
		out = append(out, buildBlock(selectorText(rs, opts), lines, depth, opts))
	}
	out = append(out, floated...)
	return out
}

// atRuleBlock renders one at-rule (@media, @supports, or an unknown
// at-rule passed through verbatim) as a single block string. A block-less
// at-rule (e.g. a bare `@charset "UTF-8";` that never had a body) is a
// single terminated line with no braces.
func atRuleBlock(ar *eval.OutAtRule, depth int, opts Options) string {
	head := "@" + ar.Name
	if ar.Params != "" {
		head += " " + ar.Params
	}
	if !ar.HasBlock {
		return indent(depth, opts) + head + ";" + newline(opts)
	}
	body := topLevelBlocks(ar.Body, depth+1, opts)
	var lines []string
	for _, b := range body {
		lines = append(lines, strings.Split(strings.TrimRight(b, "\n"), "\n")...)
	}
	return buildBlock(head, lines, depth, opts)
}

// commentBlock renders a retained block comment as its own floated
// block, preserving its text verbatim (it may itself span multiple
// lines).
func commentBlock(c *eval.OutComment, depth int, opts Options) string {
	return strings.Join(commentLines(c, depth, opts), newline(opts)) + newline(opts)
}

func commentLines(c *eval.OutComment, depth int, opts Options) []string {
	raw := strings.Split("/*"+c.Text+"*/", "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = indent(depth, opts) + strings.TrimRight(l, " \t")
	}
	return out
}

// buildBlock wraps a selector/at-rule head and its already-indented body
// lines in braces at depth, applying the Expanded/Compressed declaration
// join rule (trailing ";" on every line except, in Compressed mode, the
// last).
func buildBlock(head string, lines []string, depth int, opts Options) string {
	var b strings.Builder
	if opts.Compressed {
		b.WriteString(head)
		b.WriteByte('{')
		for i, l := range lines {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(strings.TrimSpace(l))
		}
		b.WriteByte('}')
		return b.String()
	}
	b.WriteString(indent(depth, opts))
	b.WriteString(head)
	b.WriteString(" {\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(indent(depth, opts))
	b.WriteString("}\n")
	return b.String()
}

func declLine(d *eval.OutDecl, depth int, opts Options) string {
	text := d.Name + ":"
	if !opts.Compressed {
		text += " "
	}
	text += d.Value
	if d.Important {
		text += " !important"
	}
	if opts.Compressed {
		return text
	}
	return indent(depth, opts) + text + ";"
}

func selectorText(rs *eval.OutRuleSet, opts Options) string {
	sep := ", "
	if opts.Compressed {
		sep = ","
	}
	return strings.Join(rs.Parts, sep)
}

func indent(depth int, opts Options) string {
	if opts.Compressed {
		return ""
	}
	return strings.Repeat("  ", depth)
}

func newline(opts Options) string {
	if opts.Compressed {
		return ""
	}
	return "\n"
}
