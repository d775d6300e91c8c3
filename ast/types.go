// Package ast defines the statement tree produced by parsing a stylesheet:
// plain declarations, nested rule sets, at-rules, variable declarations,
// and comments. Expression-level content (property values, at-rule
// parameters, selector text) is kept as raw token slices — the statement
// evaluator hands those to the expr and selector packages once it has a
// scope to resolve interpolation and variables against.
package ast

import (
	"strconv"

	"github.com/styc-lang/styc/token"
)

// Position locates a node in its source file for diagnostics.
type Position struct {
	Line   int
	Column int
}

// String renders the one-indexed line:col pair diagnostics use.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column+1)
}

func posOf(t token.Token) Position { return Position{Line: t.Line, Column: t.Column} }

// Node is the common marker for every tree element.
type Node interface{ node() }

// Statement is a top-level or nested element of a rule body.
type Statement interface {
	Node
	stmt()
}

// Stylesheet is the root of a parsed source file.
type Stylesheet struct {
	Statements []Statement
}

// Comment is a retained `/* */` or `//` comment, with its delimiters
// stripped from Text. Line comments never reach output; block comments
// do, re-wrapped in `/* */` by the renderer.
type Comment struct {
	Text    string
	IsBlock bool
	Pos     Position
}

func (*Comment) node() {}
func (*Comment) stmt() {}

// Style is a property declaration. Value holds the raw token run when
// Nested is nil; when Nested is non-nil this is instead a property-group
// shorthand (`font: { size: 1em; weight: bold; }`) that the style package
// folds into hyphenated declarations before the statement evaluator emits
// anything.
type Style struct {
	Property  []token.Token
	Value     []token.Token
	Nested    []Statement
	Important bool
	Pos       Position
}

func (*Style) node() {}
func (*Style) stmt() {}

// RuleSet is a selector and its body. SelectorTokens is resolved against
// interpolation and parsed into a selector.Selector only once the
// statement evaluator has a concrete scope and parent selector to zip
// against.
type RuleSet struct {
	SelectorTokens []token.Token
	Body           []Statement
	Pos            Position
}

func (*RuleSet) node() {}
func (*RuleSet) stmt() {}

// AtRule is every `@`-introduced construct: control flow (@if/@else/@for/
// @each/@while), definitions (@mixin/@function), invocations (@include/
// @content/@return), conditional groups (@media/@supports), and anything
// else (@charset, @keyframes, a future at-rule) passed through verbatim.
// Name is lowercased and never includes the leading `@`. Params holds the
// raw token run between the name and the `{` or `;` that ends the rule;
// its grammar is specific to Name and is parsed by the evaluator on use.
type AtRule struct {
	Name     string
	Params   []token.Token
	Body     []Statement
	HasBlock bool
	Pos      Position
}

func (*AtRule) node() {}
func (*AtRule) stmt() {}

// VarDecl is a `$name: value;` assignment, with its trailing `!default`/
// `!global` flags already split out of Value.
type VarDecl struct {
	Name    string
	Value   []token.Token
	Default bool
	Global  bool
	Pos     Position
}

func (*VarDecl) node() {}
func (*VarDecl) stmt() {}
