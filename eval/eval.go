// Package eval drives the statement tree produced by ast: it walks
// Stylesheet/RuleSet/Style/AtRule/VarDecl nodes against a scope.Scope,
// resolving every expression, selector, and interpolation it finds into a
// flat tree of output nodes ready for the serializer. It is the concrete
// meeting point of scope, expr, selector, and style: it implements
// expr.Env over a scope.Scope plus a builtin function registry, zips
// selectors across nesting with the selector package, and calls into
// style.Fold with an interpolation-aware name resolver.
package eval

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/expr"
	"github.com/styc-lang/styc/functions"
	"github.com/styc-lang/styc/scope"
	"github.com/styc-lang/styc/selector"
	"github.com/styc-lang/styc/style"
	"github.com/styc-lang/styc/token"
	"github.com/styc-lang/styc/value"
)

// Out is the common marker for emitted output nodes — the evaluated
// counterpart of ast.Statement, with every name, selector, and value fully
// resolved to text.
type Out interface{ out() }

// OutDecl is a single resolved CSS declaration.
type OutDecl struct {
	Name      string
	Value     string
	Important bool
}

// OutRuleSet is a resolved selector with its resolved body. Nested
// rulesets have already been flattened against their parent by Zip.
type OutRuleSet struct {
	Selector string
	Parts    []string
	Body     []Out
}

// OutAtRule is a resolved at-rule, its parameters fully interpolated.
type OutAtRule struct {
	Name     string
	Params   string
	Body     []Out
	HasBlock bool
}

// OutComment is a retained block comment.
type OutComment struct{ Text string }

func (*OutDecl) out()    {}
func (*OutRuleSet) out() {}
func (*OutAtRule) out()  {}
func (*OutComment) out() {}

// Importer resolves `@import` requests to a canonical path plus the
// tokens of the imported source, mirroring the host-provided resolver the
// core treats as an external collaborator.
type Importer interface {
	Resolve(requested, containing string) (canonical string, tokens []token.Token, err error)
}

// Evaluator carries the pieces of the pipeline that persist across an
// entire compile: the builtin function table and, optionally, an import
// resolver, plus the compile's own bookkeeping (nesting depth counters and
// the import stack). Scopes and parent selectors thread through as
// explicit arguments.
type Evaluator struct {
	Funcs    functions.Registry
	Importer Importer

	// File identifies the source being compiled, passed to Importer as the
	// "containing" path for relative @import resolution.
	File string

	// Quiet suppresses @debug/@warn diagnostic output. @error still aborts
	// the compile regardless.
	Quiet bool

	depth int

	// mixinDepth tracks how many @include frames are active, so @content
	// outside any mixin body can be rejected instead of silently dropped.
	mixinDepth int

	// bareDeclsOK is set while evaluating the body of an unknown at-rule
	// (@font-face, @page, a @keyframes frame), where declarations appear
	// without an enclosing selector legitimately. Everywhere else a
	// declaration with no parent selector is an error.
	bareDeclsOK bool

	// importStack holds the canonical path of every @import currently
	// being evaluated, innermost last, so nested imports resolve relative
	// to the file that actually contains them rather than always to File,
	// and so a cycle can be detected instead of recursing forever.
	importStack []string
}

// currentFile returns the canonical path @import resolution should treat
// as "containing": the innermost file currently being evaluated, or File
// at the top of the stack.
func (e *Evaluator) currentFile() string {
	if n := len(e.importStack); n > 0 {
		return e.importStack[n-1]
	}
	return e.File
}

// New creates an Evaluator with the given builtin registry. Pass
// functions.Default() for the standard library.
func New(funcs functions.Registry) *Evaluator {
	return &Evaluator{Funcs: funcs}
}

const maxCallDepth = 1024

// EvalStylesheet evaluates a complete parsed stylesheet against a fresh
// module-root scope, returning the fully resolved output tree.
func (e *Evaluator) EvalStylesheet(sheet *ast.Stylesheet, sc *scope.Scope) ([]Out, error) {
	return e.evalStatements(sheet.Statements, sc, selector.Empty)
}

// evalStatements evaluates a statement list in order, threading the
// current parent selector through nested rules and at-rules. It handles
// @if/@else chaining here because @else statements are siblings of their
// @if, not children of it.
func (e *Evaluator) evalStatements(stmts []ast.Statement, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	var out []Out
	for i := 0; i < len(stmts); i++ {
		st := stmts[i]
		switch n := st.(type) {
		case *ast.Comment:
			if n.IsBlock {
				out = append(out, &OutComment{Text: n.Text})
			}

		case *ast.VarDecl:
			if err := e.evalVarDecl(n, sc, parent); err != nil {
				return nil, err
			}

		case *ast.Style:
			if parent.IsEmpty() && !e.bareDeclsOK {
				name := rawTokenText(n.Property)
				return nil, fmt.Errorf("eval: declaration %q outside a rule at %v", name, n.Pos)
			}
			decls, err := e.evalStyle(n, sc, parent)
			if err != nil {
				return nil, err
			}
			out = append(out, decls...)

		case *ast.RuleSet:
			node, err := e.evalRuleSet(n, sc, parent)
			if err != nil {
				return nil, err
			}
			out = append(out, node)

		case *ast.AtRule:
			if n.Name == "if" {
				chain := []*ast.AtRule{n}
				for i+1 < len(stmts) {
					next, ok := stmts[i+1].(*ast.AtRule)
					if !ok || next.Name != "else" {
						break
					}
					chain = append(chain, next)
					i++
				}
				nodes, err := e.evalIfChain(chain, sc, parent)
				if err != nil {
					return nil, err
				}
				out = append(out, nodes...)
				continue
			}
			nodes, ctrl, err := e.evalAtRule(n, sc, parent)
			if err != nil {
				return nil, err
			}
			if ctrl != nil {
				return nil, ctrl
			}
			out = append(out, nodes...)

		default:
			return nil, fmt.Errorf("eval: unknown statement type %T", st)
		}
	}
	return out, nil
}

func (e *Evaluator) evalVarDecl(n *ast.VarDecl, sc *scope.Scope, parent selector.Selector) error {
	v, err := expr.Eval(n.Value, e.env(sc, parent))
	if err != nil {
		return fmt.Errorf("eval: $%s: %w", n.Name, err)
	}
	switch {
	case n.Default:
		sc.SetVarDefault(n.Name, v)
	case n.Global:
		sc.SetVarGlobal(n.Name, v)
	default:
		sc.SetVar(n.Name, v)
	}
	return nil
}

func (e *Evaluator) evalStyle(n *ast.Style, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	name, err := e.resolveText(n.Property, sc, parent)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(name, "--") {
		raw := rawTokenText(n.Value)
		return []Out{&OutDecl{Name: name, Value: raw, Important: n.Important}}, nil
	}

	resolveChildName := func(toks []token.Token) (string, error) { return e.resolveText(toks, sc, parent) }
	decls, err := style.Fold(name, n, resolveChildName)
	if err != nil {
		return nil, err
	}

	out := make([]Out, 0, len(decls))
	for _, d := range decls {
		if strings.HasPrefix(d.Name, "--") {
			out = append(out, &OutDecl{Name: d.Name, Value: rawTokenText(d.Value), Important: d.Important})
			continue
		}
		v, err := expr.Eval(d.Value, e.env(sc, parent))
		if err != nil {
			return nil, fmt.Errorf("eval: property %q: %w", d.Name, err)
		}
		// exprContext=true: a quoted string literal keeps its quotes in the
		// emitted declaration (`content: "abc"`); only unquoted strings and
		// interpolation results emit bare.
		out = append(out, &OutDecl{Name: d.Name, Value: value.CSSString(v, true), Important: d.Important})
	}
	return out, nil
}

func (e *Evaluator) evalRuleSet(n *ast.RuleSet, sc *scope.Scope, parent selector.Selector) (Out, error) {
	text, err := e.resolveText(n.SelectorTokens, sc, parent)
	if err != nil {
		return nil, err
	}
	child := selector.ParseText(text)
	zipped := selector.Zip(parent, child)

	body, err := e.evalStatements(n.Body, sc.Child(), zipped)
	if err != nil {
		return nil, err
	}
	return &OutRuleSet{Selector: zipped.String(), Parts: zipped.Parts, Body: body}, nil
}

// env builds the expr.Env adapter for the given scope and parent selector.
func (e *Evaluator) env(sc *scope.Scope, parent selector.Selector) expr.Env {
	return exprEnv{ev: e, sc: sc, parent: parent}
}

type exprEnv struct {
	ev     *Evaluator
	sc     *scope.Scope
	parent selector.Selector
}

func (x exprEnv) GetVar(name string) (value.Value, bool) { return x.sc.GetVar(name) }

func (x exprEnv) ParentSelector() (value.Value, bool) {
	if x.parent.IsEmpty() {
		return value.Null, false
	}
	return value.Str(x.parent.String(), value.Unquoted), true
}

func (x exprEnv) CallFunction(name string, args []value.Value, keywords map[string]value.Value) (value.Value, error) {
	return x.ev.callFunction(name, args, keywords, x.sc, x.parent)
}

// resolveText turns a token run into its source text, splicing `#{}`
// interpolation (recursively evaluated as an expression and stringified
// unquoted) into the surrounding literal tokens. Used for property names,
// selector text, and at-rule parameters — anywhere the grammar allows
// interpolation but not full expression syntax.
func (e *Evaluator) resolveText(toks []token.Token, sc *scope.Scope, parent selector.Selector) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Type == token.Interp {
			depth := 1
			j := i + 1
			for j < len(toks) && depth > 0 {
				switch toks[j].Type {
				case token.Interp:
					depth++
				case token.InterpEnd:
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			inner := toks[i+1 : j]
			v, err := expr.Eval(inner, e.env(sc, parent))
			if err != nil {
				return "", err
			}
			if b.Len() > 0 && t.SpaceBefore {
				b.WriteByte(' ')
			}
			b.WriteString(value.CSSString(v, false))
			i = j + 1
			continue
		}
		if t.Type == token.String {
			text, quote, consumed, err := e.resolveQuotedRun(toks[i:], sc, parent)
			if err != nil {
				return "", err
			}
			if b.Len() > 0 && t.SpaceBefore {
				b.WriteByte(' ')
			}
			b.WriteByte(quote)
			b.WriteString(text)
			b.WriteByte(quote)
			i += consumed
			continue
		}
		if b.Len() > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(tokenText(t))
		i++
	}
	return b.String(), nil
}

// resolveQuotedRun reconstructs a single source string literal from toks,
// which must start with a String token. The lexer splits a string around
// any embedded `#{}` interpolation into alternating String/Interp/
// InterpEnd/String tokens; this stitches that run back into one literal
// with each interpolation's evaluated text spliced in between the raw
// fragments, and reports how many tokens it consumed.
func (e *Evaluator) resolveQuotedRun(toks []token.Token, sc *scope.Scope, parent selector.Selector) (string, byte, int, error) {
	quote := toks[0].QuoteChar
	if quote == 0 {
		quote = '"'
	}
	var b strings.Builder
	b.WriteString(toks[0].Value)
	i := 1
	for i < len(toks) && toks[i].Type == token.Interp {
		depth := 1
		j := i + 1
		for j < len(toks) && depth > 0 {
			switch toks[j].Type {
			case token.Interp:
				depth++
			case token.InterpEnd:
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		inner := toks[i+1 : j]
		v, err := expr.Eval(inner, e.env(sc, parent))
		if err != nil {
			return "", 0, 0, err
		}
		b.WriteString(value.CSSString(v, false))
		i = j + 1
		if i < len(toks) && toks[i].Type == token.String {
			b.WriteString(toks[i].Value)
			i++
		}
	}
	return b.String(), quote, i, nil
}

func tokenText(t token.Token) string {
	if t.Type == token.String {
		q := byte('"')
		if t.QuoteChar != 0 {
			q = t.QuoteChar
		}
		return string(q) + t.Value + string(q)
	}
	if t.Type == token.Variable {
		return "$" + t.Value
	}
	return t.Value
}

// rawTokenText reconstructs a custom-property value (`--foo: ...;`)
// verbatim from its tokens, without expression evaluation — the source
// language treats everything after a custom property's colon as an
// opaque string. String literals are stitched back whole even if the
// lexer split them around an embedded `#{}` (left un-evaluated here,
// since custom properties never interpolate).
func rawTokenText(toks []token.Token) string {
	var b strings.Builder
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Type == token.String {
			text, quote, consumed := rawQuotedRun(toks[i:])
			if i > 0 && t.SpaceBefore {
				b.WriteByte(' ')
			}
			b.WriteByte(quote)
			b.WriteString(text)
			b.WriteByte(quote)
			i += consumed
			continue
		}
		if i > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(tokenText(t))
		i++
	}
	return b.String()
}

// rawQuotedRun stitches a lexer-split string literal (String/Interp/
// InterpEnd/String...) back into one literal, reproducing the `#{...}`
// text verbatim rather than evaluating it. Returns the stitched text, the
// quote byte, and how many tokens it consumed starting from toks[0].
func rawQuotedRun(toks []token.Token) (string, byte, int) {
	quote := toks[0].QuoteChar
	if quote == 0 {
		quote = '"'
	}
	var b strings.Builder
	b.WriteString(toks[0].Value)
	i := 1
	for i < len(toks) && toks[i].Type == token.Interp {
		depth := 1
		j := i + 1
		for j < len(toks) && depth > 0 {
			switch toks[j].Type {
			case token.Interp:
				depth++
			case token.InterpEnd:
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		b.WriteString("#{")
		b.WriteString(rawTokenText(toks[i+1 : j]))
		b.WriteString("}")
		i = j + 1
		if i < len(toks) && toks[i].Type == token.String {
			b.WriteString(toks[i].Value)
			i++
		}
	}
	return b.String(), quote, i
}

// splitTopLevel splits toks on top-level commas, respecting (), [], and
// interpolation nesting.
func splitTopLevel(toks []token.Token) [][]token.Token {
	var groups [][]token.Token
	var cur []token.Token
	depth := 0
	for _, t := range toks {
		switch t.Type {
		case token.LParen, token.LBracket, token.Interp:
			depth++
		case token.RParen, token.RBracket, token.InterpEnd:
			depth--
		}
		if depth == 0 && t.Type == token.Comma {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)
	if len(groups) == 1 && len(groups[0]) == 0 {
		return nil
	}
	return groups
}
