package eval

import (
	"fmt"
	"os"
	"strings"

	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/expr"
	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/scope"
	"github.com/styc-lang/styc/selector"
	"github.com/styc-lang/styc/token"
	"github.com/styc-lang/styc/value"
)

// evalIfChain evaluates an `@if`/`@else if`/`@else` chain (already
// collected by evalStatements, since `@else` is a sibling statement
// rather than a child of `@if`): the first truthy branch runs in a
// forked scope that is merged back into the parent on completion, so
// variables it assigns without `!global` still escape the control
// at-rule.
func (e *Evaluator) evalIfChain(chain []*ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	for idx, link := range chain {
		cond := link.Params
		body := link.Body
		if idx > 0 {
			if len(cond) > 0 && strings.EqualFold(cond[0].Value, "if") {
				cond = cond[1:]
			} else {
				cond = nil // bare @else
			}
		}
		truthy := true
		if cond != nil {
			v, err := expr.Eval(cond, e.env(sc, parent))
			if err != nil {
				return nil, err
			}
			truthy = v.Truthy()
		}
		if !truthy {
			continue
		}
		branch := sc.Fork()
		out, err := e.evalStatements(body, branch, parent)
		if err != nil {
			return nil, err
		}
		sc.Merge(branch)
		return out, nil
	}
	return nil, nil
}

// evalAtRule dispatches every at-rule besides `@if`/`@else`. ctrl is
// non-nil when the statement unwinds control flow (`@return`) rather
// than producing output.
func (e *Evaluator) evalAtRule(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) (out []Out, ctrl error, err error) {
	switch n.Name {
	case "for":
		out, err = e.evalFor(n, sc, parent)
	case "each":
		out, err = e.evalEach(n, sc, parent)
	case "while":
		out, err = e.evalWhile(n, sc, parent)
	case "function":
		err = e.evalFunctionDecl(n, sc)
	case "mixin":
		err = e.evalMixinDecl(n, sc)
	case "include":
		out, err = e.evalInclude(n, sc, parent)
	case "content":
		out, err = e.evalContent(n, sc, parent)
	case "return":
		var v value.Value
		v, err = expr.Eval(n.Params, e.env(sc, parent))
		if err == nil {
			ctrl = &returnSignal{Value: v}
		}
	case "debug":
		err = e.evalDiagnostic("DEBUG", n, sc, parent)
	case "warn":
		err = e.evalDiagnostic("WARNING", n, sc, parent)
	case "error":
		var text string
		text, err = e.resolveText(n.Params, sc, parent)
		if err == nil {
			err = fmt.Errorf("eval: @error: %s", text)
		}
	case "import":
		out, err = e.evalImport(n, sc, parent)
	case "media", "supports":
		out, err = e.evalConditionalGroup(n, sc, parent)
	default:
		out, err = e.evalUnknownAtRule(n, sc, parent)
	}
	return out, ctrl, err
}

func (e *Evaluator) evalDiagnostic(label string, n *ast.AtRule, sc *scope.Scope, parent selector.Selector) error {
	v, err := expr.Eval(n.Params, e.env(sc, parent))
	if err != nil {
		return err
	}
	if !e.Quiet {
		fmt.Fprintf(os.Stderr, "%s: %s\n", label, value.CSSString(v, false))
	}
	return nil
}

// splitAtTopLevelKeyword finds the first top-level occurrence of an
// Ident token case-insensitively matching one of keywords.
func splitAtTopLevelKeyword(toks []token.Token, keywords ...string) int {
	depth := 0
	for i, t := range toks {
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		if depth != 0 || t.Type != token.Ident {
			continue
		}
		for _, kw := range keywords {
			if strings.EqualFold(t.Value, kw) {
				return i
			}
		}
	}
	return -1
}

func (e *Evaluator) evalFor(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	toks := n.Params
	if len(toks) == 0 || toks[0].Type != token.Variable {
		return nil, fmt.Errorf("eval: @for expects a variable")
	}
	varName := toks[0].Value
	rest := toks[1:]
	if len(rest) == 0 || !strings.EqualFold(rest[0].Value, "from") {
		return nil, fmt.Errorf("eval: @for expects 'from' after $%s", varName)
	}
	rest = rest[1:]
	boundary := splitAtTopLevelKeyword(rest, "through", "to")
	if boundary < 0 {
		return nil, fmt.Errorf("eval: @for expects 'through' or 'to'")
	}
	fromToks, inclusive, toToks := rest[:boundary], strings.EqualFold(rest[boundary].Value, "through"), rest[boundary+1:]

	fromVal, err := expr.Eval(fromToks, e.env(sc, parent))
	if err != nil {
		return nil, err
	}
	toVal, err := expr.Eval(toToks, e.env(sc, parent))
	if err != nil {
		return nil, err
	}
	if fromVal.Kind != value.KDimension || toVal.Kind != value.KDimension || !fromVal.Num.IsInteger() || !toVal.Num.IsInteger() {
		return nil, fmt.Errorf("eval: @for bounds must be integers")
	}

	// Control at-rules don't introduce a scope: the body runs in a fork
	// that is flushed back once the loop finishes, the same way an @if
	// branch is, so a variable first declared inside the body is visible
	// after it.
	ascending := number.Cmp(fromVal.Num, toVal.Num) <= 0
	loopScope := sc.Fork()
	var out []Out
	i := fromVal.Num
	for {
		if ascending {
			cmp := number.Cmp(i, toVal.Num)
			if inclusive && cmp > 0 {
				break
			}
			if !inclusive && cmp >= 0 {
				break
			}
		} else {
			cmp := number.Cmp(i, toVal.Num)
			if inclusive && cmp < 0 {
				break
			}
			if !inclusive && cmp <= 0 {
				break
			}
		}
		loopScope.SetVarLocal(varName, value.Dim(i, ""))
		body, err := e.evalStatements(n.Body, loopScope, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
		if ascending {
			i = number.Add(i, number.One)
		} else {
			i = number.Sub(i, number.One)
		}
	}
	sc.Merge(loopScope)
	return out, nil
}

func (e *Evaluator) evalEach(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	toks := n.Params
	var names []string
	i := 0
	for i < len(toks) && toks[i].Type == token.Variable {
		names = append(names, toks[i].Value)
		i++
		if i < len(toks) && toks[i].Type == token.Comma {
			i++
			continue
		}
		break
	}
	if len(names) == 0 || i >= len(toks) || !strings.EqualFold(toks[i].Value, "in") {
		return nil, fmt.Errorf("eval: @each expects '$var[, $var] in <expr>'")
	}
	iterandToks := toks[i+1:]
	iterand, err := expr.Eval(iterandToks, e.env(sc, parent))
	if err != nil {
		return nil, err
	}

	// Forked and flushed back after the loop, like @if and @for: @each
	// doesn't introduce a scope.
	loopScope := sc.Fork()
	bindRound := func(key, val value.Value, hasVal bool) {
		// A single variable binds the whole element, even a list-valued
		// one; destructuring only happens with multiple variables.
		if len(names) == 1 {
			if hasVal {
				loopScope.SetVarLocal(names[0], value.List([]value.Value{key, val}, value.Space, false))
			} else {
				loopScope.SetVarLocal(names[0], key)
			}
			return
		}
		var items []value.Value
		if hasVal {
			items = []value.Value{key, val}
		} else if key.Kind == value.KList || key.Kind == value.KArgList {
			items = key.Items
		} else {
			items = []value.Value{key}
		}
		for idx, nm := range names {
			if idx < len(items) {
				loopScope.SetVarLocal(nm, items[idx])
			} else {
				loopScope.SetVarLocal(nm, value.Null)
			}
		}
	}

	var out []Out
	runBody := func() error {
		body, err := e.evalStatements(n.Body, loopScope, parent)
		if err != nil {
			return err
		}
		out = append(out, body...)
		return nil
	}

	switch iterand.Kind {
	case value.KMap:
		for idx, k := range iterand.Items {
			bindRound(k, iterand.MapVals[idx], true)
			if err := runBody(); err != nil {
				return nil, err
			}
		}
	case value.KList, value.KArgList:
		for _, item := range iterand.Items {
			bindRound(item, value.Value{}, false)
			if err := runBody(); err != nil {
				return nil, err
			}
		}
	default:
		bindRound(iterand, value.Value{}, false)
		if err := runBody(); err != nil {
			return nil, err
		}
	}
	sc.Merge(loopScope)
	return out, nil
}

func (e *Evaluator) evalWhile(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	// Forked and flushed back like the other control at-rules.
	loopScope := sc.Fork()
	var out []Out
	for {
		v, err := expr.Eval(n.Params, e.env(loopScope, parent))
		if err != nil {
			return nil, err
		}
		if !v.Truthy() {
			break
		}
		body, err := e.evalStatements(n.Body, loopScope, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
	}
	sc.Merge(loopScope)
	return out, nil
}

func (e *Evaluator) evalFunctionDecl(n *ast.AtRule, sc *scope.Scope) error {
	name, params, err := parseSignature(n.Params)
	if err != nil {
		return err
	}
	sc.SetFunction(name, &Callable{Name: name, Params: params, Body: n.Body, Closure: sc})
	return nil
}

func (e *Evaluator) evalMixinDecl(n *ast.AtRule, sc *scope.Scope) error {
	name, params, err := parseSignature(n.Params)
	if err != nil {
		return err
	}
	sc.SetMixin(name, &Callable{Name: name, Params: params, Body: n.Body, Closure: sc})
	return nil
}

func (e *Evaluator) evalInclude(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	name, args, rest, err := parseCallArgs(n.Params)
	if err != nil {
		return nil, err
	}
	def, ok := sc.GetMixin(name)
	if !ok {
		return nil, fmt.Errorf("eval: undefined mixin %s", name)
	}
	mx, ok := def.(*Callable)
	if !ok {
		return nil, fmt.Errorf("eval: corrupt mixin descriptor for %s", name)
	}

	var content *contentClosure
	if n.HasBlock {
		content = &contentClosure{Body: n.Body, Scope: sc, Parent: parent}
		if idx := splitAtTopLevelKeyword(rest, "using"); idx >= 0 {
			_, usingParams, err := parseSignature(append([]token.Token{{Type: token.Ident, Value: name}}, rest[idx+1:]...))
			if err != nil {
				return nil, err
			}
			content.Params = usingParams
		}
	}

	return e.invokeMixin(mx, args, content, sc, parent)
}

// evalContent splices the caller's content block (captured at
// `@include ... { ... }`) into the mixin body, evaluated in the caller's
// own scope and parent selector — a content block lexically belongs to
// its call site, not to the mixin it's passed into.
func (e *Evaluator) evalContent(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	if e.mixinDepth == 0 {
		return nil, fmt.Errorf("eval: @content used outside a mixin")
	}
	def, ok := sc.GetMixin("@content")
	if !ok {
		return nil, nil
	}
	cc, ok := def.(*contentClosure)
	if !ok {
		return nil, fmt.Errorf("eval: corrupt content closure")
	}

	callerScope := cc.Scope
	if len(cc.Params) > 0 {
		_, args, _, err := parseCallArgs(append([]token.Token{{Type: token.Ident, Value: "@content"}}, n.Params...))
		if err != nil {
			return nil, err
		}
		bound, err := e.bindArgs(cc.Params, args, cc.Scope, sc, parent)
		if err != nil {
			return nil, err
		}
		callerScope = bound
	}
	return e.evalStatements(cc.Body, callerScope, cc.Parent)
}

func (e *Evaluator) evalConditionalGroup(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	query, err := e.resolveText(n.Params, sc, parent)
	if err != nil {
		return nil, err
	}
	body, err := e.evalStatements(n.Body, sc.Child(), parent)
	if err != nil {
		return nil, err
	}
	return []Out{&OutAtRule{Name: n.Name, Params: query, Body: body, HasBlock: true}}, nil
}

func (e *Evaluator) evalUnknownAtRule(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	params, err := e.resolveText(n.Params, sc, parent)
	if err != nil {
		return nil, err
	}
	var body []Out
	if n.HasBlock {
		prev := e.bareDeclsOK
		e.bareDeclsOK = true
		body, err = e.evalStatements(n.Body, sc.Child(), parent)
		e.bareDeclsOK = prev
		if err != nil {
			return nil, err
		}
	}
	return []Out{&OutAtRule{Name: n.Name, Params: params, Body: body, HasBlock: n.HasBlock}}, nil
}

func (e *Evaluator) evalImport(n *ast.AtRule, sc *scope.Scope, parent selector.Selector) ([]Out, error) {
	if e.Importer == nil {
		return nil, fmt.Errorf("eval: @import requires a configured Importer")
	}
	raw, err := e.resolveText(n.Params, sc, parent)
	if err != nil {
		return nil, err
	}
	path := strings.Trim(strings.TrimSpace(raw), `"'`)

	canonical, toks, err := e.Importer.Resolve(path, e.currentFile())
	if err != nil {
		return nil, fmt.Errorf("eval: @import %q: %w", path, err)
	}
	for _, f := range e.importStack {
		if f == canonical {
			return nil, fmt.Errorf("eval: @import %q: circular import of %q", path, canonical)
		}
	}
	sheet, err := ast.NewParser(toks).ParseStylesheet()
	if err != nil {
		return nil, fmt.Errorf("eval: @import %q: %w", path, err)
	}

	e.importStack = append(e.importStack, canonical)
	out, err := e.evalStatements(sheet.Statements, sc, parent)
	e.importStack = e.importStack[:len(e.importStack)-1]
	return out, err
}
