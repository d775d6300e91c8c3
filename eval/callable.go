package eval

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/expr"
	"github.com/styc-lang/styc/functions"
	"github.com/styc-lang/styc/scope"
	"github.com/styc-lang/styc/selector"
	"github.com/styc-lang/styc/token"
	"github.com/styc-lang/styc/value"
)

// Param is one declared parameter of a mixin or function: a name, an
// optional default (evaluated lazily in the callee's closure at call
// time), and whether it is the trailing variadic parameter.
type Param struct {
	Name     string
	Default  []token.Token
	Variadic bool
}

// Callable is the shared shape of a user @mixin or @function: its
// parameter list, its body (still the parsed statement tree — re-parsing
// literal tokens on every call is unnecessary since the body already
// defers every name and value lookup to evaluation time), and the scope
// active at its declaration site.
type Callable struct {
	Name    string
	Params  []Param
	Body    []ast.Statement
	Closure *scope.Scope
}

// contentClosure is what `@include name { ... }` stashes for a later
// `@content` inside the mixin body to splice in.
type contentClosure struct {
	Body   []ast.Statement
	Scope  *scope.Scope
	Parent selector.Selector
	Params []Param
}

// returnSignal unwinds evalStatements back to the function-call boundary
// that issued it; it is not a real error, only a control-flow carrier.
type returnSignal struct{ Value value.Value }

func (r *returnSignal) Error() string { return "eval: @return outside a function" }

// parseSignature reads `name($a, $b: default, $rest...)` from an @mixin or
// @function's raw parameter tokens.
func parseSignature(toks []token.Token) (name string, params []Param, err error) {
	if len(toks) == 0 || (toks[0].Type != token.Ident && toks[0].Type != token.Function) {
		return "", nil, fmt.Errorf("eval: expected a name at %v", toks)
	}
	name = toks[0].Value
	rest := toks[1:]
	if len(rest) == 0 || rest[0].Type != token.LParen {
		return name, nil, nil
	}
	depth := 0
	end := -1
	for i, t := range rest {
		switch t.Type {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return "", nil, fmt.Errorf("eval: unterminated parameter list for %s", name)
	}
	inner := rest[1:end]
	for _, group := range splitTopLevel(inner) {
		if len(group) == 0 {
			continue
		}
		if group[0].Type != token.Variable {
			return "", nil, fmt.Errorf("eval: expected $param in signature of %s", name)
		}
		p := Param{Name: group[0].Value}
		tail := group[1:]
		if len(tail) > 0 && tail[len(tail)-1].Type == token.DotDotDot {
			p.Variadic = true
			tail = tail[:len(tail)-1]
		}
		if len(tail) > 0 {
			if tail[0].Type != token.Colon {
				return "", nil, fmt.Errorf("eval: malformed parameter $%s in signature of %s", p.Name, name)
			}
			p.Default = tail[1:]
		}
		params = append(params, p)
	}
	return name, params, nil
}

// callArg is one parsed call-site argument: positional (Name empty),
// keyword ($name: value), or a spread (`value...`).
type callArg struct {
	Name   string
	Toks   []token.Token
	Spread bool
}

// parseCallArgs reads `name(arg1, $kw: arg2, ...)` from an @include's or
// a function call's raw tokens, returning the callee name and its
// argument list.
func parseCallArgs(toks []token.Token) (name string, args []callArg, rest []token.Token, err error) {
	if len(toks) == 0 || (toks[0].Type != token.Ident && toks[0].Type != token.Function) {
		return "", nil, nil, fmt.Errorf("eval: expected a callee name")
	}
	name = toks[0].Value
	body := toks[1:]
	if len(body) == 0 || body[0].Type != token.LParen {
		return name, nil, body, nil
	}
	depth := 0
	end := -1
	for i, t := range body {
		switch t.Type {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return "", nil, nil, fmt.Errorf("eval: unterminated argument list for %s", name)
	}
	for _, group := range splitTopLevel(body[1:end]) {
		if len(group) == 0 {
			continue
		}
		spread := false
		if group[len(group)-1].Type == token.DotDotDot {
			spread = true
			group = group[:len(group)-1]
		}
		if !spread && group[0].Type == token.Variable && len(group) > 1 && group[1].Type == token.Colon {
			args = append(args, callArg{Name: group[0].Value, Toks: group[2:]})
			continue
		}
		args = append(args, callArg{Toks: group, Spread: spread})
	}
	return name, args, body[end+1:], nil
}

// bindArgs implements the positional/keyword/default/variadic binding
// rule: positional arguments fill parameters left to right until the
// variadic parameter; remaining parameters consume a matching keyword
// argument, else their default (evaluated in the callee's closure
// extended by already-bound parameters), else it's an arity error; a
// trailing variadic parameter collects every unconsumed positional
// argument plus any unconsumed keyword arguments.
//
// Argument expressions are evaluated against callerScope — the scope
// visible at the call site — while parameter defaults are evaluated
// against the callee's own forked closure, since a default may reference
// an earlier parameter of the same signature.
func (e *Evaluator) bindArgs(params []Param, args []callArg, closure *scope.Scope, callerScope *scope.Scope, parent selector.Selector) (*scope.Scope, error) {
	var positional []value.Value
	keywords := map[string]value.Value{}
	for _, a := range args {
		v, err := e.evalArgValue(a.Toks, callerScope, parent)
		if err != nil {
			return nil, err
		}
		switch {
		case a.Spread:
			if err := spreadCallValue(v, &positional, keywords); err != nil {
				return nil, err
			}
		case a.Name != "":
			keywords[a.Name] = v
		default:
			positional = append(positional, v)
		}
	}

	call := closure.Fork()
	if err := e.bindCallableValues(params, positional, keywords, call, parent); err != nil {
		return nil, err
	}
	return call, nil
}

// spreadCallValue expands a `value...` argument the same way the
// expression parser's spread does: list/arglist items become positional
// arguments (arglist keywords carry over), a string-keyed map becomes
// keyword arguments.
func spreadCallValue(v value.Value, positional *[]value.Value, keywords map[string]value.Value) error {
	switch v.Kind {
	case value.KArgList:
		*positional = append(*positional, v.Items...)
		for k, kv := range v.Keywords {
			keywords[k] = kv
		}
	case value.KList:
		*positional = append(*positional, v.Items...)
	case value.KMap:
		for i, k := range v.Items {
			if k.Kind != value.KString {
				return fmt.Errorf("eval: spread map keys must be strings, got %s", k.TypeName())
			}
			keywords[k.Str] = v.MapVals[i]
		}
	default:
		*positional = append(*positional, v)
	}
	return nil
}

func (e *Evaluator) evalArgValue(toks []token.Token, sc *scope.Scope, parent selector.Selector) (value.Value, error) {
	return expr.Eval(toks, e.env(sc, parent))
}

// introspectionFuncs answers the `*-exists` meta builtins directly against
// the calling scope — a plain builtin has no visibility into it, so
// callFunction intercepts these names before consulting the registry.
func (e *Evaluator) introspectionFuncs(name string, args []value.Value, sc *scope.Scope) (value.Value, bool) {
	varName := func() string { return arg(args, 0).Str }
	switch normalizeName(name) {
	case "variable-exists":
		_, ok := sc.GetVar(varName())
		return value.Bool(ok), true
	case "global-variable-exists":
		root := sc
		for root.Parent() != nil {
			root = root.Parent()
		}
		_, ok := root.GetVar(varName())
		return value.Bool(ok), true
	case "function-exists":
		if _, ok := sc.GetFunction(varName()); ok {
			return value.Bool(true), true
		}
		_, ok := e.Funcs[normalizeName(varName())]
		return value.Bool(ok), true
	case "mixin-exists":
		_, ok := sc.GetMixin(varName())
		return value.Bool(ok), true
	}
	return value.Value{}, false
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Null
}

// callFunction resolves name as a user-defined function first, then the
// builtin registry, then — preserving unknown CSS functions like
// env(...) or minmax(...) — as a literal passthrough call. Arguments reaching a resolved function have any
// pending slash node collapsed into a division; the literal passthrough
// keeps the slash, so `env(a/b)` round-trips while `round(10px/4)`
// divides.
func (e *Evaluator) callFunction(name string, args []value.Value, keywords map[string]value.Value, sc *scope.Scope, parent selector.Selector) (value.Value, error) {
	if v, ok := e.introspectionFuncs(name, args, sc); ok {
		return v, nil
	}
	switch normalizeName(name) {
	case "get-function":
		return e.getFunctionRef(args, sc)
	case "call":
		return e.callRef(args, keywords, sc, parent)
	}
	if def, ok := sc.GetFunction(name); ok {
		fn, ok := def.(*Callable)
		if !ok {
			return value.Value{}, fmt.Errorf("eval: corrupt function descriptor for %s", name)
		}
		args, keywords, err := collapseArgs(args, keywords)
		if err != nil {
			return value.Value{}, err
		}
		return e.invokeFunction(fn, args, keywords, parent)
	}
	if e.Funcs != nil {
		if builtin, ok := e.Funcs[normalizeName(name)]; ok {
			args, keywords, err := collapseArgs(args, keywords)
			if err != nil {
				return value.Value{}, err
			}
			return builtin(args, keywords)
		}
	}
	return literalCall(name, args, keywords), nil
}

func collapseArgs(args []value.Value, keywords map[string]value.Value) ([]value.Value, map[string]value.Value, error) {
	for i, a := range args {
		v, err := value.Collapse(a)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
	}
	for k, a := range keywords {
		v, err := value.Collapse(a)
		if err != nil {
			return nil, nil, err
		}
		keywords[k] = v
	}
	return args, keywords, nil
}

// getFunctionRef implements `get-function(name)`: resolve the name as a
// user-defined function, then the builtin registry, and wrap whichever
// is found as a first-class function reference.
func (e *Evaluator) getFunctionRef(args []value.Value, sc *scope.Scope) (value.Value, error) {
	name := arg(args, 0)
	if name.Kind != value.KString {
		return value.Value{}, fmt.Errorf("eval: get-function() expects a function name, got %s", name.TypeName())
	}
	if def, ok := sc.GetFunction(name.Str); ok {
		return value.Value{Kind: value.KFunctionRef, FnName: name.Str, FnRef: def}, nil
	}
	if e.Funcs != nil {
		if builtin, ok := e.Funcs[normalizeName(name.Str)]; ok {
			return value.Value{Kind: value.KFunctionRef, FnName: name.Str, FnRef: builtin}, nil
		}
	}
	return value.Value{}, fmt.Errorf("eval: get-function(): no function named %s", name.Str)
}

// callRef implements `call(fn, args...)`: invoke a function reference
// obtained from get-function, or — for compatibility with the older
// calling style — resolve a bare name string through the normal chain.
func (e *Evaluator) callRef(args []value.Value, keywords map[string]value.Value, sc *scope.Scope, parent selector.Selector) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, fmt.Errorf("eval: call() expects a function reference")
	}
	fnv, rest := args[0], args[1:]
	switch fnv.Kind {
	case value.KFunctionRef:
		switch ref := fnv.FnRef.(type) {
		case *Callable:
			rest, keywords, err := collapseArgs(rest, keywords)
			if err != nil {
				return value.Value{}, err
			}
			return e.invokeFunction(ref, rest, keywords, parent)
		case functions.Func:
			rest, keywords, err := collapseArgs(rest, keywords)
			if err != nil {
				return value.Value{}, err
			}
			return ref(rest, keywords)
		default:
			return value.Value{}, fmt.Errorf("eval: corrupt function reference %s", fnv.FnName)
		}
	case value.KString:
		return e.callFunction(fnv.Str, rest, keywords, sc, parent)
	default:
		return value.Value{}, fmt.Errorf("eval: call() expects a function reference, got %s", fnv.TypeName())
	}
}

func literalCall(name string, args []value.Value, keywords map[string]value.Value) value.Value {
	parts := make([]string, 0, len(args)+len(keywords))
	for _, a := range args {
		parts = append(parts, value.CSSString(a, true))
	}
	for k, v := range keywords {
		parts = append(parts, "$"+k+": "+value.CSSString(v, true))
	}
	return value.Str(name+"("+strings.Join(parts, ", ")+")", value.Unquoted)
}

func normalizeName(s string) string { return strings.ReplaceAll(s, "_", "-") }

// invokeFunction binds arguments, runs the body to its @return, and
// yields the returned value; a body that falls off the end without
// returning is an error.
func (e *Evaluator) invokeFunction(fn *Callable, args []value.Value, keywords map[string]value.Value, parent selector.Selector) (value.Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxCallDepth {
		return value.Value{}, fmt.Errorf("eval: call depth exceeded calling %s", fn.Name)
	}

	call := fn.Closure.Fork()
	if err := e.bindCallableValues(fn.Params, args, keywords, call, parent); err != nil {
		return value.Value{}, fmt.Errorf("eval: calling %s: %w", fn.Name, err)
	}

	_, err := e.evalStatements(fn.Body, call, parent)
	if err != nil {
		if rs, ok := err.(*returnSignal); ok {
			return rs.Value, nil
		}
		return value.Value{}, err
	}
	return value.Value{}, fmt.Errorf("eval: function %s completed without @return", fn.Name)
}

// bindCallableValues is bindArgs's counterpart for callers that already
// hold evaluated value.Value arguments (a user function called from
// inside an expression, rather than a mixin @include parsed from raw
// tokens).
func (e *Evaluator) bindCallableValues(params []Param, args []value.Value, keywords map[string]value.Value, call *scope.Scope, parent selector.Selector) error {
	kw := map[string]value.Value{}
	for k, v := range keywords {
		kw[k] = v
	}

	pi := 0
	for _, p := range params {
		if p.Variadic {
			break
		}
		if pi < len(args) {
			call.SetVarLocal(p.Name, args[pi])
			pi++
			continue
		}
		if v, ok := kw[p.Name]; ok {
			call.SetVarLocal(p.Name, v)
			delete(kw, p.Name)
			continue
		}
		if p.Default != nil {
			v, err := expr.Eval(p.Default, e.env(call, parent))
			if err != nil {
				return err
			}
			call.SetVarLocal(p.Name, v)
			continue
		}
		return fmt.Errorf("missing argument $%s", p.Name)
	}

	var variadic *Param
	for i := range params {
		if params[i].Variadic {
			variadic = &params[i]
			break
		}
	}
	if variadic != nil {
		items := append([]value.Value{}, args[pi:]...)
		arglist := value.Value{Kind: value.KArgList, Items: items, Sep: value.Comma, Keywords: kw}
		call.SetVarLocal(variadic.Name, arglist)
	} else if pi < len(args) {
		return fmt.Errorf("too many positional arguments")
	} else if len(kw) > 0 {
		var names []string
		for k := range kw {
			names = append(names, "$"+k)
		}
		return fmt.Errorf("unexpected keyword argument(s) %s", strings.Join(names, ", "))
	}
	return nil
}

// invokeMixin binds arguments, optionally attaches a content closure for
// `@content` to splice, runs the body, and returns its emitted output.
func (e *Evaluator) invokeMixin(mx *Callable, args []callArg, content *contentClosure, callerScope *scope.Scope, parent selector.Selector) ([]Out, error) {
	e.depth++
	e.mixinDepth++
	defer func() { e.depth--; e.mixinDepth-- }()
	if e.depth > maxCallDepth {
		return nil, fmt.Errorf("eval: call depth exceeded calling %s", mx.Name)
	}

	call, err := e.bindArgs(mx.Params, args, mx.Closure, callerScope, parent)
	if err != nil {
		return nil, fmt.Errorf("eval: calling %s: %w", mx.Name, err)
	}
	if content != nil {
		call.SetMixin("@content", content)
	}

	// call is forked from the mixin's lexical closure, not from
	// callerScope, so its bindings are discarded once the body finishes:
	// ordinary variable writes inside a mixin body are local to the call.
	// `!global` writes already bypass this — SetVarGlobal walks to the
	// chain's root scope directly, independent of any Fork.
	out, err := e.evalStatements(mx.Body, call, parent)
	if err != nil {
		return nil, err
	}
	return out, nil
}
