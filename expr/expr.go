// Package expr implements the expression language: a two-pass reducer that
// walks a flat token stream, resolving each token into a fully-formed
// value.Value (variables substituted, function calls invoked, literals
// parsed) and then folding the resulting stream by operator precedence.
//
// The `+`/`-` ambiguity between a binary operator and the sign of an
// adjacent space-separated value is resolved by spacing: a `-`/`+` with
// space on its left but not its right is the start of a new value, not
// an operator.
package expr

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/color"
	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/token"
	"github.com/styc-lang/styc/value"
)

// Env is the evaluation environment a Parser resolves variables, the
// parent-selector reference, and function calls against. The evaluator
// package implements this over a scope.Scope plus the builtin registry so
// that this package never needs to import either.
type Env interface {
	GetVar(name string) (value.Value, bool)
	ParentSelector() (value.Value, bool)
	CallFunction(name string, args []value.Value, keywords map[string]value.Value) (value.Value, error)
}

// Parser reduces a token slice into a single Value.
type Parser struct {
	toks []token.Token
	pos  int
	env  Env
}

// New creates a Parser over toks (which should not include the statement's
// trailing `;`). The parser works on its own EOF-terminated copy, so the
// caller's token run stays intact and can be evaluated again.
func New(toks []token.Token, env Env) *Parser {
	own := make([]token.Token, len(toks), len(toks)+1)
	copy(own, toks)
	own = append(own, token.Token{Type: token.EOF})
	return &Parser{toks: own, env: env}
}

// Eval parses and reduces the entire token slice as one top-level
// comma/space-separated value production.
func Eval(toks []token.Token, env Env) (value.Value, error) {
	p := New(toks, env)
	v, err := p.parseCommaList(false)
	if err != nil {
		return value.Value{}, err
	}
	if !p.atEnd() {
		return value.Value{}, fmt.Errorf("expr: unexpected token %q at end of expression", p.peek().Value)
	}
	return v, nil
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	} else {
		p.toks[len(p.toks)-1] = token.Token{Type: token.EOF}
	}
	return t
}

func (p *Parser) atEnd() bool { return p.peek().Type == token.EOF }

func isListStop(t token.Type) bool {
	switch t {
	case token.EOF, token.Comma, token.RParen, token.RBracket, token.RBrace, token.Semi, token.InterpEnd, token.DotDotDot, token.Colon:
		return true
	}
	return false
}

// parseCommaList parses a sequence of comma-separated items, each itself a
// space-separated run of values. forceList wraps a single-item result as a
// one-element list instead of returning it bare (used for bracketed list
// literals, where `[1px]` must stay a list).
func (p *Parser) parseCommaList(forceList bool) (value.Value, error) {
	first, err := p.parseSpaceList()
	if err != nil {
		return value.Value{}, err
	}
	if p.peek().Type != token.Comma {
		if forceList {
			return value.List([]value.Value{first}, value.Comma, false), nil
		}
		return first, nil
	}
	items := []value.Value{first}
	for p.peek().Type == token.Comma {
		p.advance()
		next, err := p.parseSpaceList()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, next)
	}
	return value.List(items, value.Comma, false), nil
}

// parseSpaceList parses one or more adjacent reduced expressions with no
// operator between them into a space-separated list (e.g. `1px solid red`),
// or returns the lone expression unwrapped when there is only one.
func (p *Parser) parseSpaceList() (value.Value, error) {
	first, err := p.parseOr()
	if err != nil {
		return value.Value{}, err
	}
	if isListStop(p.peek().Type) {
		return first, nil
	}
	items := []value.Value{first}
	for !isListStop(p.peek().Type) {
		next, err := p.parseOr()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, next)
	}
	return value.List(items, value.Space, false), nil
}

func (p *Parser) parseOr() (value.Value, error) {
	left, err := p.parseAnd()
	if err != nil {
		return value.Value{}, err
	}
	for p.peek().Type == token.Or {
		p.advance()
		result, err := value.Or(left, func() (value.Value, error) { return p.parseAnd() })
		if err != nil {
			return value.Value{}, err
		}
		left = result
	}
	return left, nil
}

func (p *Parser) parseAnd() (value.Value, error) {
	left, err := p.parseComparison()
	if err != nil {
		return value.Value{}, err
	}
	for p.peek().Type == token.And {
		p.advance()
		result, err := value.And(left, func() (value.Value, error) { return p.parseComparison() })
		if err != nil {
			return value.Value{}, err
		}
		left = result
	}
	return left, nil
}

func (p *Parser) parseComparison() (value.Value, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return value.Value{}, err
	}
	for {
		op := p.peek().Type
		if op != token.Eq && op != token.Ne && op != token.Lt && op != token.Le && op != token.Gt && op != token.Ge {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return value.Value{}, err
		}
		if left, err = value.Collapse(left); err != nil {
			return value.Value{}, err
		}
		if right, err = value.Collapse(right); err != nil {
			return value.Value{}, err
		}
		if op == token.Eq {
			left = value.Bool(value.Equal(left, right))
			continue
		}
		if op == token.Ne {
			left = value.Bool(!value.Equal(left, right))
			continue
		}
		cmp, err := value.Compare(left, right)
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case token.Lt:
			left = value.Bool(cmp < 0)
		case token.Le:
			left = value.Bool(cmp <= 0)
		case token.Gt:
			left = value.Bool(cmp > 0)
		case token.Ge:
			left = value.Bool(cmp >= 0)
		}
	}
}

// nextStartsUnarySign reports whether the `+`/`-` token at p.pos should be
// read as the sign of a new value rather than a binary operator: space
// before it but none before its operand means it's glued to what follows.
func (p *Parser) nextStartsUnarySign() bool {
	op := p.peek()
	operand := p.peekAt(1)
	return op.SpaceBefore && !operand.SpaceBefore
}

func (p *Parser) parseAdditive() (value.Value, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return value.Value{}, err
	}
	for {
		op := p.peek().Type
		if op != token.Plus && op != token.Minus {
			return left, nil
		}
		if p.nextStartsUnarySign() {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return value.Value{}, err
		}
		if op == token.Plus {
			left, err = value.Add(left, right)
		} else {
			left, err = value.Sub(left, right)
		}
		if err != nil {
			return value.Value{}, err
		}
	}
}

// parseMultiplicative folds `*`, `/`, and `%`. A slash between two
// adjacent number literals with no whitespace around it is kept as a
// lazy slash node (`font: 10px/1.5` serializes literally); any other
// slash — spaced, or with a variable, call, or reduced expression on
// either side — divides immediately. value.Collapse turns a pending
// slash node into a real division the moment another operator, a
// parenthesized grouping, or a function call touches it.
func (p *Parser) parseMultiplicative() (value.Value, error) {
	leftLiteral := p.peek().Type == token.Number
	left, err := p.parseUnary()
	if err != nil {
		return value.Value{}, err
	}
	for {
		opTok := p.peek()
		op := opTok.Type
		if op != token.Star && op != token.Slash && op != token.Percent {
			return left, nil
		}
		p.advance()
		operand := p.peek()
		rightLiteral := operand.Type == token.Number
		tight := !opTok.SpaceBefore && !operand.SpaceBefore
		right, err := p.parseUnary()
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case token.Star:
			left, err = value.Mul(left, right)
			leftLiteral = false
		case token.Slash:
			if leftLiteral && rightLiteral && tight {
				left = value.SlashSep(left, right)
			} else {
				left, err = value.Div(left, right)
				leftLiteral = false
			}
		case token.Percent:
			left, err = value.Mod(left, right)
			leftLiteral = false
		}
		if err != nil {
			return value.Value{}, err
		}
	}
}

func (p *Parser) parseUnary() (value.Value, error) {
	switch p.peek().Type {
	case token.Not:
		p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return value.Value{}, err
		}
		return value.Not(v), nil
	case token.Minus:
		p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return value.Value{}, err
		}
		return value.Sub(value.Dim(number.Zero, ""), v)
	case token.Plus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (value.Value, error) {
	t := p.peek()
	switch t.Type {
	case token.Number:
		p.advance()
		return parseNumberLiteral(t.Value)
	case token.Color:
		p.advance()
		c, err := color.Parse(t.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(c), nil
	case token.String:
		if p.startsSpliceRun() {
			return p.parseSpliceRun()
		}
		p.advance()
		q := value.Quoted
		if t.QuoteChar == 0 {
			q = value.Unquoted
		}
		return value.Str(t.Value, q), nil
	case token.Variable:
		p.advance()
		v, ok := p.env.GetVar(t.Value)
		if !ok {
			return value.Value{}, fmt.Errorf("expr: undefined variable $%s", t.Value)
		}
		return v, nil
	case token.Ampersand:
		p.advance()
		v, ok := p.env.ParentSelector()
		if !ok {
			return value.Value{}, fmt.Errorf("expr: & used outside a nested rule")
		}
		return v, nil
	case token.Ident:
		if p.startsSpliceRun() {
			return p.parseSpliceRun()
		}
		p.advance()
		switch strings.ToLower(t.Value) {
		case "true":
			return value.True, nil
		case "false":
			return value.False, nil
		case "null":
			return value.Null, nil
		}
		if strings.EqualFold(t.Value, "progid") && p.peek().Type == token.Colon {
			s, err := p.parseProgidCall(t.Value)
			if err != nil {
				return value.Value{}, err
			}
			return value.Str(s, value.Unquoted), nil
		}
		return value.Str(t.Value, value.Unquoted), nil
	case token.Interp:
		return p.parseSpliceRun()
	case token.Function:
		return p.parseFunctionCall()
	case token.LParen:
		return p.parseParenOrMap()
	case token.LBracket:
		p.advance()
		v, err := p.parseCommaList(true)
		if err != nil {
			return value.Value{}, err
		}
		if p.peek().Type != token.RBracket {
			return value.Value{}, fmt.Errorf("expr: expected ] to close bracketed list")
		}
		p.advance()
		v.Bracketed = true
		return v, nil
	}
	return value.Value{}, fmt.Errorf("expr: unexpected token %q", t.Value)
}

// verbatimFunctions are CSS functions whose arguments the browser resolves
// itself — calc's unit mixing (e.g. percentages against lengths) this
// language can't evaluate, url's unquoted paths that aren't expression
// syntax at all — so their argument text is preserved literally instead
// of being reduced through the normal operator-precedence chain. `#{}`
// interpolation inside them still splices.
var verbatimFunctions = map[string]bool{
	"calc":       true,
	"element":    true,
	"expression": true,
	"url":        true,
}

func (p *Parser) parseFunctionCall() (value.Value, error) {
	name := p.advance().Value
	if p.peek().Type != token.LParen {
		return value.Value{}, fmt.Errorf("expr: expected ( after function name %s", name)
	}
	if verbatimFunctions[strings.ToLower(name)] {
		s, err := p.parseVerbatimArgs(name)
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s, value.Unquoted), nil
	}
	p.advance()

	var args []value.Value
	keywords := map[string]value.Value{}
	for p.peek().Type != token.RParen {
		if p.peek().Type == token.Variable && p.peekAt(1).Type == token.Colon {
			kw := p.advance().Value
			p.advance()
			v, err := p.parseSpaceList()
			if err != nil {
				return value.Value{}, err
			}
			keywords[kw] = v
		} else {
			v, err := p.parseSpaceList()
			if err != nil {
				return value.Value{}, err
			}
			if p.peek().Type == token.DotDotDot {
				p.advance()
				if err := spreadArg(v, &args, keywords); err != nil {
					return value.Value{}, err
				}
			} else {
				args = append(args, v)
			}
		}
		if p.peek().Type == token.Comma {
			p.advance()
			continue
		}
		break
	}
	if p.peek().Type != token.RParen {
		return value.Value{}, fmt.Errorf("expr: expected ) to close call to %s", name)
	}
	p.advance()
	return p.env.CallFunction(name, args, keywords)
}

// spreadArg expands a `value...` call-site argument: lists and arglists
// contribute their items positionally (an arglist's keywords carry over),
// a map contributes its string-keyed entries as keyword arguments, and
// any other value spreads as itself.
func spreadArg(v value.Value, args *[]value.Value, keywords map[string]value.Value) error {
	switch v.Kind {
	case value.KArgList:
		*args = append(*args, v.Items...)
		for k, kv := range v.Keywords {
			keywords[k] = kv
		}
	case value.KList:
		*args = append(*args, v.Items...)
	case value.KMap:
		for i, k := range v.Items {
			if k.Kind != value.KString {
				return fmt.Errorf("expr: spread map keys must be strings, got %s", k.TypeName())
			}
			keywords[k.Str] = v.MapVals[i]
		}
	default:
		*args = append(*args, v)
	}
	return nil
}

// parseVerbatimArgs consumes the already-open `(` and reconstructs
// `name(...)` literally, tracking balanced parens, instead of reducing the
// arguments as expressions. Embedded `#{}` runs are still evaluated and
// spliced into the reconstructed text.
func (p *Parser) parseVerbatimArgs(name string) (string, error) {
	p.advance() // consume (
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	depth := 1
	atOpen := true
	for {
		t := p.peek()
		if t.Type == token.EOF {
			return "", fmt.Errorf("expr: unterminated call to %s", name)
		}
		if t.Type == token.Interp {
			s, err := p.parseInterpValue()
			if err != nil {
				return "", err
			}
			if t.SpaceBefore && !atOpen {
				b.WriteByte(' ')
			}
			b.WriteString(s)
			atOpen = false
			continue
		}
		if t.Type == token.LParen {
			depth++
		} else if t.Type == token.RParen {
			depth--
			if depth == 0 {
				p.advance()
				b.WriteByte(')')
				return b.String(), nil
			}
		}
		if t.SpaceBefore && !atOpen {
			b.WriteByte(' ')
		}
		b.WriteString(verbatimTokenText(t))
		atOpen = false
		p.advance()
	}
}

// parseProgidCall reconstructs the legacy IE `progid:Namespace.Class(...)`
// filter syntax verbatim, the same way parseVerbatimArgs does for its
// trailing function call.
func (p *Parser) parseProgidCall(name string) (string, error) {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(':')
	p.advance() // consume the colon
	for {
		t := p.peek()
		if t.Type == token.Function {
			fname := p.advance().Value
			if p.peek().Type != token.LParen {
				return "", fmt.Errorf("expr: expected ( after function name %s", fname)
			}
			s, err := p.parseVerbatimArgs(fname)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			return b.String(), nil
		}
		if isListStop(t.Type) {
			return b.String(), nil
		}
		b.WriteString(verbatimTokenText(t))
		p.advance()
	}
}

func verbatimTokenText(t token.Token) string {
	switch t.Type {
	case token.String:
		q := byte('"')
		if t.QuoteChar != 0 {
			q = t.QuoteChar
		}
		return string(q) + t.Value + string(q)
	case token.Variable:
		return "$" + t.Value
	}
	return t.Value
}

// startsSpliceRun reports whether the parser is sitting at the start of a
// run of identifier/string/interpolation fragments glued together with no
// whitespace, e.g. `#{$x}px` or `"#{$a}.png"`.
func (p *Parser) startsSpliceRun() bool {
	if p.peek().Type == token.Interp {
		return true
	}
	next := p.peekAt(1)
	return next.Type == token.Interp && !next.SpaceBefore
}

// parseSpliceRun consumes a run of directly adjacent identifier, string,
// and interpolation fragments and concatenates them into a single value,
// splicing each interpolation's CSS text in place — the expr-level
// counterpart of the interpolation splicing the evaluator's resolveText
// does for property names, selectors, and at-rule parameters. The result
// is Quoted if any fragment came from a quoted string, Unquoted otherwise.
func (p *Parser) parseSpliceRun() (value.Value, error) {
	var b strings.Builder
	quoted := false
	first := true
	for {
		t := p.peek()
		isFragment := t.Type == token.Ident || t.Type == token.String || t.Type == token.Interp
		if !isFragment || (!first && t.SpaceBefore) {
			break
		}
		switch t.Type {
		case token.Ident:
			b.WriteString(t.Value)
			p.advance()
		case token.String:
			quoted = true
			b.WriteString(t.Value)
			p.advance()
		case token.Interp:
			s, err := p.parseInterpValue()
			if err != nil {
				return value.Value{}, err
			}
			b.WriteString(s)
		}
		first = false
	}
	q := value.Unquoted
	if quoted {
		q = value.Quoted
	}
	return value.Str(b.String(), q), nil
}

// parseInterpValue consumes a single `#{...}` run (already positioned at
// the opening Interp token), evaluates its inner tokens as a nested
// expression, and returns the result's unquoted CSS text.
func (p *Parser) parseInterpValue() (string, error) {
	p.advance() // consume #{
	depth := 1
	start := p.pos
	for depth > 0 {
		switch p.peek().Type {
		case token.Interp:
			depth++
		case token.InterpEnd:
			depth--
		case token.EOF:
			return "", fmt.Errorf("expr: unterminated interpolation")
		}
		if depth == 0 {
			break
		}
		p.advance()
	}
	inner := p.toks[start:p.pos]
	p.advance() // consume }
	v, err := Eval(inner, p.env)
	if err != nil {
		return "", err
	}
	return value.CSSString(v, false), nil
}

// parseParenOrMap disambiguates `(expr)` grouping, `(a, b, c)` parenthesized
// lists, and `(key: val, ...)` map literals, all of which share the `(`
// delimiter.
func (p *Parser) parseParenOrMap() (value.Value, error) {
	p.advance() // consume (

	if p.peek().Type == token.RParen {
		p.advance()
		return value.Map(nil, nil), nil
	}

	first, err := p.parseSpaceList()
	if err != nil {
		return value.Value{}, err
	}

	if p.peek().Type == token.Colon {
		p.advance()
		firstVal, err := p.parseSpaceList()
		if err != nil {
			return value.Value{}, err
		}
		m := value.Map(nil, nil)
		m, err = value.MapInsert(m, first, firstVal)
		if err != nil {
			return value.Value{}, err
		}
		for p.peek().Type == token.Comma {
			p.advance()
			k, err := p.parseSpaceList()
			if err != nil {
				return value.Value{}, err
			}
			if p.peek().Type != token.Colon {
				return value.Value{}, fmt.Errorf("expr: expected : in map literal")
			}
			p.advance()
			v, err := p.parseSpaceList()
			if err != nil {
				return value.Value{}, err
			}
			m, err = value.MapInsert(m, k, v)
			if err != nil {
				return value.Value{}, err
			}
		}
		if p.peek().Type != token.RParen {
			return value.Value{}, fmt.Errorf("expr: expected ) to close map literal")
		}
		p.advance()
		return m, nil
	}

	if p.peek().Type != token.Comma {
		if p.peek().Type != token.RParen {
			return value.Value{}, fmt.Errorf("expr: expected ) to close parenthesized expression")
		}
		p.advance()
		// Parenthesizing forces a pending slash node into division:
		// `(10px/2)` is 5px even though the bare form stays literal.
		return value.Collapse(first)
	}

	items := []value.Value{first}
	for p.peek().Type == token.Comma {
		p.advance()
		next, err := p.parseSpaceList()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, next)
	}
	if p.peek().Type != token.RParen {
		return value.Value{}, fmt.Errorf("expr: expected ) to close parenthesized list")
	}
	p.advance()
	return value.List(items, value.Comma, false), nil
}

// parseNumberLiteral splits a NUMBER token's text into its digit run and
// trailing unit (e.g. "12.5px" -> 12.5, "px"; "50%" -> 50, "%").
func parseNumberLiteral(s string) (value.Value, error) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	numPart := s[:i]
	unitPart := s[i:]
	n, err := number.ParseDecimal(numPart)
	if err != nil {
		return value.Value{}, err
	}
	return value.Dim(n, unitPart), nil
}
