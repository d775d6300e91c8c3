package ast

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/token"
)

// Parser turns a flat token stream into a statement tree. It does not
// evaluate anything — selectors, variable references, and at-rule
// parameters are retained as token runs for the evaluator to interpret
// with a concrete scope.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse tokenizes and parses a complete stylesheet source.
func Parse(src string) (*Stylesheet, error) {
	return NewParser(token.New(src).Tokenize()).ParseStylesheet()
}

// NewParser creates a Parser over an already-tokenized stream.
func NewParser(toks []token.Token) *Parser { return &Parser{toks: toks} }

// ParseStylesheet parses the whole token stream as a top-level statement
// list.
func (p *Parser) ParseStylesheet() (*Stylesheet, error) {
	stmts, err := p.parseStatements(token.EOF)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{Statements: stmts}, nil
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atEnd() bool { return p.peek().Type == token.EOF }

// parseStatements parses statements until it sees closer (RBrace for a
// nested body, EOF for the top level).
func (p *Parser) parseStatements(closer token.Type) ([]Statement, error) {
	var out []Statement
	for {
		for p.peek().Type == token.Semi {
			p.advance()
		}
		if p.peek().Type == closer || p.atEnd() {
			return out, nil
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if st != nil {
			out = append(out, st)
		}
	}
}

func (p *Parser) parseStatement() (Statement, error) {
	t := p.peek()
	switch t.Type {
	case token.CommentLine, token.CommentBlock:
		p.advance()
		return &Comment{Text: stripCommentDelims(t), IsBlock: t.Type == token.CommentBlock, Pos: posOf(t)}, nil
	case token.AtKeyword:
		return p.parseAtRule()
	case token.Variable:
		if p.peekAt(1).Type == token.Colon {
			return p.parseVarDecl()
		}
	}
	return p.parseStyleOrRule()
}

func stripCommentDelims(t token.Token) string {
	s := t.Value
	if t.Type == token.CommentLine {
		return strings.TrimPrefix(s, "//")
	}
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return s
}

func (p *Parser) parseAtRule() (Statement, error) {
	nameTok := p.advance()
	ar := &AtRule{Name: strings.ToLower(nameTok.Value), Pos: posOf(nameTok)}

	depth := 0
	for {
		t := p.peek()
		if depth == 0 && (t.Type == token.LBrace || t.Type == token.Semi) {
			break
		}
		if p.atEnd() {
			return nil, fmt.Errorf("ast: unterminated @%s at %v", ar.Name, posOf(nameTok))
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		ar.Params = append(ar.Params, p.advance())
	}

	if p.peek().Type == token.LBrace {
		p.advance()
		body, err := p.parseStatements(token.RBrace)
		if err != nil {
			return nil, err
		}
		if p.peek().Type != token.RBrace {
			return nil, fmt.Errorf("ast: expected '}' closing @%s", ar.Name)
		}
		p.advance()
		ar.Body = body
		ar.HasBlock = true
	} else if p.peek().Type == token.Semi {
		p.advance()
	}
	return ar, nil
}

func (p *Parser) parseVarDecl() (Statement, error) {
	nameTok := p.advance()
	p.advance() // colon

	var toks []token.Token
	depth := 0
	for {
		t := p.peek()
		if depth == 0 && (t.Type == token.Semi || t.Type == token.RBrace) {
			break
		}
		if p.atEnd() {
			break
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		toks = append(toks, p.advance())
	}
	if p.peek().Type == token.Semi {
		p.advance()
	}

	def, glob := false, false
	for len(toks) > 0 && toks[len(toks)-1].Type == token.Flag {
		switch strings.ToLower(toks[len(toks)-1].Value) {
		case "default":
			def = true
		case "global":
			glob = true
		}
		toks = toks[:len(toks)-1]
	}

	return &VarDecl{Name: nameTok.Value, Value: toks, Default: def, Global: glob, Pos: posOf(nameTok)}, nil
}

// lookahead scans forward from p.pos without consuming, returning the
// token run up to (but excluding) the first top-level `{`, `;`, or EOF, and
// which of those it stopped at.
func (p *Parser) lookahead() (stop token.Type, run []token.Token) {
	depth := 0
	i := p.pos
	for {
		if i >= len(p.toks) {
			return token.EOF, p.toks[p.pos:i]
		}
		t := p.toks[i]
		if depth == 0 && (t.Type == token.LBrace || t.Type == token.Semi || t.Type == token.EOF) {
			return t.Type, p.toks[p.pos:i]
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		i++
	}
}

func (p *Parser) parseStyleOrRule() (Statement, error) {
	stop, run := p.lookahead()

	if stop != token.LBrace {
		return p.parseDeclaration()
	}

	colonIdx := -1
	depth := 0
	for i, t := range run {
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.Colon:
			if depth == 0 && colonIdx == -1 {
				colonIdx = i
			}
		}
	}

	// A colon belongs to a declaration (rather than a pseudo-class in a
	// selector) when it is the last token before the block, or has
	// whitespace after it — "margin: {" and "color: red" vs "a:hover".
	isDeclaration := colonIdx != -1 && (colonIdx == len(run)-1 || run[colonIdx+1].SpaceBefore)
	if isDeclaration {
		return p.parseDeclaration()
	}
	return p.parseRuleSet()
}

func (p *Parser) parseDeclaration() (Statement, error) {
	startTok := p.peek()
	var prop []token.Token
	depth := 0
	for {
		t := p.peek()
		if depth == 0 && t.Type == token.Colon {
			break
		}
		if depth == 0 && (t.Type == token.Semi || t.Type == token.RBrace) {
			return nil, fmt.Errorf("ast: expected ':' in declaration at %v", posOf(startTok))
		}
		if p.atEnd() {
			return nil, fmt.Errorf("ast: unexpected end of input in declaration at %v", posOf(startTok))
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		prop = append(prop, p.advance())
	}
	p.advance() // colon

	var val []token.Token
	depth = 0
	for {
		t := p.peek()
		if depth == 0 && (t.Type == token.Semi || t.Type == token.RBrace || t.Type == token.LBrace) {
			break
		}
		if p.atEnd() {
			break
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		val = append(val, p.advance())
	}

	// `margin: 0 { top: 10px; }` — a declaration with both its own value
	// and a nested property-group shorthand.
	if p.peek().Type == token.LBrace {
		p.advance()
		body, err := p.parseStatements(token.RBrace)
		if err != nil {
			return nil, err
		}
		if p.peek().Type != token.RBrace {
			return nil, fmt.Errorf("ast: expected '}' closing nested property group at %v", posOf(startTok))
		}
		p.advance()
		return &Style{Property: prop, Value: val, Nested: body, Pos: posOf(startTok)}, nil
	}

	if p.peek().Type == token.Semi {
		p.advance()
	}

	important := false
	if len(val) > 0 && val[len(val)-1].Type == token.Flag && strings.ToLower(val[len(val)-1].Value) == "important" {
		important = true
		val = val[:len(val)-1]
	}

	return &Style{Property: prop, Value: val, Important: important, Pos: posOf(startTok)}, nil
}

func (p *Parser) parseRuleSet() (Statement, error) {
	startTok := p.peek()
	var sel []token.Token
	depth := 0
	for {
		t := p.peek()
		if depth == 0 && t.Type == token.LBrace {
			break
		}
		if p.atEnd() {
			return nil, fmt.Errorf("ast: unterminated selector at %v", posOf(startTok))
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		sel = append(sel, p.advance())
	}
	p.advance() // lbrace
	body, err := p.parseStatements(token.RBrace)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != token.RBrace {
		return nil, fmt.Errorf("ast: expected '}' closing rule at %v", posOf(startTok))
	}
	p.advance()
	return &RuleSet{SelectorTokens: sel, Body: body, Pos: posOf(startTok)}, nil
}
