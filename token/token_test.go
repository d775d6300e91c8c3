package token

import "testing"

func types(toks []Token) []Type {
	out := make([]Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeVariableAssignment(t *testing.T) {
	toks := New(`$x: 1px + 2px;`).Tokenize()
	got := types(toks)
	want := []Type{Variable, Colon, Number, Plus, Number, Semi, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v (%v)", i, got[i], want[i], got)
		}
	}
}

func TestInterpolationTracksDepth(t *testing.T) {
	toks := New(`.a-#{$i} { }`).Tokenize()
	var sawInterp, sawInterpEnd bool
	for _, tk := range toks {
		if tk.Type == Interp {
			sawInterp = true
		}
		if tk.Type == InterpEnd {
			sawInterpEnd = true
		}
	}
	if !sawInterp || !sawInterpEnd {
		t.Fatalf("expected interp/interpend pair, got %v", types(toks))
	}
}

func TestAtKeywordAndFlag(t *testing.T) {
	toks := New(`@mixin foo($a: 1 !default) { }`).Tokenize()
	got := types(toks)
	if got[0] != AtKeyword || toks[0].Value != "mixin" {
		t.Fatalf("expected at-keyword mixin, got %v %q", got[0], toks[0].Value)
	}
	foundFlag := false
	for i, tk := range toks {
		if tk.Type == Flag {
			foundFlag = true
			if toks[i].Value != "default" {
				t.Fatalf("expected flag value default, got %q", toks[i].Value)
			}
		}
	}
	if !foundFlag {
		t.Fatalf("expected a !default flag token, got %v", got)
	}
}

func TestColorVsHash(t *testing.T) {
	toks := New(`#fff #{$x} #notacolor`).Tokenize()
	if toks[0].Type != Color {
		t.Fatalf("expected color, got %v", toks[0].Type)
	}
	if toks[1].Type != Interp {
		t.Fatalf("expected interp, got %v", toks[1].Type)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := New(`"a\"b"`).Tokenize()
	if toks[0].Type != String || toks[0].Value != `a"b` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestStringSplitsAroundInterpolation(t *testing.T) {
	toks := New(`"#{$a}.png"`).Tokenize()
	want := []Type{String, Interp, Variable, InterpEnd, String, EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v (%v)", i, got[i], want[i], got)
		}
	}
	if toks[0].Value != "" || toks[0].QuoteChar != '"' {
		t.Fatalf("unexpected leading fragment %+v", toks[0])
	}
	if toks[4].Value != ".png" || toks[4].QuoteChar != '"' {
		t.Fatalf("unexpected trailing fragment %+v", toks[4])
	}
	for i, tk := range toks {
		if i == 0 {
			continue
		}
		if tk.SpaceBefore {
			t.Fatalf("token %d: expected no space, got %+v", i, tk)
		}
	}
}

func TestStringWithLiteralTextAroundInterpolation(t *testing.T) {
	toks := New(`"pre-#{$x}-post"`).Tokenize()
	want := []Type{String, Interp, Variable, InterpEnd, String, EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if toks[0].Value != "pre-" {
		t.Fatalf("expected leading fragment %q, got %q", "pre-", toks[0].Value)
	}
	if toks[4].Value != "-post" {
		t.Fatalf("expected trailing fragment %q, got %q", "-post", toks[4].Value)
	}
}

func TestNestedInterpolationInsideString(t *testing.T) {
	toks := New(`"#{nth($list, #{$i})}"`).Tokenize()
	var depth, maxDepth int
	for _, tk := range toks {
		switch tk.Type {
		case Interp:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case InterpEnd:
			depth--
		}
	}
	if depth != 0 {
		t.Fatalf("unbalanced interpolation nesting, final depth %d in %v", depth, types(toks))
	}
	if maxDepth < 2 {
		t.Fatalf("expected nested interpolation depth >= 2, got %d", maxDepth)
	}
}

func TestIdentifierHexEscape(t *testing.T) {
	toks := New(`\41 b`).Tokenize()
	if toks[0].Type != Ident || toks[0].Value != "Ab" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestIdentifierHexEscapeWithoutTrailingSpace(t *testing.T) {
	toks := New(`\41z`).Tokenize()
	if toks[0].Type != Ident || toks[0].Value != "Az" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestIdentifierLiteralCharEscape(t *testing.T) {
	toks := New(`foo\.bar`).Tokenize()
	if toks[0].Type != Ident || toks[0].Value != "foo.bar" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestMinusBetweenNumbersStaysAnOperator(t *testing.T) {
	toks := New(`10px-5px`).Tokenize()
	want := []Type{Number, Minus, Number, EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v (%v)", i, got[i], want[i], got)
		}
	}
	if toks[1].SpaceBefore || toks[2].SpaceBefore {
		t.Fatalf("expected no space around -, got %+v", toks)
	}
}

func TestLeadingDotNumber(t *testing.T) {
	toks := New(`.5em`).Tokenize()
	if toks[0].Type != Number || toks[0].Value != ".5em" {
		t.Fatalf("got %+v", toks[0])
	}
}
