package eval_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styc-lang/styc/ast"
	"github.com/styc-lang/styc/eval"
	"github.com/styc-lang/styc/functions"
	"github.com/styc-lang/styc/scope"
	"github.com/styc-lang/styc/token"
)

func mustEval(t *testing.T, src string) []eval.Out {
	t.Helper()
	sheet, err := ast.Parse(src)
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	out, err := ev.EvalStylesheet(sheet, scope.New())
	require.NoError(t, err)
	return out
}

func firstDecl(t *testing.T, out []eval.Out) *eval.OutDecl {
	t.Helper()
	rs, ok := out[0].(*eval.OutRuleSet)
	require.True(t, ok, "expected a ruleset, got %T", out[0])
	d, ok := rs.Body[0].(*eval.OutDecl)
	require.True(t, ok, "expected a declaration, got %T", rs.Body[0])
	return d
}

func TestEvalVarDeclSubstitutesIntoDeclaration(t *testing.T) {
	out := mustEval(t, "$size: 10px;\na { width: $size; }")
	d := firstDecl(t, out)
	require.Equal(t, "width", d.Name)
	require.Equal(t, "10px", d.Value)
}

func TestEvalNestedRuleSetZipsSelectors(t *testing.T) {
	out := mustEval(t, ".card {\n  .title {\n    color: red;\n  }\n}")
	require.Len(t, out, 1)
	outer, ok := out[0].(*eval.OutRuleSet)
	require.True(t, ok)
	require.Equal(t, ".card", outer.Selector)
	require.Len(t, outer.Body, 1)
	inner, ok := outer.Body[0].(*eval.OutRuleSet)
	require.True(t, ok)
	require.Equal(t, ".card .title", inner.Selector)
}

func TestEvalAmpersandReferencesParentSelector(t *testing.T) {
	out := mustEval(t, ".btn {\n  &:hover {\n    color: blue;\n  }\n}")
	outer := out[0].(*eval.OutRuleSet)
	inner := outer.Body[0].(*eval.OutRuleSet)
	require.Equal(t, ".btn:hover", inner.Selector)
}

func TestEvalIfElseChainPicksFirstTruthyBranch(t *testing.T) {
	out := mustEval(t, `
a {
  @if 1 == 2 {
    color: red;
  } @else if 2 == 2 {
    color: green;
  } @else {
    color: blue;
  }
}`)
	d := firstDecl(t, out)
	require.Equal(t, "green", d.Value)
}

func TestEvalIfChainNoBranchTaken(t *testing.T) {
	out := mustEval(t, `
a {
  @if false {
    color: red;
  }
  width: 1px;
}`)
	rs := out[0].(*eval.OutRuleSet)
	require.Len(t, rs.Body, 1)
	d := rs.Body[0].(*eval.OutDecl)
	require.Equal(t, "width", d.Name)
}

func TestEvalForLoopThroughIsInclusive(t *testing.T) {
	out := mustEval(t, `
@for $i from 1 through 3 {
  a { order: $i; }
}`)
	require.Len(t, out, 3)
	for i, node := range out {
		rs := node.(*eval.OutRuleSet)
		d := rs.Body[0].(*eval.OutDecl)
		require.Equal(t, "order", d.Name)
		require.Equal(t, []string{"1", "2", "3"}[i], d.Value)
	}
}

func TestEvalForLoopToIsExclusive(t *testing.T) {
	out := mustEval(t, `
@for $i from 1 to 3 {
  a { order: $i; }
}`)
	require.Len(t, out, 2)
}

func TestEvalEachOverList(t *testing.T) {
	out := mustEval(t, `
@each $name in red, green, blue {
  a { color: $name; }
}`)
	require.Len(t, out, 3)
	got := make([]string, len(out))
	for i, node := range out {
		rs := node.(*eval.OutRuleSet)
		d := rs.Body[0].(*eval.OutDecl)
		got[i] = d.Value
	}
	require.Equal(t, []string{"red", "green", "blue"}, got)
}

func TestEvalEachDestructuresPairsOverMap(t *testing.T) {
	out := mustEval(t, `
@each $k, $v in (a: 1, b: 2) {
  a { content: $k; order: $v; }
}`)
	require.Len(t, out, 2)
	first := out[0].(*eval.OutRuleSet)
	require.Equal(t, "a", first.Body[0].(*eval.OutDecl).Value)
	require.Equal(t, "1", first.Body[1].(*eval.OutDecl).Value)
}

func TestEvalWhileLoop(t *testing.T) {
	out := mustEval(t, `
$i: 0;
@while $i < 3 {
  a { order: $i; }
  $i: $i + 1;
}`)
	require.Len(t, out, 3)
}

func TestEvalMixinIncludeSubstitutesArguments(t *testing.T) {
	out := mustEval(t, `
@mixin box($w, $h: 10px) {
  width: $w;
  height: $h;
}
a {
  @include box(5px);
}`)
	rs := out[0].(*eval.OutRuleSet)
	require.Equal(t, "width", rs.Body[0].(*eval.OutDecl).Name)
	require.Equal(t, "5px", rs.Body[0].(*eval.OutDecl).Value)
	require.Equal(t, "10px", rs.Body[1].(*eval.OutDecl).Value)
}

func TestEvalMixinContentBlockSplicesAtCallSite(t *testing.T) {
	out := mustEval(t, `
@mixin wrap {
  .inner {
    @content;
  }
}
.outer {
  @include wrap {
    color: teal;
  }
}`)
	outer := out[0].(*eval.OutRuleSet)
	inner := outer.Body[0].(*eval.OutRuleSet)
	require.Equal(t, ".outer .inner", inner.Selector)
	require.Equal(t, "teal", inner.Body[0].(*eval.OutDecl).Value)
}

func TestEvalMixinDoesNotLeakLocalAssignmentsToCaller(t *testing.T) {
	out := mustEval(t, `
$x: 1;
@mixin set {
  $x: 2;
}
a {
  @include set;
  width: $x;
}`)
	rs := out[0].(*eval.OutRuleSet)
	d := rs.Body[0].(*eval.OutDecl)
	require.Equal(t, "width", d.Name)
	require.Equal(t, "1", d.Value)
}

func TestEvalMixinGlobalAssignmentEscapesCaller(t *testing.T) {
	out := mustEval(t, `
$x: 1;
@mixin set {
  $x: 2 !global;
}
a {
  @include set;
  width: $x;
}`)
	rs := out[0].(*eval.OutRuleSet)
	d := rs.Body[0].(*eval.OutDecl)
	require.Equal(t, "2", d.Value)
}

func TestEvalFunctionReturnsValue(t *testing.T) {
	out := mustEval(t, `
@function double($n) {
  @return $n * 2;
}
a {
  width: double(3px);
}`)
	d := firstDecl(t, out)
	require.Equal(t, "6px", d.Value)
}

func TestEvalBuiltinFunctionCall(t *testing.T) {
	out := mustEval(t, "a { width: percentage(0.5); }")
	d := firstDecl(t, out)
	require.Equal(t, "50%", d.Value)
}

func TestEvalVariableExistsIntrospection(t *testing.T) {
	out := mustEval(t, `
$known: 1;
a { content: variable-exists(known); width: variable-exists(missing); }`)
	rs := out[0].(*eval.OutRuleSet)
	require.Equal(t, "true", rs.Body[0].(*eval.OutDecl).Value)
	require.Equal(t, "false", rs.Body[1].(*eval.OutDecl).Value)
}

func TestEvalInterpolationSplicesIntoDeclarationValue(t *testing.T) {
	out := mustEval(t, "$x: 5; a { width: #{$x}px; }")
	d := firstDecl(t, out)
	require.Equal(t, "width", d.Name)
	require.Equal(t, "5px", d.Value)
}

func TestEvalInterpolationSplicesInsideQuotedString(t *testing.T) {
	out := mustEval(t, `$name: icon; a { content: "#{$name}.png"; }`)
	d := firstDecl(t, out)
	require.Equal(t, "content", d.Name)
	require.Equal(t, `"icon.png"`, d.Value)
}

func TestEvalCalcPreservesVerbatimArithmetic(t *testing.T) {
	out := mustEval(t, "a { width: calc(100% - 10px); }")
	d := firstDecl(t, out)
	require.Equal(t, "width", d.Name)
	require.Equal(t, "calc(100% - 10px)", d.Value)
}

func TestEvalUnknownAtRulePassesThrough(t *testing.T) {
	out := mustEval(t, "@media (min-width: 500px) {\n  a { color: red; }\n}")
	require.Len(t, out, 1)
	ar, ok := out[0].(*eval.OutAtRule)
	require.True(t, ok)
	require.Equal(t, "media", ar.Name)
	require.Contains(t, ar.Params, "500px")
}

func TestEvalErrorAborts(t *testing.T) {
	sheet, err := ast.Parse(`@error "boom";`)
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestEvalUndefinedVariableErrors(t *testing.T) {
	sheet, err := ast.Parse("a { width: $nope; }")
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
}

func TestEvalUndefinedMixinErrors(t *testing.T) {
	sheet, err := ast.Parse("a { @include nope; }")
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope")
}

// fakeImporter resolves every request to a fixed canonical name and token
// stream, recording the containing path it was called with so nested
// @import resolution can be checked without touching the filesystem.
type fakeImporter struct {
	sources map[string]string
	calls   []struct{ requested, containing string }
}

func (f *fakeImporter) Resolve(requested, containing string) (string, []token.Token, error) {
	f.calls = append(f.calls, struct{ requested, containing string }{requested, containing})
	src, ok := f.sources[requested]
	if !ok {
		return "", nil, errNotFound(requested)
	}
	return requested, token.New(src).Tokenize(), nil
}

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

func TestEvalImportResolvesAndInlinesDeclarations(t *testing.T) {
	imp := &fakeImporter{sources: map[string]string{
		"vars": "$primary: teal;",
	}}
	sheet, err := ast.Parse(`
@import "vars";
a { color: $primary; }`)
	require.NoError(t, err)

	ev := eval.New(functions.Default())
	ev.Importer = imp
	ev.File = "style.styc"

	out, err := ev.EvalStylesheet(sheet, scope.New())
	require.NoError(t, err)
	d := firstDecl(t, out)
	require.Equal(t, "teal", d.Value)
	require.Len(t, imp.calls, 1)
	require.Equal(t, "style.styc", imp.calls[0].containing)
}

func TestEvalImportNestedUsesInnermostContainingFile(t *testing.T) {
	imp := &fakeImporter{sources: map[string]string{
		"outer": `@import "inner";`,
		"inner": `$leaf: 1px;`,
	}}
	sheet, err := ast.Parse(`@import "outer";`)
	require.NoError(t, err)

	ev := eval.New(functions.Default())
	ev.Importer = imp
	ev.File = "root.styc"

	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.NoError(t, err)
	require.Len(t, imp.calls, 2)
	require.Equal(t, "root.styc", imp.calls[0].containing)
	require.Equal(t, "outer", imp.calls[1].containing)
}

func TestEvalImportDetectsCircularImport(t *testing.T) {
	imp := &fakeImporter{sources: map[string]string{
		"a": `@import "b";`,
		"b": `@import "a";`,
	}}
	sheet, err := ast.Parse(`@import "a";`)
	require.NoError(t, err)

	ev := eval.New(functions.Default())
	ev.Importer = imp
	ev.File = "entry.styc"

	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "circular import"))
}

func TestEvalImportWithoutImporterConfiguredErrors(t *testing.T) {
	sheet, err := ast.Parse(`@import "anything";`)
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
}

func TestEvalGetFunctionAndCallInvokeUserFunction(t *testing.T) {
	out := mustEval(t, `
@function double($x) {
  @return $x * 2;
}
$fn: get-function("double");
a { width: call($fn, 4px); }`)
	d := firstDecl(t, out)
	require.Equal(t, "8px", d.Value)
}

func TestEvalGetFunctionResolvesBuiltin(t *testing.T) {
	out := mustEval(t, `a { n: call(get-function("nth"), 10px 20px, 2); }`)
	d := firstDecl(t, out)
	require.Equal(t, "20px", d.Value)
}

func TestEvalGetFunctionUnknownNameErrors(t *testing.T) {
	sheet, err := ast.Parse(`a { w: get-function("no-such-fn"); }`)
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "no-such-fn"))
}

func TestEvalSlashBetweenLiteralsEmitsLiterally(t *testing.T) {
	out := mustEval(t, "a { font: 12px/1.5 serif; }")
	d := firstDecl(t, out)
	require.Equal(t, "12px/1.5 serif", d.Value)
}

func TestEvalSlashDividesWhenOperandIsVariable(t *testing.T) {
	out := mustEval(t, "$w: 10px;\na { width: $w/2; }")
	d := firstDecl(t, out)
	require.Equal(t, "5px", d.Value)
}

func TestEvalIncludeSpreadsArgList(t *testing.T) {
	out := mustEval(t, `
@mixin box($w, $h) {
  width: $w;
  height: $h;
}
$dims: 3px, 4px;
a { @include box($dims...); }`)
	rs := out[0].(*eval.OutRuleSet)
	require.Equal(t, "3px", rs.Body[0].(*eval.OutDecl).Value)
	require.Equal(t, "4px", rs.Body[1].(*eval.OutDecl).Value)
}

func TestEvalFunctionCallSpreadsList(t *testing.T) {
	out := mustEval(t, `
@function sum3($a, $b, $c) {
  @return $a + $b + $c;
}
$nums: 1, 2, 3;
a { n: sum3($nums...); }`)
	d := firstDecl(t, out)
	require.Equal(t, "6", d.Value)
}

func TestEvalVariadicMixinForwardsKeywords(t *testing.T) {
	out := mustEval(t, `
@mixin outer($args...) {
  @include inner($args...);
}
@mixin inner($x: 0, $y: 0) {
  left: $x;
  top: $y;
}
a { @include outer($y: 2px, $x: 1px); }`)
	rs := out[0].(*eval.OutRuleSet)
	require.Equal(t, "1px", rs.Body[0].(*eval.OutDecl).Value)
	require.Equal(t, "2px", rs.Body[1].(*eval.OutDecl).Value)
}

func TestEvalContentOutsideMixinErrors(t *testing.T) {
	sheet, err := ast.Parse(`a { @content; }`)
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "@content"))
}

func TestEvalTopLevelDeclarationErrors(t *testing.T) {
	sheet, err := ast.Parse(`color: red;`)
	require.NoError(t, err)
	ev := eval.New(functions.Default())
	_, err = ev.EvalStylesheet(sheet, scope.New())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "outside a rule"))
}

func TestEvalFontFaceAllowsBareDeclarations(t *testing.T) {
	out := mustEval(t, "@font-face {\n  font-family: Body;\n  src: url(body.woff2);\n}")
	require.Len(t, out, 1)
	ar, ok := out[0].(*eval.OutAtRule)
	require.True(t, ok)
	require.Equal(t, "font-face", ar.Name)
	require.Len(t, ar.Body, 2)
}

func TestEvalQuotedStringKeepsQuotesInDeclaration(t *testing.T) {
	out := mustEval(t, `a { content: "hi"; }`)
	d := firstDecl(t, out)
	require.Equal(t, `"hi"`, d.Value)
}

func TestEvalLoopDeclaredVariableEscapes(t *testing.T) {
	out := mustEval(t, `
@for $i from 1 through 3 {
  $last: $i;
}
a { b: $last; }`)
	d := firstDecl(t, out)
	require.Equal(t, "3", d.Value)
}

func TestEvalWhileDeclaredVariableEscapes(t *testing.T) {
	out := mustEval(t, `
$i: 0;
@while $i < 2 {
  $seen: $i;
  $i: $i + 1;
}
a { b: $seen; }`)
	d := firstDecl(t, out)
	require.Equal(t, "1", d.Value)
}

func TestEvalEachSingleVariableBindsWholeElement(t *testing.T) {
	out := mustEval(t, `
@each $pair in (1 2), (3 4) {
  a { b: $pair; }
}`)
	require.Len(t, out, 2)
	require.Equal(t, "1 2", out[0].(*eval.OutRuleSet).Body[0].(*eval.OutDecl).Value)
	require.Equal(t, "3 4", out[1].(*eval.OutRuleSet).Body[0].(*eval.OutDecl).Value)
}
