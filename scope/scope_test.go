package scope

import (
	"testing"

	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/value"
)

func dim(n int64) value.Value { return value.Dim(number.FromInt64(n), "") }

func TestVarResolutionWalksParentChain(t *testing.T) {
	root := New()
	root.SetVar("x", dim(1))
	child := root.Child()

	got, ok := child.GetVar("x")
	if !ok || !value.Equal(got, dim(1)) {
		t.Fatalf("expected inherited x=1, got %v ok=%v", got, ok)
	}
}

func TestSetVarUpdatesExistingBindingInPlace(t *testing.T) {
	root := New()
	root.SetVar("x", dim(1))
	child := root.Child()
	child.SetVar("x", dim(2))

	got, _ := root.GetVar("x")
	if !value.Equal(got, dim(2)) {
		t.Fatalf("expected root x updated to 2, got %v", got)
	}
}

func TestSetVarLocalShadowsWithoutMutatingParent(t *testing.T) {
	root := New()
	root.SetVar("x", dim(1))
	child := root.Child()
	child.SetVarLocal("x", dim(99))

	got, _ := child.GetVar("x")
	if !value.Equal(got, dim(99)) {
		t.Fatalf("expected shadowed x=99 in child, got %v", got)
	}
	rootVal, _ := root.GetVar("x")
	if !value.Equal(rootVal, dim(1)) {
		t.Fatalf("expected root x to remain 1, got %v", rootVal)
	}
}

func TestSetVarDefaultOnlyAssignsWhenUnset(t *testing.T) {
	root := New()
	root.SetVar("x", dim(1))
	root.SetVarDefault("x", dim(2))
	got, _ := root.GetVar("x")
	if !value.Equal(got, dim(1)) {
		t.Fatalf("!default must not override existing value, got %v", got)
	}

	root.SetVarDefault("y", dim(5))
	got, _ = root.GetVar("y")
	if !value.Equal(got, dim(5)) {
		t.Fatalf("!default must assign when unset, got %v", got)
	}
}

func TestSetVarGlobalReachesRootFromDeepNesting(t *testing.T) {
	root := New()
	a := root.Child()
	b := a.Child()
	b.SetVarGlobal("g", dim(42))

	got, ok := root.GetVar("g")
	if !ok || !value.Equal(got, dim(42)) {
		t.Fatalf("expected global assignment visible at root, got %v ok=%v", got, ok)
	}
}

func TestUnderscoreHyphenNamesAreEquivalent(t *testing.T) {
	root := New()
	root.SetVar("foo_bar", dim(7))
	got, ok := root.GetVar("foo-bar")
	if !ok || !value.Equal(got, dim(7)) {
		t.Fatalf("expected foo_bar and foo-bar to alias, got %v ok=%v", got, ok)
	}
}

func TestForkIsIndependentUntilMerged(t *testing.T) {
	root := New()
	root.SetVar("x", dim(1))
	forked := root.Fork()
	forked.SetVarLocal("x", dim(2))

	got, _ := root.GetVar("x")
	if !value.Equal(got, dim(1)) {
		t.Fatalf("fork mutation leaked into origin before merge: %v", got)
	}

	root.Merge(forked)
	got, _ = root.GetVar("x")
	if !value.Equal(got, dim(2)) {
		t.Fatalf("expected merge to commit forked value, got %v", got)
	}
}

func TestMixinAndFunctionNamespacesAreIndependentOfVars(t *testing.T) {
	root := New()
	root.SetVar("thing", dim(1))
	root.SetMixin("thing", "mixin-def")
	root.SetFunction("thing", "fn-def")

	if _, ok := root.GetMixin("thing"); !ok {
		t.Fatal("expected mixin lookup to succeed")
	}
	if _, ok := root.GetFunction("thing"); !ok {
		t.Fatal("expected function lookup to succeed")
	}
	v, _ := root.GetVar("thing")
	if !value.Equal(v, dim(1)) {
		t.Fatalf("var namespace corrupted: %v", v)
	}
}
