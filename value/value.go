// Package value implements the tagged-union value model shared by the
// expression evaluator, the scope, and the statement evaluator: dimensions,
// colors, strings, lists, maps, and the lazy operator nodes the expression
// parser produces before the evaluator resolves them.
package value

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/color"
	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/unit"
)

// Kind discriminates the Value union. The set is closed: callers switch
// exhaustively rather than relying on further polymorphism.
type Kind int

const (
	KDimension Kind = iota
	KColor
	KString
	KList
	KMap
	KArgList
	KBool
	KNull
	KImportant
	KParen
	KUnaryOp
	KBinaryOp
	KFunctionRef
)

// Quoting distinguishes quoted string literals from bare/unquoted ones;
// unquoted strings participate in identifier-like comparisons.
type Quoting int

const (
	Unquoted Quoting = iota
	Quoted
)

// Separator is the list/map join token.
type Separator int

const (
	Space Separator = iota
	Comma
)

// Value is the tagged union. Only the fields relevant to Kind are
// meaningful; this mirrors a closed sum type in a language without one.
type Value struct {
	Kind Kind

	// KDimension
	Num  number.Number
	Unit string

	// KColor
	Col color.Color

	// KString
	Str     string
	Quoting Quoting

	// KList / KArgList / KMap (map uses Items as keys, MapVals as values)
	Items     []Value
	MapVals   []Value
	Sep       Separator
	Bracketed bool

	// KArgList keyword arguments, keyed by parameter name.
	Keywords map[string]Value

	// KBool
	Bool bool

	// KUnaryOp / KBinaryOp — lazy nodes the evaluator resolves at use.
	Op    string
	Left  *Value
	Right *Value

	// KFunctionRef
	FnName string
	FnRef  any // opaque *eval.Function or builtin descriptor
}

// Null is the singleton null value.
var Null = Value{Kind: KNull}

// True and False are the boolean singletons.
var True = Value{Kind: KBool, Bool: true}
var False = Value{Kind: KBool, Bool: false}

// Important is the bare `!important` token value.
var Important = Value{Kind: KImportant}

// Dim constructs a dimensioned number.
func Dim(n number.Number, u string) Value { return Value{Kind: KDimension, Num: n, Unit: u} }

// Str constructs a string value.
func Str(s string, q Quoting) Value { return Value{Kind: KString, Str: s, Quoting: q} }

// ColorVal constructs a color value.
func ColorVal(c color.Color) Value { return Value{Kind: KColor, Col: c} }

// List constructs an ordered list.
func List(items []Value, sep Separator, bracketed bool) Value {
	return Value{Kind: KList, Items: items, Sep: sep, Bracketed: bracketed}
}

// Map constructs an ordered map; keys and vals must be parallel slices of
// equal length, caller responsible for uniqueness (enforced at parse time
// per the duplicate-key invariant).
func Map(keys, vals []Value) Value {
	return Value{Kind: KMap, Items: keys, MapVals: vals}
}

// Bool constructs a boolean value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Truthy implements the truthiness rule: only false and null are false.
func (v Value) Truthy() bool {
	if v.Kind == KNull {
		return false
	}
	if v.Kind == KBool {
		return v.Bool
	}
	return true
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KNull }

// normalizeIdent lowercases for identifier-like comparisons (unquoted
// strings, keywords, unit-less dimension units).
func normalizeIdent(s string) string { return strings.ToLower(s) }

// Equal implements structural, unit-aware equality.
func Equal(a, b Value) bool {
	if a.Kind == KDimension && b.Kind == KDimension {
		if a.Unit == "%" || b.Unit == "%" {
			if a.Unit != b.Unit {
				return false
			}
			return number.Equal(a.Num, b.Num)
		}
		if !unit.Compatible(a.Unit, b.Unit) {
			return false
		}
		bn, err := unit.Convert(b.Num, b.Unit, a.Unit)
		if err != nil {
			return false
		}
		return number.Equal(a.Num, bn)
	}
	if a.Kind == KColor && b.Kind == KColor {
		return number.Equal(a.Col.R, b.Col.R) && number.Equal(a.Col.G, b.Col.G) &&
			number.Equal(a.Col.B, b.Col.B) && number.Equal(a.Col.A, b.Col.A)
	}
	if a.Kind == KString && b.Kind == KString {
		if a.Quoting == Quoted && b.Quoting == Quoted {
			return a.Str == b.Str
		}
		if a.Quoting == Unquoted && b.Quoting == Unquoted {
			return normalizeIdent(a.Str) == normalizeIdent(b.Str)
		}
		return a.Str == b.Str
	}
	if a.Kind == KBool && b.Kind == KBool {
		return a.Bool == b.Bool
	}
	if a.Kind == KNull && b.Kind == KNull {
		return true
	}
	if (a.Kind == KList || a.Kind == KArgList) && (b.Kind == KList || b.Kind == KArgList) {
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	}
	if a.Kind == KMap && b.Kind == KMap {
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) || !Equal(a.MapVals[i], b.MapVals[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MapGet looks up a key by value-equality, returning the value and whether
// it was found.
func MapGetValue(m Value, key Value) (Value, bool) {
	for i, k := range m.Items {
		if Equal(k, key) {
			return m.MapVals[i], true
		}
	}
	return Null, false
}

// MapInsert appends key/val, returning an error if key already exists
// (duplicate-key invariant, enforced at construction time).
func MapInsert(m Value, key, val Value) (Value, error) {
	if _, ok := MapGetValue(m, key); ok {
		return m, fmt.Errorf("value: duplicate map key %s", CSSString(key, true))
	}
	m.Items = append(m.Items, key)
	m.MapVals = append(m.MapVals, val)
	return m, nil
}

// CSSString stringifies a value. exprContext controls whether quoted
// strings keep their quotes (true, for use inside expressions/function
// arguments) or are emitted bare (false, property-value context).
func CSSString(v Value, exprContext bool) string {
	switch v.Kind {
	case KDimension:
		return v.Num.String() + v.Unit
	case KColor:
		return v.Col.String()
	case KString:
		if v.Quoting == Quoted && exprContext {
			return `"` + strings.ReplaceAll(v.Str, `"`, `\"`) + `"`
		}
		return v.Str
	case KBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KNull:
		return ""
	case KImportant:
		return "!important"
	case KList, KArgList:
		parts := make([]string, 0, len(v.Items))
		for _, it := range v.Items {
			if it.Kind == KNull {
				continue
			}
			parts = append(parts, CSSString(it, true))
		}
		sep := " "
		if v.Sep == Comma {
			sep = ", "
		}
		out := strings.Join(parts, sep)
		if v.Bracketed {
			return "[" + out + "]"
		}
		return out
	case KMap:
		parts := make([]string, 0, len(v.Items))
		for i, k := range v.Items {
			parts = append(parts, CSSString(k, true)+": "+CSSString(v.MapVals[i], true))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KParen:
		return "(" + CSSString(*v.Left, exprContext) + ")"
	case KUnaryOp:
		return v.Op + CSSString(*v.Left, exprContext)
	case KBinaryOp:
		if v.Op == "/" {
			return CSSString(*v.Left, exprContext) + "/" + CSSString(*v.Right, exprContext)
		}
		return CSSString(*v.Left, exprContext) + " " + v.Op + " " + CSSString(*v.Right, exprContext)
	case KFunctionRef:
		return "get-function(\"" + v.FnName + "\")"
	default:
		return ""
	}
}

func (v Value) String() string { return CSSString(v, false) }

// TypeName returns the identifier used by type-checking builtins
// (is-number, type-of, etc.).
func (v Value) TypeName() string {
	switch v.Kind {
	case KDimension:
		return "number"
	case KColor:
		return "color"
	case KString:
		return "string"
	case KList:
		return "list"
	case KArgList:
		return "arglist"
	case KMap:
		return "map"
	case KBool:
		return "bool"
	case KNull:
		return "null"
	case KFunctionRef:
		return "function"
	default:
		return "value"
	}
}
