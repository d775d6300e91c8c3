package value

import (
	"fmt"

	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/unit"
)

// dimensionPair converts b's unit into a's unit space for add/sub/compare;
// returns the converted number plus a's unit as the result unit, per "Add/sub
// require compatible units; result unit is the left operand's unit after
// converting right."
func dimensionPair(a, b Value) (an, bn number.Number, resultUnit string, err error) {
	if a.Unit == "" {
		return a.Num, b.Num, b.Unit, nil
	}
	if b.Unit == "" {
		return a.Num, b.Num, a.Unit, nil
	}
	if !unit.Compatible(a.Unit, b.Unit) {
		return number.Zero, number.Zero, "", fmt.Errorf("value: incompatible units %q and %q", a.Unit, b.Unit)
	}
	converted, err := unit.Convert(b.Num, b.Unit, a.Unit)
	if err != nil {
		return number.Zero, number.Zero, "", err
	}
	return a.Num, converted, a.Unit, nil
}

// SlashSep builds the lazy `a/b` node a slash between two adjacent
// numeric literals produces. It survives to serialization as a literal
// slash (`font: 10px/1.5`) unless the surrounding expression forces the
// division — parentheses, another operator, or a function call.
func SlashSep(a, b Value) Value {
	return Value{Kind: KBinaryOp, Op: "/", Left: &a, Right: &b}
}

// Collapse forces a lazy slash node into an actual division. Every
// arithmetic entry point collapses its operands first, so `10px/2` next
// to another operator or inside parentheses divides while a bare
// declaration value keeps the slash.
func Collapse(v Value) (Value, error) {
	if v.Kind != KBinaryOp || v.Op != "/" {
		return v, nil
	}
	l, err := Collapse(*v.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := Collapse(*v.Right)
	if err != nil {
		return Value{}, err
	}
	return Div(l, r)
}

func collapsePair(a, b Value) (Value, Value, error) {
	a, err := Collapse(a)
	if err != nil {
		return Value{}, Value{}, err
	}
	b, err = Collapse(b)
	if err != nil {
		return Value{}, Value{}, err
	}
	return a, b, nil
}

// Add implements `+`: string concatenation when either side is a string,
// otherwise numeric addition with unit algebra, otherwise color + color
// per-channel (an extension both Sass and LESS support).
func Add(a, b Value) (Value, error) {
	a, b, err := collapsePair(a, b)
	if err != nil {
		return Value{}, err
	}
	if a.Kind == KString || b.Kind == KString {
		return concatString(a, b), nil
	}
	if a.Kind == KColor && b.Kind == KColor {
		return colorChannelOp(a, b, number.Add), nil
	}
	if a.Kind == KDimension && b.Kind == KDimension {
		an, bn, u, err := dimensionPair(a, b)
		if err != nil {
			return Value{}, err
		}
		return Dim(number.Add(an, bn), u), nil
	}
	return Value{}, fmt.Errorf("value: cannot add %s and %s", a.TypeName(), b.TypeName())
}

// Sub implements `-`: numeric except against strings, where it yields an
// unquoted "lhs-rhs".
func Sub(a, b Value) (Value, error) {
	a, b, err := collapsePair(a, b)
	if err != nil {
		return Value{}, err
	}
	if a.Kind == KDimension && b.Kind == KDimension {
		an, bn, u, err := dimensionPair(a, b)
		if err != nil {
			return Value{}, err
		}
		return Dim(number.Sub(an, bn), u), nil
	}
	if a.Kind == KColor && b.Kind == KColor {
		return colorChannelOp(a, b, number.Sub), nil
	}
	return Str(CSSString(a, true)+"-"+CSSString(b, true), Unquoted), nil
}

func concatString(a, b Value) Value {
	q := Unquoted
	if a.Kind == KString && a.Quoting == Quoted {
		q = Quoted
	} else if b.Kind == KString && b.Quoting == Quoted {
		q = Quoted
	}
	return Str(CSSString(a, true)+CSSString(b, true), q)
}

func colorChannelOp(a, b Value, op func(x, y number.Number) number.Number) Value {
	c := a.Col
	c.R = number.Clamp(op(a.Col.R, b.Col.R), number.Zero, number.FromInt64(255))
	c.G = number.Clamp(op(a.Col.G, b.Col.G), number.Zero, number.FromInt64(255))
	c.B = number.Clamp(op(a.Col.B, b.Col.B), number.Zero, number.FromInt64(255))
	c.Original = ""
	return ColorVal(c)
}

// Mul implements `*`.
func Mul(a, b Value) (Value, error) {
	a, b, err := collapsePair(a, b)
	if err != nil {
		return Value{}, err
	}
	if a.Kind == KDimension && b.Kind == KDimension {
		return Dim(number.Mul(a.Num, b.Num), unit.MulUnit(a.Unit, b.Unit)), nil
	}
	return Value{}, fmt.Errorf("value: cannot multiply %s and %s", a.TypeName(), b.TypeName())
}

// Div implements `/`. Division by zero is an error; unit division may
// eliminate units.
func Div(a, b Value) (Value, error) {
	a, b, err := collapsePair(a, b)
	if err != nil {
		return Value{}, err
	}
	if a.Kind != KDimension || b.Kind != KDimension {
		return Value{}, fmt.Errorf("value: cannot divide %s by %s", a.TypeName(), b.TypeName())
	}
	if b.Num.Sign() == 0 {
		return Value{}, fmt.Errorf("value: division by zero")
	}
	return Dim(number.Div(a.Num, b.Num), unit.DivUnit(a.Unit, b.Unit)), nil
}

// Mod implements `%`.
func Mod(a, b Value) (Value, error) {
	a, b, err := collapsePair(a, b)
	if err != nil {
		return Value{}, err
	}
	if a.Kind != KDimension || b.Kind != KDimension {
		return Value{}, fmt.Errorf("value: cannot modulo %s and %s", a.TypeName(), b.TypeName())
	}
	if b.Num.Sign() == 0 {
		return Value{}, fmt.Errorf("value: modulo by zero")
	}
	an, bn, u, err := dimensionPair(a, b)
	if err != nil {
		return Value{}, err
	}
	return Dim(number.Rem(an, bn), u), nil
}

// Compare implements the ordering operators; ordering is only defined on
// compatible dimensions (or identical strings, lexically).
func Compare(a, b Value) (int, error) {
	a, b, err := collapsePair(a, b)
	if err != nil {
		return 0, err
	}
	if a.Kind == KDimension && b.Kind == KDimension {
		an, bn, _, err := dimensionPair(a, b)
		if err != nil {
			return 0, err
		}
		return number.Cmp(an, bn), nil
	}
	if a.Kind == KString && b.Kind == KString {
		switch {
		case a.Str < b.Str:
			return -1, nil
		case a.Str > b.Str:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("value: cannot compare %s and %s", a.TypeName(), b.TypeName())
}

// And implements short-circuit logical and.
func And(a Value, rhs func() (Value, error)) (Value, error) {
	if !a.Truthy() {
		return a, nil
	}
	return rhs()
}

// Or implements short-circuit logical or.
func Or(a Value, rhs func() (Value, error)) (Value, error) {
	if a.Truthy() {
		return a, nil
	}
	return rhs()
}

// Not implements logical negation.
func Not(a Value) Value { return Bool(!a.Truthy()) }
