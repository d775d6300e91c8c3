package functions

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/value"
)

func registerMath(r Registry) {
	r["ceil"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		d, err := dimArg(args, 0, "ceil")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(number.Ceil(d.Num), d.Unit), nil
	}
	r["floor"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		d, err := dimArg(args, 0, "floor")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(number.Floor(d.Num), d.Unit), nil
	}
	r["round"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		d, err := dimArg(args, 0, "round")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(number.Round(d.Num), d.Unit), nil
	}
	r["abs"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		d, err := dimArg(args, 0, "abs")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(number.Abs(d.Num), d.Unit), nil
	}
	r["min"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return extreme(args, -1) }
	r["max"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return extreme(args, 1) }
	r["percentage"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		d, err := dimArg(args, 0, "percentage")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(number.Mul(d.Num, number.FromInt64(100)), "%"), nil
	}
	r["comparable"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		a, err := dimArg(args, 0, "comparable")
		if err != nil {
			return value.Value{}, err
		}
		b, err := dimArg(args, 1, "comparable")
		if err != nil {
			return value.Value{}, err
		}
		_, _, _, err = dimPair(a, b)
		return value.Bool(err == nil), nil
	}
}

func dimArg(args []value.Value, i int, fn string) (value.Value, error) {
	v := arg(args, i)
	if v.Kind != value.KDimension {
		return value.Value{}, fmt.Errorf("functions: %s() expects a number, got %s", fn, v.TypeName())
	}
	return v, nil
}

func dimPair(a, b value.Value) (an, bn number.Number, u string, err error) {
	if a.Kind != value.KDimension || b.Kind != value.KDimension {
		return number.Zero, number.Zero, "", fmt.Errorf("functions: expected two numbers")
	}
	if a.Unit == "" {
		return a.Num, b.Num, b.Unit, nil
	}
	if b.Unit == "" {
		return a.Num, b.Num, a.Unit, nil
	}
	if a.Unit != b.Unit {
		return number.Zero, number.Zero, "", fmt.Errorf("functions: incompatible units %q and %q", a.Unit, b.Unit)
	}
	return a.Num, b.Num, a.Unit, nil
}

// extreme implements min()/max(): sign<0 picks the smallest, sign>0 the
// largest. When every argument is numeric the builtin compares them
// (converting compatible units); any non-numeric argument means the call
// is the CSS min()/max() function instead, reconstructed literally.
func extreme(args []value.Value, sign int) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, fmt.Errorf("functions: expects at least one argument")
	}
	// A single list argument is treated as the argument list itself.
	if len(args) == 1 && (args[0].Kind == value.KList || args[0].Kind == value.KArgList) {
		args = args[0].Items
	}
	for _, v := range args {
		if v.Kind != value.KDimension {
			name := "min"
			if sign > 0 {
				name = "max"
			}
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = value.CSSString(a, true)
			}
			return value.Str(name+"("+strings.Join(parts, ", ")+")", value.Unquoted), nil
		}
	}
	best := args[0]
	for _, v := range args[1:] {
		cmp, err := value.Compare(v, best)
		if err != nil {
			return value.Value{}, err
		}
		if (sign < 0 && cmp < 0) || (sign > 0 && cmp > 0) {
			best = v
		}
	}
	return best, nil
}
