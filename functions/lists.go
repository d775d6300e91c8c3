package functions

import (
	"fmt"

	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/value"
)

func registerLists(r Registry) {
	r["length"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		v := arg(args, 0)
		switch v.Kind {
		case value.KList, value.KArgList:
			return value.Dim(number.FromInt64(int64(len(v.Items))), ""), nil
		case value.KMap:
			return value.Dim(number.FromInt64(int64(len(v.Items))), ""), nil
		case value.KNull:
			return value.Dim(number.Zero, ""), nil
		default:
			return value.Dim(number.One, ""), nil
		}
	}
	r["nth"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		items, err := listItems(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		i := strIndex(arg(args, 1), len(items))
		if i < 1 || i > len(items) {
			return value.Value{}, fmt.Errorf("functions: nth() index %d out of range for a list of length %d", i, len(items))
		}
		return items[i-1], nil
	}
	r["set-nth"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		list := arg(args, 0)
		items, err := listItems(list)
		if err != nil {
			return value.Value{}, err
		}
		i := strIndex(arg(args, 1), len(items))
		if i < 1 || i > len(items) {
			return value.Value{}, fmt.Errorf("functions: set-nth() index %d out of range", i)
		}
		out := append([]value.Value{}, items...)
		out[i-1] = arg(args, 2)
		return listLike(list, out), nil
	}
	r["join"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		a, err := listItems(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		b, err := listItems(arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}
		sep := value.Space
		if len(a) > 1 {
			sep = listSep(arg(args, 0))
		} else if len(b) > 1 {
			sep = listSep(arg(args, 1))
		}
		if sv := argOr(args, 2, kwargs, "separator", value.Value{}); sv.Kind == value.KString {
			switch sv.Str {
			case "comma":
				sep = value.Comma
			case "space":
				sep = value.Space
			}
		}
		items := append(append([]value.Value{}, a...), b...)
		return value.List(items, sep, false), nil
	}
	r["append"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		list := arg(args, 0)
		items, err := listItems(list)
		if err != nil {
			return value.Value{}, err
		}
		sep := listSep(list)
		if sv := argOr(args, 2, kwargs, "separator", value.Value{}); sv.Kind == value.KString {
			switch sv.Str {
			case "comma":
				sep = value.Comma
			case "space":
				sep = value.Space
			}
		}
		items = append(append([]value.Value{}, items...), arg(args, 1))
		return value.List(items, sep, false), nil
	}
	r["zip"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		lists := make([][]value.Value, len(args))
		shortest := -1
		for i, a := range args {
			items, err := listItems(a)
			if err != nil {
				return value.Value{}, err
			}
			lists[i] = items
			if shortest < 0 || len(items) < shortest {
				shortest = len(items)
			}
		}
		if shortest < 0 {
			shortest = 0
		}
		out := make([]value.Value, shortest)
		for i := 0; i < shortest; i++ {
			row := make([]value.Value, len(lists))
			for j := range lists {
				row[j] = lists[j][i]
			}
			out[i] = value.List(row, value.Space, false)
		}
		return value.List(out, value.Comma, false), nil
	}
	r["index"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		items, err := listItems(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		needle := arg(args, 1)
		for i, it := range items {
			if value.Equal(it, needle) {
				return value.Dim(number.FromInt64(int64(i+1)), ""), nil
			}
		}
		return value.Null, nil
	}
	r["list-separator"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if listSep(arg(args, 0)) == value.Comma {
			return value.Str("comma", value.Unquoted), nil
		}
		return value.Str("space", value.Unquoted), nil
	}
	r["is-bracketed"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.Bool(arg(args, 0).Bracketed), nil
	}
}

// listItems normalizes a value to its item sequence: list/arglist kinds
// pass through their Items, a map's keys stand in for its items (as
// two-element key/value sublists), and any other value is a single-item
// list — a lone value acts as a list of one.
func listItems(v value.Value) ([]value.Value, error) {
	switch v.Kind {
	case value.KList, value.KArgList:
		return v.Items, nil
	case value.KMap:
		out := make([]value.Value, len(v.Items))
		for i, k := range v.Items {
			out[i] = value.List([]value.Value{k, v.MapVals[i]}, value.Space, false)
		}
		return out, nil
	case value.KNull:
		return nil, nil
	default:
		return []value.Value{v}, nil
	}
}

func listSep(v value.Value) value.Separator {
	if v.Kind == value.KList || v.Kind == value.KArgList {
		return v.Sep
	}
	return value.Space
}

func listLike(orig value.Value, items []value.Value) value.Value {
	return value.List(items, listSep(orig), orig.Bracketed)
}
