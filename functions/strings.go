package functions

import (
	"fmt"
	"strings"

	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/value"
)

func registerStrings(r Registry) {
	r["quote"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, err := strArg(args, 0, "quote")
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s, value.Quoted), nil
	}
	r["unquote"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, err := strArg(args, 0, "unquote")
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s, value.Unquoted), nil
	}
	r["str-length"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, err := strArg(args, 0, "str-length")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(number.FromInt64(int64(len([]rune(s)))), ""), nil
	}
	r["to-upper-case"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return mapStr(args, "to-upper-case", strings.ToUpper)
	}
	r["to-lower-case"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return mapStr(args, "to-lower-case", strings.ToLower)
	}
	r["str-slice"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		s, err := strArg(args, 0, "str-slice")
		if err != nil {
			return value.Value{}, err
		}
		runes := []rune(s)
		start := strIndex(argOr(args, 1, kwargs, "start-at", value.Dim(number.One, "")), len(runes))
		end := len(runes)
		if v := argOr(args, 2, kwargs, "end-at", value.Value{}); v.Kind == value.KDimension {
			end = strIndex(v, len(runes))
		}
		if start < 1 {
			start = 1
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start > end {
			return value.Str("", value.Unquoted), nil
		}
		return value.Str(string(runes[start-1:end]), value.Unquoted), nil
	}
	r["str-index"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, err := strArg(args, 0, "str-index")
		if err != nil {
			return value.Value{}, err
		}
		sub, err := strArg(args, 1, "str-index")
		if err != nil {
			return value.Value{}, err
		}
		idx := strings.Index(s, sub)
		if idx < 0 {
			return value.Null, nil
		}
		return value.Dim(number.FromInt64(int64(len([]rune(s[:idx]))+1)), ""), nil
	}
	r["str-insert"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		s, err := strArg(args, 0, "str-insert")
		if err != nil {
			return value.Value{}, err
		}
		ins, err := strArg(args, 1, "str-insert")
		if err != nil {
			return value.Value{}, err
		}
		at := strIndex(arg(args, 2), len([]rune(s))+1)
		runes := []rune(s)
		if at < 1 {
			at = 1
		}
		if at > len(runes)+1 {
			at = len(runes) + 1
		}
		out := string(runes[:at-1]) + ins + string(runes[at-1:])
		return value.Str(out, value.Unquoted), nil
	}
	r["unique-id"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.Str(fmt.Sprintf("u%p", args), value.Unquoted), nil
	}
}

func strArg(args []value.Value, i int, fn string) (string, error) {
	v := arg(args, i)
	if v.Kind != value.KString {
		return "", fmt.Errorf("functions: %s() expects a string, got %s", fn, v.TypeName())
	}
	return v.Str, nil
}

func mapStr(args []value.Value, fn string, f func(string) string) (value.Value, error) {
	v := arg(args, 0)
	if v.Kind != value.KString {
		return value.Value{}, fmt.Errorf("functions: %s() expects a string, got %s", fn, v.TypeName())
	}
	return value.Str(f(v.Str), v.Quoting), nil
}

// strIndex resolves a 1-based (possibly negative, counting from the end)
// string index against a rune count. The result is not clamped; callers
// clamp or reject indexes outside 1..length.
func strIndex(v value.Value, length int) int {
	if v.Kind != value.KDimension {
		return 1
	}
	n := int(v.Num.Float64())
	if n < 0 {
		n = length + n + 1
	}
	return n
}
