package functions

import (
	"fmt"

	"github.com/styc-lang/styc/value"
)

func registerMeta(r Registry) {
	r["type-of"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.Str(arg(args, 0).TypeName(), value.Unquoted), nil
	}
	r["unit"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		v, err := dimArg(args, 0, "unit")
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(v.Unit, value.Quoted), nil
	}
	r["unitless"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		v, err := dimArg(args, 0, "unitless")
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(v.Unit == ""), nil
	}
	// Evaluator-intercepted; see metaBool.
	r["variable-exists"] = metaBool()
	r["global-variable-exists"] = metaBool()
	r["function-exists"] = metaBool()
	r["mixin-exists"] = metaBool()
	r["get-function"] = metaBool()
	r["call"] = metaBool()
	r["if"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		cond := argOr(args, 0, kwargs, "condition", value.Value{})
		if cond.Truthy() {
			return argOr(args, 1, kwargs, "if-true", value.Null), nil
		}
		return argOr(args, 2, kwargs, "if-false", value.Null), nil
	}
	r["inspect"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.Str(value.CSSString(arg(args, 0), true), value.Unquoted), nil
	}
	r["not"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.Bool(!arg(args, 0).Truthy()), nil
	}
}

// metaBool backstops the builtins that need the calling scope — the
// `*-exists` predicates, get-function, and call. A plain registry entry
// has no visibility into the scope chain, so the evaluator intercepts
// these names before the registry is ever consulted; the stubs only
// exist so the names register (function-exists reports them) and error
// if somehow reached directly.
func metaBool() Func {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		return value.Value{}, fmt.Errorf("functions: scope introspection requires evaluator context")
	}
}
