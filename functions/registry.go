// Package functions is the builtin function registry the evaluator
// consults when a call isn't resolved against a user-defined function in
// scope. It mirrors html/template.FuncMap's registration idiom: a flat
// name-to-callable map, populated once per compile and safe to extend
// with `register`-style additions before a compile begins.
package functions

import "github.com/styc-lang/styc/value"

// Func is the calling convention every builtin implements: already
// type-parsed positional arguments, a keyword-argument map, and a single
// Value result or an error.
type Func func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)

// Registry is the flat name -> builtin table consulted after user-scope
// functions. Names are looked up already hyphen/underscore-normalized by
// the caller.
type Registry map[string]Func

// Default returns the standard builtin library: math, string, list, map,
// meta (type introspection), color channel accessors, and color
// manipulation (change/adjust/scale/mix and friends).
func Default() Registry {
	r := Registry{}
	registerMath(r)
	registerStrings(r)
	registerLists(r)
	registerMaps(r)
	registerMeta(r)
	registerColors(r)
	return r
}

// arg returns args[i] or value.Null if the call is short.
func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Null
}

func argOr(args []value.Value, i int, kwargs map[string]value.Value, name string, fallback value.Value) value.Value {
	if i < len(args) {
		return args[i]
	}
	if v, ok := kwargs[name]; ok {
		return v
	}
	return fallback
}
