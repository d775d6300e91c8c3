package functions

import (
	"fmt"

	"github.com/styc-lang/styc/value"
)

func registerMaps(r Registry) {
	r["map-get"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		m, err := mapArg(args, 0, "map-get")
		if err != nil {
			return value.Value{}, err
		}
		v, ok := value.MapGetValue(m, arg(args, 1))
		if !ok {
			return value.Null, nil
		}
		return v, nil
	}
	r["map-has-key"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		m, err := mapArg(args, 0, "map-has-key")
		if err != nil {
			return value.Value{}, err
		}
		_, ok := value.MapGetValue(m, arg(args, 1))
		return value.Bool(ok), nil
	}
	r["map-keys"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		m, err := mapArg(args, 0, "map-keys")
		if err != nil {
			return value.Value{}, err
		}
		return value.List(append([]value.Value{}, m.Items...), value.Comma, false), nil
	}
	r["map-values"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		m, err := mapArg(args, 0, "map-values")
		if err != nil {
			return value.Value{}, err
		}
		return value.List(append([]value.Value{}, m.MapVals...), value.Comma, false), nil
	}
	r["map-merge"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		a, err := mapArg(args, 0, "map-merge")
		if err != nil {
			return value.Value{}, err
		}
		b, err := mapArg(args, 1, "map-merge")
		if err != nil {
			return value.Value{}, err
		}
		out := value.Map(append([]value.Value{}, a.Items...), append([]value.Value{}, a.MapVals...))
		for i, k := range b.Items {
			replaced := false
			for j, ek := range out.Items {
				if value.Equal(ek, k) {
					out.MapVals[j] = b.MapVals[i]
					replaced = true
					break
				}
			}
			if !replaced {
				out.Items = append(out.Items, k)
				out.MapVals = append(out.MapVals, b.MapVals[i])
			}
		}
		return out, nil
	}
	r["map-remove"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		m, err := mapArg(args, 0, "map-remove")
		if err != nil {
			return value.Value{}, err
		}
		drop := map[int]bool{}
		for _, k := range args[1:] {
			for i, ek := range m.Items {
				if value.Equal(ek, k) {
					drop[i] = true
				}
			}
		}
		var keys, vals []value.Value
		for i, k := range m.Items {
			if drop[i] {
				continue
			}
			keys = append(keys, k)
			vals = append(vals, m.MapVals[i])
		}
		return value.Map(keys, vals), nil
	}
}

func mapArg(args []value.Value, i int, fn string) (value.Value, error) {
	v := arg(args, i)
	if v.Kind != value.KMap {
		return value.Value{}, fmt.Errorf("functions: %s() expects a map, got %s", fn, v.TypeName())
	}
	return v, nil
}
