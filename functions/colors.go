package functions

import (
	"fmt"

	"github.com/styc-lang/styc/color"
	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/value"
)

func registerColors(r Registry) {
	r["rgb"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return rgbaCall(args, kwargs, false)
	}
	r["rgba"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return rgbaCall(args, kwargs, true)
	}
	r["hsl"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return hslaCall(args, kwargs, false)
	}
	r["hsla"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return hslaCall(args, kwargs, true)
	}

	r["red"] = channelGetter(func(c color.Color) number.Number { return c.R })
	r["green"] = channelGetter(func(c color.Color) number.Number { return c.G })
	r["blue"] = channelGetter(func(c color.Color) number.Number { return c.B })
	r["alpha"] = channelGetter(func(c color.Color) number.Number { return c.A })
	r["opacity"] = channelGetter(func(c color.Color) number.Number { return c.A })
	r["hue"] = hslGetter("deg", func(h, s, l number.Number) number.Number { return h })
	r["saturation"] = hslGetter("%", func(h, s, l number.Number) number.Number { return s })
	r["lightness"] = hslGetter("%", func(h, s, l number.Number) number.Number { return l })

	r["mix"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		c1, err := colorArg(args, 0, "mix")
		if err != nil {
			return value.Value{}, err
		}
		c2, err := colorArg(args, 1, "mix")
		if err != nil {
			return value.Value{}, err
		}
		weight := number.FromInt64(50)
		if w := argOr(args, 2, kwargs, "weight", value.Null); w.Kind == value.KDimension {
			weight = w.Num
		}
		return value.ColorVal(color.Mix(c1, c2, number.Div(weight, number.FromInt64(100)))), nil
	}

	r["grayscale"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "grayscale")
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(color.Greyscale(c)), nil
	}
	r["greyscale"] = r["grayscale"]

	r["ie-hex-str"] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "ie-hex-str")
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(c.IEHexStr(), value.Unquoted), nil
	}

	r["change-color"] = channelSetOp(color.Change)
	r["adjust-color"] = channelSetOp(color.Adjust)
	r["scale-color"] = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "scale-color")
		if err != nil {
			return value.Value{}, err
		}
		cs, err := buildChannelSet(kwargs, rawNum)
		if err != nil {
			return value.Value{}, err
		}
		out, err := color.Scale(c, cs)
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(out), nil
	}

	r["lighten"] = adjustLightness(1)
	r["darken"] = adjustLightness(-1)
	r["saturate"] = adjustSaturation(1)
	r["desaturate"] = adjustSaturation(-1)
	r["fade-in"] = adjustAlpha(1)
	r["opacify"] = adjustAlpha(1)
	r["fade-out"] = adjustAlpha(-1)
	r["transparentize"] = adjustAlpha(-1)
}

func colorArg(args []value.Value, i int, fn string) (color.Color, error) {
	v := arg(args, i)
	if v.Kind != value.KColor {
		return color.Color{}, fmt.Errorf("functions: %s() expects a color, got %s", fn, v.TypeName())
	}
	return v.Col, nil
}

func channelNum(v value.Value) (number.Number, error) {
	if v.Kind != value.KDimension {
		return number.Zero, fmt.Errorf("functions: expected a number channel, got %s", v.TypeName())
	}
	if v.Unit == "%" {
		return number.Div(v.Num, number.FromInt64(100)), nil
	}
	return v.Num, nil
}

func rgbaCall(args []value.Value, kwargs map[string]value.Value, withAlpha bool) (value.Value, error) {
	if len(args) == 1 && args[0].Kind == value.KColor && withAlpha {
		c := args[0].Col
		a := number.One
		if av := argOr(args, 1, kwargs, "alpha", value.Value{}); av.Kind == value.KDimension {
			n, err := channelNum(av)
			if err != nil {
				return value.Value{}, err
			}
			a = n
		}
		c.A = a
		c.Original = ""
		return value.ColorVal(c), nil
	}
	r := argOr(args, 0, kwargs, "red", value.Value{})
	g := argOr(args, 1, kwargs, "green", value.Value{})
	b := argOr(args, 2, kwargs, "blue", value.Value{})
	a := value.Dim(number.One, "")
	if withAlpha {
		a = argOr(args, 3, kwargs, "alpha", value.Dim(number.One, ""))
	}
	rn, err := dimArg0(r, "rgb", "red")
	if err != nil {
		return value.Value{}, err
	}
	gn, err := dimArg0(g, "rgb", "green")
	if err != nil {
		return value.Value{}, err
	}
	bn, err := dimArg0(b, "rgb", "blue")
	if err != nil {
		return value.Value{}, err
	}
	an, err := channelNum(a)
	if err != nil {
		return value.Value{}, err
	}
	return value.ColorVal(color.NewRGBA(rn.Num, gn.Num, bn.Num, an)), nil
}

func dimArg0(v value.Value, fn, field string) (value.Value, error) {
	if v.Kind != value.KDimension {
		return value.Value{}, fmt.Errorf("functions: %s() expects a number for %s, got %s", fn, field, v.TypeName())
	}
	return v, nil
}

func hslaCall(args []value.Value, kwargs map[string]value.Value, withAlpha bool) (value.Value, error) {
	h := argOr(args, 0, kwargs, "hue", value.Value{})
	s := argOr(args, 1, kwargs, "saturation", value.Value{})
	l := argOr(args, 2, kwargs, "lightness", value.Value{})
	a := value.Dim(number.One, "")
	if withAlpha {
		a = argOr(args, 3, kwargs, "alpha", value.Dim(number.One, ""))
	}
	if h.Kind != value.KDimension || s.Kind != value.KDimension || l.Kind != value.KDimension {
		return value.Value{}, fmt.Errorf("functions: hsl() expects three numbers")
	}
	sn, err := channelNum(s)
	if err != nil {
		return value.Value{}, err
	}
	ln, err := channelNum(l)
	if err != nil {
		return value.Value{}, err
	}
	an, err := channelNum(a)
	if err != nil {
		return value.Value{}, err
	}
	return value.ColorVal(color.FromHSLA(h.Num, sn, ln, an)), nil
}

func channelGetter(get func(color.Color) number.Number) Func {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "channel")
		if err != nil {
			return value.Value{}, err
		}
		return value.Dim(get(c), ""), nil
	}
}

// hslGetter extracts one HSL channel. Saturation and lightness are stored
// as 0-1 fractions internally and are reported as percentages; hue is
// reported in degrees as-is.
func hslGetter(unit string, get func(h, s, l number.Number) number.Number) Func {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "channel")
		if err != nil {
			return value.Value{}, err
		}
		h, s, l, _ := c.ToHSLA()
		v := get(h, s, l)
		if unit == "%" {
			v = number.Mul(v, number.FromInt64(100))
		}
		return value.Dim(v, unit), nil
	}
}

// channelSetOp wraps change-color/adjust-color: H is degrees, S/L/A are
// fractions (percentages divided by 100), R/G/B pass through untouched.
func channelSetOp(op func(color.Color, color.ChannelSet) (color.Color, error)) Func {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "color")
		if err != nil {
			return value.Value{}, err
		}
		cs, err := buildChannelSet(kwargs, channelNum)
		if err != nil {
			return value.Value{}, err
		}
		out, err := op(c, cs)
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(out), nil
	}
}

func buildChannelSet(kwargs map[string]value.Value, convert func(value.Value) (number.Number, error)) (color.ChannelSet, error) {
	var cs color.ChannelSet
	set := func(name string, dst **number.Number) error {
		v, ok := kwargs[name]
		if !ok {
			return nil
		}
		n, err := convert(v)
		if err != nil {
			return err
		}
		*dst = &n
		return nil
	}
	for _, f := range []struct {
		name string
		dst  **number.Number
	}{
		{"red", &cs.R}, {"green", &cs.G}, {"blue", &cs.B},
		{"hue", &cs.H}, {"saturation", &cs.S}, {"lightness", &cs.L},
		{"alpha", &cs.A},
	} {
		if err := set(f.name, f.dst); err != nil {
			return cs, err
		}
	}
	return cs, nil
}

func rawNum(v value.Value) (number.Number, error) {
	if v.Kind != value.KDimension {
		return number.Zero, fmt.Errorf("functions: expected a number, got %s", v.TypeName())
	}
	return v.Num, nil
}

func adjustLightness(sign int64) Func {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "lighten/darken")
		if err != nil {
			return value.Value{}, err
		}
		amt := argOr(args, 1, kwargs, "amount", value.Value{})
		n, err := channelNum(amt)
		if err != nil {
			return value.Value{}, err
		}
		delta := number.Mul(n, number.FromInt64(sign))
		out, err := color.Adjust(c, color.ChannelSet{L: &delta})
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(out), nil
	}
}

func adjustSaturation(sign int64) Func {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "saturate/desaturate")
		if err != nil {
			return value.Value{}, err
		}
		amt := argOr(args, 1, kwargs, "amount", value.Value{})
		n, err := channelNum(amt)
		if err != nil {
			return value.Value{}, err
		}
		delta := number.Mul(n, number.FromInt64(sign))
		out, err := color.Adjust(c, color.ChannelSet{S: &delta})
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(out), nil
	}
}

func adjustAlpha(sign int64) Func {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		c, err := colorArg(args, 0, "fade-in/fade-out")
		if err != nil {
			return value.Value{}, err
		}
		amt := argOr(args, 1, kwargs, "amount", value.Value{})
		n, err := channelNum(amt)
		if err != nil {
			return value.Value{}, err
		}
		delta := number.Mul(n, number.FromInt64(sign))
		out, err := color.Adjust(c, color.ChannelSet{A: &delta})
		if err != nil {
			return value.Value{}, err
		}
		return value.ColorVal(out), nil
	}
}
