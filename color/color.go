// Package color implements the color model: exact RGBA storage with an
// optional preserved original spelling, HSL conversion, named-color lookup,
// and the channel-adjustment builtins (change, adjust, scale).
package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/styc-lang/styc/number"
)

// Color stores channels as exact numbers so that arithmetic never
// introduces floating-point drift. R, G, B are integers in [0, 255]; A is
// in [0, 1]. Original preserves the literal spelling used to construct the
// color so it can be echoed verbatim when no arithmetic has touched it.
type Color struct {
	R, G, B  number.Number
	A        number.Number
	Original string
}

func clampChannel(n number.Number) number.Number {
	return number.Clamp(n, number.Zero, number.FromInt64(255))
}

// New builds an opaque color from integer channels.
func New(r, g, b int64) Color {
	return Color{R: number.FromInt64(r), G: number.FromInt64(g), B: number.FromInt64(b), A: number.One}
}

// NewRGBA builds a color from exact channels.
func NewRGBA(r, g, b, a number.Number) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b), A: number.Clamp(a, number.Zero, number.One)}
}

// Parse parses a hex literal (#abc, #abcd, #aabbcc, #aabbccdd), a named
// color, or an rgb()/rgba()/hsl()/hsla() functional notation.
func Parse(s string) (Color, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := parseHex(s)
		if err != nil {
			return Color{}, err
		}
		c.Original = s
		return c, nil
	case strings.HasPrefix(lower, "rgba(") || strings.HasPrefix(lower, "rgb("):
		return parseFunctional(s, false)
	case strings.HasPrefix(lower, "hsla(") || strings.HasPrefix(lower, "hsl("):
		return parseFunctional(s, true)
	default:
		if hex, ok := namedColors[lower]; ok {
			c, err := parseHex("#" + hex)
			if err != nil {
				return Color{}, err
			}
			c.Original = lower
			return c, nil
		}
		return Color{}, fmt.Errorf("color: not a color literal: %q", s)
	}
}

// LooksLikeColor reports whether s could plausibly be dispatched to Parse,
// used by the expression lexer to decide whether an identifier should be
// treated as a color candidate.
func LooksLikeColor(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if _, ok := namedColors[lower]; ok {
		return true
	}
	return strings.HasPrefix(s, "#")
}

func parseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	expand := func(c byte) (byte, byte) { return c, c }
	hexByte := func(hi, lo byte) (int64, error) {
		v, err := strconv.ParseInt(string([]byte{hi, lo}), 16, 16)
		return v, err
	}
	switch len(s) {
	case 3, 4:
		rh, rl := expand(s[0])
		gh, gl := expand(s[1])
		bh, bl := expand(s[2])
		r, err := hexByte(rh, rl)
		if err != nil {
			return Color{}, err
		}
		g, err := hexByte(gh, gl)
		if err != nil {
			return Color{}, err
		}
		b, err := hexByte(bh, bl)
		if err != nil {
			return Color{}, err
		}
		a := number.One
		if len(s) == 4 {
			ah, al := expand(s[3])
			av, err := hexByte(ah, al)
			if err != nil {
				return Color{}, err
			}
			a = number.FromRatio(av, 255)
		}
		return Color{R: number.FromInt64(r), G: number.FromInt64(g), B: number.FromInt64(b), A: a}, nil
	case 6, 8:
		r, err := hexByte(s[0], s[1])
		if err != nil {
			return Color{}, err
		}
		g, err := hexByte(s[2], s[3])
		if err != nil {
			return Color{}, err
		}
		b, err := hexByte(s[4], s[5])
		if err != nil {
			return Color{}, err
		}
		a := number.One
		if len(s) == 8 {
			av, err := hexByte(s[6], s[7])
			if err != nil {
				return Color{}, err
			}
			a = number.FromRatio(av, 255)
		}
		return Color{R: number.FromInt64(r), G: number.FromInt64(g), B: number.FromInt64(b), A: a}, nil
	default:
		return Color{}, fmt.Errorf("color: invalid hex length %d in %q", len(s), s)
	}
}

func parseFunctional(s string, hsl bool) (Color, error) {
	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close < 0 || close < open {
		return Color{}, fmt.Errorf("color: malformed functional notation %q", s)
	}
	inner := s[open+1 : close]
	inner = strings.ReplaceAll(inner, ",", " ")
	fields := strings.Fields(inner)
	parse := func(tok string) (number.Number, bool, error) {
		tok = strings.TrimSpace(tok)
		pct := strings.HasSuffix(tok, "%")
		tok = strings.TrimSuffix(tok, "%")
		n, err := number.ParseDecimal(tok)
		return n, pct, err
	}

	var a number.Number = number.One
	if hsl {
		if len(fields) < 3 {
			return Color{}, fmt.Errorf("color: hsl() needs 3 components: %q", s)
		}
		h, _, err := parse(fields[0])
		if err != nil {
			return Color{}, err
		}
		sVal, _, err := parse(fields[1])
		if err != nil {
			return Color{}, err
		}
		l, _, err := parse(fields[2])
		if err != nil {
			return Color{}, err
		}
		if len(fields) >= 4 {
			av, pct, err := parse(fields[3])
			if err != nil {
				return Color{}, err
			}
			if pct {
				av = number.Div(av, number.FromInt64(100))
			}
			a = av
		}
		c := FromHSLA(h, number.Div(sVal, number.FromInt64(100)), number.Div(l, number.FromInt64(100)), a)
		c.Original = s
		return c, nil
	}

	if len(fields) < 3 {
		return Color{}, fmt.Errorf("color: rgb() needs 3 components: %q", s)
	}
	var chans [3]number.Number
	for i := 0; i < 3; i++ {
		v, pct, err := parse(fields[i])
		if err != nil {
			return Color{}, err
		}
		if pct {
			v = number.Div(number.Mul(v, number.FromInt64(255)), number.FromInt64(100))
		}
		chans[i] = v
	}
	if len(fields) >= 4 {
		av, pct, err := parse(fields[3])
		if err != nil {
			return Color{}, err
		}
		if pct {
			av = number.Div(av, number.FromInt64(100))
		}
		a = av
	}
	c := NewRGBA(chans[0], chans[1], chans[2], a)
	c.Original = s
	return c, nil
}

// FromHSLA converts HSL(A) to RGBA exactly; h in degrees (any range,
// normalized mod 360), s and l in [0, 1].
func FromHSLA(h, s, l, a number.Number) Color {
	hNorm := number.Rem(h, number.FromInt64(360))
	if hNorm.IsNegative() {
		hNorm = number.Add(hNorm, number.FromInt64(360))
	}
	hFrac := number.Div(hNorm, number.FromInt64(360))

	var m2 number.Number
	half := number.FromRatio(1, 2)
	if number.Cmp(l, half) <= 0 {
		m2 = number.Mul(l, number.Add(number.One, s))
	} else {
		m2 = number.Sub(number.Add(l, s), number.Mul(l, s))
	}
	m1 := number.Sub(number.Mul(l, number.FromInt64(2)), m2)

	hueToRGB := func(m1, m2, h number.Number) number.Number {
		for h.IsNegative() {
			h = number.Add(h, number.One)
		}
		for number.Cmp(h, number.One) > 0 {
			h = number.Sub(h, number.One)
		}
		switch {
		case number.Cmp(h, number.FromRatio(1, 6)) < 0:
			return number.Add(m1, number.Mul(number.Sub(m2, m1), number.Mul(h, number.FromInt64(6))))
		case number.Cmp(h, half) < 0:
			return m2
		case number.Cmp(h, number.FromRatio(2, 3)) < 0:
			return number.Add(m1, number.Mul(number.Sub(m2, m1), number.Mul(number.Sub(number.FromRatio(2, 3), h), number.FromInt64(6))))
		default:
			return m1
		}
	}

	r := hueToRGB(m1, m2, number.Add(hFrac, number.FromRatio(1, 3)))
	g := hueToRGB(m1, m2, hFrac)
	b := hueToRGB(m1, m2, number.Sub(hFrac, number.FromRatio(1, 3)))

	scale := func(n number.Number) number.Number {
		return number.Round(number.Mul(n, number.FromInt64(255)))
	}
	return NewRGBA(scale(r), scale(g), scale(b), a)
}

// ToHSLA inverts RGBA to HSL exactly.
func (c Color) ToHSLA() (h, s, l, a number.Number) {
	r := number.Div(c.R, number.FromInt64(255))
	g := number.Div(c.G, number.FromInt64(255))
	b := number.Div(c.B, number.FromInt64(255))

	max := r
	if number.Cmp(g, max) > 0 {
		max = g
	}
	if number.Cmp(b, max) > 0 {
		max = b
	}
	min := r
	if number.Cmp(g, min) < 0 {
		min = g
	}
	if number.Cmp(b, min) < 0 {
		min = b
	}

	l = number.Div(number.Add(max, min), number.FromInt64(2))
	delta := number.Sub(max, min)

	if delta.Sign() == 0 {
		return number.Zero, number.Zero, l, c.A
	}

	half := number.FromRatio(1, 2)
	if number.Cmp(l, half) <= 0 {
		s = number.Div(delta, number.Add(max, min))
	} else {
		s = number.Div(delta, number.Sub(number.FromInt64(2), number.Add(max, min)))
	}

	var hue number.Number
	switch {
	case number.Equal(max, r):
		hue = number.Div(number.Sub(g, b), delta)
		if number.Cmp(g, b) < 0 {
			hue = number.Add(hue, number.FromInt64(6))
		}
	case number.Equal(max, g):
		hue = number.Add(number.Div(number.Sub(b, r), delta), number.FromInt64(2))
	default:
		hue = number.Add(number.Div(number.Sub(r, g), delta), number.FromInt64(4))
	}
	h = number.Mul(hue, number.FromInt64(60))
	return h, s, l, c.A
}

// String renders the color in the shortest lossless form: the preserved
// original spelling if arithmetic has not touched it, otherwise a named
// color, 3-digit hex, 6-digit hex, or rgba() in that preference order.
func (c Color) String() string {
	if c.Original != "" {
		return c.Original
	}
	if !number.Equal(c.A, number.One) {
		rr, gg, bb := c.intChannels()
		af := trimAlpha(c.A)
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", rr, gg, bb, af)
	}
	hex := c.hex6()
	if name, ok := hexToName[hex]; ok {
		return name
	}
	if canCompress(hex) {
		return "#" + compress(hex)
	}
	return "#" + hex
}

func (c Color) intChannels() (int64, int64, int64) {
	toInt := func(n number.Number) int64 {
		whole := number.Floor(number.Add(n, number.FromRatio(1, 2)))
		return int64(whole.Float64())
	}
	return toInt(c.R), toInt(c.G), toInt(c.B)
}

func trimAlpha(a number.Number) string {
	return a.String()
}

func (c Color) hex6() string {
	r, g, b := c.intChannels()
	return fmt.Sprintf("%02x%02x%02x", r, g, b)
}

func canCompress(hex string) bool {
	return hex[0] == hex[1] && hex[2] == hex[3] && hex[4] == hex[5]
}

func compress(hex string) string {
	return string([]byte{hex[0], hex[2], hex[4]})
}

// IEHexStr emits the `#AARRGGBB` form (alpha first, uppercase) used by the
// `ie-hex-str` builtin.
func (c Color) IEHexStr() string {
	r, g, b := c.intChannels()
	alpha := number.Floor(number.Add(number.Mul(c.A, number.FromInt64(255)), number.FromRatio(1, 2)))
	a := int64(alpha.Float64())
	return strings.ToUpper(fmt.Sprintf("#%02x%02x%02x%02x", a, r, g, b))
}

// ChannelSet carries an optional subset of channels for change/adjust/scale.
type ChannelSet struct {
	R, G, B, H, S, L, A *number.Number
}

func (cs ChannelSet) usesRGB() bool { return cs.R != nil || cs.G != nil || cs.B != nil }
func (cs ChannelSet) usesHSL() bool { return cs.H != nil || cs.S != nil || cs.L != nil }

// Change replaces any channel present in cs with its given value.
func Change(c Color, cs ChannelSet) (Color, error) {
	if cs.usesRGB() && cs.usesHSL() {
		return Color{}, fmt.Errorf("color: cannot mix RGB and HSL channels in one call")
	}
	out := c
	out.Original = ""
	if cs.usesHSL() {
		h, s, l, _ := c.ToHSLA()
		if cs.H != nil {
			h = *cs.H
		}
		if cs.S != nil {
			s = *cs.S
		}
		if cs.L != nil {
			l = *cs.L
		}
		a := c.A
		if cs.A != nil {
			a = *cs.A
		}
		return FromHSLA(h, s, l, a), nil
	}
	if cs.R != nil {
		out.R = clampChannel(*cs.R)
	}
	if cs.G != nil {
		out.G = clampChannel(*cs.G)
	}
	if cs.B != nil {
		out.B = clampChannel(*cs.B)
	}
	if cs.A != nil {
		out.A = number.Clamp(*cs.A, number.Zero, number.One)
	}
	return out, nil
}

// Adjust adds the channel deltas in cs to c's current channels.
func Adjust(c Color, cs ChannelSet) (Color, error) {
	if cs.usesRGB() && cs.usesHSL() {
		return Color{}, fmt.Errorf("color: cannot mix RGB and HSL channels in one call")
	}
	out := c
	out.Original = ""
	if cs.usesHSL() {
		h, s, l, _ := c.ToHSLA()
		if cs.H != nil {
			h = number.Add(h, *cs.H)
		}
		if cs.S != nil {
			s = number.Clamp(number.Add(s, *cs.S), number.Zero, number.One)
		}
		if cs.L != nil {
			l = number.Clamp(number.Add(l, *cs.L), number.Zero, number.One)
		}
		a := c.A
		if cs.A != nil {
			a = number.Clamp(number.Add(a, *cs.A), number.Zero, number.One)
		}
		return FromHSLA(h, s, l, a), nil
	}
	if cs.R != nil {
		out.R = clampChannel(number.Add(out.R, *cs.R))
	}
	if cs.G != nil {
		out.G = clampChannel(number.Add(out.G, *cs.G))
	}
	if cs.B != nil {
		out.B = clampChannel(number.Add(out.B, *cs.B))
	}
	if cs.A != nil {
		out.A = number.Clamp(number.Add(out.A, *cs.A), number.Zero, number.One)
	}
	return out, nil
}

// Scale applies `v + (sign(by) ? max-v : v) * by/100` per channel present
// in cs, where `by` is a percentage in [-100, 100].
func Scale(c Color, cs ChannelSet) (Color, error) {
	if cs.usesRGB() && cs.usesHSL() {
		return Color{}, fmt.Errorf("color: cannot mix RGB and HSL channels in one call")
	}
	scaleChannel := func(v, by, max number.Number) number.Number {
		byFrac := number.Div(by, number.FromInt64(100))
		var span number.Number
		if by.IsPositive() {
			span = number.Sub(max, v)
		} else {
			span = v
		}
		return number.Add(v, number.Mul(span, byFrac))
	}
	out := c
	out.Original = ""
	if cs.usesHSL() {
		h, s, l, _ := c.ToHSLA()
		if cs.S != nil {
			s = number.Clamp(scaleChannel(s, *cs.S, number.One), number.Zero, number.One)
		}
		if cs.L != nil {
			l = number.Clamp(scaleChannel(l, *cs.L, number.One), number.Zero, number.One)
		}
		a := c.A
		if cs.A != nil {
			a = number.Clamp(scaleChannel(a, *cs.A, number.One), number.Zero, number.One)
		}
		return FromHSLA(h, s, l, a), nil
	}
	if cs.R != nil {
		out.R = clampChannel(scaleChannel(out.R, *cs.R, number.FromInt64(255)))
	}
	if cs.G != nil {
		out.G = clampChannel(scaleChannel(out.G, *cs.G, number.FromInt64(255)))
	}
	if cs.B != nil {
		out.B = clampChannel(scaleChannel(out.B, *cs.B, number.FromInt64(255)))
	}
	if cs.A != nil {
		out.A = number.Clamp(scaleChannel(out.A, *cs.A, number.One), number.Zero, number.One)
	}
	return out, nil
}

// Mix blends c1 and c2 by weight (fraction of c1 in [0, 1]), per the
// standard Sass/LESS alpha-aware mix algorithm.
func Mix(c1, c2 Color, weight number.Number) Color {
	w := number.Sub(number.Mul(weight, number.FromInt64(2)), number.One)
	d := number.Sub(c1.A, c2.A)

	var a1 number.Number
	wd := number.Mul(w, d)
	denomNum := number.Add(number.Mul(w, d), number.One)
	if denomNum.Sign() == 0 || number.Equal(wd, number.Neg(number.One)) {
		a1 = w
	} else {
		a1 = number.Div(number.Add(w, d), number.Add(number.One, wd))
	}
	a1 = number.Div(number.Add(a1, number.One), number.FromInt64(2))
	a2 := number.Sub(number.One, a1)

	blend := func(x, y number.Number) number.Number {
		return number.Round(number.Add(number.Mul(x, a1), number.Mul(y, a2)))
	}
	alpha := number.Add(number.Mul(c1.A, weight), number.Mul(c2.A, number.Sub(number.One, weight)))
	return NewRGBA(blend(c1.R, c2.R), blend(c1.G, c2.G), blend(c1.B, c2.B), alpha)
}

// Greyscale desaturates fully, preserving lightness.
func Greyscale(c Color) Color {
	h, _, l, a := c.ToHSLA()
	return FromHSLA(h, number.Zero, l, a)
}
