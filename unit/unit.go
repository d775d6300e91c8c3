// Package unit implements the unit algebra: classification of unit tokens
// into dimensional groups, conversion factors within a group, and the
// arithmetic compatibility rules used by the value layer.
package unit

import (
	"fmt"

	"github.com/styc-lang/styc/number"
)

// Group names a dimensional family. Units only convert within a group.
type Group int

const (
	Unitless Group = iota
	Percent
	Length
	Angle
	Time
	Frequency
	Resolution
	Unknown
)

type entry struct {
	group   Group
	toCanon number.Number // multiply by this to reach the canonical unit
}

// canonical units per group: length=px, angle=deg, time=s, frequency=Hz,
// resolution=dpi.
var table = map[string]entry{
	"":     {group: Unitless, toCanon: number.One},
	"%":    {group: Percent, toCanon: number.One},
	"px":   {group: Length, toCanon: number.One},
	"in":   {group: Length, toCanon: number.FromInt64(96)},
	"pt":   {group: Length, toCanon: ratio(96, 72)},
	"pc":   {group: Length, toCanon: ratio(96, 6)},
	"cm":   {group: Length, toCanon: ratio(9600, 254)},
	"mm":   {group: Length, toCanon: ratio(960, 254)},
	"q":    {group: Length, toCanon: ratio(960, 1016)},
	"deg":  {group: Angle, toCanon: number.One},
	"grad": {group: Angle, toCanon: ratio(9, 10)},
	"rad":  {group: Angle, toCanon: ratio(57295779513, 1000000000)}, // 180/pi approximation in exact rational form
	"turn": {group: Angle, toCanon: number.FromInt64(360)},
	"s":    {group: Time, toCanon: number.One},
	"ms":   {group: Time, toCanon: ratio(1, 1000)},
	"hz":   {group: Frequency, toCanon: number.One},
	"khz":  {group: Frequency, toCanon: number.FromInt64(1000)},
	"dpi":  {group: Resolution, toCanon: number.One},
	"dpcm": {group: Resolution, toCanon: ratio(254, 100)},
	"dppx": {group: Resolution, toCanon: number.FromInt64(96)},
	"x":    {group: Resolution, toCanon: number.FromInt64(96)},
}

func ratio(n, d int64) number.Number { return number.FromRatio(n, d) }

// Classify returns the dimensional group a unit token belongs to. Units not
// present in the table are their own singleton Unknown group, keyed by
// name; they are only compatible with themselves.
func Classify(u string) Group {
	if e, ok := table[normalize(u)]; ok {
		return e.group
	}
	return Unknown
}

func normalize(u string) string {
	out := make([]byte, len(u))
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// Compatible reports whether two units may be added, subtracted, or
// compared. Percent never converts to or from another unit: it is
// compatible only with itself and unitless contexts handled by the caller.
func Compatible(a, b string) bool {
	if a == b {
		return true
	}
	ga, gb := Classify(a), Classify(b)
	if ga == Unknown || gb == Unknown {
		return false
	}
	if ga == Percent || gb == Percent {
		return false
	}
	return ga == gb
}

// ConvertFactor returns the multiplier to convert a value expressed in
// `from` into `to`'s scale (value_in_to = value_in_from * factor).
func ConvertFactor(from, to string) (number.Number, error) {
	if from == to {
		return number.One, nil
	}
	if !Compatible(from, to) {
		return number.Zero, fmt.Errorf("unit: incompatible units %q and %q", from, to)
	}
	ef, ok1 := table[normalize(from)]
	et, ok2 := table[normalize(to)]
	if !ok1 || !ok2 {
		return number.Zero, fmt.Errorf("unit: unknown unit in conversion %q -> %q", from, to)
	}
	return number.Div(ef.toCanon, et.toCanon), nil
}

// Convert rescales n, expressed in `from`, to the `to` unit's scale.
func Convert(n number.Number, from, to string) (number.Number, error) {
	factor, err := ConvertFactor(from, to)
	if err != nil {
		return number.Zero, err
	}
	return number.Mul(n, factor), nil
}

// MulUnit combines two unit strings for multiplication/division by
// cancelling like terms between numerator and denominator lists. A fully
// cancelled result is unitless. Units are represented as "num1*num2/den1"
// style compound strings; for the vast majority of stylesheet arithmetic
// only one unit participates at a time, so this performs the common case
// (single unit times unitless, or like units cancelling) and falls back to
// a raw compound string otherwise.
func MulUnit(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "*" + b
}

// DivUnit returns the result unit of dividing a quantity in unit a by one
// in unit b: like units cancel to unitless, unitless numerator keeps "/b".
func DivUnit(a, b string) string {
	if b == "" {
		return a
	}
	if a == b {
		return ""
	}
	if a == "" {
		return "/" + b
	}
	return a + "/" + b
}
