package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styc-lang/styc/color"
	"github.com/styc-lang/styc/number"
	"github.com/styc-lang/styc/value"
)

func dim(n int64, u string) value.Value { return value.Dim(number.FromInt64(n), u) }

func TestMathCeilFloorRound(t *testing.T) {
	r := Default()

	v, err := r["ceil"]([]value.Value{value.Dim(number.FromRatio(5, 2), "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "3px", value.CSSString(v, false))

	v, err = r["floor"]([]value.Value{value.Dim(number.FromRatio(5, 2), "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2px", value.CSSString(v, false))

	v, err = r["round"]([]value.Value{value.Dim(number.FromRatio(5, 2), "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "3px", value.CSSString(v, false))
}

func TestMathMinMax(t *testing.T) {
	r := Default()
	v, err := r["min"]([]value.Value{dim(3, "px"), dim(1, "px"), dim(2, "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1px", value.CSSString(v, false))

	v, err = r["max"]([]value.Value{dim(3, "px"), dim(1, "px"), dim(2, "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "3px", value.CSSString(v, false))
}

func TestMathPercentage(t *testing.T) {
	r := Default()
	v, err := r["percentage"]([]value.Value{value.Dim(number.FromRatio(1, 4), "")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "25%", value.CSSString(v, false))
}

func TestColorChannels(t *testing.T) {
	r := Default()
	c, err := color.Parse("#336699")
	require.NoError(t, err)

	v, err := r["red"]([]value.Value{value.ColorVal(c)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "51", value.CSSString(v, false))

	v, err = r["blue"]([]value.Value{value.ColorVal(c)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "153", value.CSSString(v, false))
}

func TestColorMix(t *testing.T) {
	r := Default()
	white, err := color.Parse("#fff")
	require.NoError(t, err)
	black, err := color.Parse("#000")
	require.NoError(t, err)

	v, err := r["mix"]([]value.Value{value.ColorVal(white), value.ColorVal(black)}, nil)
	require.NoError(t, err)
	assert.Equal(t, value.KColor, v.Kind)
	assert.Equal(t, "128", v.Col.R.String())
}

func TestColorLightenDarken(t *testing.T) {
	r := Default()
	c, err := color.Parse("#808080")
	require.NoError(t, err)

	v, err := r["lighten"]([]value.Value{value.ColorVal(c), value.Dim(number.FromInt64(10), "%")}, nil)
	require.NoError(t, err)
	_, _, l, _ := v.Col.ToHSLA()
	assert.True(t, l.Float64() > 0.5)

	v, err = r["darken"]([]value.Value{value.ColorVal(c), value.Dim(number.FromInt64(10), "%")}, nil)
	require.NoError(t, err)
	_, _, l, _ = v.Col.ToHSLA()
	assert.True(t, l.Float64() < 0.5)
}

func TestStringCase(t *testing.T) {
	r := Default()
	v, err := r["to-upper-case"]([]value.Value{value.Str("abc", value.Quoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC", v.Str)

	v, err = r["to-lower-case"]([]value.Value{value.Str("ABC", value.Quoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", v.Str)
}

func TestStringSliceAndIndex(t *testing.T) {
	r := Default()
	v, err := r["str-slice"]([]value.Value{value.Str("hello world", value.Quoted), dim(1, ""), dim(5, "")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Str)

	v, err = r["str-index"]([]value.Value{value.Str("hello world", value.Quoted), value.Str("world", value.Quoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "7", value.CSSString(v, false))
}

func TestListJoinAppendNth(t *testing.T) {
	r := Default()
	list := value.List([]value.Value{dim(1, "px"), dim(2, "px")}, value.Comma, false)

	v, err := r["nth"]([]value.Value{list, dim(2, "")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2px", value.CSSString(v, false))

	v, err = r["append"]([]value.Value{list, dim(3, "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, len(v.Items))

	v, err = r["length"]([]value.Value{list}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", value.CSSString(v, false))
}

func TestMapGetAndMerge(t *testing.T) {
	r := Default()
	m := value.Map(
		[]value.Value{value.Str("a", value.Unquoted)},
		[]value.Value{dim(1, "")},
	)

	v, err := r["map-get"]([]value.Value{m, value.Str("a", value.Unquoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", value.CSSString(v, false))

	v, err = r["map-has-key"]([]value.Value{m, value.Str("b", value.Unquoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, v.Bool)

	other := value.Map(
		[]value.Value{value.Str("a", value.Unquoted), value.Str("b", value.Unquoted)},
		[]value.Value{dim(9, ""), dim(2, "")},
	)
	v, err = r["map-merge"]([]value.Value{m, other}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, len(v.Items))
}

func TestMetaTypeOf(t *testing.T) {
	r := Default()
	v, err := r["type-of"]([]value.Value{dim(1, "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "number", v.Str)

	v, err = r["type-of"]([]value.Value{value.Str("x", value.Quoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "string", v.Str)
}

func TestMetaIf(t *testing.T) {
	r := Default()
	v, err := r["if"]([]value.Value{value.Bool(true), value.Str("yes", value.Unquoted), value.Str("no", value.Unquoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "yes", v.Str)
}

func TestMinMaxNonNumericFallsBackToCSS(t *testing.T) {
	r := Default()
	v, err := r["min"]([]value.Value{dim(10, "px"), value.Str("var(--w)", value.Unquoted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "min(10px, var(--w))", value.CSSString(v, false))
}

func TestMinConvertsCompatibleUnits(t *testing.T) {
	r := Default()
	v, err := r["min"]([]value.Value{dim(1, "in"), dim(50, "px")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "50px", value.CSSString(v, false))
}
