package number

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	n, err := ParseDecimal("12.500")
	assert.NoError(t, err)
	assert.Equal(t, "12.5", n.String())

	n, err = ParseDecimal("-0.1")
	assert.NoError(t, err)
	assert.Equal(t, "-0.1", n.String())

	n, err = ParseDecimal("10")
	assert.NoError(t, err)
	assert.True(t, n.IsInteger())
	assert.Equal(t, "10", n.String())
}

func TestArithmeticExact(t *testing.T) {
	a, _ := ParseDecimal("0.1")
	b, _ := ParseDecimal("0.2")
	sum := Add(a, b)
	assert.Equal(t, "0.3", sum.String())
}

func TestMachinePromotesOnOverflow(t *testing.T) {
	big1 := FromInt64(1 << 62)
	big2 := FromInt64(1 << 62)
	sum := Add(big1, big2)
	assert.True(t, sum.IsBig())
}

func TestDivisionAndRounding(t *testing.T) {
	n := FromRatio(1, 3)
	assert.Equal(t, "0.3333333333", n.String())
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "3", Round(FromRatio(5, 2)).String())
	assert.Equal(t, "-3", Round(FromRatio(-5, 2)).String())
	assert.Equal(t, "2", Round(FromRatio(3, 2)).String())
}

func TestFloorCeilFract(t *testing.T) {
	n := FromRatio(7, 2) // 3.5
	assert.Equal(t, "3", Floor(n).String())
	assert.Equal(t, "4", Ceil(n).String())
	assert.Equal(t, "0.5", Fract(n).String())
}

func TestClamp(t *testing.T) {
	n := FromInt64(150)
	c := Clamp(n, Zero, FromInt64(100))
	assert.Equal(t, "100", c.String())
}

func TestBigRoundTrip(t *testing.T) {
	bigNum := new(big.Int)
	bigNum.SetString("123456789012345678901234567890", 10)
	n := FromBigRatio(bigNum, big.NewInt(1))
	assert.True(t, n.IsBig())
	assert.Equal(t, bigNum.String(), n.String())
}

func TestDivisionByIntegerOnePreservesUnitSemanticsAtValueLevel(t *testing.T) {
	// number package itself is unitless; this documents that Div(x, 1) is exact identity.
	x, _ := ParseDecimal("42.125")
	one := FromInt64(1)
	assert.True(t, Equal(x, Div(x, one)))
}
