package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styc-lang/styc/number"
)

func TestConvertWithinGroup(t *testing.T) {
	n, err := Convert(number.FromInt64(96), "px", "in")
	require.NoError(t, err)
	assert.Equal(t, "1", n.String())

	n, err = Convert(number.FromInt64(2), "s", "ms")
	require.NoError(t, err)
	assert.Equal(t, "2000", n.String())
}

func TestConvertAcrossGroupsErrors(t *testing.T) {
	_, err := Convert(number.One, "px", "s")
	assert.Error(t, err)
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("px", "in"))
	assert.False(t, Compatible("px", "deg"))
	assert.False(t, Compatible("%", "px"))
	assert.True(t, Compatible("%", "%"))

	// Unitless pairing is the value layer's job, not this package's.
	assert.False(t, Compatible("", "px"))
}

func TestUnknownUnitIsItsOwnGroup(t *testing.T) {
	assert.Equal(t, Unknown, Classify("fr"))
	assert.True(t, Compatible("fr", "fr"))
	assert.False(t, Compatible("fr", "px"))
}

func TestMulDivUnits(t *testing.T) {
	assert.Equal(t, "px", MulUnit("px", ""))
	assert.Equal(t, "px*px", MulUnit("px", "px"))
	assert.Equal(t, "", DivUnit("px", "px"))
	assert.Equal(t, "px", DivUnit("px", ""))
	assert.Equal(t, "/s", DivUnit("", "s"))
	assert.Equal(t, "px/s", DivUnit("px", "s"))
}
