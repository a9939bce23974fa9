package cell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelmachine/modelmachine/internal/cell"
)

func TestNewMasksValue(t *testing.T) {
	c := cell.New(4, 0xFF)
	require.Equal(t, uint64(0x0F), c.Value())
	require.Equal(t, 4, c.Width())
}

func TestInvariantValueInRange(t *testing.T) {
	for w := 1; w <= 16; w++ {
		c := cell.New(w, ^uint64(0))
		require.GreaterOrEqual(t, c.Value(), uint64(0))
		require.Less(t, c.Value(), uint64(1)<<uint(w))
	}
}

func TestSliceConcatRoundTrip(t *testing.T) {
	c := cell.New(16, 0xBEEF)
	lo := c.Slice(0, 8)
	hi := c.Slice(8, 16)
	require.True(t, c.Equal(cell.Concat(hi, lo)))
}

func TestSlicePanicsOutOfRange(t *testing.T) {
	c := cell.New(8, 1)
	require.Panics(t, func() { c.Slice(4, 9) })
	require.Panics(t, func() { c.Slice(4, 4) })
}

func TestEqualRequiresSameWidth(t *testing.T) {
	a := cell.New(8, 1)
	b := cell.New(16, 1)
	require.False(t, a.Equal(b))
}
