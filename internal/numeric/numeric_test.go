package numeric_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/numeric"
)

const w = 8

func c(v int64) cell.Cell {
	return cell.New(w, uint64(v))
}

func TestSignedInterpretation(t *testing.T) {
	require.Equal(t, int64(-2), numeric.Signed(c(254)).Int64())
	require.Equal(t, int64(127), numeric.Signed(c(127)).Int64())
	require.Equal(t, int64(-128), numeric.Signed(c(128)).Int64())
}

func TestAddZeroFlag(t *testing.T) {
	result, flags := numeric.Add(c(1), c(255))
	require.Equal(t, uint64(0), result.Value())
	require.True(t, flags.ZF)
	require.True(t, flags.CF)
}

func TestSubOfSameValueIsZeroNoCarry(t *testing.T) {
	result, flags := numeric.Sub(c(42), c(42))
	require.Equal(t, uint64(0), result.Value())
	require.True(t, flags.ZF)
	require.False(t, flags.CF)
}

func TestSubBorrow(t *testing.T) {
	// 3 - 10 underflows unsigned: borrow sets CF.
	result, flags := numeric.Sub(c(3), c(10))
	require.Equal(t, uint64((3-10)&0xFF), result.Value())
	require.True(t, flags.CF)
}

func TestMulUnsignedAndSignedAgreeOnBits(t *testing.T) {
	ur, _ := numeric.MulUnsigned(c(10), c(15))
	sr, _ := numeric.MulSigned(c(10), c(15))
	require.Equal(t, ur.Value(), sr.Value())
	require.Equal(t, uint64(150), ur.Value())
}

func TestDivSignedTruncatesTowardZero(t *testing.T) {
	q, _, dz := numeric.DivSigned(c(-27), c(5))
	require.False(t, dz)
	require.Equal(t, int64(-5), numeric.Signed(q).Int64())
}

func TestModSignedSignMatchesDividend(t *testing.T) {
	r, _, dz := numeric.ModSigned(c(-27), c(5))
	require.False(t, dz)
	require.Equal(t, int64(-2), numeric.Signed(r).Int64())

	r2, _, dz2 := numeric.ModSigned(c(27), c(-5))
	require.False(t, dz2)
	require.Equal(t, int64(2), numeric.Signed(r2).Int64())
}

func TestDivModRoundTrip(t *testing.T) {
	a, b := c(200), c(7) // signed(200) == -56
	q, _, _ := numeric.DivSigned(a, b)
	r, _, _ := numeric.ModSigned(a, b)
	qi, ri, bi := numeric.Signed(q).Int64(), numeric.Signed(r).Int64(), numeric.Signed(b).Int64()
	require.Equal(t, numeric.Signed(a).Int64(), qi*bi+ri)
}

func TestDivSignedAndModSignedFlagsMatchOracle(t *testing.T) {
	_, divFlags, _ := numeric.DivSigned(c(-27), c(5))
	require.True(t, divFlags.SF)
	require.True(t, divFlags.CF)

	_, modFlags, _ := numeric.ModSigned(c(-27), c(5))
	require.True(t, modFlags.SF)
	require.True(t, modFlags.CF)
}

func TestDivisionByZero(t *testing.T) {
	_, _, dz := numeric.DivUnsigned(c(5), c(0))
	require.True(t, dz)
	_, _, dz2 := numeric.DivSigned(c(5), c(0))
	require.True(t, dz2)
}
