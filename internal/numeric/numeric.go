// Package numeric interprets cell.Cell values as signed or unsigned
// mathematical integers and implements the width-aware arithmetic the ALU
// needs: the stored result always wraps modulo 2^width, while the flags
// describe what happened to the unbounded mathematical result.
//
// math/big is used (not a third-party dependency) to compute the
// unbounded sres/ures values the set-flags rule needs without risking
// overflow in the overflow-detection arithmetic itself, per the design
// note to keep an explicit (value, width) pair and mask on every
// operation when no native fixed-width type covers the configured width.
package numeric

import (
	"math/big"

	"github.com/modelmachine/modelmachine/internal/cell"
)

// Flags captures the ALU condition bits produced by an operation, before
// they are folded into the FLAGS register.
type Flags struct {
	ZF, SF, CF, OF bool
}

// Unsigned interprets c as a non-negative mathematical integer.
func Unsigned(c cell.Cell) *big.Int {
	return new(big.Int).SetUint64(c.Value())
}

// Signed interprets c as a two's-complement integer of its own width.
func Signed(c cell.Cell) *big.Int {
	v := new(big.Int).SetUint64(c.Value())
	width := c.Width()
	half := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	if v.Cmp(half) >= 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(width))
		v.Sub(v, full)
	}
	return v
}

func bounds(width int) (twoW, half, negHalf *big.Int) {
	twoW = new(big.Int).Lsh(big.NewInt(1), uint(width))
	half = new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	negHalf = new(big.Int).Neg(half)
	return
}

// SetFlags implements the spec's set-flags rule exactly: given the
// unbounded signed result sres and unbounded unsigned result ures of an
// operation at the given width, it derives ZF/SF/CF/OF.
func SetFlags(sres, ures *big.Int, width int) Flags {
	twoW, half, negHalf := bounds(width)

	wrapped := new(big.Int).Mod(ures, twoW) // Euclidean mod, always in [0, 2^w)
	zf := wrapped.Sign() == 0
	sf := wrapped.Bit(width-1) == 1
	cf := ures.Sign() < 0 || ures.Cmp(twoW) >= 0
	of := sres.Cmp(negHalf) < 0 || sres.Cmp(half) >= 0

	return Flags{ZF: zf, SF: sf, CF: cf, OF: of}
}

func wrap(v *big.Int, width int) cell.Cell {
	twoW := new(big.Int).Lsh(big.NewInt(1), uint(width))
	m := new(big.Int).Mod(v, twoW)
	return cell.New(width, m.Uint64())
}

// Add returns a+b stored modulo 2^width, with flags derived from the
// unbounded signed and unsigned sums.
func Add(a, b cell.Cell) (cell.Cell, Flags) {
	width := a.Width()
	ures := new(big.Int).Add(Unsigned(a), Unsigned(b))
	sres := new(big.Int).Add(Signed(a), Signed(b))
	return wrap(ures, width), SetFlags(sres, ures, width)
}

// Sub returns a-b stored modulo 2^width. CF reflects unsigned borrow.
func Sub(a, b cell.Cell) (cell.Cell, Flags) {
	width := a.Width()
	ures := new(big.Int).Sub(Unsigned(a), Unsigned(b))
	sres := new(big.Int).Sub(Signed(a), Signed(b))
	return wrap(ures, width), SetFlags(sres, ures, width)
}

// MulUnsigned returns the low width bits of unsigned(a)*unsigned(b).
func MulUnsigned(a, b cell.Cell) (cell.Cell, Flags) {
	width := a.Width()
	ures := new(big.Int).Mul(Unsigned(a), Unsigned(b))
	sres := new(big.Int).Mul(Signed(a), Signed(b))
	return wrap(ures, width), SetFlags(sres, ures, width)
}

// MulSigned returns the low width bits of signed(a)*signed(b). Note that
// this is bit-identical to MulUnsigned's result (two's-complement
// multiplication is sign-agnostic modulo 2^width) — only the flags can
// differ, since OF/CF are derived from the unbounded sres/ures.
func MulSigned(a, b cell.Cell) (cell.Cell, Flags) {
	width := a.Width()
	ures := new(big.Int).Mul(Unsigned(a), Unsigned(b))
	sres := new(big.Int).Mul(Signed(a), Signed(b))
	return wrap(sres, width), SetFlags(sres, ures, width)
}

// DivUnsigned returns floor(unsigned(a)/unsigned(b)). divByZero is true
// and the other return values are unspecified when b is zero.
func DivUnsigned(a, b cell.Cell) (quotient cell.Cell, flags Flags, divByZero bool) {
	width := a.Width()
	if b.Value() == 0 {
		return cell.Zero(width), Flags{}, true
	}
	ua, ub := Unsigned(a), Unsigned(b)
	uq := new(big.Int).Quo(ua, ub)
	return wrap(uq, width), SetFlags(uq, uq, width), false
}

// ModUnsigned returns unsigned(a) mod unsigned(b) (non-negative remainder).
func ModUnsigned(a, b cell.Cell) (remainder cell.Cell, flags Flags, divByZero bool) {
	width := a.Width()
	if b.Value() == 0 {
		return cell.Zero(width), Flags{}, true
	}
	ua, ub := Unsigned(a), Unsigned(b)
	ur := new(big.Int).Rem(ua, ub)
	return wrap(ur, width), SetFlags(ur, ur, width), false
}

// DivSigned returns signed(a)/signed(b) truncated toward zero. The
// signed quotient stands in for both SetFlags arguments: it is the
// operation's only result, not an alternate reading of an unsigned one
// (unlike Add/Sub/Mul, sa/sb's quotient and ua/ub's have no fixed
// relationship to each other).
func DivSigned(a, b cell.Cell) (quotient cell.Cell, flags Flags, divByZero bool) {
	width := a.Width()
	if b.Value() == 0 {
		return cell.Zero(width), Flags{}, true
	}
	sa, sb := Signed(a), Signed(b)
	sq := new(big.Int).Quo(sa, sb)
	return wrap(sq, width), SetFlags(sq, sq, width), false
}

// ModSigned returns signed(a)%signed(b) truncated toward zero, so the
// result's sign matches the dividend a's sign (Go's big.Int.Rem already
// implements truncated-division remainder semantics).
func ModSigned(a, b cell.Cell) (remainder cell.Cell, flags Flags, divByZero bool) {
	width := a.Width()
	if b.Value() == 0 {
		return cell.Zero(width), Flags{}, true
	}
	sa, sb := Signed(a), Signed(b)
	sr := new(big.Int).Rem(sa, sb)
	return wrap(sr, width), SetFlags(sr, sr, width), false
}
