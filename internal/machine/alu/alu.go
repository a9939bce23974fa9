// Package alu implements the arithmetic-logic unit shared by every
// control-unit variant: flag derivation, the arithmetic/division family,
// and jump/conditional-jump dispatch (spec §4.1).
package alu

import (
	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/register"
	"github.com/modelmachine/modelmachine/internal/numeric"
)

// Flag bit positions within the FLAGS register. LESS/EQUAL/GREATER are
// never stored — they're derived transiently by CondJump from ZF/SF/CF/OF.
const (
	BitZF = iota
	BitSF
	BitCF
	BitOF
	BitHalt
)

// Registers binds the ALU's operand/result registers for one
// control-unit variant. S and RES may name the same register on variants
// that never produce a dword result.
type Registers struct {
	R1, R2, S, RES, ADDR register.Name
}

// HaltReason records why the machine stopped — generalized from a bare
// `error` (as the teacher's `VM.errcode` field holds) into a small
// kind+message struct so a printer or debugger can report *why* without
// string-matching the message.
type HaltReason struct {
	Kind    string
	Message string
}

// Halt reason kinds. HaltNone is the zero value, meaning "not halted" or
// "halted with no recorded cause" (e.g. a bare Halt() call from a test).
const (
	HaltNone            = ""
	HaltInstruction     = "halt-instruction"
	HaltUnknownOpcode   = "unknown-opcode"
	HaltReservedBits    = "reserved-bits"
	HaltProtectedMemory = "protected-memory"
	HaltDivisionByZero  = "division-by-zero"
)

// ALU operates on a register file through a non-owning reference — it
// never outlives the CPU that constructed it (spec §9 on borrowed
// references, no shared ownership).
type ALU struct {
	regs   *register.Memory
	r      Registers
	reason HaltReason
}

// New binds an ALU to a register file. regs must already declare every
// register named in r, plus FLAGS.
func New(regs *register.Memory, r Registers) *ALU {
	return &ALU{regs: regs, r: r}
}

func (a *ALU) flagsCell() cell.Cell { return a.regs.Fetch(register.FLAGS) }

func (a *ALU) putFlags(v uint64) {
	c := a.flagsCell()
	_ = a.regs.Put(register.FLAGS, cell.New(c.Width(), v))
}

// writeFlags stores ZF/SF/CF/OF from f, preserving whatever HALT bit is
// already set — only Halt sets HALT, arithmetic flags never clear it.
func (a *ALU) writeFlags(f numeric.Flags) {
	cur := a.flagsCell().Value()
	v := cur & (uint64(1) << BitHalt)
	if f.ZF {
		v |= 1 << BitZF
	}
	if f.SF {
		v |= 1 << BitSF
	}
	if f.CF {
		v |= 1 << BitCF
	}
	if f.OF {
		v |= 1 << BitOF
	}
	a.putFlags(v)
}

// ReadFlags reports the current ZF/SF/CF/OF/HALT bits.
func (a *ALU) ReadFlags() (zf, sf, cf, of, halted bool) {
	v := a.flagsCell().Value()
	return v&(1<<BitZF) != 0, v&(1<<BitSF) != 0, v&(1<<BitCF) != 0, v&(1<<BitOF) != 0, v&(1<<BitHalt) != 0
}

// Halt sets the HALT flag and records why. The control unit's run loop
// stops on the next check; Halt itself does not unwind anything. The
// first halt reason recorded wins — once halted, further Halt calls
// (there shouldn't be any, Step is a no-op once halted) leave the
// original reason in place.
func (a *ALU) Halt(reason HaltReason) {
	if a.IsHalted() {
		return
	}
	v := a.flagsCell().Value() | (uint64(1) << BitHalt)
	a.putFlags(v)
	a.reason = reason
}

// IsHalted reports whether HALT is set.
func (a *ALU) IsHalted() bool {
	_, _, _, _, halted := a.ReadFlags()
	return halted
}

// HaltReason returns why the machine halted, or the zero value if it
// hasn't.
func (a *ALU) HaltReason() HaltReason { return a.reason }

func (a *ALU) binOp(f func(a, b cell.Cell) (cell.Cell, numeric.Flags)) {
	r1, r2 := a.regs.Fetch(a.r.R1), a.regs.Fetch(a.r.R2)
	result, flags := f(r1, r2)
	_ = a.regs.Put(a.r.S, result)
	a.writeFlags(flags)
}

// Add computes R1+R2 -> S.
func (a *ALU) Add() { a.binOp(numeric.Add) }

// Sub computes R1-R2 -> S. Used standalone for subtraction and, via the
// `comp` opcode, purely for its flags (mm-2's comparison instruction).
func (a *ALU) Sub() { a.binOp(numeric.Sub) }

// UMul computes the low bits of unsigned(R1)*unsigned(R2) -> S.
func (a *ALU) UMul() { a.binOp(numeric.MulUnsigned) }

// SMul computes the low bits of signed(R1)*signed(R2) -> S.
func (a *ALU) SMul() { a.binOp(numeric.MulSigned) }

// UDiv computes unsigned(R1)/unsigned(R2) -> S and the remainder -> RES
// (the div opcodes are the DWORD_WRITE_BACK members of ARITHMETIC:
// dividing naturally produces both a quotient and a remainder). Division
// by zero halts and leaves S/RES unspecified.
func (a *ALU) UDiv() {
	r1, r2 := a.regs.Fetch(a.r.R1), a.regs.Fetch(a.r.R2)
	q, flags, dz := numeric.DivUnsigned(r1, r2)
	if dz {
		a.Halt(HaltReason{Kind: HaltDivisionByZero, Message: "udiv by zero"})
		return
	}
	rem, _, _ := numeric.ModUnsigned(r1, r2)
	_ = a.regs.Put(a.r.S, q)
	_ = a.regs.Put(a.r.RES, rem)
	a.writeFlags(flags)
}

// SDiv is UDiv's signed counterpart: truncated toward zero.
func (a *ALU) SDiv() {
	r1, r2 := a.regs.Fetch(a.r.R1), a.regs.Fetch(a.r.R2)
	q, flags, dz := numeric.DivSigned(r1, r2)
	if dz {
		a.Halt(HaltReason{Kind: HaltDivisionByZero, Message: "sdiv by zero"})
		return
	}
	rem, _, _ := numeric.ModSigned(r1, r2)
	_ = a.regs.Put(a.r.S, q)
	_ = a.regs.Put(a.r.RES, rem)
	a.writeFlags(flags)
}

// UMod computes unsigned(R1) mod unsigned(R2) -> S alone (no RES
// write-back — unlike UDiv, this opcode is invoked when only the
// remainder is wanted).
func (a *ALU) UMod() {
	r1, r2 := a.regs.Fetch(a.r.R1), a.regs.Fetch(a.r.R2)
	rem, flags, dz := numeric.ModUnsigned(r1, r2)
	if dz {
		a.Halt(HaltReason{Kind: HaltDivisionByZero, Message: "umod by zero"})
		return
	}
	_ = a.regs.Put(a.r.S, rem)
	a.writeFlags(flags)
}

// SMod computes signed(R1)%signed(R2) -> S; the result's sign matches
// R1's sign (truncated division semantics).
func (a *ALU) SMod() {
	r1, r2 := a.regs.Fetch(a.r.R1), a.regs.Fetch(a.r.R2)
	rem, flags, dz := numeric.ModSigned(r1, r2)
	if dz {
		a.Halt(HaltReason{Kind: HaltDivisionByZero, Message: "smod by zero"})
		return
	}
	_ = a.regs.Put(a.r.S, rem)
	a.writeFlags(flags)
}

// Jump unconditionally copies ADDR into PC.
func (a *ALU) Jump() {
	_ = a.regs.Put(register.PC, a.regs.Fetch(a.r.ADDR))
}

// Comparison selects which relation CondJump tests, decoded from flags
// set by a preceding Sub.
type Comparison int

const (
	Equal Comparison = iota
	Less
	Greater
)

// CondJump inspects the flags left by a prior Sub and jumps (copies ADDR
// into PC) if the requested relation holds. signed selects signed vs
// unsigned interpretation for Less/Greater (Equal is sign-independent);
// equal additionally ORs in the ZF==1 case, turning Less/Greater into
// Less-or-equal/Greater-or-equal. It returns whether the jump was taken.
func (a *ALU) CondJump(signed bool, comparison Comparison, equal bool) bool {
	take := a.ConditionHolds(signed, comparison, equal)
	if take {
		a.Jump()
	}
	return take
}

// ConditionHolds evaluates the same relation CondJump does, without
// jumping — used by control-unit variants that need a negated relation
// (e.g. "not equal", "greater-or-equal") that Comparison cannot name
// directly.
func (a *ALU) ConditionHolds(signed bool, comparison Comparison, equal bool) bool {
	zf, sf, cf, of, _ := a.ReadFlags()

	less := cf
	if signed {
		less = sf != of
	}

	switch comparison {
	case Equal:
		return zf
	case Less:
		return less || (equal && zf)
	case Greater:
		greater := !less && !zf
		return greater || (equal && zf)
	}
	return false
}
