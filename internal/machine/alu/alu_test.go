package alu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

const width = 8

func newALU() (*alu.ALU, *register.Memory) {
	regs := register.New(map[register.Name]int{
		register.FLAGS: width,
		register.ADDR:  width,
		register.PC:    width,
		register.R1:    width,
		register.R2:    width,
		register.S:     width,
		register.RES:   width,
	})
	bindings := alu.Registers{R1: register.R1, R2: register.R2, S: register.S, RES: register.RES, ADDR: register.ADDR}
	return alu.New(regs, bindings), regs
}

func set(regs *register.Memory, name register.Name, v uint64) {
	_ = regs.Put(name, cell.New(width, v))
}

func TestAddSetsCarryAndZero(t *testing.T) {
	a, regs := newALU()
	set(regs, register.R1, 1)
	set(regs, register.R2, 255)
	a.Add()
	require.Equal(t, uint64(0), regs.Fetch(register.S).Value())
	zf, _, cf, _, _ := a.ReadFlags()
	require.True(t, zf)
	require.True(t, cf)
}

func TestSubSelfIsZeroFlagNoCarry(t *testing.T) {
	a, regs := newALU()
	set(regs, register.R1, 42)
	set(regs, register.R2, 42)
	a.Sub()
	require.Equal(t, uint64(0), regs.Fetch(register.S).Value())
	zf, _, cf, _, _ := a.ReadFlags()
	require.True(t, zf)
	require.False(t, cf)
}

func TestUMulAndSMulProduceIdenticalBits(t *testing.T) {
	a1, regs1 := newALU()
	set(regs1, register.R1, 10)
	set(regs1, register.R2, 15)
	a1.UMul()

	a2, regs2 := newALU()
	set(regs2, register.R1, 10)
	set(regs2, register.R2, 15)
	a2.SMul()

	require.Equal(t, regs1.Fetch(register.S).Value(), regs2.Fetch(register.S).Value())
	require.Equal(t, uint64(150), regs1.Fetch(register.S).Value())
}

func TestSDivTruncatesTowardZeroAndWritesRemainder(t *testing.T) {
	a, regs := newALU()
	set(regs, register.R1, uint64(int64(-27)&0xFF))
	set(regs, register.R2, 5)
	a.SDiv()
	require.Equal(t, uint64(int64(-5)&0xFF), regs.Fetch(register.S).Value())
	require.Equal(t, uint64(int64(-2)&0xFF), regs.Fetch(register.RES).Value())

	_, sf, cf, _, _ := a.ReadFlags()
	require.True(t, sf)
	require.True(t, cf)
}

func TestDivisionByZeroHalts(t *testing.T) {
	a, regs := newALU()
	set(regs, register.R1, 10)
	set(regs, register.R2, 0)
	a.UDiv()
	require.True(t, a.IsHalted())
	require.Equal(t, alu.HaltDivisionByZero, a.HaltReason().Kind)
}

func TestHaltIsSticky(t *testing.T) {
	a, regs := newALU()
	a.Halt(alu.HaltReason{Kind: alu.HaltInstruction})
	set(regs, register.R1, 1)
	set(regs, register.R2, 1)
	a.Add()
	require.True(t, a.IsHalted())
	require.Equal(t, alu.HaltInstruction, a.HaltReason().Kind)
}

func TestCondJumpUnsignedVsSignedDisagree(t *testing.T) {
	// R1 = -10 (unsigned: a large value), R2 = 10. Sub sets flags for a
	// subsequent cond_jump to read: unsigned LESS says "false" (since
	// 246 > 10), signed LESS says "true" (since -10 < 10).
	a, regs := newALU()
	set(regs, register.R1, uint64(int64(-10)&0xFF))
	set(regs, register.R2, 10)
	a.Sub()
	set(regs, register.ADDR, 99)

	took := a.CondJump(false, alu.Less, false)
	require.False(t, took)

	set(regs, register.PC, 0)
	took = a.CondJump(true, alu.Less, false)
	require.True(t, took)
	require.Equal(t, uint64(99), regs.Fetch(register.PC).Value())
}

func TestCondJumpEqualOrsZeroFlag(t *testing.T) {
	a, regs := newALU()
	set(regs, register.R1, 5)
	set(regs, register.R2, 5)
	a.Sub() // ZF=1
	set(regs, register.ADDR, 7)

	require.True(t, a.CondJump(true, alu.Less, true))
	require.Equal(t, uint64(7), regs.Fetch(register.PC).Value())
}
