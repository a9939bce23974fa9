package cu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/cu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

const testWordBits = 16
const testAddressBits = 8

func harness(t *testing.T, v cu.Variant, protected bool) (*register.Memory, *ram.RAM, *alu.ALU) {
	t.Helper()
	m := ram.New(testAddressBits, testWordBits, protected)
	regs := register.New(v.RegisterWidths())
	a := alu.New(regs, v.AluRegisters())
	return regs, m, a
}

func instr(fields ...uint64) cell.Cell {
	c := cell.New(testWordBits, fields[0])
	for _, f := range fields[1:] {
		c = cell.Concat(c, cell.New(testWordBits, f))
	}
	return c
}

func TestMM2Add(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, instr(uint64(cu.Add), 8, 10)))
	require.NoError(t, m.Put(8, cell.New(testWordBits, 3)))
	require.NoError(t, m.Put(10, cell.New(testWordBits, 4)))

	cu.Step(v, regs, m, a)

	got, err := m.Fetch(8, testWordBits)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.Value())
	require.Equal(t, uint64(3), regs.Fetch(register.PC).Value())
	require.False(t, a.IsHalted())
}

func TestMM2CompAndJump(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	// comp M[8],M[10] (equal values -> ZF=1), then jeq to address 9.
	require.NoError(t, m.Put(0, instr(uint64(cu.Comp), 8, 10)))
	require.NoError(t, m.Put(3, instr(uint64(cu.Jeq), 0, 9)))
	require.NoError(t, m.Put(8, cell.New(testWordBits, 5)))
	require.NoError(t, m.Put(10, cell.New(testWordBits, 5)))

	cu.Step(v, regs, m, a)
	require.Equal(t, uint64(3), regs.Fetch(register.PC).Value())

	cu.Step(v, regs, m, a)
	require.Equal(t, uint64(9), regs.Fetch(register.PC).Value())
}

func TestMM2SignedDivisionByZeroHalts(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, instr(uint64(cu.SDiv), 8, 10)))
	require.NoError(t, m.Put(8, cell.New(testWordBits, 7)))
	require.NoError(t, m.Put(10, cell.New(testWordBits, 0)))

	cu.Step(v, regs, m, a)
	require.True(t, a.IsHalted())
}

func TestProtectedMemoryViolationHalts(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, true)

	require.NoError(t, m.Put(0, instr(uint64(cu.Add), 8, 10)))
	require.NoError(t, m.Put(8, cell.New(testWordBits, 1)))
	// address 10 is never written: reading it should halt.

	cu.Step(v, regs, m, a)
	require.True(t, a.IsHalted())
}

func TestMM2UnknownOpcodeHalts(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, instr(0xFF, 0, 0)))
	cu.Step(v, regs, m, a)
	require.True(t, a.IsHalted())
}

func TestMM2ReservedBitsOnJumpHalts(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, instr(uint64(cu.Jump), 1, 9))) // address1 must be zero
	cu.Step(v, regs, m, a)
	require.True(t, a.IsHalted())
}

func TestHaltRequiresFullWidthZero(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, instr(uint64(cu.Halt), 0, 1))) // a2 nonzero: reserved-bits halt, not a clean halt
	cu.Step(v, regs, m, a)
	require.True(t, a.IsHalted())
}

func mm1Instr(op cu.Opcode, a1 uint64) cell.Cell {
	return cell.Concat(cell.New(testWordBits, uint64(op)), cell.New(testWordBits, a1))
}

func TestMM1AccumulatorSequence(t *testing.T) {
	v := cu.NewOneAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, mm1Instr(cu.Move, 0x10)))
	require.NoError(t, m.Put(2, mm1Instr(cu.Add, 0x12)))
	require.NoError(t, m.Put(4, mm1Instr(cu.Store, 0x14)))
	require.NoError(t, m.Put(0x10, cell.New(testWordBits, 40)))
	require.NoError(t, m.Put(0x12, cell.New(testWordBits, 2)))

	cu.Step(v, regs, m, a)
	require.Equal(t, uint64(40), regs.Fetch(register.R1).Value())
	cu.Step(v, regs, m, a)
	require.Equal(t, uint64(42), regs.Fetch(register.R1).Value())
	cu.Step(v, regs, m, a)

	got, err := m.Fetch(0x14, testWordBits)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Value())
	require.False(t, a.IsHalted())
}

func TestMM0StackArithmetic(t *testing.T) {
	v := cu.NewZeroAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, mm1Instr(cu.Push, 0x10)))
	require.NoError(t, m.Put(2, mm1Instr(cu.Push, 0x12)))
	require.NoError(t, m.Put(4, mm1Instr(cu.Add, 0)))
	require.NoError(t, m.Put(6, mm1Instr(cu.Pop, 0x14)))
	require.NoError(t, m.Put(0x10, cell.New(testWordBits, 19)))
	require.NoError(t, m.Put(0x12, cell.New(testWordBits, 23)))

	for i := 0; i < 4; i++ {
		cu.Step(v, regs, m, a)
	}
	require.False(t, a.IsHalted())

	got, err := m.Fetch(0x14, testWordBits)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Value())
	require.Equal(t, uint64(0), regs.Fetch(register.SP).Value())
}

func TestHaltIdempotentFurtherSteps(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	regs, m, a := harness(t, v, false)

	require.NoError(t, m.Put(0, instr(uint64(cu.Halt), 0, 0)))
	cu.Step(v, regs, m, a)
	require.True(t, a.IsHalted())
	pcAfterHalt := regs.Fetch(register.PC).Value()

	cu.Step(v, regs, m, a)
	require.Equal(t, pcAfterHalt, regs.Fetch(register.PC).Value())
	require.True(t, a.IsHalted())
}

func TestDisassembleRoundTripsKnownOpcodes(t *testing.T) {
	v := cu.NewTwoAddress(cu.Config{WordBits: testWordBits, AddressBits: testAddressBits})
	_, m, _ := harness(t, v, false)

	for op := range v.KnownOpcodes() {
		require.NoError(t, m.Put(0, instr(uint64(op), 0, 0)))
		out := cu.Disassemble(v, m, 0, 3)
		require.Contains(t, out, op.Mnemonic())
		back, ok := cu.OpcodeByMnemonic(op.Mnemonic())
		require.True(t, ok)
		require.Equal(t, op, back)
	}
}
