// Package cpu is the composition root: it owns RAM, the register file,
// and the ALU, and drives a chosen control-unit Variant through them
// (spec §4.5). Step/Run are the only entry points a loader, debugger, or
// CLI needs.
package cpu

import (
	"fmt"
	"runtime/debug"

	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/cu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// OutputSpec names the registers and RAM cells a loader wants surfaced
// after a run, per spec §6's result-printer contract.
type OutputSpec struct {
	Registers []register.Name
	Cells     []OutputCell
}

// OutputCell names one RAM location (and its width in bits) to print.
type OutputCell struct {
	Address uint64
	Bits    int
}

// CPU composes the machine: it owns the RAM, registers and ALU it builds
// in New, bound to a control-unit Variant, none reassigned afterwards.
// The ALU holds a non-owning reference to the CPU's register file.
type CPU struct {
	variant cu.Variant
	regs    *register.Memory
	ram     *ram.RAM
	alu     *alu.ALU

	output OutputSpec

	// StepCount and OpcodeHistogram are supplemented telemetry (not in
	// spec.md) grounded on the teacher's live debug-mode transcript —
	// they report what ran, they never influence execution.
	StepCount       uint64
	OpcodeHistogram map[cu.Opcode]uint64
}

// New builds a CPU around a control-unit variant and a RAM of the given
// protection mode. The register file's widths and ALU bindings come from
// variant.RegisterWidths()/AluRegisters(), so every variant gets exactly
// the registers it declares (e.g. only mm-0 gets SP).
func New(variant cu.Variant, addressBits int, wordBits int, protected bool) *CPU {
	regs := register.New(variant.RegisterWidths())
	m := ram.New(addressBits, wordBits, protected)
	a := alu.New(regs, variant.AluRegisters())
	return &CPU{
		variant:         variant,
		regs:            regs,
		ram:             m,
		alu:             a,
		OpcodeHistogram: make(map[cu.Opcode]uint64),
	}
}

// Registers exposes the register file for the loader/printer/debugger.
func (c *CPU) Registers() *register.Memory { return c.regs }

// RAM exposes memory for the loader/printer/debugger.
func (c *CPU) RAM() *ram.RAM { return c.ram }

// Variant exposes the bound control-unit variant (used by the
// disassembler and the debugger's program listing).
func (c *CPU) Variant() cu.Variant { return c.variant }

// SetOutputSpec records what Step/Run's caller wants printed afterward,
// normally populated by the loader from the program's output directives.
func (c *CPU) SetOutputSpec(spec OutputSpec) { c.output = spec }

// OutputSpec returns the recorded output spec.
func (c *CPU) OutputSpec() OutputSpec { return c.output }

// IsHalted reports whether FLAGS.HALT is set.
func (c *CPU) IsHalted() bool { return c.alu.IsHalted() }

// HaltReason reports why the machine stopped, or the zero value if it
// hasn't (spec §4.1's HaltReason struct, surfaced for the printer/debugger).
func (c *CPU) HaltReason() alu.HaltReason { return c.alu.HaltReason() }

// Step runs exactly one fetch/decode/load/execute/write-back cycle. It is
// a no-op once halted, so a debugger can call it repeatedly without
// checking IsHalted first.
func (c *CPU) Step() {
	if c.alu.IsHalted() {
		return
	}
	opcode := cu.Step(c.variant, c.regs, c.ram, c.alu)
	c.StepCount++
	c.OpcodeHistogram[opcode]++
}

// Run steps until HALT is set. It disables the Go garbage collector for
// the duration, restoring whatever percentage was configured on entry
// (same discipline as the teacher's RunProgram). Steps still allocate
// (math/big arithmetic, decoded address slices), so that memory is not
// collected until Run returns.
func (c *CPU) Run() {
	old := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(old)
	for !c.alu.IsHalted() {
		c.Step()
	}
}

// FetchCell reads one RAM cell of the given bit width for the printer.
func (c *CPU) FetchCell(address uint64, bits int) (cell.Cell, error) {
	return c.ram.Fetch(address, bits)
}

// String renders a one-line transcript of the current PC, halt state and
// step count, in the teacher's printCurrentState spirit, for the debugger.
func (c *CPU) String() string {
	pc := c.regs.Fetch(register.PC)
	return fmt.Sprintf("PC=%d halted=%v steps=%d", pc.Value(), c.IsHalted(), c.StepCount)
}
