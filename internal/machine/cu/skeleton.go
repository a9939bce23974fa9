package cu

import (
	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// Config carries the widths a Variant is built against. WordBits is the
// RAM's word width and also the width of every ALU operand register
// (R1, R2, S, RES, ADDR) and of each address field packed into an
// instruction. AddressBits is the RAM's address space width and must not
// exceed WordBits, since an address must fit in one operand-width field.
type Config struct {
	WordBits    int
	AddressBits int
}

// Decoded holds one instruction's opcode and its address/operand fields,
// positionally interpreted by each Variant's Load/Execute/WriteBack.
type Decoded struct {
	Opcode    Opcode
	Addresses []uint64
}

// Variant implements one control-unit instruction format (mm-0..mm-3).
// Step drives every variant through the same fetch/decode/load/execute/
// write-back skeleton; only the phase bodies differ per variant, per the
// spec's re-architecture note preferring an interface-per-variant over a
// classical inheritance hierarchy.
type Variant interface {
	// Name is the assembler-facing variant identifier, e.g. "mm-2".
	Name() string
	// IRBits is the width of one fetched instruction.
	IRBits() int
	// FieldCount is the number of address fields every instruction in
	// this format carries (reserved-zero where an opcode doesn't use
	// one), used by the assembler to lay out operand tokens.
	FieldCount() int
	// KnownOpcodes is this variant's declared opcode set; anything else
	// decoded from an instruction is an unknown-opcode halt.
	KnownOpcodes() map[Opcode]bool
	// RegisterWidths declares every register this variant needs, with
	// its width, for register.New.
	RegisterWidths() map[register.Name]int
	// AluRegisters binds the ALU's R1/R2/S/RES/ADDR to this variant's
	// register set.
	AluRegisters() alu.Registers

	// Decode splits a fetched IR into an opcode and its address fields,
	// failing on an unknown opcode or a reserved-bit violation.
	Decode(ir cell.Cell) (Decoded, error)
	// Load stages operands into R1/R2/ADDR ahead of Execute.
	Load(regs *register.Memory, m *ram.RAM, d Decoded) error
	// Execute invokes the ALU for d.Opcode. HALT is handled by the
	// skeleton before Execute is ever called.
	Execute(a *alu.ALU, d Decoded)
	// WriteBack commits S (and RES, for dword write-back opcodes) to
	// their destination addresses.
	WriteBack(regs *register.Memory, m *ram.RAM, d Decoded) error
}

// Step runs one fetch/decode/load/execute/write-back cycle and returns
// the opcode it fetched (Nop if it halted before a decode could
// succeed), so a caller wanting per-opcode telemetry doesn't need a
// second RAM.Fetch of its own. Every in-band failure (unknown opcode,
// reserved-bit violation, protected memory read, division by zero)
// halts the ALU rather than returning an error — per spec §7, these are
// part of the machine's observable behavior, not exceptional control
// flow. Step is a no-op once halted.
func Step(v Variant, regs *register.Memory, m *ram.RAM, a *alu.ALU) Opcode {
	if a.IsHalted() {
		return Nop
	}

	pc := regs.Fetch(register.PC)
	ir, err := m.Fetch(pc.Value(), v.IRBits())
	if err != nil {
		a.Halt(haltReasonFor(err))
		return Nop
	}
	_ = regs.Put(register.IR, ir)

	advance := uint64(v.IRBits() / m.WordBits())
	_ = regs.Put(register.PC, cell.New(pc.Width(), pc.Value()+advance))

	decoded, err := v.Decode(ir)
	if err != nil {
		a.Halt(haltReasonFor(err))
		return Nop
	}

	if decoded.Opcode == Halt {
		a.Halt(alu.HaltReason{Kind: alu.HaltInstruction, Message: "halt instruction executed"})
		return Halt
	}

	if err := v.Load(regs, m, decoded); err != nil {
		a.Halt(haltReasonFor(err))
		return decoded.Opcode
	}

	v.Execute(a, decoded)
	if a.IsHalted() {
		return decoded.Opcode
	}

	if err := v.WriteBack(regs, m, decoded); err != nil {
		a.Halt(haltReasonFor(err))
		return decoded.Opcode
	}

	return decoded.Opcode
}
