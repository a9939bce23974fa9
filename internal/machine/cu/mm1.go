package cu

import (
	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// OneAddress is the mm-1 accumulator variant: instructions are
// [opcode | address1]. R1 is the accumulator and persists across
// instructions — arithmetic reads address1 into R2 and folds it into the
// accumulator (S is bound to R1 itself, so Execute updates the
// accumulator directly); Move ("load") replaces the accumulator with
// RAM[address1]; Store writes the accumulator to RAM[address1]; jumps
// take their target from address1 directly (no reserved address field to
// check, since there's only ever one address).
type OneAddress struct {
	cfg  Config
	opts map[Opcode]bool
}

// NewOneAddress builds the mm-1 variant for the given word/address widths.
func NewOneAddress(cfg Config) *OneAddress {
	known := map[Opcode]bool{Move: true, Store: true, Halt: true}
	for op := range Arithmetic {
		known[op] = true
	}
	for op := range Jumps {
		known[op] = true
	}
	return &OneAddress{cfg: cfg, opts: known}
}

func (v *OneAddress) Name() string                 { return "mm-1" }
func (v *OneAddress) IRBits() int                   { return 2 * v.cfg.WordBits }
func (v *OneAddress) FieldCount() int               { return 1 }
func (v *OneAddress) KnownOpcodes() map[Opcode]bool { return v.opts }

// AluRegisters binds S to R1 so every arithmetic Execute call updates the
// accumulator in place instead of a separate result register; RES reuses
// R2 as a scratch slot (mm-1 has no second write-back address, so a
// div/mod's remainder is computed but never has anywhere to be written).
func (v *OneAddress) AluRegisters() alu.Registers {
	return alu.Registers{R1: register.R1, R2: register.R2, S: register.R1, RES: register.R2, ADDR: register.ADDR}
}

func (v *OneAddress) RegisterWidths() map[register.Name]int {
	w := v.cfg.WordBits
	return map[register.Name]int{
		register.PC: w, register.IR: v.IRBits(), register.FLAGS: w,
		register.ADDR: w, register.R1: w, register.R2: w,
	}
}

func (v *OneAddress) Decode(ir cell.Cell) (Decoded, error) {
	w := v.cfg.WordBits
	op := Opcode(ir.Slice(w, 2*w).Value())
	a1 := ir.Slice(0, w).Value()

	if !v.opts[op] {
		return Decoded{}, errUnknownOpcode
	}
	if op == Halt && a1 != 0 {
		return Decoded{}, errReservedBits
	}
	return Decoded{Opcode: op, Addresses: []uint64{a1}}, nil
}

func (v *OneAddress) Load(regs *register.Memory, m *ram.RAM, d Decoded) error {
	w := v.cfg.WordBits
	a1 := d.Addresses[0]

	switch {
	case d.Opcode.IsArithmetic():
		r2, err := m.Fetch(a1, w)
		if err != nil {
			return err
		}
		_ = regs.Put(register.R2, r2)
	case d.Opcode == Move:
		value, err := m.Fetch(a1, w)
		if err != nil {
			return err
		}
		_ = regs.Put(register.R1, value)
	case d.Opcode.IsJump():
		_ = regs.Put(register.ADDR, cell.New(w, a1))
	}
	return nil
}

func (v *OneAddress) Execute(a *alu.ALU, d Decoded) {
	switch d.Opcode {
	case Add:
		a.Add()
	case Sub:
		a.Sub()
	case UMul:
		a.UMul()
	case SMul:
		a.SMul()
	case UDiv:
		a.UDiv()
	case SDiv:
		a.SDiv()
	case UMod:
		a.UMod()
	case SMod:
		a.SMod()
	case Move, Store:
		// Move already replaced the accumulator during Load; Store
		// reads it during WriteBack. Neither touches the ALU.
	case Jump:
		a.Jump()
	default:
		if d.Opcode.IsJump() {
			condJump(a, d.Opcode)
		}
	}
}

func (v *OneAddress) WriteBack(regs *register.Memory, m *ram.RAM, d Decoded) error {
	if d.Opcode == Store {
		return m.Put(d.Addresses[0], regs.Fetch(register.R1))
	}
	return nil
}
