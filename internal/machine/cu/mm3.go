package cu

import (
	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// ThreeAddress is the mm-3 variant: instructions are
// [opcode | address1 | address2 | address3]. Arithmetic reads address1
// and address2, writes the result to address3 — a destination distinct
// from both sources, unlike mm-2 where address1 doubles as both a source
// and the destination. Jumps reserve address1/address2 and take their
// target from address3.
type ThreeAddress struct {
	cfg  Config
	opts map[Opcode]bool
}

// NewThreeAddress builds the mm-3 variant for the given word/address widths.
func NewThreeAddress(cfg Config) *ThreeAddress {
	known := map[Opcode]bool{Halt: true}
	for op := range Arithmetic {
		known[op] = true
	}
	for op := range Jumps {
		known[op] = true
	}
	return &ThreeAddress{cfg: cfg, opts: known}
}

func (v *ThreeAddress) Name() string                 { return "mm-3" }
func (v *ThreeAddress) IRBits() int                   { return 4 * v.cfg.WordBits }
func (v *ThreeAddress) FieldCount() int               { return 3 }
func (v *ThreeAddress) KnownOpcodes() map[Opcode]bool { return v.opts }
func (v *ThreeAddress) AluRegisters() alu.Registers {
	return alu.Registers{R1: register.R1, R2: register.R2, S: register.S, RES: register.RES, ADDR: register.ADDR}
}

func (v *ThreeAddress) RegisterWidths() map[register.Name]int {
	w := v.cfg.WordBits
	return map[register.Name]int{
		register.PC: w, register.IR: v.IRBits(), register.FLAGS: w,
		register.ADDR: w, register.R1: w, register.R2: w, register.S: w, register.RES: w,
	}
}

func (v *ThreeAddress) Decode(ir cell.Cell) (Decoded, error) {
	w := v.cfg.WordBits
	op := Opcode(ir.Slice(3*w, 4*w).Value())
	a1 := ir.Slice(2*w, 3*w).Value()
	a2 := ir.Slice(w, 2*w).Value()
	a3 := ir.Slice(0, w).Value()

	if !v.opts[op] {
		return Decoded{}, errUnknownOpcode
	}
	switch {
	case op == Halt:
		if a1 != 0 || a2 != 0 || a3 != 0 {
			return Decoded{}, errReservedBits
		}
	case op.IsJump():
		if a1 != 0 || a2 != 0 {
			return Decoded{}, errReservedBits
		}
	}
	return Decoded{Opcode: op, Addresses: []uint64{a1, a2, a3}}, nil
}

func (v *ThreeAddress) Load(regs *register.Memory, m *ram.RAM, d Decoded) error {
	w := v.cfg.WordBits
	a1, a2 := d.Addresses[0], d.Addresses[1]

	switch {
	case d.Opcode.IsArithmetic():
		r1, err := m.Fetch(a1, w)
		if err != nil {
			return err
		}
		r2, err := m.Fetch(a2, w)
		if err != nil {
			return err
		}
		_ = regs.Put(register.R1, r1)
		_ = regs.Put(register.R2, r2)
	case d.Opcode.IsJump():
		_ = regs.Put(register.ADDR, cell.New(w, d.Addresses[2]))
	}
	return nil
}

func (v *ThreeAddress) Execute(a *alu.ALU, d Decoded) {
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
	case Jump:
		a.Jump()
	default:
		if d.Opcode.IsJump() {
			condJump(a, d.Opcode)
		}
	}
}

func (v *ThreeAddress) WriteBack(regs *register.Memory, m *ram.RAM, d Decoded) error {
	a3 := d.Addresses[2]
	switch {
	case d.Opcode.IsDwordWriteBack():
		if err := m.Put(a3, regs.Fetch(register.S)); err != nil {
			return err
		}
		return m.Put(a3+1, regs.Fetch(register.RES))
	case d.Opcode.IsArithmetic():
		return m.Put(a3, regs.Fetch(register.S))
	}
	return nil
}
