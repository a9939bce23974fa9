package cu

import (
	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// TwoAddress is the mm-2 variant: instructions are
// [opcode | address1 | address2], each field WordBits wide. Arithmetic
// reads both operands from RAM and writes the result back to address1;
// move reads address2 and writes it to address1; jumps reserve address1
// (must be zero) and take their target from address2. Grounded on
// model-machine's ControlUnit2: LOAD_R1R2 = ARITHMETIC | {comp},
// WB_R1 = ARITHMETIC | {move}.
type TwoAddress struct {
	cfg  Config
	opts map[Opcode]bool
}

// NewTwoAddress builds the mm-2 variant for the given word/address widths.
func NewTwoAddress(cfg Config) *TwoAddress {
	known := map[Opcode]bool{Move: true, Comp: true, Halt: true}
	for op := range Arithmetic {
		known[op] = true
	}
	for op := range Jumps {
		known[op] = true
	}
	return &TwoAddress{cfg: cfg, opts: known}
}

func (v *TwoAddress) Name() string                  { return "mm-2" }
func (v *TwoAddress) IRBits() int                    { return 3 * v.cfg.WordBits }
func (v *TwoAddress) FieldCount() int                { return 2 }
func (v *TwoAddress) KnownOpcodes() map[Opcode]bool { return v.opts }
func (v *TwoAddress) AluRegisters() alu.Registers {
	return alu.Registers{R1: register.R1, R2: register.R2, S: register.S, RES: register.RES, ADDR: register.ADDR}
}

func (v *TwoAddress) RegisterWidths() map[register.Name]int {
	w := v.cfg.WordBits
	return map[register.Name]int{
		register.PC: w, register.IR: v.IRBits(), register.FLAGS: w,
		register.ADDR: w, register.R1: w, register.R2: w, register.S: w, register.RES: w,
	}
}

func (v *TwoAddress) Decode(ir cell.Cell) (Decoded, error) {
	w := v.cfg.WordBits
	op := Opcode(ir.Slice(2*w, 3*w).Value())
	a1 := ir.Slice(w, 2*w).Value()
	a2 := ir.Slice(0, w).Value()

	if !v.opts[op] {
		return Decoded{}, errUnknownOpcode
	}
	switch {
	case op == Halt:
		if a1 != 0 || a2 != 0 {
			return Decoded{}, errReservedBits
		}
	case op.IsJump():
		if a1 != 0 {
			return Decoded{}, errReservedBits
		}
	}
	return Decoded{Opcode: op, Addresses: []uint64{a1, a2}}, nil
}

func (v *TwoAddress) Load(regs *register.Memory, m *ram.RAM, d Decoded) error {
	w := v.cfg.WordBits
	a1, a2 := d.Addresses[0], d.Addresses[1]

	switch {
	case d.Opcode.IsArithmetic() || d.Opcode == Comp:
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
	case d.Opcode == Move:
		r2, err := m.Fetch(a2, w)
		if err != nil {
			return err
		}
		_ = regs.Put(register.R1, r2)
	case d.Opcode.IsJump():
		_ = regs.Put(register.ADDR, cell.New(w, a2))
	}
	return nil
}

func (v *TwoAddress) Execute(a *alu.ALU, d Decoded) {
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
	case Comp:
		a.Sub()
	case Move:
		// R1 already holds the value to write back; no ALU op.
	case Jump:
		a.Jump()
	default:
		if d.Opcode.IsJump() {
			condJump(a, d.Opcode)
		}
	}
}

func (v *TwoAddress) WriteBack(regs *register.Memory, m *ram.RAM, d Decoded) error {
	a1 := d.Addresses[0]
	switch {
	case d.Opcode.IsDwordWriteBack():
		if err := m.Put(a1, regs.Fetch(register.S)); err != nil {
			return err
		}
		return m.Put(a1+1, regs.Fetch(register.RES))
	case d.Opcode.IsArithmetic():
		return m.Put(a1, regs.Fetch(register.S))
	case d.Opcode == Move:
		return m.Put(a1, regs.Fetch(register.R1))
	}
	return nil
}
