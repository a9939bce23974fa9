package cu

import (
	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// ZeroAddress is the mm-0 stack variant: most opcodes take no operand at
// all and work purely against a runtime stack kept in RAM; push/pop/jump
// take one address field, so every instruction is fetched at a uniform
// 2*WordBits width with the operand field simply zero (and
// reserved-checked) when unused. The stack grows upward from address 0:
// SP always names the next free slot, push writes at SP then increments
// it, pop decrements SP then reads the freed slot.
type ZeroAddress struct {
	cfg  Config
	opts map[Opcode]bool
}

// NewZeroAddress builds the mm-0 variant for the given word/address widths.
func NewZeroAddress(cfg Config) *ZeroAddress {
	known := map[Opcode]bool{Push: true, Pop: true, Comp: true, Halt: true}
	for op := range Arithmetic {
		known[op] = true
	}
	for op := range Jumps {
		known[op] = true
	}
	return &ZeroAddress{cfg: cfg, opts: known}
}

func (v *ZeroAddress) Name() string                 { return "mm-0" }
func (v *ZeroAddress) IRBits() int                   { return 2 * v.cfg.WordBits }
func (v *ZeroAddress) FieldCount() int               { return 1 }
func (v *ZeroAddress) KnownOpcodes() map[Opcode]bool { return v.opts }
func (v *ZeroAddress) AluRegisters() alu.Registers {
	return alu.Registers{R1: register.R1, R2: register.R2, S: register.S, RES: register.RES, ADDR: register.ADDR}
}

func (v *ZeroAddress) RegisterWidths() map[register.Name]int {
	w := v.cfg.WordBits
	return map[register.Name]int{
		register.PC: w, register.IR: v.IRBits(), register.FLAGS: w,
		register.ADDR: w, register.R1: w, register.R2: w, register.S: w, register.RES: w,
		register.SP: w,
	}
}

// hasOperand reports whether op's instruction carries a meaningful
// address field; every other opcode's field must be reserved zero.
func hasOperand(op Opcode) bool {
	return op == Push || op == Pop || op.IsJump()
}

func (v *ZeroAddress) Decode(ir cell.Cell) (Decoded, error) {
	w := v.cfg.WordBits
	op := Opcode(ir.Slice(w, 2*w).Value())
	a1 := ir.Slice(0, w).Value()

	if !v.opts[op] {
		return Decoded{}, errUnknownOpcode
	}
	if !hasOperand(op) && a1 != 0 {
		return Decoded{}, errReservedBits
	}
	return Decoded{Opcode: op, Addresses: []uint64{a1}}, nil
}

func (v *ZeroAddress) pop(regs *register.Memory, m *ram.RAM) (cell.Cell, error) {
	w := v.cfg.WordBits
	sp := regs.Fetch(register.SP).Value() - 1
	value, err := m.Fetch(sp, w)
	if err != nil {
		return cell.Cell{}, err
	}
	_ = regs.Put(register.SP, cell.New(w, sp))
	return value, nil
}

func (v *ZeroAddress) push(regs *register.Memory, m *ram.RAM, value cell.Cell) error {
	sp := regs.Fetch(register.SP).Value()
	if err := m.Put(sp, value); err != nil {
		return err
	}
	_ = regs.Put(register.SP, cell.New(v.cfg.WordBits, sp+1))
	return nil
}

func (v *ZeroAddress) Load(regs *register.Memory, m *ram.RAM, d Decoded) error {
	w := v.cfg.WordBits

	switch {
	case d.Opcode.IsArithmetic() || d.Opcode == Comp:
		b, err := v.pop(regs, m)
		if err != nil {
			return err
		}
		a, err := v.pop(regs, m)
		if err != nil {
			return err
		}
		_ = regs.Put(register.R1, a)
		_ = regs.Put(register.R2, b)
	case d.Opcode == Push:
		value, err := m.Fetch(d.Addresses[0], w)
		if err != nil {
			return err
		}
		_ = regs.Put(register.S, value)
	case d.Opcode.IsJump():
		_ = regs.Put(register.ADDR, cell.New(w, d.Addresses[0]))
	}
	return nil
}

func (v *ZeroAddress) Execute(a *alu.ALU, d Decoded) {
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
	case Jump:
		a.Jump()
	default:
		if d.Opcode.IsJump() {
			condJump(a, d.Opcode)
		}
	}
}

func (v *ZeroAddress) WriteBack(regs *register.Memory, m *ram.RAM, d Decoded) error {
	switch {
	case d.Opcode.IsDwordWriteBack():
		if err := v.push(regs, m, regs.Fetch(register.S)); err != nil {
			return err
		}
		return v.push(regs, m, regs.Fetch(register.RES))
	case d.Opcode.IsArithmetic():
		return v.push(regs, m, regs.Fetch(register.S))
	case d.Opcode == Push:
		return v.push(regs, m, regs.Fetch(register.S))
	case d.Opcode == Pop:
		value, err := v.pop(regs, m)
		if err != nil {
			return err
		}
		return m.Put(d.Addresses[0], value)
	}
	return nil
}
