// Package cu implements the control-unit family: a shared
// fetch/decode/load/execute/write-back skeleton (Step) and one Variant
// implementation per instruction format (mm-0 through mm-3), matching
// spec §4.4 and the re-architecture called for in spec §9 — a central
// skeleton parameterized by an interface rather than the classical
// inheritance hierarchy the original used.
package cu

import "github.com/modelmachine/modelmachine/internal/machine/alu"

// Opcode identifies an instruction's operation. Classification into the
// ARITHMETIC / JUMPS / DWORD_WRITE_BACK families is a compile-time
// predicate table (below), not a runtime tag check, per the spec's
// re-architecture note on opcode sets.
type Opcode uint8

const (
	Nop Opcode = iota
	Add
	Sub
	UMul
	SMul
	UDiv
	SDiv
	UMod
	SMod
	Move
	Store
	Comp
	Jump
	Jeq
	Jneq
	SJl
	SJgeq
	SJleq
	SJg
	UJl
	UJgeq
	UJleq
	UJg
	Push
	Pop
	Halt
)

var mnemonics = map[Opcode]string{
	Nop: "nop", Add: "add", Sub: "sub", UMul: "umul", SMul: "smul",
	UDiv: "udiv", SDiv: "sdiv", UMod: "umod", SMod: "smod",
	Move: "move", Store: "store", Comp: "comp",
	Jump: "jump", Jeq: "jeq", Jneq: "jneq",
	SJl: "sjl", SJgeq: "sjgeq", SJleq: "sjleq", SJg: "sjg",
	UJl: "ujl", UJgeq: "ujgeq", UJleq: "ujleq", UJg: "ujg",
	Push: "push", Pop: "pop", Halt: "halt",
}

var mnemonicToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// Mnemonic returns the assembler/disassembler text for an opcode.
func (o Opcode) Mnemonic() string {
	if name, ok := mnemonics[o]; ok {
		return name
	}
	return "???"
}

// OpcodeByMnemonic looks up an opcode by its assembler text.
func OpcodeByMnemonic(s string) (Opcode, bool) {
	op, ok := mnemonicToOpcode[s]
	return op, ok
}

// Arithmetic is the ARITHMETIC opcode family: every operation the ALU
// executes against R1/R2, producing a result in S.
var Arithmetic = map[Opcode]bool{
	Add: true, Sub: true, UMul: true, SMul: true,
	UDiv: true, SDiv: true, UMod: true, SMod: true,
}

// Jumps is the JUMPS opcode family: every opcode that may redirect PC.
var Jumps = map[Opcode]bool{
	Jump: true, Jeq: true, Jneq: true,
	SJl: true, SJgeq: true, SJleq: true, SJg: true,
	UJl: true, UJgeq: true, UJleq: true, UJg: true,
}

// DwordWriteBack is the subset of ARITHMETIC that writes two result
// words: UDiv/SDiv write their quotient to the first write-back address
// and their remainder to the word immediately after it, mirroring a
// hardware divide instruction producing quotient and remainder together.
var DwordWriteBack = map[Opcode]bool{
	UDiv: true, SDiv: true,
}

// IsArithmetic reports whether o is in the ARITHMETIC family.
func (o Opcode) IsArithmetic() bool { return Arithmetic[o] }

// IsJump reports whether o is in the JUMPS family.
func (o Opcode) IsJump() bool { return Jumps[o] }

// IsDwordWriteBack reports whether o writes a second result word.
func (o Opcode) IsDwordWriteBack() bool { return DwordWriteBack[o] }

// condition describes the signedness and relation a conditional jump
// opcode tests, decoded once per opcode rather than at every step.
type condition struct {
	signed     bool
	comparison alu.Comparison
	equal      bool
}

// conditions maps each conditional-jump opcode to the (signedness,
// relation, equal-inclusive) triple ALU.CondJump needs. Jump itself is
// unconditional and handled separately.
var conditions = map[Opcode]condition{
	Jeq:   {signed: true, comparison: alu.Equal},
	Jneq:  {signed: true, comparison: alu.Equal}, // negated by the caller
	SJl:   {signed: true, comparison: alu.Less},
	SJgeq: {signed: true, comparison: alu.Less}, // negated by the caller
	SJleq: {signed: true, comparison: alu.Less, equal: true},
	SJg:   {signed: true, comparison: alu.Greater},
	UJl:   {signed: false, comparison: alu.Less},
	UJgeq: {signed: false, comparison: alu.Less}, // negated by the caller
	UJleq: {signed: false, comparison: alu.Less, equal: true},
	UJg:   {signed: false, comparison: alu.Greater},
}

// negated opcodes express "not less" / "not equal" relations that
// alu.Comparison cannot name directly (there's no NotEqual/GreaterOrEqual
// constant) — for these the control unit negates ConditionHolds' result
// and calls Jump itself instead of calling CondJump.
var negated = map[Opcode]bool{
	Jneq: true, SJgeq: true, UJgeq: true,
}
