package cu

import "github.com/modelmachine/modelmachine/internal/cell"

// Encode packs an opcode and its address fields into one instruction
// cell, each field fieldBits wide, opcode most significant — the inverse
// of Decode's Slice calls. Used by the assembler and by tests that build
// instructions directly.
func Encode(fieldBits int, opcode Opcode, fields ...uint64) cell.Cell {
	c := cell.New(fieldBits, uint64(opcode))
	for _, f := range fields {
		c = cell.Concat(c, cell.New(fieldBits, f))
	}
	return c
}
