package cu

import (
	"fmt"
	"strings"

	"github.com/modelmachine/modelmachine/internal/machine/ram"
)

// Disassemble renders the RAM words in [start, end) as one mnemonic per
// instruction, read-only and independent of execution (spec addition:
// §6.1 of SPEC_FULL.md). A word that fails to decode (unknown opcode or a
// reserved-bits violation) is rendered as a raw hex word and disassembly
// resumes at the next word, so a data region embedded in the program
// doesn't abort the listing.
func Disassemble(v Variant, m *ram.RAM, start, end uint64) string {
	var b strings.Builder
	wordsPerInstr := v.IRBits() / m.WordBits()

	addr := start
	for addr < end {
		ir, err := m.Fetch(addr, v.IRBits())
		if err != nil {
			fmt.Fprintf(&b, "%04x: <unreadable>\n", addr)
			addr++
			continue
		}
		d, err := v.Decode(ir)
		if err != nil {
			word := ir.Slice(v.IRBits()-m.WordBits(), v.IRBits())
			fmt.Fprintf(&b, "%04x: .word 0x%x\n", addr, word.Value())
			addr++
			continue
		}
		fmt.Fprintf(&b, "%04x: %s", addr, d.Opcode.Mnemonic())
		for _, a := range d.Addresses {
			fmt.Fprintf(&b, " 0x%x", a)
		}
		b.WriteByte('\n')
		addr += uint64(wordsPerInstr)
	}
	return b.String()
}
