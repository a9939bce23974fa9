// Package printer renders a finished run's output spec — the registers
// and RAM cells a loader asked to be surfaced (spec §6's result-printer
// contract) — to an io.Writer, in the teacher's plain fmt.Println
// transcript style rather than a structured logger (SPEC_FULL.md §4.2:
// this IS the simulator's product output, not operational logging).
package printer

import (
	"fmt"
	"io"

	"github.com/modelmachine/modelmachine/internal/machine/cpu"
)

// Print writes one line per requested register, then one line per
// requested RAM cell, in the order the loader recorded them. A halted
// machine's reason is reported first so a reader sees why before what.
func Print(w io.Writer, c *cpu.CPU) {
	if c.IsHalted() {
		reason := c.HaltReason()
		if reason.Kind == "" {
			fmt.Fprintln(w, "halted")
		} else {
			fmt.Fprintf(w, "halted: %s (%s)\n", reason.Kind, reason.Message)
		}
	}

	spec := c.OutputSpec()
	for _, name := range spec.Registers {
		fmt.Fprintf(w, "%s = %d\n", name, c.Registers().Fetch(name).Value())
	}
	for _, oc := range spec.Cells {
		value, err := c.FetchCell(oc.Address, oc.Bits)
		if err != nil {
			fmt.Fprintf(w, "[%d] = <%s>\n", oc.Address, err)
			continue
		}
		fmt.Fprintf(w, "[%d] = %d\n", oc.Address, value.Value())
	}
}
