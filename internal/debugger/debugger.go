// Package debugger implements an interactive single-step session around
// a *cpu.CPU, grounded on the teacher's RunProgramDebugMode: a small
// read-eval loop over stdin offering next/run/break commands, printing
// the machine's current state after each step. Breakpoints are kept
// here, outside the core, matching SPEC_FULL.md §6's note that the core
// only exposes Step/IsHalted.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/modelmachine/modelmachine/internal/machine/cpu"
	"github.com/modelmachine/modelmachine/internal/machine/cu"
	"github.com/modelmachine/modelmachine/internal/machine/register"
	"github.com/modelmachine/modelmachine/internal/printer"
)

// Session wraps a CPU with an address-keyed breakpoint set, the state a
// debug-mode front end needs beyond what cpu.CPU itself tracks. The
// transcript writer is passed to each call rather than stored.
type Session struct {
	cpu         *cpu.CPU
	breakpoints map[uint64]struct{}
}

// New builds a debugger session around c.
func New(c *cpu.CPU) *Session {
	return &Session{cpu: c, breakpoints: make(map[uint64]struct{})}
}

// ToggleBreakpoint sets a breakpoint at address if none exists there, or
// clears it if one already does. It returns whether a breakpoint is now
// set at address (idempotent: toggling twice is a no-op on the set).
func (s *Session) ToggleBreakpoint(address uint64) bool {
	if _, ok := s.breakpoints[address]; ok {
		delete(s.breakpoints, address)
		return false
	}
	s.breakpoints[address] = struct{}{}
	return true
}

// AtBreakpoint reports whether the CPU's current PC has a breakpoint set.
func (s *Session) AtBreakpoint() bool {
	pc := s.cpu.Registers().Fetch(register.PC).Value()
	_, ok := s.breakpoints[pc]
	return ok
}

// PrintState writes a one-line transcript of the machine's current PC,
// halt state, and step count, in the teacher's printCurrentState spirit.
func (s *Session) PrintState(w io.Writer) {
	fmt.Fprintln(w, s.cpu.String())
}

// PrintProgram disassembles [0, end) and writes the listing, the
// debugger's "program" command (teacher: vm.printProgram).
func (s *Session) PrintProgram(w io.Writer, end uint64) {
	fmt.Fprintln(w, cu.Disassemble(s.cpu.Variant(), s.cpu.RAM(), 0, end))
}

// Run drives an interactive read-eval loop over r, writing prompts and
// state transcripts to w, until the machine halts or r is exhausted.
// Commands: "n"/"next" steps one instruction, "r"/"run" free-runs until
// halt or a breakpoint, "b <addr>"/"break <addr>" toggles a breakpoint,
// "program" lists the loaded program.
func (s *Session) Run(r io.Reader, w io.Writer) {
	fmt.Fprint(w, "Commands:\n\tn or next: execute next instruction\n\tr or run: run program\n\tb or break <address>: toggle breakpoint\n\tprogram: list loaded instructions\n\n")
	s.PrintState(w)

	reader := bufio.NewReader(r)
	running := false
	for {
		if running {
			if s.cpu.IsHalted() || s.AtBreakpoint() {
				running = false
				if s.AtBreakpoint() {
					fmt.Fprintln(w, "breakpoint")
				}
				s.PrintState(w)
				if s.cpu.IsHalted() {
					printer.Print(w, s.cpu)
					return
				}
				continue
			}
			s.cpu.Step()
			continue
		}

		fmt.Fprint(w, "\n-> ")
		line, err := reader.ReadString('\n')
		line = strings.ToLower(strings.TrimSpace(line))
		if err != nil && line == "" {
			return
		}

		switch {
		case line == "n" || line == "next":
			s.cpu.Step()
			s.PrintState(w)
			if s.cpu.IsHalted() {
				printer.Print(w, s.cpu)
				return
			}
		case line == "r" || line == "run":
			running = true
		case line == "program":
			s.PrintProgram(w, s.cpu.RAM().Size())
		case strings.HasPrefix(line, "b") || strings.HasPrefix(line, "break"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				fmt.Fprintln(w, "usage: b <address>")
				continue
			}
			addr, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				fmt.Fprintln(w, "bad address:", err)
				continue
			}
			if s.ToggleBreakpoint(addr) {
				fmt.Fprintf(w, "breakpoint set at %d\n", addr)
			} else {
				fmt.Fprintf(w, "breakpoint cleared at %d\n", addr)
			}
		default:
			fmt.Fprintln(w, "unknown command:", line)
		}
	}
}
