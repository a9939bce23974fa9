// Command modelmachine is the CLI front end: run/debug/disasm
// subcommands over cobra, grounded on the pack's z80opt CLI
// (oisee-z80-optimizer/cmd/z80opt/main.go) layered over the same kind
// of register/flag-driven core this repository has.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelmachine/modelmachine/internal/asm"
	"github.com/modelmachine/modelmachine/internal/config"
	"github.com/modelmachine/modelmachine/internal/debugger"
	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/cpu"
	"github.com/modelmachine/modelmachine/internal/machine/cu"
	"github.com/modelmachine/modelmachine/internal/printer"
)

// exitCoder lets RunE signal a specific process exit code (spec §6: 0
// clean halt, 1 usage error, 2 halt from division-by-zero or a
// protected-memory read) while still going through cobra's normal
// error-printing path.
type exitCoder struct {
	err  error
	code int
}

func (e *exitCoder) Error() string { return e.err.Error() }

func main() {
	defaults := config.Load()
	var protectMemory bool

	root := &cobra.Command{
		Use:   "modelmachine",
		Short: "A configurable model-machine CPU simulator",
	}
	root.PersistentFlags().BoolVarP(&protectMemory, "protect-memory", "m", defaults.ProtectMemory, "halt on reads of never-written memory")

	root.AddCommand(
		runCmd(&protectMemory),
		debugCmd(&protectMemory),
		disasmCmd(),
	)

	if err := root.Execute(); err != nil {
		if ec, ok := err.(*exitCoder); ok {
			fmt.Fprintln(os.Stderr, ec.err)
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

func loadFile(path string, protectMemory bool) (*cpu.CPU, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &exitCoder{err: err, code: 1}
	}
	defer f.Close()

	c, err := asm.Load(f, protectMemory)
	if err != nil {
		return nil, &exitCoder{err: err, code: 1}
	}
	return c, nil
}

func runCmd(protectMemory *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Load a program, run it to HALT, and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadFile(args[0], *protectMemory)
			if err != nil {
				return err
			}
			c.Run()
			printer.Print(os.Stdout, c)
			return exitForHalt(c)
		},
	}
}

func debugCmd(protectMemory *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file>",
		Short: "Load a program and enter interactive single-stepping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadFile(args[0], *protectMemory)
			if err != nil {
				return err
			}
			debugger.New(c).Run(os.Stdin, os.Stdout)
			return exitForHalt(c)
		},
	}
}

func disasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file>",
		Short: "Load a program and print its disassembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadFile(args[0], false)
			if err != nil {
				return err
			}
			fmt.Print(cu.Disassemble(c.Variant(), c.RAM(), 0, c.RAM().Size()))
			return nil
		},
	}
}

// exitForHalt maps a finished run's halt reason to the process exit
// code spec.md §6 documents: 0 on a clean HALT instruction, 2 on a
// division-by-zero or protected-memory halt.
func exitForHalt(c *cpu.CPU) error {
	reason := c.HaltReason()
	if reason.Kind == alu.HaltDivisionByZero || reason.Kind == alu.HaltProtectedMemory {
		return &exitCoder{err: fmt.Errorf("halted: %s: %s", reason.Kind, reason.Message), code: 2}
	}
	return nil
}
