// Package register implements the model machine's register file: a small,
// fixed set of named cells with declared widths. Each control-unit
// variant declares the subset of the names below that it uses: all of
// them declare PC, IR, FLAGS, ADDR, R1 and R2; mm-1 has no S or RES; only
// the stack machine (mm-0) adds SP.
package register

import (
	"fmt"

	"github.com/modelmachine/modelmachine/internal/cell"
)

// Name identifies a register.
type Name string

// Register names used across the control-unit variants.
const (
	PC    Name = "PC" // instruction pointer / IP
	IR    Name = "IR" // instruction register, holds the fetched instruction
	FLAGS Name = "FLAGS"
	ADDR  Name = "ADDR" // jump target staging register
	R1    Name = "R1"   // first ALU operand; doubles as the mm-1 accumulator
	R2    Name = "R2"   // second ALU operand
	S     Name = "S"    // ALU result
	RES   Name = "RES"  // second write-back register for dword results
	SP    Name = "SP"   // mm-0 stack pointer
)

// Memory is a name -> cell.Cell map with width checking on every write,
// matching spec §4.2: fetch of a declared register never fails, put fails
// if the cell's width doesn't match the register's declared width.
type Memory struct {
	widths map[Name]int
	cells  map[Name]cell.Cell
}

// New builds a register file from a name->width declaration. Every
// register starts zeroed at its declared width.
func New(widths map[Name]int) *Memory {
	m := &Memory{
		widths: make(map[Name]int, len(widths)),
		cells:  make(map[Name]cell.Cell, len(widths)),
	}
	for name, width := range widths {
		m.widths[name] = width
		m.cells[name] = cell.Zero(width)
	}
	return m
}

// Fetch returns the current value of name. It panics if name was never
// declared — a programmer error, since the control unit's register set is
// fixed at construction time.
func (m *Memory) Fetch(name Name) cell.Cell {
	c, ok := m.cells[name]
	if !ok {
		panic(fmt.Sprintf("register: unknown register %q", name))
	}
	return c
}

// Put stores c into name. It fails if c's width doesn't match the
// register's declared width, or if name was never declared.
func (m *Memory) Put(name Name, c cell.Cell) error {
	width, ok := m.widths[name]
	if !ok {
		return fmt.Errorf("register: unknown register %q", name)
	}
	if c.Width() != width {
		return fmt.Errorf("register: width mismatch writing %q: got %d, want %d", name, c.Width(), width)
	}
	m.cells[name] = c
	return nil
}

// Width returns the declared width of name.
func (m *Memory) Width(name Name) int {
	return m.widths[name]
}

// Has reports whether name was declared in this register file.
func (m *Memory) Has(name Name) bool {
	_, ok := m.widths[name]
	return ok
}

// Names returns the declared register names, for transcripts/printers.
func (m *Memory) Names() []Name {
	names := make([]Name, 0, len(m.widths))
	for name := range m.widths {
		names = append(names, name)
	}
	return names
}
