// Package asm is a minimal line-oriented loader satisfying the
// source-loader contract spec.md §6 describes as external: it builds a
// *cpu.CPU from program text, allocates the right control-unit variant,
// writes the program image into RAM, and records an output spec. The
// textual grammar itself is intentionally small — spec.md explicitly
// keeps the "real" assembly syntax out of the core's scope — but it
// follows the teacher's two-pass approach (vm/parse.go's preprocessLine,
// vm/vm.go's label-address regex substitution): one pass assigns every
// label an address, a second resolves operands and emits instruction
// words, so a jump can name a label defined later in the file.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/modelmachine/modelmachine/internal/cell"
	"github.com/modelmachine/modelmachine/internal/machine/cpu"
	"github.com/modelmachine/modelmachine/internal/machine/cu"
	"github.com/modelmachine/modelmachine/internal/machine/register"
)

// entry is one non-blank, non-label, non-directive source line: either
// an instruction (mnemonic + operand tokens) or a ".word" value.
type entry struct {
	lineNo    int
	isWord    bool
	mnemonic  string
	operands  []string
}

// Load reads a program from r and returns a ready-to-run CPU.
func Load(r io.Reader, protected bool) (*cpu.CPU, error) {
	variantName := ""
	wordBits := 16
	addressBits := 8
	entryPoint := uint64(0)
	var outRegs []register.Name
	var outCells []cpu.OutputCell

	labelAt := map[int]string{} // index into entries, 0-based: "this label precedes entry N"
	var entries []entry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(stripComment(scanner.Text()))
		if text == "" {
			continue
		}

		if strings.HasSuffix(text, ":") {
			name := strings.TrimSuffix(text, ":")
			labelAt[len(entries)] = name
			continue
		}

		fields := strings.Fields(text)
		switch fields[0] {
		case ".variant":
			variantName = fields[1]
		case ".word-bits":
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", lineNo, err)
			}
			wordBits = n
		case ".address-bits":
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", lineNo, err)
			}
			addressBits = n
		case ".entry":
			n, err := parseNumber(fields[1])
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", lineNo, err)
			}
			entryPoint = n
		case ".output":
			if len(fields) < 2 {
				return nil, fmt.Errorf("asm: line %d: .output needs arguments", lineNo)
			}
			switch fields[1] {
			case "reg":
				for _, name := range fields[2:] {
					outRegs = append(outRegs, register.Name(name))
				}
			case "cell":
				if len(fields) != 4 {
					return nil, fmt.Errorf("asm: line %d: .output cell <address> <bits>", lineNo)
				}
				a, err := parseNumber(fields[2])
				if err != nil {
					return nil, fmt.Errorf("asm: line %d: %w", lineNo, err)
				}
				bits, err := strconv.Atoi(fields[3])
				if err != nil {
					return nil, fmt.Errorf("asm: line %d: %w", lineNo, err)
				}
				outCells = append(outCells, cpu.OutputCell{Address: a, Bits: bits})
			default:
				return nil, fmt.Errorf("asm: line %d: unknown .output kind %q", lineNo, fields[1])
			}
		case ".word":
			entries = append(entries, entry{lineNo: lineNo, isWord: true, operands: fields[1:]})
		default:
			entries = append(entries, entry{lineNo: lineNo, mnemonic: fields[0], operands: fields[1:]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if variantName == "" {
		return nil, fmt.Errorf("asm: missing .variant directive")
	}

	variant, err := cu.New(variantName, cu.Config{WordBits: wordBits, AddressBits: addressBits})
	if err != nil {
		return nil, err
	}
	wordsPerInstr := uint64(1 + variant.FieldCount())

	// Pass 1: now that the variant (and so each instruction's word
	// count) is known, assign every entry and every label an address.
	labels := map[string]uint64{}
	addrs := make([]uint64, len(entries))
	var addr uint64
	for i, e := range entries {
		if name, ok := labelAt[i]; ok {
			labels[name] = addr
		}
		addrs[i] = addr
		if e.isWord {
			addr++
		} else {
			addr += wordsPerInstr
		}
	}
	if name, ok := labelAt[len(entries)]; ok {
		labels[name] = addr
	}

	// Pass 2: resolve operands (numeric or label) and emit words.
	c := cpu.New(variant, addressBits, wordBits, protected)
	for i, e := range entries {
		if e.isWord {
			if len(e.operands) != 1 {
				return nil, fmt.Errorf("asm: line %d: .word takes exactly one value", e.lineNo)
			}
			v, err := resolveOperand(e.operands[0], labels)
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", e.lineNo, err)
			}
			if err := c.RAM().Put(addrs[i], cell.New(wordBits, v)); err != nil {
				return nil, err
			}
			continue
		}

		op, ok := cu.OpcodeByMnemonic(e.mnemonic)
		if !ok {
			return nil, fmt.Errorf("asm: line %d: unknown mnemonic %q", e.lineNo, e.mnemonic)
		}
		if len(e.operands) != variant.FieldCount() {
			return nil, fmt.Errorf("asm: line %d: %s expects %d operands, got %d", e.lineNo, e.mnemonic, variant.FieldCount(), len(e.operands))
		}
		fields := make([]uint64, len(e.operands))
		for j, tok := range e.operands {
			v, err := resolveOperand(tok, labels)
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", e.lineNo, err)
			}
			fields[j] = v
		}
		if err := c.RAM().Put(addrs[i], cu.Encode(wordBits, op, fields...)); err != nil {
			return nil, err
		}
	}

	_ = c.Registers().Put(register.PC, cell.New(wordBits, entryPoint))
	c.SetOutputSpec(cpu.OutputSpec{Registers: outRegs, Cells: outCells})

	return c, nil
}

func resolveOperand(tok string, labels map[string]uint64) (uint64, error) {
	if a, ok := labels[tok]; ok {
		return a, nil
	}
	return parseNumber(tok)
}

func parseNumber(tok string) (uint64, error) {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		return strconv.ParseUint(tok[2:], 16, 64)
	}
	return strconv.ParseUint(tok, 10, 64)
}

func stripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		return line[:i]
	}
	return line
}
