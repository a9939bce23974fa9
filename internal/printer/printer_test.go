package printer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelmachine/modelmachine/internal/asm"
	"github.com/modelmachine/modelmachine/internal/printer"
)

func TestPrintRegistersAndCells(t *testing.T) {
	src := `
.variant mm-2
.word-bits 8
.address-bits 8
.entry 0
.output reg PC FLAGS
.output cell 6 8
add a b
halt 0 0
a:
.word 3
b:
.word 4
`
	c, err := asm.Load(strings.NewReader(src), false)
	require.NoError(t, err)
	c.Run()

	var buf bytes.Buffer
	printer.Print(&buf, c)

	out := buf.String()
	require.Contains(t, out, "halted:")
	require.Contains(t, out, "PC = ")
	require.Contains(t, out, "FLAGS = ")
	require.Contains(t, out, "[6] = 7")
}
