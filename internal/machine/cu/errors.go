package cu

import (
	"errors"

	"github.com/modelmachine/modelmachine/internal/machine/alu"
	"github.com/modelmachine/modelmachine/internal/machine/ram"
)

// Decode failures. The skeleton turns both into an in-band HALT — they
// are never returned to a caller, matching spec §7's "unknown opcode /
// reserved-bits violation -> HALT" rule.
var (
	errUnknownOpcode = errors.New("cu: unknown opcode")
	errReservedBits  = errors.New("cu: reserved bits must be zero")
)

// haltReasonFor classifies an in-band failure (decode or RAM error) into
// the HaltReason the skeleton records, so a printer/debugger can report
// *why* the machine stopped without string-matching err.
func haltReasonFor(err error) alu.HaltReason {
	switch {
	case errors.Is(err, errUnknownOpcode):
		return alu.HaltReason{Kind: alu.HaltUnknownOpcode, Message: err.Error()}
	case errors.Is(err, errReservedBits):
		return alu.HaltReason{Kind: alu.HaltReservedBits, Message: err.Error()}
	case errors.Is(err, ram.ErrUnwritten):
		return alu.HaltReason{Kind: alu.HaltProtectedMemory, Message: err.Error()}
	default:
		return alu.HaltReason{Kind: alu.HaltProtectedMemory, Message: err.Error()}
	}
}

// condJump dispatches a conditional-jump opcode against the flags a
// preceding Sub left behind. Shared by every variant that has jump
// opcodes (mm-1..mm-3; mm-0 decodes jump differently but reuses this for
// the conditional forms it also supports).
func condJump(a *alu.ALU, op Opcode) {
	c, ok := conditions[op]
	if !ok {
		return
	}
	if negated[op] {
		if !a.ConditionHolds(c.signed, c.comparison, c.equal) {
			a.Jump()
		}
		return
	}
	a.CondJump(c.signed, c.comparison, c.equal)
}
