// Package disasm renders decoded and compiled instructions back to FV-1
// assembly mnemonics, for the CLI dump tool and the TUI debugger
// (spec.md §4.2, §4.3).
package disasm

import (
	"fmt"

	"github.com/spinsemi/fv1vm/compile"
	"github.com/spinsemi/fv1vm/decode"
	"github.com/spinsemi/fv1vm/fixedpoint"
	"github.com/spinsemi/fv1vm/operand"
)

// Format renders one decoder-level instruction (operands still tagged by
// kind, before the optimizer's pseudo-opcode rewrites) as assembly text.
func Format(in decode.Instruction) string {
	ops := make([]string, len(in.Operands))
	for i, op := range in.Operands {
		ops[i] = formatOperand(op)
	}
	return joinMnemonic(in.Opcode.String(), ops)
}

func formatOperand(op operand.Operand) string {
	switch op.Kind {
	case operand.Fixed:
		return formatFixed(op.Int)
	case operand.Addr:
		return fmt.Sprintf("$%04X", op.Int)
	case operand.Mask:
		return fmt.Sprintf("0x%06X", uint32(op.Int)&fixedpoint.S23.Mask)
	case operand.Register, operand.Value:
		return fmt.Sprintf("%d", op.Int)
	default:
		return "-"
	}
}

// formatFixed renders an S23 value as a decimal fraction the way FV-1
// assemblers print immediate coefficients.
func formatFixed(v int32) string {
	return fmt.Sprintf("%.6f", float64(v)/float64(int32(1)<<23))
}

// FormatCompiled renders a compiled (post-optimize) instruction. Constants
// are opaque integers by this stage, so output is addressed by slot index
// rather than by operand kind; this is primarily useful for comparing the
// optimizer's rewrites against the original decode.
func FormatCompiled(in compile.Instruction) string {
	var ops []string
	for i := 0; i < compile.MaxOperands; i++ {
		if in.Constants[i] != 0 || i == 0 {
			ops = append(ops, fmt.Sprintf("%d", in.Constants[i]))
		}
	}
	return joinMnemonic(in.Opcode.String(), ops)
}

func joinMnemonic(mnemonic string, ops []string) string {
	if len(ops) == 0 {
		return mnemonic
	}
	out := mnemonic
	for i, op := range ops {
		if i == 0 {
			out += " " + op
		} else {
			out += ", " + op
		}
	}
	return out
}

// FormatProgram renders every instruction in a 128-slot decoded program,
// one line per slot, prefixed with its address.
func FormatProgram(words []uint32) []string {
	lines := make([]string, len(words))
	for i, w := range words {
		lines[i] = fmt.Sprintf("%03d: %s", i, Format(decode.Decode(w)))
	}
	return lines
}
