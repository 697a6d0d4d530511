package compile

import (
	"github.com/spinsemi/fv1vm/decode"
)

// MaxOperands is the widest operand list any FV-1 instruction carries
// (RDA/WRA/WRAP: addr, coeff — two; LOG/EXP/SOF: coeff, const — two;
// CHO_RDA: n, flags, addr — three). Three covers every opcode.
const MaxOperands = 3

// Instruction is the engine-ready form of a decoded instruction: its opcode
// (possibly rewritten by Optimize) plus up to three constants, each already
// normalized the way decode/operand normalizes them — fixed-point operands
// in S23, masks pre-masked to 24 bits, everything else a plain integer.
// Which slot means what is opcode-dependent; see the engine's dispatch
// table for the mapping spec.md §4.4 describes per opcode.
type Instruction struct {
	Opcode    Opcode
	Constants [MaxOperands]int32
}

func (in Instruction) zero(i int) bool { return in.Constants[i] == 0 }

// CompileInstruction lowers one decoded instruction into its constants
// array. This mirrors VM::CompileInstruction: every operand's Int is
// already in its final runtime representation by the time it leaves
// package operand, so compiling is just a straight copy into fixed slots.
func CompileInstruction(in decode.Instruction) Instruction {
	var out Instruction
	out.Opcode = fromDecode(in.Opcode)
	for i, op := range in.Operands {
		if i >= MaxOperands {
			break
		}
		out.Constants[i] = op.Int
	}
	return out
}

// Program is a fully compiled and optimized instruction sequence, indexed
// by program-counter slot.
type Program []Instruction

// Compile decodes and compiles every word in a 128-slot program image, then
// runs the peephole optimizer over the result. This is VM::Compile minus
// the engine-state reset, which belongs to the vm package.
func Compile(words []uint32) Program {
	prog := make(Program, len(words))
	for i, w := range words {
		prog[i] = CompileInstruction(decode.Decode(w))
	}
	Optimize(prog)
	return prog
}

// Rate/range pre-shift amounts for the sine LFO's WLDS operands: the 9-bit
// rate field and 15-bit range field both arrive as plain integers and are
// shifted into S23 position once at compile time so the engine never has to
// re-scale them per sample (sin_lfo.h: kRateShift = 23-9, kRangeShift =
// 23-15).
const (
	sinRateShift  = 23 - 9
	sinRangeShift = 23 - 15
)

// rampRangeMagnitude maps WLDR's 2-bit range selector to the ramp LFO's
// phase ceiling, in the same 1/256-sample units the engine's RampLfo phase
// accumulator runs in (vm.RampRangeMagnitude — duplicated here rather than
// imported, since package vm imports package compile). Selector 0-3 maps to
// a 512/1024/2048/4096-sample excursion, the SPIN FV-1 assembly manual's
// documented RMP0_RANGE/RMP1_RANGE tiers; original_source/vm/ramp_lfo.h
// wasn't part of the retrieved sources, so the extra <<8 is a resolved open
// question recorded in DESIGN.md, kept in lockstep with vm.RampRangeMagnitude.
func rampRangeMagnitude(selector int32) int32 {
	return (512 << uint(selector&0x3)) << 8
}

// Optimize rewrites several decode-level opcodes into narrower
// pseudo-opcodes, and pre-shifts WLDS/WLDR's raw fields into the form the
// engine's LFOs actually consume. Ported from VM::Optimize (vm_impl.h),
// except WLDS's range pre-shift here uses the range field (constants[2])
// rather than the rate field — the C++ source shifts the rate field into
// both slots, which doesn't match the documented range semantics and isn't
// reproduced here.
func Optimize(prog Program) {
	for i := range prog {
		in := &prog[i]
		switch in.Opcode {
		case RDFX:
			if in.zero(1) {
				in.Opcode = LDAX
			}
		case MAXX:
			if in.zero(1) {
				in.Opcode = ABSA
			}
		case AND:
			if in.zero(0) {
				in.Opcode = CLR
			}
		case XOR:
			if in.Constants[0] == 0xFFFFFF {
				in.Opcode = NOT
			}
		case SKP:
			switch {
			case in.zero(1):
				in.Opcode = NOP
			case in.zero(0):
				in.Opcode = JMP
			}
		case WLDS:
			rate := in.Constants[1]
			rng := in.Constants[2]
			in.Constants[1] = rate << sinRateShift
			in.Constants[2] = rng << sinRangeShift
		case WLDR:
			in.Constants[2] = rampRangeMagnitude(in.Constants[2])
		case CHO_RDA, CHO_SOF:
			n := in.Constants[0]
			idx, isRamp := choLfoIndex(n)
			in.Constants[0] = idx
			if in.Opcode == CHO_RDA {
				if isRamp {
					in.Opcode = CHO_RDA_RMP
				} else {
					in.Opcode = CHO_RDA_SIN
				}
			} else {
				if isRamp {
					in.Opcode = CHO_SOF_RMP
				} else {
					in.Opcode = CHO_SOF_SIN
				}
			}
		case CHO_RDAL:
			in.Constants[0] = choSelIdx(in.Constants[0], in.Constants[1])
		}
	}
}

// CHO selector values (decode/opcode.go's ChoSel* constants, duplicated
// here as plain ints to avoid an import cycle with package decode).
const (
	choSelSin0 = 0
	choSelSin1 = 1
	choSelRmp0 = 2
	choSelRmp1 = 3
)

// choLfoIndex splits a 2-bit CHO selector into (lfo index 0/1, is-ramp).
func choLfoIndex(selector int32) (idx int32, isRamp bool) {
	switch selector & 0x3 {
	case choSelSin0:
		return 0, false
	case choSelSin1:
		return 1, false
	case choSelRmp0:
		return 0, true
	default: // choSelRmp1
		return 1, true
	}
}

// CHO_RDAL lookup indices into the engine's six LFO read-outs (vm.h's
// CHO_SEL_IDX: SIN0_SIN, SIN0_COS, SIN1_SIN, SIN1_COS, RMP0_VAL, RMP1_VAL).
const (
	ChoIdxSin0Sin = 0
	ChoIdxSin0Cos = 1
	ChoIdxSin1Sin = 2
	ChoIdxSin1Cos = 3
	ChoIdxRmp0Val = 4
	ChoIdxRmp1Val = 5
)

const choFlagCos = 0x01

func choSelIdx(selector, flags int32) int32 {
	cos := flags&choFlagCos != 0
	switch selector & 0x3 {
	case choSelSin0:
		if cos {
			return ChoIdxSin0Cos
		}
		return ChoIdxSin0Sin
	case choSelSin1:
		if cos {
			return ChoIdxSin1Cos
		}
		return ChoIdxSin1Sin
	case choSelRmp0:
		return ChoIdxRmp0Val
	default:
		return ChoIdxRmp1Val
	}
}
