// Package compile turns decoded instructions into the form the execution
// engine actually dispatches on: operands are converted from the decoder's
// tagged Operand values into plain S23 constants, and a peephole pass
// rewrites several decode-level opcodes into narrower pseudo-opcodes so the
// engine's per-opcode handlers don't have to re-check for degenerate cases
// on every sample (spec.md §4.3).
package compile

import "github.com/spinsemi/fv1vm/decode"

// Opcode extends decode.Opcode with the pseudo-opcodes the optimizer
// introduces. The engine only ever dispatches on this type; decode.Opcode
// never reaches it directly.
type Opcode int

const (
	RDA Opcode = iota
	RMPA
	WRA
	WRAP
	RDAX
	RDFX
	WRAX
	WRHX
	WRLX
	MAXX
	MULX
	LOG
	EXP
	SOF
	AND
	OR
	XOR
	SKP
	WLDS
	WLDR
	JAM
	CHO_RDA
	CHO_SOF
	CHO_RDAL
	UNKNOWN

	// Pseudo-opcodes, introduced only by Optimize (spec.md §4.3).
	LDAX     // RDFX with C==0
	ABSA     // MAXX with C==0
	CLR      // AND with mask==0
	NOT      // XOR with mask==0xFFFFFF
	NOP      // SKP with offset==0
	JMP      // SKP with flags==0 (and offset!=0)
	CHO_RDA_SIN
	CHO_RDA_RMP
	CHO_SOF_SIN
	CHO_SOF_RMP
)

func (o Opcode) String() string {
	switch o {
	case RDA:
		return "RDA"
	case RMPA:
		return "RMPA"
	case WRA:
		return "WRA"
	case WRAP:
		return "WRAP"
	case RDAX:
		return "RDAX"
	case RDFX:
		return "RDFX"
	case WRAX:
		return "WRAX"
	case WRHX:
		return "WRHX"
	case WRLX:
		return "WRLX"
	case MAXX:
		return "MAXX"
	case MULX:
		return "MULX"
	case LOG:
		return "LOG"
	case EXP:
		return "EXP"
	case SOF:
		return "SOF"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case XOR:
		return "XOR"
	case SKP:
		return "SKP"
	case WLDS:
		return "WLDS"
	case WLDR:
		return "WLDR"
	case JAM:
		return "JAM"
	case CHO_RDA:
		return "CHO_RDA"
	case CHO_SOF:
		return "CHO_SOF"
	case CHO_RDAL:
		return "CHO_RDAL"
	case LDAX:
		return "LDAX"
	case ABSA:
		return "ABSA"
	case CLR:
		return "CLR"
	case NOT:
		return "NOT"
	case NOP:
		return "NOP"
	case JMP:
		return "JMP"
	case CHO_RDA_SIN:
		return "CHO_RDA_SIN"
	case CHO_RDA_RMP:
		return "CHO_RDA_RMP"
	case CHO_SOF_SIN:
		return "CHO_SOF_SIN"
	case CHO_SOF_RMP:
		return "CHO_SOF_RMP"
	default:
		return "UNKNOWN"
	}
}

// fromDecode maps the decoder's opcode 1:1 onto the subset of this package's
// Opcode values that exist before optimization runs.
func fromDecode(o decode.Opcode) Opcode {
	switch o {
	case decode.RDA:
		return RDA
	case decode.RMPA:
		return RMPA
	case decode.WRA:
		return WRA
	case decode.WRAP:
		return WRAP
	case decode.RDAX:
		return RDAX
	case decode.RDFX:
		return RDFX
	case decode.WRAX:
		return WRAX
	case decode.WRHX:
		return WRHX
	case decode.WRLX:
		return WRLX
	case decode.MAXX:
		return MAXX
	case decode.MULX:
		return MULX
	case decode.LOG:
		return LOG
	case decode.EXP:
		return EXP
	case decode.SOF:
		return SOF
	case decode.AND:
		return AND
	case decode.OR:
		return OR
	case decode.XOR:
		return XOR
	case decode.SKP:
		return SKP
	case decode.WLDS:
		return WLDS
	case decode.WLDR:
		return WLDR
	case decode.JAM:
		return JAM
	case decode.CHO_RDA:
		return CHO_RDA
	case decode.CHO_SOF:
		return CHO_SOF
	case decode.CHO_RDAL:
		return CHO_RDAL
	default:
		return UNKNOWN
	}
}
