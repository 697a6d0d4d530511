// Package operand implements the FV-1 decoder's typed operand model: a
// small tagged value carrying either a raw integer, a mask, a register
// index, a delay address, or a fixed-point number already normalized to
// S.23 (spec.md §3).
package operand

import "github.com/spinsemi/fv1vm/fixedpoint"

// Kind tags what an Operand actually holds. The opcode's operand descriptor
// dictates which Kind a given bit-field decodes to; the decoder never
// guesses.
type Kind int

const (
	None Kind = iota
	Value
	Mask
	Register
	Addr
	Fixed
)

func (k Kind) String() string {
	switch k {
	case None:
		return "NONE"
	case Value:
		return "VALUE"
	case Mask:
		return "MASK"
	case Register:
		return "REGISTER"
	case Addr:
		return "ADDR"
	case Fixed:
		return "FIXED"
	default:
		return "UNKNOWN"
	}
}

// Operand is a (kind, value) pair. Fixed-point operands always hold their
// value already converted to S.23, regardless of the wire format they were
// decoded from (spec.md §3).
type Operand struct {
	Kind Kind
	Int  int32
}

// Zero is the placeholder (Kind None) used for an opcode's unused operand
// slots.
var Zero = Operand{Kind: None}

// NewValue builds a raw-integer operand (used e.g. for SKP's offset and the
// 1-bit LFO selector).
func NewValue(v int32) Operand { return Operand{Kind: Value, Int: v} }

// NewMask builds a 24-bit mask operand (AND/OR/XOR), truncating to 24 bits
// the way VM::CompileInstruction does ("This should be unneeded, but...").
func NewMask(v int32) Operand { return Operand{Kind: Mask, Int: v & fixedpoint.S23.Mask} }

// NewRegister builds a register-index operand (0..63).
func NewRegister(v int32) Operand { return Operand{Kind: Register, Int: v} }

// NewAddr builds a delay-memory address operand from the 16-bit address
// field; DelayMemory wraps it to the 32768-word ring on access.
func NewAddr(v int32) Operand { return Operand{Kind: Addr, Int: v} }

// NewFixed decodes a raw bit-field in the given format and stores it
// normalized to S23.
func NewFixed(f fixedpoint.Format, raw int32) Operand {
	return Operand{Kind: Fixed, Int: fixedpoint.DecodeToS23(f, raw)}
}

func (o Operand) IsNone() bool     { return o.Kind == None }
func (o Operand) IsValue() bool    { return o.Kind == Value }
func (o Operand) IsMask() bool     { return o.Kind == Mask }
func (o Operand) IsRegister() bool { return o.Kind == Register }
func (o Operand) IsAddr() bool     { return o.Kind == Addr }
func (o Operand) IsFixed() bool    { return o.Kind == Fixed }

// IsZero reports whether the operand's raw payload is zero, independent of
// its kind — used by the optimizer's zero-coefficient/zero-mask rewrites.
func (o Operand) IsZero() bool { return o.Int == 0 }
