package decode

import (
	"fmt"

	"github.com/spinsemi/fv1vm/fixedpoint"
	"github.com/spinsemi/fv1vm/operand"
)

// FieldKind says how a decoded bit-field should be turned into an operand.
type FieldKind int

const (
	FieldValue FieldKind = iota
	FieldMask
	FieldRegister
	FieldAddr
	FieldFixed
)

// FieldDesc describes one lettered bit-field in a pattern string: which
// letter it binds to, what kind of operand it produces, and (for FieldFixed)
// which wire format to decode it as.
type FieldDesc struct {
	Letter byte
	Kind   FieldKind
	Format fixedpoint.Format
}

// bitField is a (width, shift) pair derived from the longest contiguous run
// of a given letter in a 32-character pattern string.
type bitField struct {
	width int
	shift int
}

func fieldFromPattern(pattern string, letter byte) (bitField, bool) {
	first, last := -1, -1
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == letter {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return bitField{}, false
	}
	// pattern[0] is bit 31, pattern[len-1] is bit 0.
	width := last - first + 1
	shift := len(pattern) - 1 - last
	return bitField{width: width, shift: shift}, true
}

func (b bitField) extract(word uint32) uint32 {
	mask := uint32(1)<<uint(b.width) - 1
	return (word >> uint(b.shift)) & mask
}

// matcher is the fixed (non-lettered) part of a pattern: every literal '0'
// or '1' character contributes a mask bit and, for '1', a pattern bit.
type matcher struct {
	mask    uint32
	pattern uint32
}

func matcherFromPattern(pattern string) matcher {
	var m matcher
	for i := 0; i < len(pattern); i++ {
		bit := uint32(1) << uint(len(pattern)-1-i)
		switch pattern[i] {
		case '0':
			m.mask |= bit
		case '1':
			m.mask |= bit
			m.pattern |= bit
		}
	}
	return m
}

const (
	primaryKeyMask   = uint32(0x1F)
	secondaryKeyShift = 30
	secondaryKeyMask  = uint32(0x3) << secondaryKeyShift
)

func (m matcher) primaryKey() uint32 { return m.pattern & primaryKeyMask }

// secondaryKey mirrors the C++ decoder's OpcodeMatcher::secondary(): the
// *value* of the pattern's top two bits, not whether those bits are part of
// the mask. WLDS and CHO_RDA both have literal top-2 bits ("00"), so their
// secondaryKey is 0 even though the bits are masked — by this reckoning they
// are "primary" entries, and WLDR/CHO_SOF/CHO_RDAL (whose top-2 literal bits
// are nonzero) are the ones that spill into the secondary scan list.
func (m matcher) secondaryKey() uint32 { return (m.pattern & secondaryKeyMask) >> secondaryKeyShift }

func (m matcher) hasSecondaryBits() bool { return m.mask&secondaryKeyMask != 0 }

func (m matcher) match(word uint32) bool { return word&m.mask == m.pattern }

// opcodeDef is one row of the opcode table, before the pattern string has
// been compiled into bit-fields.
type opcodeDef struct {
	opcode  Opcode
	pattern string
	fields  []FieldDesc
}

// Instruction is a fully decoded instruction: its opcode plus its operands
// in the order spec.md's per-opcode operand list gives them.
type Instruction struct {
	Opcode   Opcode
	Operands []operand.Operand
	Raw      uint32
}

// Operand returns the i'th operand, or the zero operand if the instruction
// doesn't have one (simplifies callers that only care about a subset).
func (in Instruction) Operand(i int) operand.Operand {
	if i < 0 || i >= len(in.Operands) {
		return operand.Zero
	}
	return in.Operands[i]
}

type tableEntry struct {
	matcher matcher
	def     *opcodeDef
	fields  []compiledField
}

type compiledField struct {
	field bitField
	desc  FieldDesc
}

var defs = []opcodeDef{
	{RDA, "CCCCCCCCCCCAAAAAAAAAAAAAAAA00000", []FieldDesc{
		{'A', FieldAddr, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_9},
	}},
	{RMPA, "CCCCCCCCCCC000000000001100000001", []FieldDesc{
		{'C', FieldFixed, fixedpoint.S1_9},
	}},
	{WRA, "CCCCCCCCCCCAAAAAAAAAAAAAAAA00010", []FieldDesc{
		{'A', FieldAddr, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_9},
	}},
	{WRAP, "CCCCCCCCCCCAAAAAAAAAAAAAAAA00011", []FieldDesc{
		{'A', FieldAddr, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_9},
	}},
	{RDAX, "CCCCCCCCCCCCCCCC00000AAAAAA00100", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_14},
	}},
	{RDFX, "CCCCCCCCCCCCCCCC00000AAAAAA00101", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_14},
	}},
	{WRAX, "CCCCCCCCCCCCCCCC00000AAAAAA00110", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_14},
	}},
	{WRHX, "CCCCCCCCCCCCCCCC00000AAAAAA00111", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_14},
	}},
	{WRLX, "CCCCCCCCCCCCCCCC00000AAAAAA01000", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_14},
	}},
	{MAXX, "CCCCCCCCCCCCCCCC00000AAAAAA01001", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
		{'C', FieldFixed, fixedpoint.S1_14},
	}},
	{MULX, "000000000000000000000AAAAAA01010", []FieldDesc{
		{'A', FieldRegister, fixedpoint.Format{}},
	}},
	{LOG, "CCCCCCCCCCCCCCCCDDDDDDDDDDD01011", []FieldDesc{
		{'C', FieldFixed, fixedpoint.S1_14},
		{'D', FieldFixed, fixedpoint.S_10},
	}},
	{EXP, "CCCCCCCCCCCCCCCCDDDDDDDDDDD01100", []FieldDesc{
		{'C', FieldFixed, fixedpoint.S1_14},
		{'D', FieldFixed, fixedpoint.S_10},
	}},
	{SOF, "CCCCCCCCCCCCCCCCDDDDDDDDDDD01101", []FieldDesc{
		{'C', FieldFixed, fixedpoint.S1_14},
		{'D', FieldFixed, fixedpoint.S_10},
	}},
	{AND, "MMMMMMMMMMMMMMMMMMMMMMMM00001110", []FieldDesc{
		{'M', FieldMask, fixedpoint.Format{}},
	}},
	{OR, "MMMMMMMMMMMMMMMMMMMMMMMM00001111", []FieldDesc{
		{'M', FieldMask, fixedpoint.Format{}},
	}},
	{XOR, "MMMMMMMMMMMMMMMMMMMMMMMM00010000", []FieldDesc{
		{'M', FieldMask, fixedpoint.Format{}},
	}},
	{SKP, "CCCCCNNNNNN000000000000000010001", []FieldDesc{
		{'C', FieldMask, fixedpoint.Format{}},
		{'N', FieldValue, fixedpoint.Format{}},
	}},
	{WLDS, "00NFFFFFFFFFAAAAAAAAAAAAAAA10010", []FieldDesc{
		{'N', FieldValue, fixedpoint.Format{}},
		{'F', FieldValue, fixedpoint.Format{}},
		{'A', FieldValue, fixedpoint.Format{}},
	}},
	{WLDR, "01NFFFFFFFFFFFFFFFF000000AA10010", []FieldDesc{
		{'N', FieldValue, fixedpoint.Format{}},
		{'F', FieldFixed, fixedpoint.I16},
		{'A', FieldValue, fixedpoint.Format{}},
	}},
	{JAM, "0000000000000000000000001N010011", []FieldDesc{
		{'N', FieldValue, fixedpoint.Format{}},
	}},
	{CHO_RDA, "00CCCCCC0NNAAAAAAAAAAAAAAAA10100", []FieldDesc{
		{'N', FieldValue, fixedpoint.Format{}},
		{'C', FieldValue, fixedpoint.Format{}},
		{'A', FieldAddr, fixedpoint.Format{}},
	}},
	{CHO_SOF, "10CCCCCC0NNDDDDDDDDDDDDDDDD10100", []FieldDesc{
		{'N', FieldValue, fixedpoint.Format{}},
		{'C', FieldValue, fixedpoint.Format{}},
		{'D', FieldFixed, fixedpoint.I16},
	}},
	{CHO_RDAL, "11CCCCCC0NN000000000000000010100", []FieldDesc{
		{'N', FieldValue, fixedpoint.Format{}},
		{'C', FieldValue, fixedpoint.Format{}},
	}},
}

var (
	primaryTable   [32]tableEntry
	secondaryTable []tableEntry
)

// expectedWidth returns the bit-field width an operand kind is supposed to
// have, where that width is fixed regardless of the wire format (register
// indices are always 6 bits, addresses always 16, masks default to 24
// unless the opcode overrides it as SKP's flags do).
func expectedWidth(desc FieldDesc, actual int) int {
	switch desc.Kind {
	case FieldRegister:
		return 6
	case FieldAddr:
		return 16
	case FieldFixed:
		return desc.Format.Bits
	case FieldMask:
		if actual == 5 {
			// SKP's flags field is a 5-bit mask, not the default 24.
			return 5
		}
		return 24
	default:
		return actual
	}
}

func buildTable() {
	for i := range defs {
		def := &defs[i]
		if len(def.pattern) != 32 {
			panic(fmt.Sprintf("decode: %s pattern is not 32 characters", def.opcode))
		}
		m := matcherFromPattern(def.pattern)
		compiled := make([]compiledField, 0, len(def.fields))
		for _, fd := range def.fields {
			bf, ok := fieldFromPattern(def.pattern, fd.Letter)
			if !ok {
				panic(fmt.Sprintf("decode: %s has no '%c' field in its pattern", def.opcode, fd.Letter))
			}
			if want := expectedWidth(fd, bf.width); want != bf.width {
				panic(fmt.Sprintf("decode: %s field '%c' is %d bits wide, want %d", def.opcode, fd.Letter, bf.width, want))
			}
			compiled = append(compiled, compiledField{field: bf, desc: fd})
		}
		entry := tableEntry{matcher: m, def: def, fields: compiled}
		if m.secondaryKey() == 0 {
			key := m.primaryKey()
			if primaryTable[key].def != nil {
				panic(fmt.Sprintf("decode: primary key %#x claimed by both %s and %s", key, primaryTable[key].def.opcode, def.opcode))
			}
			primaryTable[key] = entry
		} else {
			secondaryTable = append(secondaryTable, entry)
		}
	}
}

func init() {
	buildTable()
}

func decodeOperands(entry tableEntry, word uint32) []operand.Operand {
	ops := make([]operand.Operand, len(entry.fields))
	for i, cf := range entry.fields {
		raw := int32(cf.field.extract(word))
		switch cf.desc.Kind {
		case FieldValue:
			ops[i] = operand.NewValue(raw)
		case FieldMask:
			ops[i] = operand.NewMask(raw)
		case FieldRegister:
			ops[i] = operand.NewRegister(raw)
		case FieldAddr:
			ops[i] = operand.NewAddr(raw)
		case FieldFixed:
			ops[i] = operand.NewFixed(cf.desc.Format, raw)
		}
	}
	return ops
}

// Decode turns a raw 32-bit instruction word into an Instruction. It first
// looks up the table slot keyed by the low 5 bits; if that slot's matcher
// carries no extra constraint, or the word satisfies it, that's the match.
// Otherwise (WLDS's slot rejected a WLDR word, or CHO_RDA's rejected a
// CHO_SOF/CHO_RDAL word) it falls back to a linear scan of the small
// secondary table. A word matching nothing decodes to UNKNOWN (spec.md
// §4.2, §7).
func Decode(word uint32) Instruction {
	key := word & primaryKeyMask
	entry := primaryTable[key]
	if entry.def != nil && (!entry.matcher.hasSecondaryBits() || entry.matcher.match(word)) {
		return Instruction{Opcode: entry.def.opcode, Operands: decodeOperands(entry, word), Raw: word}
	}
	for _, se := range secondaryTable {
		if se.matcher.match(word) {
			return Instruction{Opcode: se.def.opcode, Operands: decodeOperands(se, word), Raw: word}
		}
	}
	return Instruction{Opcode: UNKNOWN, Raw: word}
}
