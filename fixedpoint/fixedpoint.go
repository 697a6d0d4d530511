// Package fixedpoint implements the signed fixed-point formats used by the
// FV-1 instruction set: a fixed-at-compile-time (BITS, FRAC) pair with
// saturating construction, format conversion, and the handful of arithmetic
// ops the decoder and execution engine share.
package fixedpoint

// Format describes one Sa.b fixed-point layout: a signed word of Bits total
// bits with Frac fractional bits. MIN/MAX/Mask are derived once and cached
// on the value so every concrete format (S23, S1_9, ...) can share the free
// functions below without re-deriving them per call.
type Format struct {
	Bits int
	Frac int
	Min  int32
	Max  int32
	Mask int32
}

func newFormat(bits, frac int) Format {
	if bits <= frac {
		panic("fixedpoint: BITS must exceed FRAC")
	}
	if bits <= 1 || bits >= 32 {
		panic("fixedpoint: BITS must be in (1, 32)")
	}
	intRange := int32(1) << uint(bits-1)
	return Format{
		Bits: bits,
		Frac: frac,
		Min:  -intRange,
		Max:  intRange - 1,
		Mask: (int32(1) << uint(bits)) - 1,
	}
}

// Concrete formats named per the SPIN assembly manual / spec.md §3. S23 is
// the canonical engine format; the others appear only while decoding
// operands before they're normalized to S23.
var (
	S23  = newFormat(24, 23) // canonical accumulator/register format
	S1_9 = newFormat(11, 9)  // RDA/WRA/WRAP/RMPA coefficients
	S1_14 = newFormat(16, 14) // RDAX/RDFX/WRAX/... coefficients
	S_10 = newFormat(11, 10) // LOG/EXP/SOF constant operand
	S4_6 = newFormat(11, 6)  // alternate LOG/EXP offset format
	I16  = newFormat(16, 15) // 16-bit integer reinterpreted as fixed-point
	S_15 = newFormat(16, 15) // alias of I16 used for ramp-rate decoding
)

// Ssat clamps a raw 32-bit integer to the format's representable range.
func Ssat(f Format, v int32) int32 {
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// Decode sign-extends a BITS-wide raw field to a full int32 and saturates it
// to the format's range. Used when lifting an operand bit-field straight out
// of a 32-bit instruction word.
func Decode(f Format, raw int32) int32 {
	signBit := int32(1) << uint(f.Bits-1)
	v := raw
	if raw&signBit != 0 {
		v = raw | ^f.Mask
	}
	return Ssat(f, v)
}

// SignExtend24 sign-extends the low 24 bits of v (the S23 bit pattern) to a
// full int32, used after the logical AND/OR/XOR/NOT ops which operate on
// the raw S23 bit pattern rather than its arithmetic value.
func SignExtend24(v int32) int32 {
	const signBit = int32(1) << 23
	const mask = int32(1)<<24 - 1
	v &= mask
	if v&signBit != 0 {
		return v | ^mask
	}
	return v
}

// Convert shifts a value from src.Frac fractional bits to dst.Frac
// fractional bits. No saturation is performed; the caller is responsible
// for that (matching the source FV-1 VM's FixedPointConvert, which is only
// ever used during decode on already-in-range operand values).
func Convert(src, dst Format, v int32) int32 {
	if dst.Frac > src.Frac {
		return v << uint(dst.Frac-src.Frac)
	}
	if dst.Frac < src.Frac {
		return v >> uint(src.Frac-dst.Frac)
	}
	return v
}

// DecodeToS23 decodes a raw BITS-wide field in format f and converts it
// directly to S23, which is how every fixed-point operand is stored once
// decoded (spec.md §3: "All operand fixed-point values are converted to
// S.23 during decoding").
func DecodeToS23(f Format, raw int32) int32 {
	return Convert(f, S23, Decode(f, raw))
}

// Mul multiplies two S23-format values, widening to 64 bits so the
// intermediate product doesn't overflow, then rescales by the format's
// fractional width.
func Mul(f Format, a, b int32) int32 {
	product := int64(a) * int64(b)
	return int32(product >> uint(f.Frac))
}

// Abs returns the absolute value of a raw fixed-point integer. The FV-1's
// MIN value has no positive counterpart in its own range (two's complement
// asymmetry); this mirrors the source VM and does not itself re-saturate,
// since callers (MAXX/ABSA) compare magnitudes rather than store Abs
// directly into a register without going through a saturating store.
func Abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
