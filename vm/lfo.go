package vm

import "github.com/spinsemi/fv1vm/fixedpoint"

// CHO read flags (spec.md §4.2, §4.5; fv1_opcodes.h's CHO_FLAGS).
const (
	ChoFlagCos   = 0x01
	ChoFlagReg   = 0x02
	ChoFlagCompC = 0x04
	ChoFlagCompA = 0x08
	ChoFlagRptr2 = 0x10
	ChoFlagNA    = 0x20
)

// LfoReadout is what CHO_RDA/CHO_SOF consume from an LFO: a delay-memory
// offset and an interpolation coefficient in [0, 1) (S23).
type LfoReadout struct {
	Offset      int32
	Coefficient int32
}

// SinLfo is the sine oscillator behind SIN0/SIN1. It keeps a unit-circle
// (sin, cos) pair in S23 and steps it with the small-angle recurrence the
// source engine uses in place of a real trig call (sin_lfo.h). rate/range
// are read from the register file each tick rather than cached, since
// WLDS can rewrite them between calls.
type SinLfo struct {
	sin int32
	cos int32
}

// Jam resets the oscillator to its initial phase (cos at -1, sin at 0),
// matching sin_lfo.h's Jam.
func (s *SinLfo) Jam() {
	s.sin = 0
	s.cos = fixedpoint.S23.Min
}

// Tick advances the oscillator by one sample. rate is the WLDS-preshifted
// S23 rate register value; only its upper 16 bits (rate>>8) act as the
// per-step rotation coefficient.
func (s *SinLfo) Tick(rate int32) {
	coeff := rate >> 8
	newCos := s.cos + fixedpoint.Mul(fixedpoint.S23, s.sin, coeff)
	newSin := s.sin - fixedpoint.Mul(fixedpoint.S23, newCos, coeff)
	s.cos = newCos
	s.sin = newSin
}

// Sin and Cos return the oscillator's current value scaled by the LFO's
// range register (WLDS-preshifted S23 amplitude).
func (s *SinLfo) Sin(rangeVal int32) int32 { return fixedpoint.Mul(fixedpoint.S23, s.sin, rangeVal) }
func (s *SinLfo) Cos(rangeVal int32) int32 { return fixedpoint.Mul(fixedpoint.S23, s.cos, rangeVal) }

// Read implements CHO_RDA_SIN/CHO_SOF_SIN/CHO_RDAL's sine lookup: pick
// sin or cos per the COS flag, split it into an integer sample offset (top
// bits) and an S23 interpolation coefficient (low 8 bits), then apply
// COMPA (negate the offset) and COMPC (complement the coefficient).
func (s *SinLfo) Read(rangeVal int32, flags int32) LfoReadout {
	var v int32
	if flags&ChoFlagCos != 0 {
		v = s.Cos(rangeVal)
	} else {
		v = s.Sin(rangeVal)
	}
	coefficient := (v & 0xFF) << (fixedpoint.S23.Frac - 8) // low 8 bits -> S23
	if flags&ChoFlagCompA != 0 {
		v = -v
	}
	if flags&ChoFlagCompC != 0 {
		coefficient = fixedpoint.S23.Max - coefficient
	}
	return LfoReadout{Offset: v >> 8, Coefficient: coefficient}
}

// rampRangeShift matches the sine LFO's WLDS range pre-shift (spec.md §4.3):
// the ramp's 2-bit range selector is converted at compile time into a
// sample-domain magnitude shifted the same way, so phase accumulates in
// the same 1/256-sample units Read() expects (p>>8 for the offset, the low
// 8 bits for the coefficient). original_source/vm/ramp_lfo.h was not part
// of the retrieved sources; see DESIGN.md for this resolved open question.
const rampRangeShift = 8

// RampRangeMagnitude maps WLDR's 2-bit range selector to the ramp LFO's
// phase ceiling, in 1/256-sample units: selector 0-3 -> 512/1024/2048/4096
// samples (the SPIN FV-1 assembly manual's documented RMP range tiers).
func RampRangeMagnitude(selector int32) int32 {
	return (512 << uint(selector&0x3)) << rampRangeShift
}

// RampLfo is the linear (sawtooth) oscillator behind RMP0/RMP1: an integer
// phase that advances toward 2*range each sample and wraps.
type RampLfo struct {
	phase int32
}

func (r *RampLfo) Jam() { r.phase = 0 }

// Tick advances the phase by a fraction of the full 2*range excursion,
// where that fraction is the rate register's S23 value (WLDR already
// normalizes the 16-bit rate field to S23 during decode).
func (r *RampLfo) Tick(rate, rangeVal int32) {
	span := int64(2) * int64(rangeVal)
	delta := int32((int64(rate) * span) >> fixedpoint.S23.Frac)
	phase := r.phase + delta
	mod := int32(span)
	if mod <= 0 {
		r.phase = 0
		return
	}
	phase %= mod
	if phase < 0 {
		phase += mod
	}
	r.phase = phase
}

// Value returns the oscillator's raw phase reinterpreted the way
// CHO_RDAL's RMP0_VAL/RMP1_VAL selectors read it: as an S23 value spanning
// the LFO's own range.
func (r *RampLfo) Value() int32 { return r.phase }

// Read implements CHO_RDA_RMP/CHO_SOF_RMP's ramp lookup (spec.md §4.5):
// RPTR2 reads the opposite half of the cycle; NA returns an integer-only
// offset with no interpolation; otherwise split the phase into an integer
// offset and an S23 coefficient the same way the sine LFO does, then apply
// COMPA/COMPC.
func (r *RampLfo) Read(rangeVal, flags int32) LfoReadout {
	p := r.phase
	span := int32(2) * rangeVal
	if flags&ChoFlagRptr2 != 0 {
		p = (p + rangeVal) % span
	}
	if flags&ChoFlagNA != 0 {
		offset := p >> 8
		if flags&ChoFlagCompA != 0 {
			offset = -offset
		}
		return LfoReadout{Offset: offset, Coefficient: 0}
	}
	coefficient := (p & 0xFF) << (fixedpoint.S23.Frac - 8)
	offset := p >> 8
	if flags&ChoFlagCompA != 0 {
		offset = -offset
	}
	if flags&ChoFlagCompC != 0 {
		coefficient = fixedpoint.S23.Max - coefficient
	}
	return LfoReadout{Offset: offset, Coefficient: coefficient}
}
