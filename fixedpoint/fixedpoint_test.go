package fixedpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/spinsemi/fv1vm/fixedpoint"
)

func TestFormatRanges(t *testing.T) {
	assert.Equal(t, int32(-8388608), fixedpoint.S23.Min)
	assert.Equal(t, int32(8388607), fixedpoint.S23.Max)
	assert.Equal(t, int32(0xFFFFFF), fixedpoint.S23.Mask)

	assert.Equal(t, int32(-1024), fixedpoint.S1_9.Min)
	assert.Equal(t, int32(1023), fixedpoint.S1_9.Max)
}

func TestDecodeSignExtends(t *testing.T) {
	// All-ones 11-bit field (S1.9) is -1 in two's complement.
	v := fixedpoint.Decode(fixedpoint.S1_9, 0x7FF)
	assert.Equal(t, int32(-1), v)

	// Zero stays zero.
	assert.Equal(t, int32(0), fixedpoint.Decode(fixedpoint.S1_9, 0))
}

func TestDecodeToS23RoundTrips(t *testing.T) {
	// A format with fewer FRAC bits than S23, converted up, should round
	// back down (>> the same shift) to the original decoded value.
	raw := int32(0x123)
	decoded := fixedpoint.Decode(fixedpoint.S1_9, raw)
	s23 := fixedpoint.DecodeToS23(fixedpoint.S1_9, raw)
	back := fixedpoint.Convert(fixedpoint.S23, fixedpoint.S1_9, s23)
	assert.Equal(t, decoded, back)
}

func TestSsatClamps(t *testing.T) {
	assert.Equal(t, fixedpoint.S23.Max, fixedpoint.Ssat(fixedpoint.S23, fixedpoint.S23.Max+1000))
	assert.Equal(t, fixedpoint.S23.Min, fixedpoint.Ssat(fixedpoint.S23, fixedpoint.S23.Min-1000))
	assert.Equal(t, int32(42), fixedpoint.Ssat(fixedpoint.S23, 42))
}

func TestSignExtend24(t *testing.T) {
	assert.Equal(t, int32(-1), fixedpoint.SignExtend24(0xFFFFFF))
	assert.Equal(t, int32(0), fixedpoint.SignExtend24(0))
	assert.Equal(t, int32(-16), fixedpoint.SignExtend24(0xFFFFF0))
}

func TestMulHalfTimesHalf(t *testing.T) {
	one := fixedpoint.S23.Max // ~1.0 - epsilon, there's no exact +1 in Sa.b
	half := int32(1) << 22    // exactly 0.5 in S23
	got := fixedpoint.Mul(fixedpoint.S23, half, half)
	// 0.5 * 0.5 == 0.25
	require.Equal(t, int32(1)<<20, got)
	_ = one
}

func TestAbs(t *testing.T) {
	assert.Equal(t, int32(5), fixedpoint.Abs(5))
	assert.Equal(t, int32(5), fixedpoint.Abs(-5))
	assert.Equal(t, int32(0), fixedpoint.Abs(0))
}

// TestConvertRoundTripProperty checks the invariant from spec.md §8: a
// round trip through S23 and back to a format with fewer-or-equal FRAC bits
// preserves the decoded value.
func TestConvertRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Int32Range(0, fixedpoint.S1_9.Mask).Draw(t, "raw")
		decoded := fixedpoint.Decode(fixedpoint.S1_9, raw)
		s23 := fixedpoint.Convert(fixedpoint.S1_9, fixedpoint.S23, decoded)
		back := fixedpoint.Convert(fixedpoint.S23, fixedpoint.S1_9, s23)
		assert.Equal(t, decoded, back)
	})
}
