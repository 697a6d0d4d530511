package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spinsemi/fv1vm/compile"
)

func newMachineWithProgram(prog compile.Program) *Machine {
	m := NewMachine()
	m.program = prog
	return m
}

func TestRDAXAccumulatesScaledRegister(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.RDAX, Constants: [3]int32{RegGeneral0, 1 << 23, 0}},
	})
	m.regs[RegGeneral0] = 1000

	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)

	assert.Equal(t, int32(1000), m.Accumulator())
}

func TestCLRZeroesAccumulator(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.CLR},
	})
	m.acc = 12345
	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)
	assert.Equal(t, int32(0), m.Accumulator())
}

func TestWRAXStoresRegisterThenScalesAcc(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.WRAX, Constants: [3]int32{RegGeneral0 + 1, 1 << 22, 0}}, // x0.5
	})
	m.acc = 1 << 23 // 1.0 in S23
	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)

	assert.Equal(t, int32(1<<23), m.Register(RegGeneral0+1))
	assert.Equal(t, int32(1<<22), m.Accumulator())
}

// PACC takes the ACC value observed just before each instruction ran
// (spec.md §4.1): a WRLX immediately after the SOF that set ACC=500 sees
// PACC=0 (ACC's value before SOF ran), but a WRLX one instruction later
// sees PACC=500, since the intervening RDAX refreshed PACC to ACC's
// pre-RDAX value, which SOF had already set to 500.
func TestPACCReflectsAccumulatorFromBeforeThePriorInstruction(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.SOF, Constants: [3]int32{0, 500, 0}},
		{Opcode: compile.RDAX, Constants: [3]int32{RegGeneral0 + 2, 0, 0}}, // passthrough, reg==0
		{Opcode: compile.WRLX, Constants: [3]int32{RegGeneral0, 0, 0}},    // C=0 -> ACC = PACC
	})
	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)

	assert.Equal(t, int32(500), m.Register(RegGeneral0))
	assert.Equal(t, int32(500), m.Accumulator())
}

func TestSKPSkipsInstructionsWhenConditionMet(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.CLR},
		{Opcode: compile.SKP, Constants: [3]int32{0x02, 1, 0}}, // GEZ, skip 1
		{Opcode: compile.SOF, Constants: [3]int32{0, 999, 0}},  // skipped
		{Opcode: compile.SOF, Constants: [3]int32{0, 7, 0}},
	})
	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)
	assert.Equal(t, int32(7), m.Accumulator())
}

func TestJMPAlwaysJumps(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.JMP, Constants: [3]int32{0, 1, 0}},
		{Opcode: compile.SOF, Constants: [3]int32{0, 999, 0}}, // skipped
		{Opcode: compile.SOF, Constants: [3]int32{0, 3, 0}},
	})
	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)
	assert.Equal(t, int32(3), m.Accumulator())
}

func TestDelayMemoryRoundTripsAfterFullWrap(t *testing.T) {
	var d DelayMemory
	d.Reset()
	d.Store(0, 42)
	for i := 0; i < DelayMemorySize; i++ {
		d.Tick()
	}
	assert.Equal(t, int32(42), d.Load(0))
}

func TestSinLfoJamResetsToInitialPhase(t *testing.T) {
	var s SinLfo
	s.Tick(1 << 14)
	s.Jam()
	assert.Equal(t, int32(0), s.Sin(1<<23))
	assert.Equal(t, int32(-(1 << 23)), s.Cos(1<<23))
}

func TestRampLfoWrapsAtRange(t *testing.T) {
	var r RampLfo
	r.Jam()
	rng := RampRangeMagnitude(0)
	for i := 0; i < 1000; i++ {
		r.Tick(1<<23, rng) // rate = 1.0 in S23 -> advance by full span each tick
	}
	v := r.Value()
	assert.GreaterOrEqual(t, v, int32(0))
	assert.Less(t, v, int32(2)*rng)
}

func TestRampLfoReadSplitsOffsetAndCoefficient(t *testing.T) {
	var r RampLfo
	r.Jam()
	rng := RampRangeMagnitude(0)
	r.Tick(1<<20, rng)
	lv := r.Read(rng, 0)
	assert.Equal(t, r.Value()>>8, lv.Offset)
	assert.Equal(t, (r.Value()&0xFF)<<(23-8), lv.Coefficient)
}

func TestRMPASumsScaledDelayMemoryAtAddrPtr(t *testing.T) {
	m := newMachineWithProgram(compile.Program{
		{Opcode: compile.RMPA, Constants: [3]int32{1 << 23, 0, 0}},
	})
	m.delay.Store(10, 77)
	m.regs[RegAddrPtr] = 10 << 8 // LoadAddr shifts right by 8
	in := []AudioFrame{{L: 0, R: 0}}
	out := make([]AudioFrame, 1)
	m.Execute(in, out)
	assert.Equal(t, int32(77), m.Accumulator())
}
