// Package vm implements the FV-1 execution engine: the register file,
// circular delay memory, ramp/sine LFO pairs, and the per-sample opcode
// dispatch loop that consumes a compiled program (spec.md §4.4, §5).
package vm

import (
	"github.com/spinsemi/fv1vm/compile"
	"github.com/spinsemi/fv1vm/fixedpoint"
)

// MaxInstructionCount is the fixed number of instruction slots a program
// occupies, whether or not every slot holds a meaningful opcode.
const MaxInstructionCount = 128

// AudioFrame is one stereo sample pair, already in S23.
type AudioFrame struct {
	L int32
	R int32
}

// Parameters holds the three pot registers' current settings, applied to
// every frame in a call to Execute until changed.
type Parameters struct {
	Pot [3]int32
}

// Machine is one FV-1 virtual core: its register file, delay memory, LFOs,
// and the currently compiled program. Compile and Execute must not run
// concurrently on the same Machine; the expected usage is one Compile
// followed by many Execute calls (spec.md §5).
type Machine struct {
	program  compile.Program
	acc      int32
	pacc     int32
	ic       int
	firstRun bool
	regs     [NumRegisters]int32
	delay    DelayMemory
	ramp     [2]RampLfo
	sin      [2]SinLfo
}

// NewMachine returns a Machine with its state reset, ready for Compile.
func NewMachine() *Machine {
	m := &Machine{}
	m.reset()
	return m
}

func (m *Machine) reset() {
	m.acc = 0
	m.pacc = 0
	m.ic = 0
	m.firstRun = true
	for i := range m.regs {
		m.regs[i] = 0
	}
	m.delay.Reset()
	for i := range m.ramp {
		m.ramp[i].Jam()
	}
	for i := range m.sin {
		m.sin[i].Jam()
	}
}

// Compile decodes, compiles, and optimizes a 128-word program image and
// resets all engine state (registers, delay memory, LFOs) the way loading
// a new program onto real hardware would (spec.md §4.1, vm_impl.h's
// VM::Compile).
func (m *Machine) Compile(words []uint32) {
	m.reset()
	m.program = compile.Compile(words)
}

// SetParameters applies the three pot registers ahead of the next Execute
// call; it takes effect for every frame until called again.
func (m *Machine) SetParameters(p Parameters) {
	m.regs[RegPOT0] = p.Pot[0]
	m.regs[RegPOT1] = p.Pot[1]
	m.regs[RegPOT2] = p.Pot[2]
}

// DelayMemory exposes the delay buffer for inspection (debugger/monitor
// use); callers must not mutate it concurrently with Execute.
func (m *Machine) DelayMemory() *DelayMemory { return &m.delay }

// Accumulator returns the current ACC value, for introspection.
func (m *Machine) Accumulator() int32 { return m.acc }

// PreviousAccumulator returns PACC, the ACC value held just before the most
// recently executed instruction ran (spec.md §4.1).
func (m *Machine) PreviousAccumulator() int32 { return m.pacc }

// Register returns the raw S23 value of register file slot i.
func (m *Machine) Register(i int) int32 { return m.regs[i] }

// Program returns the currently compiled program, for disassembly views.
func (m *Machine) Program() compile.Program { return m.program }

// RampPhase returns ramp LFO pair index i's raw phase accumulator value.
func (m *Machine) RampPhase(i int) int32 { return m.ramp[i&1].Value() }

// SinPhase returns sine LFO pair index i's current sin/cos readout at the
// LFO's configured range.
func (m *Machine) SinPhase(i int) (sinVal, cosVal int32) {
	rng := m.regs[RegSIN0Range+2*(i&1)]
	return m.sin[i&1].Sin(rng), m.sin[i&1].Cos(rng)
}

func ssat(v int32) int32 { return fixedpoint.Ssat(fixedpoint.S23, v) }
func mul(a, b int32) int32 { return fixedpoint.Mul(fixedpoint.S23, a, b) }

// Execute runs the compiled program over num_frames input frames, writing
// one output frame per input frame. It is fully synchronous: it does not
// yield, allocate, or suspend mid-buffer (spec.md §5).
func (m *Machine) Execute(in []AudioFrame, out []AudioFrame) {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	for frame := 0; frame < n; frame++ {
		m.BeginFrame(in[frame])
		for !m.StepInstruction() {
		}
		out[frame] = m.EndFrame()
	}
}

// BeginFrame latches one input frame into the ADC registers and rewinds the
// instruction counter to the start of the program, ahead of a run of
// StepInstruction calls (spec.md §4.4's per-frame instruction loop, exposed
// one slot at a time for the debugger's single-step mode).
func (m *Machine) BeginFrame(in AudioFrame) {
	m.regs[RegADCL] = ssat(in.L)
	m.regs[RegADCR] = ssat(in.R)
	m.ic = 0
}

// InstructionCounter returns the slot StepInstruction will execute next.
func (m *Machine) InstructionCounter() int { return m.ic }

// StepInstruction executes the instruction at the current counter and
// advances it, reporting whether the frame's instruction loop is now
// exhausted (ready for EndFrame).
func (m *Machine) StepInstruction() bool {
	if m.ic >= MaxInstructionCount || m.ic >= len(m.program) {
		return true
	}
	inst := m.program[m.ic]
	before := m.acc
	m.acc = m.dispatch(inst)

	// PACC takes the value ACC held just before this instruction ran, every
	// slot (spec.md §4.1): a one-instruction delay, so WRLX's (PACC - ACC)
	// reads the accumulator's prior value, not the one it's about to
	// overwrite.
	m.pacc = before
	m.ic++
	return m.ic >= MaxInstructionCount || m.ic >= len(m.program)
}

// EndFrame advances the delay line and LFOs by one sample, rewinds the
// instruction counter to slot 0, and returns the DAC registers as the
// frame's output; call once StepInstruction reports the frame exhausted.
func (m *Machine) EndFrame() AudioFrame {
	m.tick()
	m.firstRun = false
	m.ic = 0
	return AudioFrame{L: m.regs[RegDACL], R: m.regs[RegDACR]}
}

// dispatch executes one compiled instruction against the current ACC/PACC
// and register/delay/LFO state, returning the new ACC. SKP/JMP adjust
// m.ic directly (spec.md §4.4's per-opcode operand table).
func (m *Machine) dispatch(inst compile.Instruction) int32 {
	c := inst.Constants
	acc := m.acc
	pacc := m.pacc

	switch inst.Opcode {
	case compile.RDA:
		acc = ssat(mul(m.delay.Load(c[0]), c[1]) + acc)
	case compile.RMPA:
		addr := LoadAddr(m.regs[RegAddrPtr])
		acc = ssat(mul(m.delay.Load(addr), c[0]) + acc)
	case compile.WRA:
		m.delay.Store(c[0], acc)
		acc = ssat(mul(acc, c[1]))
	case compile.WRAP:
		m.delay.Store(c[0], acc)
		acc = ssat(mul(acc, c[1]) + m.delay.LastRead())
	case compile.RDAX:
		acc = ssat(mul(m.regs[c[0]], c[1]) + acc)
	case compile.RDFX:
		r := m.regs[c[0]]
		acc = ssat(mul(acc-r, c[1]) + r)
	case compile.WRAX:
		m.regs[c[0]] = acc
		acc = ssat(mul(acc, c[1]))
	case compile.WRHX:
		m.regs[c[0]] = acc
		acc = ssat(mul(acc, c[1]) + pacc)
	case compile.WRLX:
		m.regs[c[0]] = acc
		acc = ssat(mul(pacc-acc, c[1]) + pacc)
	case compile.MAXX:
		absRxc := fixedpoint.Abs(mul(m.regs[c[0]], c[1]))
		absAcc := fixedpoint.Abs(acc)
		if absRxc > absAcc {
			acc = ssat(absRxc)
		} else {
			acc = ssat(absAcc)
		}
	case compile.MULX:
		acc = ssat(mul(acc, m.regs[c[0]]))
	case compile.LOG, compile.EXP:
		// Non-goal (spec.md): left as no-ops.
	case compile.SOF:
		acc = ssat(mul(acc, c[0]) + c[1])
	case compile.AND:
		acc = fixedpoint.SignExtend24(acc & c[0])
	case compile.OR:
		acc = fixedpoint.SignExtend24(acc | c[0])
	case compile.XOR:
		acc = fixedpoint.SignExtend24(acc ^ c[0])
	case compile.CLR:
		acc = 0
	case compile.NOT:
		acc = fixedpoint.SignExtend24(^acc)
	case compile.ABSA:
		acc = ssat(fixedpoint.Abs(acc))
	case compile.LDAX:
		acc = m.regs[c[0]]
	case compile.SKP:
		if m.skipTaken(c[0], acc, pacc) {
			m.ic += int(c[1])
		}
	case compile.JMP:
		m.ic += int(c[1])
	case compile.WLDS:
		m.loadSin(c[0], c[1], c[2])
	case compile.WLDR:
		m.loadRamp(c[0], c[1], c[2])
	case compile.JAM:
		m.ramp[c[0]&1].Jam()
	case compile.CHO_RDAL:
		acc = ssat(m.readLfoIndex(c[0]))
	case compile.CHO_RDA_RMP:
		lv := m.ramp[c[0]&1].Read(m.regs[RegRMP0Range+2*(c[0]&1)], c[1])
		acc = ssat(mul(m.delay.Load(c[2]+lv.Offset), lv.Coefficient) + acc)
	case compile.CHO_RDA_SIN:
		lv := m.sin[c[0]&1].Read(m.regs[RegSIN0Range+2*(c[0]&1)], c[1])
		acc = ssat(mul(m.delay.Load(c[2]+lv.Offset), lv.Coefficient) + acc)
	case compile.CHO_SOF_RMP:
		lv := m.ramp[c[0]&1].Read(m.regs[RegRMP0Range+2*(c[0]&1)], c[1])
		acc = ssat(mul(acc, lv.Coefficient) + c[2])
	case compile.CHO_SOF_SIN:
		lv := m.sin[c[0]&1].Read(m.regs[RegSIN0Range+2*(c[0]&1)], c[1])
		acc = ssat(mul(acc, lv.Coefficient) + c[2])
	case compile.NOP, compile.CHO_RDA, compile.CHO_SOF, compile.UNKNOWN:
		// CHO_RDA/CHO_SOF never survive Optimize; NOP and UNKNOWN are
		// intentionally no-ops.
	}
	return acc
}

// SKP condition flags (spec.md §4.4).
const (
	skpNeg = 0x01
	skpGez = 0x02
	skpZro = 0x04
	skpZrc = 0x08
	skpRun = 0x10
)

func (m *Machine) skipTaken(flags, acc, pacc int32) bool {
	skip := true
	if flags&skpNeg != 0 {
		skip = skip && acc < 0
	}
	if flags&skpGez != 0 {
		skip = skip && acc >= 0
	}
	if flags&skpZro != 0 {
		skip = skip && acc == 0
	}
	if flags&skpZrc != 0 {
		skip = skip && (acc >= 0) != (pacc >= 0)
	}
	if flags&skpRun != 0 {
		skip = skip && !m.firstRun
	}
	return skip
}

func (m *Machine) loadSin(n, rate, rng int32) {
	i := n & 1
	if i == 0 {
		m.regs[RegSIN0Rate] = rate
		m.regs[RegSIN0Range] = rng
	} else {
		m.regs[RegSIN1Rate] = rate
		m.regs[RegSIN1Range] = rng
	}
	m.sin[i].Jam()
}

func (m *Machine) loadRamp(n, rate, rng int32) {
	i := n & 1
	if i == 0 {
		m.regs[RegRMP0Rate] = rate
		m.regs[RegRMP0Range] = rng
	} else {
		m.regs[RegRMP1Rate] = rate
		m.regs[RegRMP1Range] = rng
	}
	m.ramp[i].Jam()
}

// CHO_RDAL lookup indices (compile package's ChoIdx* constants).
func (m *Machine) readLfoIndex(idx int32) int32 {
	switch idx {
	case compile.ChoIdxSin0Sin:
		return m.sin[0].Sin(m.regs[RegSIN0Range])
	case compile.ChoIdxSin0Cos:
		return m.sin[0].Cos(m.regs[RegSIN0Range])
	case compile.ChoIdxSin1Sin:
		return m.sin[1].Sin(m.regs[RegSIN1Range])
	case compile.ChoIdxSin1Cos:
		return m.sin[1].Cos(m.regs[RegSIN1Range])
	case compile.ChoIdxRmp0Val:
		return m.ramp[0].Value()
	case compile.ChoIdxRmp1Val:
		return m.ramp[1].Value()
	default:
		return 0
	}
}

// tick advances the delay memory cursor and both LFO pairs by one sample,
// run once per frame after every instruction slot has executed
// (vm_impl.h's VM::Tick).
func (m *Machine) tick() {
	m.delay.Tick()
	m.ramp[0].Tick(m.regs[RegRMP0Rate], m.regs[RegRMP0Range])
	m.ramp[1].Tick(m.regs[RegRMP1Rate], m.regs[RegRMP1Range])
	m.sin[0].Tick(m.regs[RegSIN0Rate])
	m.sin[1].Tick(m.regs[RegSIN1Rate])
}
